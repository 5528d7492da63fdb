// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.

The unique index on votes is load-bearing: the one-vote-per-user
invariant is enforced here, not in application code, so it holds across
racing requests.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureVillages(ctx, db); err != nil {
		problems = append(problems, "villages: "+err.Error())
	}
	if err := ensurePanels(ctx, db); err != nil {
		problems = append(problems, "panels: "+err.Error())
	}
	if err := ensurePanelMemberships(ctx, db); err != nil {
		problems = append(problems, "panel_memberships: "+err.Error())
	}
	if err := ensureFeedback(ctx, db); err != nil {
		problems = append(problems, "feedback: "+err.Error())
	}
	if err := ensureVotes(ctx, db); err != nil {
		problems = append(problems, "votes: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := false
	bv := false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

// dupFinderHint returns a copy-pasteable aggregation for locating the
// documents that block a unique index build.
func dupFinderHint(collName, sig string) string {
	switch {
	case collName == "users" && strings.Contains(sig, "email:1"):
		return " — duplicates exist on users.email. Example finder:\n" +
			`db.users.aggregate([{ $group: { _id: "$email", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`
	case collName == "votes":
		return " — duplicate votes exist per (feedback_id, user_id). Example finder:\n" +
			`db.votes.aggregate([{ $group: { _id: { f: "$feedback_id", u: "$user_id" }, n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`
	case collName == "panel_memberships":
		return " — duplicate memberships exist per (user_id, panel_id). Example finder:\n" +
			`db.panel_memberships.aggregate([{ $group: { _id: { u: "$user_id", p: "$panel_id" }, n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`
	}
	return ""
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			if m.Options.Unique != nil {
				desiredUnique = m.Options.Unique
			}
		}
		desiredSig := keySig(m.Keys.(bson.D))

		start := time.Now()
		zap.L().Info("ensuring index",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique))

		// 1) Load existing indexes keyed by signature.
		existing := map[string]existingIndex{}
		if cur, err := coll.Indexes().List(ctx); err == nil {
			for cur.Next(ctx) {
				var idx existingIndex
				if err := cur.Decode(&idx); err != nil {
					zap.L().Warn("failed to decode existing index",
						zap.String("collection", coll.Name()),
						zap.Error(err))
					continue
				}
				existing[keySig(idx.Key)] = idx
			}
			cur.Close(ctx)
		}

		if ex, ok := existing[desiredSig]; ok {
			// Same key pattern exists already.
			if sameBoolPtr(desiredUnique, ex.Unique) {
				if desiredName == "" || ex.Name == desiredName {
					zap.L().Info("reusing existing index",
						zap.String("collection", coll.Name()),
						zap.String("name", ex.Name),
						zap.String("keys", desiredSig),
						zap.String("took", time.Since(start).String()))
					continue
				}

				// Name differs: drop & recreate under the desired name.
				zap.L().Info("renaming index",
					zap.String("collection", coll.Name()),
					zap.String("from", ex.Name),
					zap.String("to", desiredName),
					zap.String("keys", desiredSig))
				if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
					errs = append(errs, fmt.Sprintf("%s(%s): rename drop failed: %v", coll.Name(), desiredName, err))
					continue
				}
				if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
					errs = append(errs, fmt.Sprintf("%s(%s): rename create failed: %v", coll.Name(), desiredName, err))
					continue
				}
				continue
			}

			// Options mismatch (e.g., upgrading to unique). Drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
			if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
				if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
					errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)%s",
						coll.Name(), desiredName, dupFinderHint(coll.Name(), desiredSig)))
				} else {
					errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
				}
				continue
			}
			zap.L().Info("index dropped and recreated",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()))
			continue
		}

		// 2) No existing index with the same keys: create it.
		created, err := coll.Indexes().CreateOne(ctx, m)
		if err == nil {
			zap.L().Info("index ensured",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("created_name", created),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()))
			continue
		}

		if isOptionsConflictErr(err) {
			// Another index owns these keys under a different name or
			// options; reconcile against what the server reports now.
			if recErr := reconcileConflict(ctx, coll, m, desiredSig, desiredName, desiredUnique); recErr != nil {
				errs = append(errs, recErr.Error())
			}
			continue
		}

		zap.L().Warn("index ensure failed",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.String("took", time.Since(start).String()),
			zap.Error(err))
		errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// reconcileConflict handles IndexOptionsConflict from CreateOne: find the
// index that owns the key pattern, reuse it when compatible, otherwise
// drop and recreate.
func reconcileConflict(ctx context.Context, coll *mongo.Collection, m mongo.IndexModel, desiredSig, desiredName string, desiredUnique *bool) error {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("%s(%s): list after conflict failed: %v", coll.Name(), desiredName, err)
	}
	var match *existingIndex
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if keySig(idx.Key) == desiredSig {
			match = &idx
			break
		}
	}
	cur.Close(ctx)

	if match == nil {
		return fmt.Errorf("%s(%s): IndexOptionsConflict but no matching key pattern found", coll.Name(), desiredName)
	}

	if sameBoolPtr(desiredUnique, match.Unique) {
		zap.L().Info("reusing existing index (post-conflict)",
			zap.String("collection", coll.Name()),
			zap.String("name", match.Name),
			zap.String("keys", desiredSig))
		return nil
	}

	if _, err := coll.Indexes().DropOne(ctx, match.Name); err != nil {
		return fmt.Errorf("%s(%s): drop conflicting index failed: %v", coll.Name(), desiredName, err)
	}
	if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
		if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
			return fmt.Errorf("%s(%s): cannot create unique index (duplicates present)%s",
				coll.Name(), desiredName, dupFinderHint(coll.Name(), desiredSig))
		}
		return fmt.Errorf("%s(%s): %v", coll.Name(), desiredName, err)
	}
	zap.L().Info("index dropped and recreated (post-conflict)",
		zap.String("collection", coll.Name()),
		zap.String("name", desiredName),
		zap.String("keys", desiredSig))
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Email must be unique across all users
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},

		// User lists: filter by role/status, sort by folded name, stable tiebreak
		{
			Keys: bson.D{
				{Key: "role", Value: 1},
				{Key: "status", Value: 1},
				{Key: "full_name_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_users_role_status_fullnameci_id"),
		},

		// Village fallback lookups (who is in a village right now)
		{
			Keys:    bson.D{{Key: "current_village_id", Value: 1}},
			Options: options.Index().SetName("idx_users_current_village"),
		},
	})
}

func ensureVillages(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("villages")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Enforce global uniqueness of village names (case/diacritics folded).
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_villages_nameci"),
		},
	})
}

func ensurePanels(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("panels")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Enforce global uniqueness of panel names (case/diacritics folded).
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_panels_nameci"),
		},
	})
}

func ensurePanelMemberships(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("panel_memberships")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Uniqueness: exactly one membership doc per (user, panel); ending a
		// membership flips its status instead of deleting the doc.
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "panel_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_pm_user_panel"),
		},

		// Fast: the panel-boost existence probe (user has an active membership?)
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_pm_user_status"),
		},

		// Fast: list/count a panel's active members
		{
			Keys:    bson.D{{Key: "panel_id", Value: 1}, {Key: "status", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_pm_panel_status_user"),
		},
	})
}

func ensureFeedback(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("feedback")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Active-item scans: the duplicate detector and list pages both
		// filter on state first.
		{
			Keys: bson.D{
				{Key: "state", Value: 1},
				{Key: "title_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_feedback_state_titleci__id"),
		},

		// Newest-first listing with stable tiebreak
		{
			Keys: bson.D{
				{Key: "state", Value: 1},
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().SetName("idx_feedback_state_created__id"),
		},

		// Find the duplicates that were merged into a canonical item
		{
			Keys:    bson.D{{Key: "duplicate_of_id", Value: 1}},
			Options: options.Index().SetName("idx_feedback_duplicate_of"),
		},

		// Per-author and per-village lookups
		{
			Keys:    bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_feedback_author_created"),
		},
		{
			Keys:    bson.D{{Key: "village_id", Value: 1}},
			Options: options.Index().SetName("idx_feedback_village"),
		},
	})
}

func ensureVotes(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("votes")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// THE vote-integrity constraint: at most one vote per
		// (feedback_id, user_id), held even under racing casts. Also the
		// access path for per-feedback vote scans.
		{
			Keys:    bson.D{{Key: "feedback_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_votes_feedback_user"),
		},

		// A user's voting history, newest first
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_votes_user_created"),
		},
	})
}
