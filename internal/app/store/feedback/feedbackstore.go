package feedbackstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dalemusser/feedbackhub/internal/app/store/audit"
	"github.com/dalemusser/feedbackhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/feedbackhub/internal/app/system/limits"
	"github.com/dalemusser/feedbackhub/internal/app/system/normalize"
	"github.com/dalemusser/feedbackhub/internal/app/system/textmatch"
	"github.com/dalemusser/feedbackhub/internal/app/system/txn"
	"github.com/dalemusser/feedbackhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Store manages feedback items and the merge operation that
// consolidates a duplicate's votes into the canonical item.
type Store struct {
	c        *mongo.Collection
	votes    *mongo.Collection
	users    *mongo.Collection
	villages *mongo.Collection
	audit    *audit.Store
	log      *zap.Logger
}

func New(db *mongo.Database) *Store {
	return NewWithLogger(db, zap.NewNop())
}

// NewWithLogger wires a Store that can report degraded-mode warnings.
func NewWithLogger(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{
		c:        db.Collection("feedback"),
		votes:    db.Collection("votes"),
		users:    db.Collection("users"),
		villages: db.Collection("villages"),
		audit:    audit.New(db),
		log:      log,
	}
}

var (
	// ErrFeedbackNotFound is returned when a lookup references a feedback
	// item that does not exist.
	ErrFeedbackNotFound = errors.New("feedback not found")
	// ErrSelfMerge is returned when source and target are the same item.
	ErrSelfMerge = errors.New("cannot merge a feedback item into itself")
	// ErrAlreadyMerged is returned when the source or target has already
	// been merged. Wrap-aware: match with errors.Is.
	ErrAlreadyMerged = errors.New("feedback already merged")
	// ErrCircularMerge is returned when the target was itself merged into
	// the source.
	ErrCircularMerge = errors.New("target is already a duplicate of source")
	// ErrVoteConflict is returned when a vote cast during the merge
	// collides with a migrating vote. The merge rolls back; the caller
	// may retry.
	ErrVoteConflict = errors.New("concurrent vote conflicts with merge migration")
	// ErrAuthorMissing is returned when creating feedback for an unknown author.
	ErrAuthorMissing = errors.New("author does not exist")
	// ErrVillageMissing is returned when creating feedback scoped to an unknown village.
	ErrVillageMissing = errors.New("village does not exist")

	errSourceMerged = fmt.Errorf("%w: source already merged", ErrAlreadyMerged)
	errTargetMerged = fmt.Errorf("%w: target already merged; merge into the canonical item instead", ErrAlreadyMerged)
	errEmptyTitle   = errors.New("title must not be empty")
)

// Create inserts a new feedback item after normalizing & validating
// fields. The body is sanitized on write so stored content is always
// safe to render.
func (s *Store) Create(ctx context.Context, f models.Feedback) (models.Feedback, error) {
	f.ID = primitive.NewObjectID()
	f.Title = normalize.Title(f.Title)
	f.TitleCI = text.Fold(f.Title)
	f.Body = htmlsanitize.Sanitize(f.Body)
	if f.Title == "" {
		return models.Feedback{}, errEmptyTitle
	}

	if err := s.users.FindOne(ctx, bson.M{"_id": f.AuthorID}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Feedback{}, ErrAuthorMissing
		}
		return models.Feedback{}, err
	}
	if f.VillageID != nil {
		if err := s.villages.FindOne(ctx, bson.M{"_id": *f.VillageID}).Err(); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return models.Feedback{}, ErrVillageMissing
			}
			return models.Feedback{}, err
		}
	}

	f.State = models.FeedbackActive
	f.DuplicateOfID = nil

	now := time.Now()
	f.CreatedAt = now
	f.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return models.Feedback{}, err
	}
	return f, nil
}

// Get loads a feedback item by ObjectID. Returns ErrFeedbackNotFound if
// no item has that id.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.Feedback, error) {
	var f models.Feedback
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrFeedbackNotFound
		}
		return nil, err
	}
	return &f, nil
}

// CountActive returns the number of active feedback items.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"state": models.FeedbackActive})
}

// DuplicateMatch is one near-duplicate candidate.
type DuplicateMatch struct {
	ID         primitive.ObjectID `json:"id"`
	Title      string             `json:"title"`
	Snippet    string             `json:"snippet,omitempty"`
	State      string             `json:"state"`
	CreatedAt  time.Time          `json:"created_at"`
	Similarity float64            `json:"similarity"`
}

// FindDuplicates scans active feedback titles for near-duplicates of
// title, excluding excludeID (pass the zero ObjectID to exclude
// nothing). Matches score at or above the similarity threshold and come
// back sorted best-first, ties broken by id so the order is stable. A
// degenerate title (under two characters once folded) matches nothing.
func (s *Store) FindDuplicates(ctx context.Context, title string, excludeID primitive.ObjectID) ([]DuplicateMatch, error) {
	filter := bson.M{"state": models.FeedbackActive}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	opts := options.Find().SetProjection(bson.M{"title": 1, "body": 1, "state": 1, "created_at": 1})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var matches []DuplicateMatch
	for cur.Next(ctx) {
		var row struct {
			ID        primitive.ObjectID `bson:"_id"`
			Title     string             `bson:"title"`
			Body      string             `bson:"body"`
			State     string             `bson:"state"`
			CreatedAt time.Time          `bson:"created_at"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		sim := textmatch.Similarity(title, row.Title)
		if sim >= textmatch.DuplicateThreshold {
			matches = append(matches, DuplicateMatch{
				ID:         row.ID,
				Title:      row.Title,
				Snippet:    normalize.Snippet(htmlsanitize.ToText(row.Body), limits.SnippetLength),
				State:      row.State,
				CreatedAt:  row.CreatedAt,
				Similarity: sim,
			})
		}
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ID.Hex() < matches[j].ID.Hex()
	})
	return matches, nil
}

// MergeResult reports what a merge did.
type MergeResult struct {
	VotesMigrated int `json:"votes_migrated"`
}

// Merge marks source as a duplicate of target and moves its votes over
// as one atomic unit: either the state change, the vote migration, the
// source-vote cleanup, and the audit record all commit, or none do.
//
// Vote migration keeps each vote's snapshot weight and original cast
// time, so migrated votes keep decaying from when the user actually
// voted. A user who voted on both items keeps the target vote; the
// source vote is discarded, never summed.
//
// actorID and requestID are recorded on the audit event; either may be
// empty.
func (s *Store) Merge(ctx context.Context, sourceID, targetID primitive.ObjectID, actorID *primitive.ObjectID, requestID string) (MergeResult, error) {
	if sourceID == targetID {
		return MergeResult{}, ErrSelfMerge
	}

	// Fast-fail before paying for a transaction. The same checks run
	// again on the transaction's snapshot.
	if err := s.checkMergeable(ctx, sourceID, targetID); err != nil {
		return MergeResult{}, err
	}

	body := func(ctx context.Context) (interface{}, error) {
		return s.mergeTxn(ctx, sourceID, targetID, actorID, requestID)
	}

	res, err := txn.Run(ctx, s.c.Database().Client(), body)
	if err != nil && txn.IsNotSupported(err) {
		// Standalone mongod. Run the same steps without transactional
		// guarantees so development setups still work.
		s.log.Warn("mongo transactions unavailable; merging without transaction",
			zap.String("source_id", sourceID.Hex()),
			zap.String("target_id", targetID.Hex()),
			zap.Error(err))
		res, err = body(ctx)
	}
	if err != nil {
		return MergeResult{}, err
	}
	return res.(MergeResult), nil
}

// checkMergeable loads both items and applies the merge preconditions.
// The circular check runs before the target-state check: a target that
// was merged into this very source reports CircularMerge, not the
// generic "target already merged".
func (s *Store) checkMergeable(ctx context.Context, sourceID, targetID primitive.ObjectID) error {
	source, err := s.Get(ctx, sourceID)
	if err != nil {
		return err
	}
	target, err := s.Get(ctx, targetID)
	if err != nil {
		return err
	}

	if source.State == models.FeedbackMerged {
		return errSourceMerged
	}
	if target.DuplicateOfID != nil && *target.DuplicateOfID == sourceID {
		return ErrCircularMerge
	}
	if target.State == models.FeedbackMerged {
		return errTargetMerged
	}
	return nil
}

func (s *Store) mergeTxn(ctx context.Context, sourceID, targetID primitive.ObjectID, actorID *primitive.ObjectID, requestID string) (MergeResult, error) {
	// Re-validate inside the transaction boundary; a concurrent merge
	// may have won since the caller's checks.
	if err := s.checkMergeable(ctx, sourceID, targetID); err != nil {
		return MergeResult{}, err
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": sourceID, "state": models.FeedbackActive},
		bson.M{"$set": bson.M{
			"state":           models.FeedbackMerged,
			"duplicate_of_id": targetID,
			"updated_at":      time.Now(),
		}})
	if err != nil {
		return MergeResult{}, err
	}
	if res.MatchedCount == 0 {
		return MergeResult{}, errSourceMerged
	}

	// Users who already voted on the target keep those votes untouched.
	var targetRows []struct {
		UserID primitive.ObjectID `bson:"user_id"`
	}
	cur, err := s.votes.Find(ctx, bson.M{"feedback_id": targetID},
		options.Find().SetProjection(bson.M{"user_id": 1}))
	if err != nil {
		return MergeResult{}, err
	}
	if err := cur.All(ctx, &targetRows); err != nil {
		return MergeResult{}, err
	}
	targetVoters := make(map[primitive.ObjectID]bool, len(targetRows))
	for _, row := range targetRows {
		targetVoters[row.UserID] = true
	}

	var sourceVotes []models.Vote
	cur, err = s.votes.Find(ctx, bson.M{"feedback_id": sourceID})
	if err != nil {
		return MergeResult{}, err
	}
	if err := cur.All(ctx, &sourceVotes); err != nil {
		return MergeResult{}, err
	}

	// Migrated votes keep the original voter, weight, and cast time.
	var migrated []interface{}
	for _, v := range sourceVotes {
		if targetVoters[v.UserID] {
			continue
		}
		migrated = append(migrated, models.Vote{
			ID:         primitive.NewObjectID(),
			FeedbackID: targetID,
			UserID:     v.UserID,
			Weight:     v.Weight,
			CreatedAt:  v.CreatedAt,
		})
	}
	if len(migrated) > 0 {
		if _, err := s.votes.InsertMany(ctx, migrated); err != nil {
			if wafflemongo.IsDup(err) {
				return MergeResult{}, ErrVoteConflict
			}
			return MergeResult{}, err
		}
	}

	if _, err := s.votes.DeleteMany(ctx, bson.M{"feedback_id": sourceID}); err != nil {
		return MergeResult{}, err
	}

	// The audit record is part of the transaction: a merge that cannot
	// be recorded does not happen.
	event := audit.Event{
		Category:   audit.CategoryMerges,
		EventType:  audit.EventFeedbackMerged,
		ActorID:    actorID,
		FeedbackID: &targetID,
		Success:    true,
		Details: map[string]string{
			"source_id":      sourceID.Hex(),
			"target_id":      targetID.Hex(),
			"votes_migrated": strconv.Itoa(len(migrated)),
		},
	}
	if requestID != "" {
		event.Details["request_id"] = requestID
	}
	if err := s.audit.Log(ctx, event); err != nil {
		return MergeResult{}, err
	}

	return MergeResult{VotesMigrated: len(migrated)}, nil
}
