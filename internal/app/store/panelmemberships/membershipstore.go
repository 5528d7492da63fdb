package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/feedbackhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c      *mongo.Collection
	users  *mongo.Collection
	panels *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:      db.Collection("panel_memberships"),
		users:  db.Collection("users"),
		panels: db.Collection("panels"),
	}
}

var (
	// ErrDuplicateMembership is returned when the user already has an
	// active membership in the panel.
	ErrDuplicateMembership = errors.New("user is already a member of this panel")
	// ErrMembershipNotFound is returned when ending a membership that
	// does not exist or is already ended.
	ErrMembershipNotFound = errors.New("active membership not found")
	errUserMissing        = errors.New("user does not exist")
	errPanelMissing       = errors.New("panel does not exist")
)

// Add creates an active membership for (userID, panelID) after
// verifying both sides exist. If the pair already has an ended
// membership, it is reactivated so the collection keeps exactly one
// document per pair.
func (s *Store) Add(ctx context.Context, userID, panelID primitive.ObjectID) error {
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errUserMissing
		}
		return err
	}
	if err := s.panels.FindOne(ctx, bson.M{"_id": panelID}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errPanelMissing
		}
		return err
	}

	doc := bson.M{
		"user_id":    userID,
		"panel_id":   panelID,
		"status":     models.MembershipActive,
		"created_at": time.Now().UTC(),
	}
	_, err := s.c.InsertOne(ctx, doc)
	if err == nil {
		return nil
	}
	if !wafflemongo.IsDup(err) {
		return err
	}

	// A document for this pair already exists. Rejoining after an ended
	// membership reactivates it; an active one is a duplicate.
	res, uerr := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID, "panel_id": panelID, "status": models.MembershipEnded},
		bson.M{
			"$set":   bson.M{"status": models.MembershipActive},
			"$unset": bson.M{"ended_at": ""},
		})
	if uerr != nil {
		return uerr
	}
	if res.ModifiedCount == 0 {
		return ErrDuplicateMembership
	}
	return nil
}

// End marks the active membership for (userID, panelID) as ended. The
// document is kept for history; only active memberships count toward
// the panel boost.
func (s *Store) End(ctx context.Context, userID, panelID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID, "panel_id": panelID, "status": models.MembershipActive},
		bson.M{"$set": bson.M{
			"status":   models.MembershipEnded,
			"ended_at": time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// HasActive reports whether the user has at least one active panel
// membership. Membership in several panels still yields a single
// boost, so only existence matters here.
func (s *Store) HasActive(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "status": models.MembershipActive}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountActiveByPanel returns the number of active members in a panel.
func (s *Store) CountActiveByPanel(ctx context.Context, panelID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"panel_id": panelID, "status": models.MembershipActive})
}

// ListByUser returns all memberships for a user, active and ended.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.PanelMembership, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.PanelMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}
