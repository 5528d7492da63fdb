package votestore

import (
	"context"
	"errors"

	"github.com/dalemusser/feedbackhub/internal/app/system/decay"
	"github.com/dalemusser/feedbackhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store manages vote records. Base weights are snapshotted at cast time
// and never rewritten; decayed weights are derived on read through the
// injected clock, which tests replace with a fake.
type Store struct {
	c        *mongo.Collection
	feedback *mongo.Collection
	clock    clockwork.Clock
}

func New(db *mongo.Database, clock clockwork.Clock) *Store {
	return &Store{
		c:        db.Collection("votes"),
		feedback: db.Collection("feedback"),
		clock:    clock,
	}
}

var (
	// ErrDuplicateVote is returned when the user has already voted on the
	// feedback item. The unique index on (feedback_id, user_id) makes
	// this hold even when two casts race.
	ErrDuplicateVote = errors.New("user has already voted on this feedback")
	// ErrVoteNotFound is returned when a lookup references a vote that
	// does not exist.
	ErrVoteNotFound = errors.New("vote not found")
	// ErrFeedbackNotVotable is returned when the feedback item is absent
	// or no longer active. Votes attach to canonical items only.
	ErrFeedbackNotVotable = errors.New("feedback is not open for voting")
)

// Cast inserts a vote with the given snapshot weight. The weight is
// computed by the caller at cast time and stored as-is.
func (s *Store) Cast(ctx context.Context, feedbackID, userID primitive.ObjectID, weight float64) (models.Vote, error) {
	err := s.feedback.FindOne(ctx, bson.M{"_id": feedbackID, "state": models.FeedbackActive}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Vote{}, ErrFeedbackNotVotable
	}
	if err != nil {
		return models.Vote{}, err
	}

	v := models.Vote{
		ID:         primitive.NewObjectID(),
		FeedbackID: feedbackID,
		UserID:     userID,
		Weight:     weight,
		CreatedAt:  s.clock.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, v); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Vote{}, ErrDuplicateVote
		}
		return models.Vote{}, err
	}
	return v, nil
}

// Get loads a vote by ObjectID. Returns ErrVoteNotFound if no vote has
// that id.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.Vote, error) {
	var v models.Vote
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVoteNotFound
		}
		return nil, err
	}
	return &v, nil
}

// HasVoted reports whether the user already has a vote on the feedback.
func (s *Store) HasVoted(ctx context.Context, feedbackID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"feedback_id": feedbackID, "user_id": userID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CurrentWeight returns the vote's decayed weight as of now.
func (s *Store) CurrentWeight(ctx context.Context, id primitive.ObjectID) (float64, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return decay.Weight(v.Weight, decay.AgeInDays(s.clock.Now(), v.CreatedAt)), nil
}

// VoteStats aggregates a feedback item's votes. TotalWeight sums the
// stored snapshot weights; TotalDecayedWeight applies the half-life to
// each vote's age at read time. Neither decayed value is ever written
// back.
type VoteStats struct {
	Count              int64   `json:"count"`
	TotalWeight        float64 `json:"total_weight"`
	TotalDecayedWeight float64 `json:"total_decayed_weight"`
}

// Stats computes vote statistics for a feedback item in one pass over
// its votes. A feedback with no votes yields the zero VoteStats.
func (s *Store) Stats(ctx context.Context, feedbackID primitive.ObjectID) (VoteStats, error) {
	cur, err := s.c.Find(ctx, bson.M{"feedback_id": feedbackID})
	if err != nil {
		return VoteStats{}, err
	}
	defer cur.Close(ctx)

	now := s.clock.Now()
	var stats VoteStats
	for cur.Next(ctx) {
		var v models.Vote
		if err := cur.Decode(&v); err != nil {
			return VoteStats{}, err
		}
		stats.Count++
		stats.TotalWeight += v.Weight
		stats.TotalDecayedWeight += decay.Weight(v.Weight, decay.AgeInDays(now, v.CreatedAt))
	}
	if err := cur.Err(); err != nil {
		return VoteStats{}, err
	}
	return stats, nil
}

// ListByFeedback returns all votes on a feedback item.
func (s *Store) ListByFeedback(ctx context.Context, feedbackID primitive.ObjectID) ([]models.Vote, error) {
	cur, err := s.c.Find(ctx, bson.M{"feedback_id": feedbackID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var votes []models.Vote
	if err := cur.All(ctx, &votes); err != nil {
		return nil, err
	}
	return votes, nil
}

// CountByFeedback returns the number of votes on a feedback item.
func (s *Store) CountByFeedback(ctx context.Context, feedbackID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"feedback_id": feedbackID})
}
