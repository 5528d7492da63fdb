package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/feedbackhub/internal/app/system/normalize"
	"github.com/dalemusser/feedbackhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given role. currentVillageID may
// be nil for users without a village context.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string, currentVillageID *primitive.ObjectID) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:               primitive.NewObjectID(),
		FullName:         fullName,
		FullNameCI:       text.Fold(fullName),
		Email:            normalize.Email(email),
		Role:             role,
		Status:           models.StatusActive,
		CurrentVillageID: currentVillageID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateVoter creates a test user with the plain "user" role and no
// village context.
func (f *Fixtures) CreateVoter(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleUser, nil)
}

// CreateVillage creates a test village with the given priority tier.
func (f *Fixtures) CreateVillage(ctx context.Context, name, tier string) models.Village {
	f.t.Helper()

	village := models.Village{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		PriorityTier: tier,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := f.db.Collection("villages").InsertOne(ctx, village)
	if err != nil {
		f.t.Fatalf("failed to create test village: %v", err)
	}

	return village
}

// CreatePanel creates a test panel.
func (f *Fixtures) CreatePanel(ctx context.Context, name string) models.Panel {
	f.t.Helper()

	now := time.Now().UTC()
	panel := models.Panel{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("panels").InsertOne(ctx, panel)
	if err != nil {
		f.t.Fatalf("failed to create test panel: %v", err)
	}

	return panel
}

// AddPanelMembership creates an active membership linking a user to a panel.
func (f *Fixtures) AddPanelMembership(ctx context.Context, userID, panelID primitive.ObjectID) models.PanelMembership {
	f.t.Helper()

	membership := models.PanelMembership{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		PanelID:   panelID,
		Status:    models.MembershipActive,
		CreatedAt: time.Now().UTC(),
	}

	_, err := f.db.Collection("panel_memberships").InsertOne(ctx, membership)
	if err != nil {
		f.t.Fatalf("failed to create test panel membership: %v", err)
	}

	return membership
}

// AddEndedPanelMembership creates a membership that has already ended.
// Ended memberships grant no vote-weight boost.
func (f *Fixtures) AddEndedPanelMembership(ctx context.Context, userID, panelID primitive.ObjectID) models.PanelMembership {
	f.t.Helper()

	now := time.Now().UTC()
	endedAt := now.Add(-24 * time.Hour)
	membership := models.PanelMembership{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		PanelID:   panelID,
		Status:    models.MembershipEnded,
		CreatedAt: now.Add(-48 * time.Hour),
		EndedAt:   &endedAt,
	}

	_, err := f.db.Collection("panel_memberships").InsertOne(ctx, membership)
	if err != nil {
		f.t.Fatalf("failed to create ended test panel membership: %v", err)
	}

	return membership
}

// CreateFeedback creates an active feedback item. villageID may be nil for
// items without a village scope.
func (f *Fixtures) CreateFeedback(ctx context.Context, title string, authorID primitive.ObjectID, villageID *primitive.ObjectID) models.Feedback {
	f.t.Helper()

	now := time.Now().UTC()
	fb := models.Feedback{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		Body:      "Test feedback body.",
		AuthorID:  authorID,
		State:     models.FeedbackActive,
		VillageID: villageID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("feedback").InsertOne(ctx, fb)
	if err != nil {
		f.t.Fatalf("failed to create test feedback: %v", err)
	}

	return fb
}

// CreateMergedFeedback creates a feedback item already merged into targetID.
func (f *Fixtures) CreateMergedFeedback(ctx context.Context, title string, authorID, targetID primitive.ObjectID) models.Feedback {
	f.t.Helper()

	now := time.Now().UTC()
	fb := models.Feedback{
		ID:            primitive.NewObjectID(),
		Title:         title,
		TitleCI:       text.Fold(title),
		Body:          "Test feedback body.",
		AuthorID:      authorID,
		State:         models.FeedbackMerged,
		DuplicateOfID: &targetID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := f.db.Collection("feedback").InsertOne(ctx, fb)
	if err != nil {
		f.t.Fatalf("failed to create merged test feedback: %v", err)
	}

	return fb
}

// CreateVote inserts a vote with an explicit weight and creation time so
// tests can control decay age directly.
func (f *Fixtures) CreateVote(ctx context.Context, feedbackID, userID primitive.ObjectID, weight float64, createdAt time.Time) models.Vote {
	f.t.Helper()

	vote := models.Vote{
		ID:         primitive.NewObjectID(),
		FeedbackID: feedbackID,
		UserID:     userID,
		Weight:     weight,
		CreatedAt:  createdAt,
	}

	_, err := f.db.Collection("votes").InsertOne(ctx, vote)
	if err != nil {
		f.t.Fatalf("failed to create test vote: %v", err)
	}

	return vote
}
