package voteweight_test

import (
	"errors"
	"math"
	"testing"

	userstore "github.com/dalemusser/feedbackhub/internal/app/store/users"
	"github.com/dalemusser/feedbackhub/internal/app/system/voteweight"
	"github.com/dalemusser/feedbackhub/internal/domain/models"
	"github.com/dalemusser/feedbackhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestCalculator(t *testing.T) (*voteweight.Calculator, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return voteweight.NewCalculator(db), testutil.NewFixtures(t, db)
}

func assertWeight(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("weight: got %v, want %v", got, want)
	}
}

func TestComputeBaseWeight_PlainUser(t *testing.T) {
	calc, fixtures := newTestCalculator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateVoter(ctx, "Ada Author", "ada@example.com")
	fb := fixtures.CreateFeedback(ctx, "Dark mode support", author.ID, nil)
	voter := fixtures.CreateVoter(ctx, "Vera Voter", "vera@example.com")

	w, err := calc.ComputeBaseWeight(ctx, voter.ID, fb.ID)
	if err != nil {
		t.Fatalf("ComputeBaseWeight failed: %v", err)
	}
	assertWeight(t, w, 1.0)
}

func TestComputeBaseWeight_FeedbackVillageWins(t *testing.T) {
	calc, fixtures := newTestCalculator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	high := fixtures.CreateVillage(ctx, "Northside", models.TierHigh)
	low := fixtures.CreateVillage(ctx, "Southside", models.TierLow)

	author := fixtures.CreateVoter(ctx, "Ada Author", "ada@example.com")
	fb := fixtures.CreateFeedback(ctx, "Dark mode support", author.ID, &high.ID)

	// The voter lives in a low tier village, but the feedback's village
	// provides the context.
	voter := fixtures.CreateUser(ctx, "Vera Voter", "vera@example.com", models.RoleUser, &low.ID)

	w, err := calc.ComputeBaseWeight(ctx, voter.ID, fb.ID)
	if err != nil {
		t.Fatalf("ComputeBaseWeight failed: %v", err)
	}
	assertWeight(t, w, 1.5)
}

func TestComputeBaseWeight_FallsBackToVoterVillage(t *testing.T) {
	calc, fixtures := newTestCalculator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	low := fixtures.CreateVillage(ctx, "Southside", models.TierLow)

	author := fixtures.CreateVoter(ctx, "Ada Author", "ada@example.com")
	fb := fixtures.CreateFeedback(ctx, "Dark mode support", author.ID, nil)
	voter := fixtures.CreateUser(ctx, "Vera Voter", "vera@example.com", models.RoleUser, &low.ID)

	w, err := calc.ComputeBaseWeight(ctx, voter.ID, fb.ID)
	if err != nil {
		t.Fatalf("ComputeBaseWeight failed: %v", err)
	}
	assertWeight(t, w, 0.5)
}

func TestComputeBaseWeight_DanglingVillageIsNeutral(t *testing.T) {
	calc, fixtures := newTestCalculator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	village := fixtures.CreateVillage(ctx, "Northside", models.TierHigh)

	author := fixtures.CreateVoter(ctx, "Ada Author", "ada@example.com")
	fb := fixtures.CreateFeedback(ctx, "Dark mode support", author.ID, &village.ID)
	voter := fixtures.CreateVoter(ctx, "Vera Voter", "vera@example.com")

	// Delete the village out from under the feedback: the reference dangles
	// and the multiplier drops to neutral.
	if _, err := fixtures.DB().Collection("villages").DeleteOne(ctx, bson.M{"_id": village.ID}); err != nil {
		t.Fatalf("delete village failed: %v", err)
	}

	w, err := calc.ComputeBaseWeight(ctx, voter.ID, fb.ID)
	if err != nil {
		t.Fatalf("ComputeBaseWeight failed: %v", err)
	}
	assertWeight(t, w, 1.0)
}

func TestComputeBaseWeight_PanelBoostIsFlat(t *testing.T) {
	calc, fixtures := newTestCalculator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateVoter(ctx, "Ada Author", "ada@example.com")
	fb := fixtures.CreateFeedback(ctx, "Dark mode support", author.ID, nil)

	voter := fixtures.CreateVoter(ctx, "Vera Voter", "vera@example.com")
	p1 := fixtures.CreatePanel(ctx, "Research Panel")
	p2 := fixtures.CreatePanel(ctx, "Beta Panel")
	fixtures.AddPanelMembership(ctx, voter.ID, p1.ID)
	fixtures.AddPanelMembership(ctx, voter.ID, p2.ID)

	// Two active memberships still boost only once.
	w, err := calc.ComputeBaseWeight(ctx, voter.ID, fb.ID)
	if err != nil {
		t.Fatalf("ComputeBaseWeight failed: %v", err)
	}
	assertWeight(t, w, 1.3)
}

func TestComputeBaseWeight_EndedMembershipDoesNotBoost(t *testing.T) {
	calc, fixtures := newTestCalculator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateVoter(ctx, "Ada Author", "ada@example.com")
	fb := fixtures.CreateFeedback(ctx, "Dark mode support", author.ID, nil)

	voter := fixtures.CreateVoter(ctx, "Vera Voter", "vera@example.com")
	panel := fixtures.CreatePanel(ctx, "Research Panel")
	fixtures.AddEndedPanelMembership(ctx, voter.ID, panel.ID)

	w, err := calc.ComputeBaseWeight(ctx, voter.ID, fb.ID)
	if err != nil {
		t.Fatalf("ComputeBaseWeight failed: %v", err)
	}
	assertWeight(t, w, 1.0)
}

func TestComputeBaseWeight_UserNotFound(t *testing.T) {
	calc, fixtures := newTestCalculator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateVoter(ctx, "Ada Author", "ada@example.com")
	fb := fixtures.CreateFeedback(ctx, "Dark mode support", author.ID, nil)

	_, err := calc.ComputeBaseWeight(ctx, primitive.NewObjectID(), fb.ID)
	if !errors.Is(err, userstore.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
