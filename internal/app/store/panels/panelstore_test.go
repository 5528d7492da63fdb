package panelstore_test

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	panelstore "github.com/dalemusser/feedbackhub/internal/app/store/panels"
	"github.com/dalemusser/feedbackhub/internal/app/system/indexes"
	"github.com/dalemusser/feedbackhub/internal/domain/models"
	"github.com/dalemusser/feedbackhub/internal/testutil"
)

func newTestStore(t *testing.T) *panelstore.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return panelstore.New(db)
}

func TestStore_Create(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Panel{
		Name:        "  Beta Testers ",
		Description: "Early access cohort",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.Name != "Beta Testers" {
		t.Errorf("Name: got %q, want %q", created.Name, "Beta Testers")
	}
	if created.NameCI != "beta testers" {
		t.Errorf("NameCI: got %q, want %q", created.NameCI, "beta testers")
	}
	if created.ID.IsZero() {
		t.Error("expected Create to assign an id")
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Panel{Name: "Beta Testers"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := store.Create(ctx, models.Panel{Name: "BETA TESTERS"})
	if !errors.Is(err, panelstore.ErrDuplicatePanel) {
		t.Errorf("expected ErrDuplicatePanel, got: %v", err)
	}
}

func TestStore_Get(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Panel{Name: "Beta Testers"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Beta Testers" {
		t.Errorf("Name: got %q, want %q", got.Name, "Beta Testers")
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Get(ctx, primitive.NewObjectID())
	if !errors.Is(err, panelstore.ErrPanelNotFound) {
		t.Errorf("expected ErrPanelNotFound, got: %v", err)
	}
}

func TestStore_List(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, name := range []string{"Research Panel", "Beta Testers"} {
		if _, err := store.Create(ctx, models.Panel{Name: name}); err != nil {
			t.Fatalf("Create %q failed: %v", name, err)
		}
	}

	panels, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(panels) != 2 {
		t.Fatalf("panels: got %d, want 2", len(panels))
	}
	if panels[0].Name != "Beta Testers" {
		t.Errorf("panels[0]: got %q, want %q", panels[0].Name, "Beta Testers")
	}
}
