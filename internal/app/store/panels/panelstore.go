package panelstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/feedbackhub/internal/app/system/normalize"
	"github.com/dalemusser/feedbackhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("panels")}
}

var (
	// ErrPanelNotFound is returned when a lookup references a panel that
	// does not exist.
	ErrPanelNotFound = errors.New("panel not found")
	// ErrDuplicatePanel is returned when a panel with the same name already exists.
	ErrDuplicatePanel = errors.New("a panel with this name already exists")
)

// Get loads a panel by ObjectID. Returns ErrPanelNotFound if no panel
// has that id.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.Panel, error) {
	var p models.Panel
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPanelNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a new panel after normalizing fields.
func (s *Store) Create(ctx context.Context, p models.Panel) (models.Panel, error) {
	p.ID = primitive.NewObjectID()
	p.Name = normalize.Name(p.Name)
	p.NameCI = text.Fold(p.Name)

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Panel{}, ErrDuplicatePanel
		}
		return models.Panel{}, err
	}
	return p, nil
}

// List returns all panels sorted by folded name.
func (s *Store) List(ctx context.Context) ([]models.Panel, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var panels []models.Panel
	if err := cur.All(ctx, &panels); err != nil {
		return nil, err
	}
	return panels, nil
}
