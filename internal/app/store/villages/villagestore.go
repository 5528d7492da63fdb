package villagestore

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
	return &Store{c: db.Collection("villages")}
}

var (
	// ErrVillageNotFound is returned when a lookup references a village
	// that does not exist. Weight calculation treats a dangling village
	// reference as "no village" rather than failing the vote.
	ErrVillageNotFound = errors.New("village not found")
	// ErrDuplicateVillage is returned when a village with the same name already exists.
	ErrDuplicateVillage = errors.New("a village with this name already exists")
	errBadTier          = errors.New(`priority_tier must be "high"|"medium"|"low"`)
)

// Get loads a village by ObjectID. Returns ErrVillageNotFound if no
// village has that id.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.Village, error) {
	var v models.Village
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVillageNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Create inserts a new village after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, v models.Village) (models.Village, error) {
	v.ID = primitive.NewObjectID()
	v.Name = normalize.Name(v.Name)
	v.NameCI = text.Fold(v.Name)

	if !models.ValidTier(v.PriorityTier) {
		return models.Village{}, errBadTier
	}

	v.CreatedAt = time.Now()

	if _, err := s.c.InsertOne(ctx, v); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Village{}, ErrDuplicateVillage
		}
		return models.Village{}, err
	}
	return v, nil
}

// List returns all villages sorted by folded name.
func (s *Store) List(ctx context.Context) ([]models.Village, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var villages []models.Village
	if err := cur.All(ctx, &villages); err != nil {
		return nil, err
	}
	return villages, nil
}

// Count returns the total number of villages.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
