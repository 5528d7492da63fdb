package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/feedbackhub/internal/app/system/inputval"
	"github.com/dalemusser/feedbackhub/internal/app/system/normalize"
	"github.com/dalemusser/feedbackhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrUserNotFound is returned when a lookup references a user that
	// does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "user"|"moderator"|"admin"|"researcher"|"pm"|"po"`)
	errBadStatus      = errors.New(`status must be "active"|"disabled"`)
	errBadEmail       = errors.New("email address is not valid")
)

// Get loads a user by ObjectID. Returns ErrUserNotFound if no user has
// that id.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns
// ErrUserNotFound if no user has that email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	// Normalize core fields
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	u.Status = normalize.Status(u.Status)
	if u.Status == "" {
		u.Status = models.StatusActive
	}

	if !inputval.IsValidEmail(u.Email) {
		return models.User{}, errBadEmail
	}
	if !models.ValidRole(u.Role) {
		return models.User{}, errBadRole
	}
	if u.Status != models.StatusActive && u.Status != models.StatusDisabled {
		return models.User{}, errBadStatus
	}

	// Timestamps
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// SetCurrentVillage points a user's current_village_id at a village,
// or clears it when villageID is nil. Village existence is the
// caller's concern; weight calculation tolerates dangling references.
func (s *Store) SetCurrentVillage(ctx context.Context, userID primitive.ObjectID, villageID *primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{
			"current_village_id": villageID,
			"updated_at":         time.Now(),
		},
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetRole updates a user's role after validation.
func (s *Store) SetRole(ctx context.Context, userID primitive.ObjectID, role string) error {
	role = normalize.Role(role)
	if !models.ValidRole(role) {
		return errBadRole
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"role": role, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Count returns the total number of users.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
