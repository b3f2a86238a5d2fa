package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tryst-events/registration-service/internal/domain"
)

const usersCollection = "users"

type userDocument struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Name             string             `bson:"name"`
	EntryNo          string             `bson:"entryNo"`
	Password         string             `bson:"password"`
	RegisteredEvents []int64            `bson:"registeredEvents"`
	CreatedAt        time.Time          `bson:"createdAt"`
}

func (d *userDocument) toDomain() *domain.User {
	events := d.RegisteredEvents
	if events == nil {
		events = []int64{}
	}
	return &domain.User{
		ID:               d.ID.Hex(),
		Name:             d.Name,
		EntryNo:          d.EntryNo,
		PasswordHash:     d.Password,
		RegisteredEvents: events,
		CreatedAt:        d.CreatedAt,
	}
}

// MongoUserRepository stores users in a MongoDB collection.
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository returns a MongoDB-backed implementation.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{col: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique index on entryNo.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "entryNo", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo create index: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	doc := userDocument{
		Name:             user.Name,
		EntryNo:          user.EntryNo,
		Password:         user.PasswordHash,
		RegisteredEvents: []int64{},
		CreatedAt:        time.Now().UTC(),
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEntryNo
		}
		return fmt.Errorf("mongo insert: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("mongo insert: unexpected id type %T", res.InsertedID)
	}
	user.ID = oid.Hex()
	user.RegisteredEvents = doc.RegisteredEvents
	user.CreatedAt = doc.CreatedAt
	return nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) FindByEntryNo(ctx context.Context, entryNo string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"entryNo": entryNo})
}

// AddEvent uses $addToSet, which the server applies atomically per document.
func (r *MongoUserRepository) AddEvent(ctx context.Context, userID string, eventID int64) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.col.UpdateByID(ctx, oid, bson.M{
		"$addToSet": bson.M{"registeredEvents": eventID},
	})
	if err != nil {
		return fmt.Errorf("mongo update: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	return doc.toDomain(), nil
}
