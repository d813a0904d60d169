package userrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/yanqian/projectshelf/internal/domain/user"
)

// CollectionName is where user documents live.
const CollectionName = "users"

type userDocument struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	FirstName    string        `bson:"firstName"`
	LastName     string        `bson:"lastName"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password"`
	Role         string        `bson:"role"`
	IsActive     bool          `bson:"isActive"`
	CreatedAt    time.Time     `bson:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt"`
}

// MongoRepository persists users in a MongoDB collection.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository wraps the users collection of db.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the unique email index. Safe to call on every start.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}
	return nil
}

// Create inserts a new user document.
func (r *MongoRepository) Create(ctx context.Context, u user.NewUser) (user.User, error) {
	now := time.Now().UTC()
	doc := userDocument{
		ID:           bson.NewObjectID(),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

// GetByEmail fetches a user by exact email.
func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (user.User, bool, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

// GetByID fetches by ObjectID hex. Malformed ids are simply not found.
func (r *MongoRepository) GetByID(ctx context.Context, id string) (user.User, bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return user.User{}, false, nil
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

// List returns every user, oldest first.
func (r *MongoRepository) List(ctx context.Context) ([]user.User, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	out := make([]user.User, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toDomain())
	}
	return out, nil
}

// Update writes the mutable profile fields and returns the stored document.
func (r *MongoRepository) Update(ctx context.Context, u user.User) (user.User, bool, error) {
	oid, err := bson.ObjectIDFromHex(u.ID)
	if err != nil {
		return user.User{}, false, nil
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "firstName", Value: u.FirstName},
		{Key: "lastName", Value: u.LastName},
		{Key: "password", Value: u.PasswordHash},
		{Key: "role", Value: string(u.Role)},
		{Key: "isActive", Value: u.IsActive},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	var doc userDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user.User{}, false, nil
	}
	if err != nil {
		return user.User{}, false, fmt.Errorf("update user: %w", err)
	}
	return doc.toDomain(), true, nil
}

// Delete removes the user document.
func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.D) (user.User, bool, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user.User{}, false, nil
	}
	if err != nil {
		return user.User{}, false, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), true, nil
}

func (d userDocument) toDomain() user.User {
	return user.User{
		ID:           d.ID.Hex(),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         user.Role(d.Role),
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

var _ user.Repository = (*MongoRepository)(nil)
