// AngelaMos | 2026
// mongo_repository.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carterperez-dev/perkhub/internal/core"
)

const CollectionName = "users"

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"passwordHash"`
	Name         string             `bson:"name"`
	IsVerified   bool               `bson:"isVerified"`
	Role         *string            `bson:"role,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d *userDocument) toUser() *User {
	return &User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Name:         d.Name,
		IsVerified:   d.IsVerified,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureUserIndexes creates the unique email index.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}
	return nil
}

func (r *mongoRepository) NewID() string {
	return primitive.NewObjectID().Hex()
}

func (r *mongoRepository) Create(ctx context.Context, user *User) error {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return fmt.Errorf("create user: invalid id: %w", core.ErrInvalidInput)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := userDocument{
		ID:           oid,
		Email:        strings.ToLower(user.Email),
		PasswordHash: user.PasswordHash,
		Name:         user.Name,
		IsVerified:   user.IsVerified,
		Role:         user.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if core.IsMongoDuplicateKey(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	user.Email = doc.Email
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}

	return r.findOne(ctx, "get user", bson.M{"_id": oid})
}

func (r *mongoRepository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	return r.findOne(ctx, "get user by email", bson.M{"email": strings.ToLower(email)})
}

func (r *mongoRepository) SetVerified(
	ctx context.Context,
	id string,
	verified bool,
) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("set verified: %w", core.ErrNotFound)
	}

	update := bson.M{"$set": bson.M{
		"isVerified": verified,
		"updatedAt":  time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("set verified: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("set verified: %w", err)
	}

	return doc.toUser(), nil
}

func (r *mongoRepository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"passwordHash": passwordHash,
		"updatedAt":    time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

func (r *mongoRepository) findOne(
	ctx context.Context,
	op string,
	filter bson.M,
) (*User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toUser(), nil
}
