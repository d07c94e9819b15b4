// AngelaMos | 2026
// mongo_repository.go

package claim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carterperez-dev/perkhub/internal/core"
)

const CollectionName = "claims"

type claimDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    primitive.ObjectID `bson:"userId"`
	DealID    primitive.ObjectID `bson:"dealId"`
	Status    Status             `bson:"status"`
	ClaimedAt time.Time          `bson:"claimedAt"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *claimDocument) toClaim() *Claim {
	return &Claim{
		ID:        d.ID.Hex(),
		UserID:    d.UserID.Hex(),
		DealID:    d.DealID.Hex(),
		Status:    d.Status,
		ClaimedAt: d.ClaimedAt,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureClaimIndexes creates the (userId, dealId) unique index that backs
// the one-claim-per-deal rule, plus the listing index.
func EnsureClaimIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "dealId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_deal_unique"),
		},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "claimedAt", Value: -1}}},
		{Keys: bson.D{{Key: "dealId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("ensure claim indexes: %w", err)
	}
	return nil
}

func (r *mongoRepository) NewID() string {
	return primitive.NewObjectID().Hex()
}

func (r *mongoRepository) Create(ctx context.Context, claim *Claim) error {
	id, err1 := primitive.ObjectIDFromHex(claim.ID)
	userID, err2 := primitive.ObjectIDFromHex(claim.UserID)
	dealID, err3 := primitive.ObjectIDFromHex(claim.DealID)
	if err := errors.Join(err1, err2, err3); err != nil {
		return fmt.Errorf("create claim: %w: %w", core.ErrInvalidInput, err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := claimDocument{
		ID:        id,
		UserID:    userID,
		DealID:    dealID,
		Status:    claim.Status,
		ClaimedAt: claim.ClaimedAt.UTC().Truncate(time.Millisecond),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if core.IsMongoDuplicateKey(err) {
			return fmt.Errorf("create claim: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create claim: %w", err)
	}

	claim.ClaimedAt = doc.ClaimedAt
	claim.CreatedAt = now
	claim.UpdatedAt = now
	return nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id string) (*Claim, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("get claim: %w", core.ErrNotFound)
	}

	return r.findOne(ctx, "get claim", bson.M{"_id": oid})
}

func (r *mongoRepository) FindByUserAndDeal(
	ctx context.Context,
	userID, dealID string,
) (*Claim, error) {
	uid, err1 := primitive.ObjectIDFromHex(userID)
	did, err2 := primitive.ObjectIDFromHex(dealID)
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("find claim: %w", core.ErrNotFound)
	}

	return r.findOne(ctx, "find claim", bson.M{"userId": uid, "dealId": did})
}

func (r *mongoRepository) ListByUser(ctx context.Context, userID string) ([]*Claim, error) {
	claims := []*Claim{}

	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return claims, nil
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "claimedAt", Value: -1},
		{Key: "_id", Value: 1},
	})

	cursor, err := r.coll.Find(ctx, bson.M{"userId": uid}, opts)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	var docs []claimDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	for i := range docs {
		claims = append(claims, docs[i].toClaim())
	}
	return claims, nil
}

func (r *mongoRepository) UpdateStatus(
	ctx context.Context,
	id string,
	from, to Status,
) (*Claim, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("update claim status: %w", core.ErrNotFound)
	}

	update := bson.M{"$set": bson.M{
		"status":    to,
		"updatedAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc claimDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid, "status": from}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update claim status: %w", core.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("update claim status: %w", err)
	}

	return doc.toClaim(), nil
}

func (r *mongoRepository) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count claims: %w", err)
	}

	var rows []struct {
		Status Status `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("count claims: %w", err)
	}

	out := make(map[Status]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *mongoRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("delete claims: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *mongoRepository) findOne(
	ctx context.Context,
	op string,
	filter bson.M,
) (*Claim, error) {
	var doc claimDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toClaim(), nil
}
