// AngelaMos | 2026
// mongo_repository.go

package deal

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carterperez-dev/perkhub/internal/core"
)

const CollectionName = "deals"

type dealDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Slug        string             `bson:"slug"`
	Description string             `bson:"description,omitempty"`
	PartnerName string             `bson:"partnerName,omitempty"`
	PartnerURL  string             `bson:"partnerUrl,omitempty"`
	Category    string             `bson:"category,omitempty"`
	AccessLevel AccessLevel        `bson:"accessLevel"`
	IsActive    bool               `bson:"isActive"`
	Eligibility string             `bson:"eligibility,omitempty"`
	CTAText     string             `bson:"ctaText,omitempty"`
	CTAURL      string             `bson:"ctaUrl,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *dealDocument) toDeal() *Deal {
	return &Deal{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Slug:        d.Slug,
		Description: d.Description,
		PartnerName: d.PartnerName,
		PartnerURL:  d.PartnerURL,
		Category:    d.Category,
		AccessLevel: d.AccessLevel,
		IsActive:    d.IsActive,
		Eligibility: d.Eligibility,
		CTAText:     d.CTAText,
		CTAURL:      d.CTAURL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureDealIndexes creates the unique slug index and the filter indexes.
// Search is a case-insensitive substring match and scans matching
// documents, like ILIKE on the relational side.
func EnsureDealIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("slug_unique"),
		},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "accessLevel", Value: 1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("ensure deal indexes: %w", err)
	}
	return nil
}

func (r *mongoRepository) NewID() string {
	return primitive.NewObjectID().Hex()
}

func (r *mongoRepository) ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

func (r *mongoRepository) GetActiveByID(ctx context.Context, id string) (*Deal, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("get deal: %w", core.ErrNotFound)
	}

	return r.findOne(ctx, "get deal", bson.M{"_id": oid, "isActive": true})
}

func (r *mongoRepository) GetActiveBySlug(ctx context.Context, slug string) (*Deal, error) {
	return r.findOne(ctx, "get deal by slug", bson.M{
		"slug":     strings.ToLower(slug),
		"isActive": true,
	})
}

func (r *mongoRepository) Find(
	ctx context.Context,
	filter Filter,
	limit, skip int,
) ([]*Deal, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, mongoFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}

	var docs []dealDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}

	deals := make([]*Deal, 0, len(docs))
	for i := range docs {
		deals = append(deals, docs[i].toDeal())
	}
	return deals, nil
}

func (r *mongoRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, mongoFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("count deals: %w", err)
	}
	return n, nil
}

func (r *mongoRepository) GetByIDs(
	ctx context.Context,
	ids []string,
) (map[string]*Deal, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}

	out := make(map[string]*Deal, len(oids))
	if len(oids) == 0 {
		return out, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("get deals: %w", err)
	}

	var docs []dealDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("get deals: %w", err)
	}

	for i := range docs {
		d := docs[i].toDeal()
		out[d.ID] = d
	}
	return out, nil
}

func (r *mongoRepository) Upsert(ctx context.Context, deal *Deal) error {
	oid, err := primitive.ObjectIDFromHex(deal.ID)
	if err != nil {
		oid = primitive.NewObjectID()
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	slug := strings.ToLower(strings.TrimSpace(deal.Slug))

	update := bson.M{
		"$set": bson.M{
			"title":       deal.Title,
			"description": deal.Description,
			"partnerName": deal.PartnerName,
			"partnerUrl":  deal.PartnerURL,
			"category":    deal.Category,
			"accessLevel": deal.AccessLevel,
			"isActive":    deal.IsActive,
			"eligibility": deal.Eligibility,
			"ctaText":     deal.CTAText,
			"ctaUrl":      deal.CTAURL,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{
			"_id":       oid,
			"slug":      slug,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc dealDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"slug": slug}, update, opts).Decode(&doc)
	if err != nil {
		if core.IsMongoDuplicateKey(err) {
			return fmt.Errorf("upsert deal: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("upsert deal: %w", err)
	}

	*deal = *doc.toDeal()
	return nil
}

func (r *mongoRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("delete deals: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *mongoRepository) findOne(
	ctx context.Context,
	op string,
	filter bson.M,
) (*Deal, error) {
	var doc dealDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toDeal(), nil
}

func mongoFilter(filter Filter) bson.M {
	q := bson.M{"isActive": true}

	if filter.Category != "" {
		q["category"] = filter.Category
	}
	if filter.AccessLevel != "" {
		q["accessLevel"] = filter.AccessLevel
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"partnerName": pattern},
		}
	}

	return q
}
