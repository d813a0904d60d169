package portfoliorepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/yanqian/projectshelf/internal/domain/portfolio"
)

// CollectionName is where portfolio documents live.
const CollectionName = "portfolios"

type themeDocument struct {
	PrimaryColor string `bson:"primaryColor,omitempty"`
	FontFamily   string `bson:"fontFamily,omitempty"`
	Layout       string `bson:"layout,omitempty"`
}

type caseStudyDocument struct {
	ID          string   `bson:"id"`
	Title       string   `bson:"title"`
	Subtitle    string   `bson:"subtitle,omitempty"`
	Description string   `bson:"description,omitempty"`
	Category    string   `bson:"category,omitempty"`
	Challenge   string   `bson:"challenge,omitempty"`
	Solution    string   `bson:"solution,omitempty"`
	Outcome     string   `bson:"outcome,omitempty"`
	Image       string   `bson:"image,omitempty"`
	Images      []string `bson:"images,omitempty"`
	Tools       []string `bson:"tools,omitempty"`
	Timeline    []string `bson:"timeline,omitempty"`
	VideoLinks  []string `bson:"videoLinks,omitempty"`
}

type portfolioDocument struct {
	ID            bson.ObjectID       `bson:"_id,omitempty"`
	UserID        string              `bson:"userId"`
	Name          string              `bson:"name"`
	Title         string              `bson:"title"`
	Bio           string              `bson:"bio,omitempty"`
	ProfileImage  string              `bson:"profileImage,omitempty"`
	Email         string              `bson:"email,omitempty"`
	LinkedIn      string              `bson:"linkedin,omitempty"`
	GitHub        string              `bson:"github,omitempty"`
	Website       string              `bson:"website,omitempty"`
	Twitter       string              `bson:"twitter,omitempty"`
	ThemeSettings themeDocument       `bson:"themeSettings"`
	CaseStudies   []caseStudyDocument `bson:"caseStudies"`
	CreatedAt     time.Time           `bson:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt"`
}

// MongoRepository stores each portfolio as one document with embedded case studies.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository wraps the portfolios collection of db.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes indexes the owner field used by every query.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetName("user_id"),
	})
	if err != nil {
		return fmt.Errorf("create portfolios owner index: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, p portfolio.Portfolio) (portfolio.Portfolio, error) {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	doc := toDocument(p)
	doc.ID = bson.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("insert portfolio: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoRepository) ListByOwner(ctx context.Context, ownerID string) ([]portfolio.Portfolio, error) {
	cursor, err := r.coll.Find(ctx, bson.D{{Key: "userId", Value: ownerID}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}
	var docs []portfolioDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode portfolios: %w", err)
	}
	out := make([]portfolio.Portfolio, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toDomain())
	}
	return out, nil
}

func (r *MongoRepository) GetForOwner(ctx context.Context, id, ownerID string) (portfolio.Portfolio, bool, error) {
	filter, ok := ownedFilter(id, ownerID)
	if !ok {
		return portfolio.Portfolio{}, false, nil
	}
	var doc portfolioDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return portfolio.Portfolio{}, false, nil
	}
	if err != nil {
		return portfolio.Portfolio{}, false, fmt.Errorf("find portfolio: %w", err)
	}
	return doc.toDomain(), true, nil
}

// Update replaces every mutable field of the owned document.
func (r *MongoRepository) Update(ctx context.Context, p portfolio.Portfolio) (portfolio.Portfolio, bool, error) {
	filter, ok := ownedFilter(p.ID, p.UserID)
	if !ok {
		return portfolio.Portfolio{}, false, nil
	}
	p.UpdatedAt = time.Now().UTC()
	doc := toDocument(p)
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: doc.Name},
		{Key: "title", Value: doc.Title},
		{Key: "bio", Value: doc.Bio},
		{Key: "profileImage", Value: doc.ProfileImage},
		{Key: "email", Value: doc.Email},
		{Key: "linkedin", Value: doc.LinkedIn},
		{Key: "github", Value: doc.GitHub},
		{Key: "website", Value: doc.Website},
		{Key: "twitter", Value: doc.Twitter},
		{Key: "themeSettings", Value: doc.ThemeSettings},
		{Key: "caseStudies", Value: doc.CaseStudies},
		{Key: "updatedAt", Value: doc.UpdatedAt},
	}}}
	var stored portfolioDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return portfolio.Portfolio{}, false, nil
	}
	if err != nil {
		return portfolio.Portfolio{}, false, fmt.Errorf("update portfolio: %w", err)
	}
	return stored.toDomain(), true, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	filter, ok := ownedFilter(id, ownerID)
	if !ok {
		return false, nil
	}
	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("delete portfolio: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{{Key: "userId", Value: ownerID}})
	if err != nil {
		return 0, fmt.Errorf("delete owner portfolios: %w", err)
	}
	return res.DeletedCount, nil
}

func ownedFilter(id, ownerID string) (bson.D, bool) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.D{{Key: "_id", Value: oid}, {Key: "userId", Value: ownerID}}, true
}

func toDocument(p portfolio.Portfolio) portfolioDocument {
	studies := make([]caseStudyDocument, 0, len(p.CaseStudies))
	for _, cs := range p.CaseStudies {
		studies = append(studies, caseStudyDocument(cs))
	}
	return portfolioDocument{
		UserID:        p.UserID,
		Name:          p.Name,
		Title:         p.Title,
		Bio:           p.Bio,
		ProfileImage:  p.ProfileImage,
		Email:         p.Email,
		LinkedIn:      p.LinkedIn,
		GitHub:        p.GitHub,
		Website:       p.Website,
		Twitter:       p.Twitter,
		ThemeSettings: themeDocument(p.ThemeSettings),
		CaseStudies:   studies,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (d portfolioDocument) toDomain() portfolio.Portfolio {
	studies := make([]portfolio.CaseStudy, 0, len(d.CaseStudies))
	for _, cs := range d.CaseStudies {
		studies = append(studies, portfolio.CaseStudy(cs))
	}
	return portfolio.Portfolio{
		ID:            d.ID.Hex(),
		UserID:        d.UserID,
		Name:          d.Name,
		Title:         d.Title,
		Bio:           d.Bio,
		ProfileImage:  d.ProfileImage,
		Email:         d.Email,
		LinkedIn:      d.LinkedIn,
		GitHub:        d.GitHub,
		Website:       d.Website,
		Twitter:       d.Twitter,
		ThemeSettings: portfolio.ThemeSettings(d.ThemeSettings),
		CaseStudies:   studies,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

var _ portfolio.Repository = (*MongoRepository)(nil)
