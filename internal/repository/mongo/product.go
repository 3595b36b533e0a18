package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kaifgrit/Rifakat/internal/domain"
	"github.com/kaifgrit/Rifakat/internal/repository"
	"github.com/kaifgrit/Rifakat/pkg/database"
	apperrors "github.com/kaifgrit/Rifakat/pkg/errors"
)

// CollectionName is the collection products are stored in.
const CollectionName = "products"

// documentValidationFailure is the server code for a write rejected by the
// collection's validator.
const documentValidationFailure = 121

type colorDocument struct {
	ColorName    string   `bson:"colorName,omitempty"`
	ColorHexCode string   `bson:"colorHexCode,omitempty"`
	ImageURLs    []string `bson:"imageUrls"`
	// ImageURL is only read, from records written before imageUrls existed.
	ImageURL string   `bson:"imageUrl,omitempty"`
	Sizes    []string `bson:"sizes,omitempty"`
}

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	ProductName string             `bson:"productName"`
	Brand       string             `bson:"brand,omitempty"`
	Price       float64            `bson:"price"`
	Category    string             `bson:"category"`
	Colors      []colorDocument    `bson:"colors"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func toDocument(p *domain.Product, id primitive.ObjectID) productDocument {
	colors := make([]colorDocument, len(p.Colors))
	for i, c := range p.Colors {
		colors[i] = colorDocument{
			ColorName:    c.ColorName,
			ColorHexCode: c.ColorHexCode,
			ImageURLs:    c.ImageURLs,
			Sizes:        c.Sizes,
		}
	}
	return productDocument{
		ID:          id,
		ProductName: p.ProductName,
		Brand:       p.Brand,
		Price:       p.Price,
		Category:    p.Category,
		Colors:      colors,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d productDocument) toDomain() domain.Product {
	colors := make([]domain.ColorVariant, len(d.Colors))
	for i, c := range d.Colors {
		images := c.ImageURLs
		if len(images) == 0 && c.ImageURL != "" {
			images = []string{c.ImageURL}
		}
		colors[i] = domain.ColorVariant{
			ColorName:    c.ColorName,
			ColorHexCode: c.ColorHexCode,
			ImageURLs:    images,
			Sizes:        c.Sizes,
		}
	}
	return domain.Product{
		ID:          d.ID.Hex(),
		ProductName: d.ProductName,
		Brand:       d.Brand,
		Price:       d.Price,
		Category:    d.Category,
		Colors:      colors,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// ProductRepository implements repository.ProductRepository on a MongoDB
// collection. Ids are ObjectID hex strings.
type ProductRepository struct {
	coll *mongo.Collection
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository creates a repository over coll.
func NewProductRepository(coll *mongo.Collection) *ProductRepository {
	return &ProductRepository{coll: coll}
}

// EnsureIndexes creates the category index used by List.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "category", Value: 1}},
		Options: options.Index().SetName("idx_products_category"),
	})
	if err != nil {
		return fmt.Errorf("create products category index: %w", err)
	}
	return nil
}

// List returns products in natural order, optionally filtered by category.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) (_ []domain.Product, err error) {
	query := bson.D{}
	if filter.Category != "" {
		query = bson.D{{Key: "category", Value: filter.Category}}
	}

	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "find", CollectionName)
	defer func() { end(err) }()

	return r.find(ctx, query)
}

// GetByID retrieves a product by its ObjectID hex.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	oid, parseErr := primitive.ObjectIDFromHex(id)
	if parseErr != nil {
		return nil, apperrors.NotFound("Product")
	}

	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "findOne", CollectionName)
	defer func() { end(err) }()

	var doc productDocument
	if err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Product")
		}
		return nil, fmt.Errorf("find product %s: %w", id, err)
	}
	p := doc.toDomain()
	return &p, nil
}

// GetByIDs returns the products whose ids are in ids.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) (_ []domain.Product, err error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []domain.Product{}, nil
	}

	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "find", CollectionName)
	defer func() { end(err) }()

	return r.find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
}

// Create inserts p, assigning a new ObjectID when p.ID is empty.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	oid := primitive.NewObjectID()
	if p.ID != "" {
		if oid, err = primitive.ObjectIDFromHex(p.ID); err != nil {
			return apperrors.InvalidInput("id must be a 24 character hex string")
		}
	}

	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "insert", CollectionName)
	defer func() { end(err) }()

	if _, err = r.coll.InsertOne(ctx, toDocument(p, oid)); err != nil {
		return mapWriteError("insert product", err)
	}
	p.ID = oid.Hex()
	return nil
}

// Update replaces the stored document for p.ID.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	oid, parseErr := primitive.ObjectIDFromHex(p.ID)
	if parseErr != nil {
		return apperrors.NotFound("Product")
	}

	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "replaceOne", CollectionName)
	defer func() { end(err) }()

	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: oid}}, toDocument(p, oid))
	if err != nil {
		return mapWriteError("update product", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("Product")
	}
	return nil
}

// Delete removes the product with id.
func (r *ProductRepository) Delete(ctx context.Context, id string) (err error) {
	oid, parseErr := primitive.ObjectIDFromHex(id)
	if parseErr != nil {
		return apperrors.NotFound("Product")
	}

	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "deleteOne", CollectionName)
	defer func() { end(err) }()

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("Product")
	}
	return nil
}

// DeleteMany removes every product whose id is in ids.
func (r *ProductRepository) DeleteMany(ctx context.Context, ids []string) (_ int64, err error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}

	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "deleteMany", CollectionName)
	defer func() { end(err) }()

	res, err := r.coll.DeleteMany(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
	if err != nil {
		return 0, fmt.Errorf("delete products: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *ProductRepository) find(ctx context.Context, filter bson.D) ([]domain.Product, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cur.Close(ctx)

	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	products := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.toDomain())
	}
	return products, nil
}

func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

// mapWriteError turns collection validator rejections into validation errors.
func mapWriteError(op string, err error) error {
	var we mongo.WriteException
	if errors.As(err, &we) {
		var msgs []string
		for _, e := range we.WriteErrors {
			if e.Code == documentValidationFailure {
				msgs = append(msgs, e.Message)
			}
		}
		if len(msgs) > 0 {
			return apperrors.Validation(msgs...)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
