package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kaifgrit/Rifakat/internal/domain"
	pkgkafka "github.com/kaifgrit/Rifakat/pkg/kafka"
	"github.com/kaifgrit/Rifakat/pkg/logger"
)

// Kafka topics for catalog events.
var (
	TopicProductCreated = pkgkafka.Topic("product", "created")
	TopicProductUpdated = pkgkafka.Topic("product", "updated")
	TopicProductDeleted = pkgkafka.Topic("product", "deleted")
	TopicImagesOrphaned = pkgkafka.Topic("images", "orphaned")
)

// Event types carried in the envelope.
const (
	TypeProductCreated = "product.created"
	TypeProductUpdated = "product.updated"
	TypeProductDeleted = "product.deleted"
	TypeImagesOrphaned = "images.orphaned"
)

// Aggregate types.
const (
	AggregateTypeProduct = "product"
	AggregateTypeImages  = "images"
)

// SourceCatalogAPI identifies events originating from the catalog API.
const SourceCatalogAPI = "catalog-api"

// ProductData is the payload for product.created and product.updated.
type ProductData struct {
	ID          string   `json:"id"`
	ProductName string   `json:"productName"`
	Brand       string   `json:"brand,omitempty"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	ColorCount  int      `json:"colorCount"`
	ImageCount  int      `json:"imageCount"`
	ColorNames  []string `json:"colorNames,omitempty"`
	// ImageURL is the first image of the first color.
	ImageURL string `json:"imageUrl,omitempty"`
}

// ProductDeletedData is the payload for product.deleted.
type ProductDeletedData struct {
	ID string `json:"id"`
}

// ImagesOrphanedData lists hosted images that outlived their products
// because the delete at the image host failed.
type ImagesOrphanedData struct {
	PublicIDs  []string `json:"publicIds"`
	ProductIDs []string `json:"productIds"`
	Reason     string   `json:"reason"`
}

// Producer publishes catalog events. A nil *Producer discards every event,
// which is how the API runs without Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func productData(p *domain.Product) ProductData {
	data := ProductData{
		ID:          p.ID,
		ProductName: p.ProductName,
		Brand:       p.Brand,
		Price:       p.Price,
		Category:    p.Category,
		ColorCount:  len(p.Colors),
	}
	for _, c := range p.Colors {
		if c.ColorName != "" {
			data.ColorNames = append(data.ColorNames, c.ColorName)
		}
	}
	if images := p.ImageURLs(); len(images) > 0 {
		data.ImageCount = len(images)
		data.ImageURL = images[0]
	}
	return data
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, TypeProductCreated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, TypeProductUpdated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicProductDeleted, TypeProductDeleted, id, AggregateTypeProduct, ProductDeletedData{ID: id})
}

// PublishImagesOrphaned publishes an images.orphaned event for the reaper.
// The first product id keys the message.
func (p *Producer) PublishImagesOrphaned(ctx context.Context, data ImagesOrphanedData) error {
	key := ""
	if len(data.ProductIDs) > 0 {
		key = data.ProductIDs[0]
	}
	return p.publish(ctx, TopicImagesOrphaned, TypeImagesOrphaned, key, AggregateTypeImages, data)
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, data any) error {
	if p == nil {
		return nil
	}

	evt, err := pkgkafka.NewEvent(eventType, aggregateID, aggregateType, SourceCatalogAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}
	if subject := logger.SubjectFromContext(ctx); subject != "" {
		evt.WithMetadata("actor", subject)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// Close closes the underlying Kafka producer.
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.kafka.Close()
}
