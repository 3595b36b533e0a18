package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kaifgrit/Rifakat/internal/event"
	pkgkafka "github.com/kaifgrit/Rifakat/pkg/kafka"
)

// Indexer applies product events to an Engine.
type Indexer struct {
	engine Engine
	logger *slog.Logger
}

// NewIndexer creates an indexer writing to engine.
func NewIndexer(engine Engine, logger *slog.Logger) *Indexer {
	return &Indexer{engine: engine, logger: logger}
}

// Handle indexes product.created and product.updated and removes
// product.deleted. Other event types are ignored. Engine errors are
// returned so the event is retried.
func (i *Indexer) Handle(ctx context.Context, evt *pkgkafka.Event) error {
	switch evt.EventType {
	case event.TypeProductCreated, event.TypeProductUpdated:
		var data event.ProductData
		if err := evt.UnmarshalData(&data); err != nil {
			return fmt.Errorf("decode %s: %w", evt.EventType, err)
		}
		if err := i.engine.Index(ctx, documentFrom(data)); err != nil {
			indexerEventsTotal.WithLabelValues(evt.EventType, "error").Inc()
			return fmt.Errorf("index product %s: %w", data.ID, err)
		}
		i.logger.InfoContext(ctx, "product indexed",
			slog.String("product_id", data.ID),
			slog.String("event_type", evt.EventType),
		)

	case event.TypeProductDeleted:
		var data event.ProductDeletedData
		if err := evt.UnmarshalData(&data); err != nil {
			return fmt.Errorf("decode %s: %w", evt.EventType, err)
		}
		if err := i.engine.Delete(ctx, data.ID); err != nil {
			indexerEventsTotal.WithLabelValues(evt.EventType, "error").Inc()
			return fmt.Errorf("remove product %s: %w", data.ID, err)
		}
		i.logger.InfoContext(ctx, "product removed from index", slog.String("product_id", data.ID))

	default:
		i.logger.DebugContext(ctx, "ignoring event", slog.String("event_type", evt.EventType))
		return nil
	}

	indexerEventsTotal.WithLabelValues(evt.EventType, "ok").Inc()
	return nil
}

func documentFrom(d event.ProductData) *Document {
	return &Document{
		ID:          d.ID,
		ProductName: d.ProductName,
		Brand:       d.Brand,
		Category:    d.Category,
		Price:       d.Price,
		ColorNames:  d.ColorNames,
		ImageURL:    d.ImageURL,
	}
}
