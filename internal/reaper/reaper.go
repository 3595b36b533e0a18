// Package reaper retries image host deletes that failed while products were
// being removed. It consumes images.orphaned events.
package reaper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kaifgrit/Rifakat/internal/event"
	"github.com/kaifgrit/Rifakat/internal/imagehost"
	pkgkafka "github.com/kaifgrit/Rifakat/pkg/kafka"
)

// ImageDeleter removes hosted images by public id.
type ImageDeleter interface {
	Delete(ctx context.Context, publicIDs []string) (*imagehost.DeleteResult, error)
}

// Reaper handles orphaned image events.
type Reaper struct {
	images ImageDeleter
	logger *slog.Logger
}

// New creates a reaper that deletes through images.
func New(images ImageDeleter, logger *slog.Logger) *Reaper {
	return &Reaper{images: images, logger: logger}
}

// Handle processes one event. Returning an error makes the consumer retry
// and, once retries run out, dead-letter the message.
func (r *Reaper) Handle(ctx context.Context, evt *pkgkafka.Event) error {
	if evt.EventType != event.TypeImagesOrphaned {
		r.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", evt.EventType),
			slog.String("event_id", evt.EventID),
		)
		return nil
	}

	var data event.ImagesOrphanedData
	if err := json.Unmarshal(evt.Data, &data); err != nil {
		return fmt.Errorf("unmarshal images.orphaned data: %w", err)
	}
	if len(data.PublicIDs) == 0 {
		return nil
	}

	res, err := r.images.Delete(ctx, data.PublicIDs)
	if err != nil {
		reapedTotal.WithLabelValues("failed").Add(float64(len(data.PublicIDs)))
		return fmt.Errorf("reap %d orphaned images: %w", len(data.PublicIDs), err)
	}

	reapedTotal.WithLabelValues("deleted").Add(float64(len(res.Deleted)))
	reapedTotal.WithLabelValues("not_found").Add(float64(len(res.NotFound)))
	r.logger.InfoContext(ctx, "orphaned images reaped",
		slog.String("event_id", evt.EventID),
		slog.Any("product_ids", data.ProductIDs),
		slog.Int("deleted", len(res.Deleted)),
		slog.Int("not_found", len(res.NotFound)),
	)
	return nil
}
