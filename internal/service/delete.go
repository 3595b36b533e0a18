package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kaifgrit/Rifakat/internal/domain"
	"github.com/kaifgrit/Rifakat/internal/event"
	"github.com/kaifgrit/Rifakat/internal/imagehost"
	"github.com/kaifgrit/Rifakat/internal/imageref"
	apperrors "github.com/kaifgrit/Rifakat/pkg/errors"
)

// CleanupOutcome describes what happened to a product's hosted images.
type CleanupOutcome string

const (
	// CleanupApplied means the image host accepted the delete request.
	CleanupApplied CleanupOutcome = "applied"
	// CleanupFailedIgnored means the delete failed and the records were
	// removed anyway.
	CleanupFailedIgnored CleanupOutcome = "failed_ignored"
	// CleanupSkipped means there was nothing to delete at the host.
	CleanupSkipped CleanupOutcome = "skipped"
)

// CleanupResult is the best-effort image cleanup part of a delete.
type CleanupResult struct {
	Outcome CleanupOutcome
	// Requested holds the de-duplicated public ids sent to the host.
	Requested []string
	// Deleted counts the ids the host reported as deleted.
	Deleted int
	// Unresolved holds image URLs no public id could be derived from.
	Unresolved []string
	// Orphaned holds requested ids that may still be hosted.
	Orphaned []string
	// Err is the suppressed host error for CleanupFailedIgnored.
	Err error
}

// DeleteResult reports a single product delete.
type DeleteResult struct {
	ProductID string
	Cleanup   CleanupResult
}

// BatchDeleteResult reports a batch delete.
type BatchDeleteResult struct {
	DeletedCount int64
	ProductIDs   []string
	Cleanup      CleanupResult
}

// Batch delete errors, worded for the admin dashboard.
var (
	ErrEmptyBatch = apperrors.InvalidInput("Invalid input: 'ids' must be a non-empty array.")
	ErrNoneFound  = &apperrors.AppError{
		Code:    "NOT_FOUND",
		Message: "No products found matching the provided IDs.",
		Status:  http.StatusNotFound,
		Err:     apperrors.ErrNotFound,
	}
)

// DeleteProduct removes a product and, best effort, its hosted images. The
// image host is called first because the ids come from the record. Host
// failures are logged and reported in the result, never returned.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*DeleteResult, error) {
	product, err := s.loadForWrite(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for delete: %w", err)
	}

	cleanup := s.cleanupImages(ctx, []domain.Product{*product})

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete product: %w", err)
	}

	if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}
	s.reportOrphans(ctx, cleanup, []string{id})

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
		slog.String("image_cleanup", string(cleanup.Outcome)),
	)
	return &DeleteResult{ProductID: id, Cleanup: cleanup}, nil
}

// BatchDeleteProducts removes every existing product in ids. Unknown ids
// are ignored. All image ids are sent to the host in one request.
func (s *ProductService) BatchDeleteProducts(ctx context.Context, ids []string) (*BatchDeleteResult, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyBatch
	}

	products, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products for batch delete: %w", err)
	}
	if len(products) == 0 {
		return nil, ErrNoneFound
	}

	matched := make([]string, len(products))
	for i, p := range products {
		matched[i] = p.ID
	}

	cleanup := s.cleanupImages(ctx, products)

	n, err := s.repo.DeleteMany(ctx, matched)
	if err != nil {
		return nil, fmt.Errorf("batch delete products: %w", err)
	}

	for _, id := range matched {
		if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
				slog.String("product_id", id),
				slog.String("error", err.Error()),
			)
		}
	}
	s.reportOrphans(ctx, cleanup, matched)

	s.logger.InfoContext(ctx, "products batch deleted",
		slog.Int("requested", len(ids)),
		slog.Int64("deleted", n),
		slog.String("image_cleanup", string(cleanup.Outcome)),
	)
	return &BatchDeleteResult{DeletedCount: n, ProductIDs: matched, Cleanup: cleanup}, nil
}

// cleanupImages resolves every image of products and asks the host to
// delete them. It never fails.
func (s *ProductService) cleanupImages(ctx context.Context, products []domain.Product) CleanupResult {
	var urls []string
	for i := range products {
		urls = append(urls, products[i].ImageURLs()...)
	}
	resolved := imageref.Resolve(urls)

	for _, u := range resolved.Unresolved {
		s.logger.WarnContext(ctx, "could not derive public id from image url, skipping",
			slog.String("url", u),
		)
	}

	result := CleanupResult{
		Requested:  resolved.PublicIDs,
		Unresolved: resolved.Unresolved,
	}
	if len(resolved.PublicIDs) == 0 {
		result.Outcome = CleanupSkipped
		cleanupTotal.WithLabelValues(string(result.Outcome)).Inc()
		return result
	}

	res, err := s.images.Delete(ctx, resolved.PublicIDs)
	if res != nil {
		result.Deleted = len(res.Deleted)
	}
	switch {
	case err == nil:
		result.Outcome = CleanupApplied
		s.logger.InfoContext(ctx, "hosted images deleted",
			slog.Int("requested", len(resolved.PublicIDs)),
			slog.Int("deleted", result.Deleted),
		)
	default:
		result.Outcome = CleanupFailedIgnored
		result.Err = err
		result.Orphaned = orphaned(resolved.PublicIDs, res)
		s.logger.ErrorContext(ctx, "hosted image delete failed (non-fatal)",
			slog.Int("requested", len(resolved.PublicIDs)),
			slog.Int("orphaned", len(result.Orphaned)),
			slog.Bool("partial", errors.Is(err, imagehost.ErrPartialDelete)),
			slog.String("error", err.Error()),
		)
	}
	cleanupTotal.WithLabelValues(string(result.Outcome)).Inc()
	return result
}

// orphaned returns the requested ids the host did not account for as
// deleted or missing.
func orphaned(requested []string, res *imagehost.DeleteResult) []string {
	if res == nil {
		return append([]string(nil), requested...)
	}
	done := make(map[string]struct{}, len(res.Deleted)+len(res.NotFound))
	for _, id := range res.Deleted {
		done[id] = struct{}{}
	}
	for _, id := range res.NotFound {
		done[id] = struct{}{}
	}
	var out []string
	for _, id := range requested {
		if _, ok := done[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// reportOrphans hands ids left at the host to the reaper.
func (s *ProductService) reportOrphans(ctx context.Context, cleanup CleanupResult, productIDs []string) {
	if cleanup.Outcome != CleanupFailedIgnored || len(cleanup.Orphaned) == 0 {
		return
	}
	err := s.producer.PublishImagesOrphaned(ctx, event.ImagesOrphanedData{
		PublicIDs:  cleanup.Orphaned,
		ProductIDs: productIDs,
		Reason:     cleanup.Err.Error(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to publish images.orphaned event",
			slog.Int("orphaned", len(cleanup.Orphaned)),
			slog.String("error", err.Error()),
		)
	}
}
