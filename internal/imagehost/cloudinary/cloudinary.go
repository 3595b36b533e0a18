// Package cloudinary deletes product images from Cloudinary through the
// Admin API.
package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"

	"github.com/kaifgrit/Rifakat/internal/imagehost"
)

// MaxIDsPerCall is the Admin API limit for one delete_resources request.
const MaxIDsPerCall = 100

// Status values Cloudinary reports per public id.
const (
	statusDeleted  = "deleted"
	statusNotFound = "not_found"
)

// Config holds Cloudinary credentials. URL takes precedence when set.
type Config struct {
	URL       string
	CloudName string
	APIKey    string
	APISecret string
}

// AssetDeleter is the part of the Admin API the provider needs.
type AssetDeleter interface {
	DeleteAssets(ctx context.Context, params admin.DeleteAssetsParams) (*admin.DeleteAssetsResult, error)
}

// Provider implements imagehost.Provider.
type Provider struct {
	admin  AssetDeleter
	logger *slog.Logger
}

// New creates a Provider from credentials.
func New(cfg Config, logger *slog.Logger) (*Provider, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if cfg.URL != "" {
		cld, err = cloudinary.NewFromURL(cfg.URL)
	} else {
		cld, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	}
	if err != nil {
		return nil, fmt.Errorf("create cloudinary client: %w", err)
	}
	return NewWithDeleter(&cld.Admin, logger), nil
}

// NewWithDeleter creates a Provider over an existing Admin API client.
func NewWithDeleter(d AssetDeleter, logger *slog.Logger) *Provider {
	return &Provider{admin: d, logger: logger}
}

// Delete removes publicIDs in chunks of MaxIDsPerCall. Chunks are sent in
// order; a failing chunk stops the loop and the result covers the chunks
// that completed.
func (p *Provider) Delete(ctx context.Context, publicIDs []string) (*imagehost.DeleteResult, error) {
	total := &imagehost.DeleteResult{}
	for start := 0; start < len(publicIDs); start += MaxIDsPerCall {
		end := min(start+MaxIDsPerCall, len(publicIDs))
		chunk := publicIDs[start:end]

		res, err := p.deleteChunk(ctx, chunk)
		if err != nil {
			return total, err
		}
		total.Merge(res)
	}
	return total, total.Err()
}

func (p *Provider) deleteChunk(ctx context.Context, chunk []string) (*imagehost.DeleteResult, error) {
	resp, err := p.admin.DeleteAssets(ctx, admin.DeleteAssetsParams{
		PublicIDs: api.CldAPIArray(chunk),
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary delete_resources: %w", err)
	}
	if resp == nil {
		return nil, errors.New("cloudinary delete_resources: empty response")
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary delete_resources: %s", resp.Error.Message)
	}

	res := &imagehost.DeleteResult{}
	for _, id := range chunk {
		status, ok := resp.Deleted[id]
		switch {
		case status == statusDeleted:
			res.Deleted = append(res.Deleted, id)
		case status == statusNotFound, !ok:
			res.NotFound = append(res.NotFound, id)
		default:
			if res.Failed == nil {
				res.Failed = make(map[string]string)
			}
			res.Failed[id] = status
		}
	}

	p.logger.InfoContext(ctx, "cloudinary delete_resources result",
		slog.Int("requested", len(chunk)),
		slog.Int("deleted", len(res.Deleted)),
		slog.Int("not_found", len(res.NotFound)),
		slog.Int("failed", len(res.Failed)),
		slog.Bool("partial", resp.Partial),
	)
	return res, nil
}
