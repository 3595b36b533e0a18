// Package imagehost removes hosted product images by public id.
package imagehost

import (
	"context"
	"errors"
	"fmt"
)

// ErrPartialDelete is returned alongside a DeleteResult when the host
// rejected some of the requested ids.
var ErrPartialDelete = errors.New("image host deleted only part of the request")

// Provider deletes assets from an image host.
type Provider interface {
	// Delete removes the given public ids. Ids the host does not know are
	// reported in NotFound and are not an error.
	Delete(ctx context.Context, publicIDs []string) (*DeleteResult, error)
}

// DeleteResult reports what the host did with each requested id.
type DeleteResult struct {
	Deleted  []string
	NotFound []string
	// Failed maps a public id to the status the host returned for it.
	Failed map[string]string
}

// Requested is the number of ids the result accounts for.
func (r *DeleteResult) Requested() int {
	if r == nil {
		return 0
	}
	return len(r.Deleted) + len(r.NotFound) + len(r.Failed)
}

// Merge appends other into r.
func (r *DeleteResult) Merge(other *DeleteResult) {
	if other == nil {
		return
	}
	r.Deleted = append(r.Deleted, other.Deleted...)
	r.NotFound = append(r.NotFound, other.NotFound...)
	for id, status := range other.Failed {
		if r.Failed == nil {
			r.Failed = make(map[string]string)
		}
		r.Failed[id] = status
	}
}

// Err returns ErrPartialDelete when any id failed.
func (r *DeleteResult) Err() error {
	if r == nil || len(r.Failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d ids failed", ErrPartialDelete, len(r.Failed), r.Requested())
}
