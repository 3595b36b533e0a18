// Package memory is an in-process image host used for local development and
// tests. It tracks public ids only, no image bytes.
package memory

import (
	"context"
	"sync"

	"github.com/kaifgrit/Rifakat/internal/imagehost"
)

// Provider implements imagehost.Provider over a set of known public ids.
type Provider struct {
	mu      sync.Mutex
	assets  map[string]struct{}
	calls   [][]string
	failErr error
	reject  map[string]string
}

// New returns a provider that already hosts the given ids.
func New(publicIDs ...string) *Provider {
	p := &Provider{
		assets: make(map[string]struct{}),
		reject: make(map[string]string),
	}
	p.Seed(publicIDs...)
	return p
}

// Seed adds hosted ids.
func (p *Provider) Seed(publicIDs ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range publicIDs {
		p.assets[id] = struct{}{}
	}
}

// FailWith makes every following Delete return err. nil restores normal behavior.
func (p *Provider) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failErr = err
}

// Reject makes Delete report status for id instead of deleting it.
func (p *Provider) Reject(id, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reject[id] = status
}

// Delete removes ids that are hosted and reports the rest as not found.
func (p *Provider) Delete(ctx context.Context, publicIDs []string) (*imagehost.DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, append([]string(nil), publicIDs...))
	if p.failErr != nil {
		return nil, p.failErr
	}

	res := &imagehost.DeleteResult{}
	for _, id := range publicIDs {
		if status, ok := p.reject[id]; ok {
			if res.Failed == nil {
				res.Failed = make(map[string]string)
			}
			res.Failed[id] = status
			continue
		}
		if _, ok := p.assets[id]; !ok {
			res.NotFound = append(res.NotFound, id)
			continue
		}
		delete(p.assets, id)
		res.Deleted = append(res.Deleted, id)
	}
	return res, res.Err()
}

// Has reports whether id is still hosted.
func (p *Provider) Has(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.assets[id]
	return ok
}

// Calls returns the id lists passed to Delete, in call order.
func (p *Provider) Calls() [][]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]string, len(p.calls))
	copy(out, p.calls)
	return out
}
