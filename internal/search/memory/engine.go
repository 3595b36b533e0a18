// Package memory is an in-process search.Engine with substring matching.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/kaifgrit/Rifakat/internal/search"
)

// Engine keeps documents in a map. Every whitespace separated term of the
// query text must occur, ignoring case, in the name, brand, category or a
// color name. Name matches rank first.
type Engine struct {
	mu   sync.RWMutex
	docs map[string]search.Document
}

// New creates an empty engine.
func New() *Engine {
	return &Engine{docs: make(map[string]search.Document)}
}

func (e *Engine) Index(_ context.Context, doc *search.Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs[doc.ID] = *doc
	return nil
}

func (e *Engine) Delete(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.docs, id)
	return nil
}

// Len returns the number of indexed documents.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.docs)
}

type hit struct {
	doc   search.Document
	score int
}

func (e *Engine) Search(_ context.Context, q search.Query) (*search.Result, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}
	terms := strings.Fields(strings.ToLower(q.Text))

	e.mu.RLock()
	hits := make([]hit, 0, len(e.docs))
	for _, d := range e.docs {
		if q.Category != "" && d.Category != q.Category {
			continue
		}
		if len(q.Brands) > 0 && !slices.Contains(q.Brands, d.Brand) {
			continue
		}
		if score, ok := match(d, terms); ok {
			hits = append(hits, hit{doc: d, score: score})
		}
	}
	e.mu.RUnlock()

	slices.SortFunc(hits, func(a, b hit) int {
		var c int
		switch q.Sort {
		case search.SortPriceAsc:
			c = cmp.Compare(a.doc.Price, b.doc.Price)
		case search.SortPriceDesc:
			c = cmp.Compare(b.doc.Price, a.doc.Price)
		default:
			c = cmp.Compare(b.score, a.score)
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.doc.ID, b.doc.ID)
	})

	res := &search.Result{Products: make([]search.Document, 0, min(len(hits), q.Limit)), Total: len(hits)}
	for _, h := range hits[:min(len(hits), q.Limit)] {
		res.Products = append(res.Products, h.doc)
	}
	return res, nil
}

func match(d search.Document, terms []string) (int, bool) {
	name := strings.ToLower(d.ProductName)
	other := strings.ToLower(d.Brand + " " + d.Category + " " + strings.Join(d.ColorNames, " "))

	score := 0
	for _, t := range terms {
		switch {
		case strings.Contains(name, t):
			score += 2
		case strings.Contains(other, t):
			score++
		default:
			return 0, false
		}
	}
	return score, true
}
