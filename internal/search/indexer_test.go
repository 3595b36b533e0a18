package search_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaifgrit/Rifakat/internal/event"
	"github.com/kaifgrit/Rifakat/internal/search"
	"github.com/kaifgrit/Rifakat/internal/search/memory"
	pkgkafka "github.com/kaifgrit/Rifakat/pkg/kafka"
)

func newEvent(t *testing.T, eventType, id string, data any) *pkgkafka.Event {
	t.Helper()
	evt, err := pkgkafka.NewEvent(eventType, id, event.AggregateTypeProduct, event.SourceCatalogAPI, data)
	require.NoError(t, err)
	return evt
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type failingEngine struct{ search.Engine }

func (failingEngine) Index(context.Context, *search.Document) error { return errors.New("cluster down") }

func TestIndexer_CreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	engine := memory.New()
	ix := search.NewIndexer(engine, discard())

	created := event.ProductData{
		ID: "p1", ProductName: "Air Runner", Brand: "Nike", Price: 2999, Category: "Sneakers",
		ColorNames: []string{"Black"}, ImageURL: "https://img/p1.jpg",
	}
	require.NoError(t, ix.Handle(ctx, newEvent(t, event.TypeProductCreated, "p1", created)))

	res, err := engine.Search(ctx, search.Query{Text: "runner"})
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, search.Document{
		ID: "p1", ProductName: "Air Runner", Brand: "Nike", Category: "Sneakers", Price: 2999,
		ColorNames: []string{"Black"}, ImageURL: "https://img/p1.jpg",
	}, res.Products[0])

	updated := created
	updated.ProductName = "Air Glide"
	require.NoError(t, ix.Handle(ctx, newEvent(t, event.TypeProductUpdated, "p1", updated)))
	res, err = engine.Search(ctx, search.Query{Text: "runner"})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Equal(t, 1, engine.Len())

	require.NoError(t, ix.Handle(ctx, newEvent(t, event.TypeProductDeleted, "p1", event.ProductDeletedData{ID: "p1"})))
	assert.Zero(t, engine.Len())
}

func TestIndexer_IgnoresOtherEvents(t *testing.T) {
	engine := memory.New()
	ix := search.NewIndexer(engine, discard())

	err := ix.Handle(context.Background(), newEvent(t, event.TypeImagesOrphaned, "x", event.ImagesOrphanedData{PublicIDs: []string{"a"}}))

	require.NoError(t, err)
	assert.Zero(t, engine.Len())
}

func TestIndexer_EngineErrorIsReturned(t *testing.T) {
	ix := search.NewIndexer(failingEngine{}, discard())

	err := ix.Handle(context.Background(), newEvent(t, event.TypeProductCreated, "p1", event.ProductData{ID: "p1"}))

	assert.ErrorContains(t, err, "cluster down")
}

func TestIndexer_BadPayload(t *testing.T) {
	ix := search.NewIndexer(memory.New(), discard())
	evt := newEvent(t, event.TypeProductDeleted, "p1", "not an object")

	assert.Error(t, ix.Handle(context.Background(), evt))
}
