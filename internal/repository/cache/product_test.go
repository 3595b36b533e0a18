package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kaifgrit/Rifakat/internal/domain"
	"github.com/kaifgrit/Rifakat/internal/repository"
	apperrors "github.com/kaifgrit/Rifakat/pkg/errors"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, f)
	products, _ := args.Get(0).([]domain.Product)
	return products, args.Error(1)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func (m *mockRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	products, _ := args.Get(0).([]domain.Product)
	return products, args.Error(1)
}

func (m *mockRepo) Create(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockRepo) Update(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func setup(t *testing.T) (*ProductRepository, *mockRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	next := new(mockRepo)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewProductRepository(next, client, time.Minute, logger), next, mr
}

func sample(id string) domain.Product {
	return domain.Product{
		ID:          id,
		ProductName: "Trail Boot",
		Price:       3999,
		Category:    "Boots",
		Colors:      []domain.ColorVariant{{ImageURLs: []string{"https://host/upload/v1/b.jpg"}}},
		CreatedAt:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestList_SecondCallServedFromCache(t *testing.T) {
	repo, next, mr := setup(t)
	ctx := context.Background()
	filter := repository.ProductFilter{Category: "Boots"}
	next.On("List", mock.Anything, filter).Return([]domain.Product{sample("p1")}, nil).Once()

	first, err := repo.List(ctx, filter)
	require.NoError(t, err)
	second, err := repo.List(ctx, filter)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	next.AssertNumberOfCalls(t, "List", 1)
	assert.True(t, mr.Exists(listKey(0, "Boots")))
	assert.Equal(t, time.Minute, mr.TTL(listKey(0, "Boots")))
}

func TestGetByID_CachesFoundProducts(t *testing.T) {
	repo, next, _ := setup(t)
	ctx := context.Background()
	p := sample("p1")
	next.On("GetByID", mock.Anything, "p1").Return(&p, nil).Once()

	_, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	got, err := repo.GetByID(ctx, "p1")

	require.NoError(t, err)
	assert.Equal(t, &p, got)
	next.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestGetByID_NotFoundIsNotCached(t *testing.T) {
	repo, next, _ := setup(t)
	ctx := context.Background()
	next.On("GetByID", mock.Anything, "gone").Return(nil, apperrors.NotFound("Product")).Twice()

	_, err := repo.GetByID(ctx, "gone")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = repo.GetByID(ctx, "gone")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	next.AssertNumberOfCalls(t, "GetByID", 2)
}

func TestWrites_InvalidateEverything(t *testing.T) {
	repo, next, mr := setup(t)
	ctx := context.Background()
	filter := repository.ProductFilter{}
	p := sample("p1")

	next.On("List", mock.Anything, filter).Return([]domain.Product{p}, nil).Twice()
	next.On("Update", mock.Anything, &p).Return(nil).Once()

	_, err := repo.List(ctx, filter)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, &p))
	_, err = repo.List(ctx, filter)
	require.NoError(t, err)

	next.AssertNumberOfCalls(t, "List", 2)
	gen, err := mr.Get(genKey())
	require.NoError(t, err)
	assert.Equal(t, "1", gen)
}

func TestFailedWriteDoesNotInvalidate(t *testing.T) {
	repo, next, mr := setup(t)
	next.On("Delete", mock.Anything, "p1").Return(apperrors.NotFound("Product"))

	err := repo.Delete(context.Background(), "p1")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.False(t, mr.Exists(genKey()))
}

func TestDeleteMany_InvalidatesOnlyWhenRemoved(t *testing.T) {
	repo, next, mr := setup(t)
	ctx := context.Background()
	next.On("DeleteMany", mock.Anything, []string{"x"}).Return(int64(0), nil).Once()
	next.On("DeleteMany", mock.Anything, []string{"p1"}).Return(int64(1), nil).Once()

	_, err := repo.DeleteMany(ctx, []string{"x"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(genKey()))

	_, err = repo.DeleteMany(ctx, []string{"p1"})
	require.NoError(t, err)
	assert.True(t, mr.Exists(genKey()))
}

func TestRedisDown_FallsThrough(t *testing.T) {
	repo, next, mr := setup(t)
	mr.Close()
	filter := repository.ProductFilter{Category: "Boots"}
	next.On("List", mock.Anything, filter).Return([]domain.Product{sample("p1")}, nil)

	products, err := repo.List(context.Background(), filter)

	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestCorruptEntryIsRefetched(t *testing.T) {
	repo, next, mr := setup(t)
	require.NoError(t, mr.Set(itemKey(0, "p1"), "{not json"))
	p := sample("p1")
	next.On("GetByID", mock.Anything, "p1").Return(&p, nil).Once()

	got, err := repo.GetByID(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
}

func TestGetByIDs_BypassesCache(t *testing.T) {
	repo, next, _ := setup(t)
	next.On("GetByIDs", mock.Anything, []string{"p1"}).Return([]domain.Product{sample("p1")}, nil).Twice()

	for i := 0; i < 2; i++ {
		_, err := repo.GetByIDs(context.Background(), []string{"p1"})
		require.NoError(t, err)
	}
	next.AssertNumberOfCalls(t, "GetByIDs", 2)
}
