package impl

import (
	"context"
	"testing"

	"storebot/internal/domain/entity"
	domainerrors "storebot/internal/domain/errors"
	"storebot/internal/errors"
	"storebot/internal/infra/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingCatalog counts ListProducts calls and can be made to fail.
type countingCatalog struct {
	*memory.Store
	lists int
	err   error
}

func (c *countingCatalog) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	c.lists++
	if c.err != nil {
		return nil, c.err
	}

	return c.Store.ListProducts(ctx)
}

func newCatalogFixture(t *testing.T) (*countingCatalog, *catalogService) {
	t.Helper()

	repo := &countingCatalog{Store: memory.NewStore()}
	require.NoError(t, repo.PutProduct(context.Background(), &entity.Product{ID: "siber_oil", Name: "Siber Oil", Price: "120,000 UZS"}))
	require.NoError(t, repo.PutProduct(context.Background(), &entity.Product{ID: "bio_tribesteron", Name: "Bio Tribesteron", Price: "150,000 UZS"}))

	return repo, NewCatalogService(repo, newTestLogger()).(*catalogService)
}

func TestCatalogService_ListIsCachedAndSorted(t *testing.T) {
	repo, srv := newCatalogFixture(t)
	ctx := context.Background()

	products, err := srv.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "bio_tribesteron", products[0].ID)
	assert.Equal(t, "siber_oil", products[1].ID)

	_, err = srv.Get(ctx, "siber_oil")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lists)

	srv.Invalidate()
	_, err = srv.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lists)
}

func TestCatalogService_ReturnsCopies(t *testing.T) {
	_, srv := newCatalogFixture(t)
	ctx := context.Background()

	p, err := srv.Get(ctx, "siber_oil")
	require.NoError(t, err)
	p.Name = "changed"

	again, err := srv.Get(ctx, "siber_oil")
	require.NoError(t, err)
	assert.Equal(t, "Siber Oil", again.Name)
}

func TestCatalogService_PutValidatesAndReloads(t *testing.T) {
	repo, srv := newCatalogFixture(t)
	ctx := context.Background()

	err := srv.Put(ctx, &entity.Product{ID: "nameless", Price: "1 UZS"})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidProduct))

	require.NoError(t, srv.Put(ctx, &entity.Product{ID: "neo_vit", Name: "Neo Vit", Price: "90,000 UZS"}))

	p, err := srv.Get(ctx, "neo_vit")
	require.NoError(t, err)
	assert.Equal(t, "Neo Vit", p.Name)

	stored, err := repo.FindProduct(ctx, "neo_vit")
	require.NoError(t, err)
	assert.Equal(t, "90,000 UZS", stored.Price)
}

func TestCatalogService_ReloadSkipsInvalidStoredProducts(t *testing.T) {
	repo, srv := newCatalogFixture(t)
	ctx := context.Background()
	require.NoError(t, repo.PutProduct(ctx, &entity.Product{ID: "Imported Item|2024", Name: "Imported", Price: "1 UZS"}))

	products, err := srv.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	_, err = srv.Get(ctx, "Imported Item|2024")
	assert.True(t, errors.Is(err, domainerrors.ErrProductNotFound))
}

func TestCatalogService_Delete(t *testing.T) {
	_, srv := newCatalogFixture(t)
	ctx := context.Background()

	require.NoError(t, srv.Delete(ctx, "siber_oil"))

	_, err := srv.Get(ctx, "siber_oil")
	assert.True(t, errors.Is(err, domainerrors.ErrProductNotFound))

	err = srv.Delete(ctx, "siber_oil")
	assert.True(t, errors.Is(err, domainerrors.ErrProductNotFound))
}

func TestCatalogService_ReloadFailureInvalidates(t *testing.T) {
	repo, srv := newCatalogFixture(t)
	ctx := context.Background()

	_, err := srv.List(ctx)
	require.NoError(t, err)

	repo.err = errors.New("connection refused")
	err = srv.Reload(ctx)
	assert.True(t, domainerrors.IsKind(err, domainerrors.KindUnavailable))

	_, err = srv.List(ctx)
	assert.Error(t, err)

	repo.err = nil
	products, err := srv.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}
