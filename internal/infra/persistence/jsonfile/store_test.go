package jsonfile

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"storebot/internal/domain/entity"
	"storebot/internal/domain/repository"
	"storebot/internal/infra/persistence/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, dir string) *Store {
	t.Helper()

	store, err := Open(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	return store
}

func TestStore_Catalog(t *testing.T) {
	repotest.CatalogContract(t, newTestStore(t, t.TempDir()))
}

func TestStore_Orders(t *testing.T) {
	repotest.OrderContract(t, newTestStore(t, t.TempDir()))
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")

	store := newTestStore(t, dir)
	require.NoError(t, store.PutProduct(ctx, &entity.Product{ID: "tarpeda", Name: "Tarpeda", Price: "90,000 UZS"}))
	order := repotest.Order("ab12cd34", 1, entity.OrderStatusNew, 0)
	require.NoError(t, store.CreateOrder(ctx, order))

	assert.FileExists(t, filepath.Join(dir, productsFile))
	assert.FileExists(t, filepath.Join(dir, ordersFile))

	reopened := newTestStore(t, dir)

	product, err := reopened.FindProduct(ctx, "tarpeda")
	require.NoError(t, err)
	assert.Equal(t, "Tarpeda", product.Name)

	found, err := reopened.FindOrder(ctx, "ab12cd34")
	require.NoError(t, err)
	assert.Equal(t, order.Price, found.Price)
	assert.True(t, order.CreatedAt.Equal(found.CreatedAt))
	require.Len(t, found.StatusHistory, 1)
	assert.Equal(t, "user:1", found.StatusHistory[0].Actor)
}

func TestOpen_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, productsFile), []byte("{not json"), 0o600))

	_, err := Open(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestOpen_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ordersFile), nil, 0o600))

	store := newTestStore(t, dir)
	orders, err := store.ListOrders(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}
