// Package repotest holds behaviour checks shared by the repository
// implementations.
package repotest

import (
	"context"
	"testing"
	"time"

	"storebot/internal/domain/entity"
	"storebot/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Order builds an order created at the given offset from a fixed base time.
func Order(id string, userID int64, status entity.OrderStatus, offset time.Duration) *entity.Order {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(offset)
	o := &entity.Order{
		ID:        id,
		UserID:    userID,
		ChatID:    userID,
		Medicine:  "Bio Tribesteron",
		Months:    1,
		Price:     "150000 UZS",
		Delivery:  entity.DeliveryInfo{Region: "Toshkent", Address: "Toshkent", Phone: "+998901234567"},
		CreatedAt: created,
	}
	o.ApplyStatus(entity.OrderStatusNew, "user:1", created)
	if status != entity.OrderStatusNew {
		o.ApplyStatus(status, "admin:9", created.Add(time.Minute))
	}

	return o
}

// CatalogContract exercises a CatalogRepository starting from an empty store.
func CatalogContract(t *testing.T, repo repository.CatalogRepository) {
	t.Helper()
	ctx := context.Background()

	products, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	_, err = repo.FindProduct(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	require.NoError(t, repo.PutProduct(ctx, &entity.Product{ID: "tarpeda", Name: "Tarpeda", Price: "90,000 UZS"}))
	require.NoError(t, repo.PutProduct(ctx, &entity.Product{ID: "siber_oil", Name: "Siber Oil", Price: "120,000 UZS"}))

	found, err := repo.FindProduct(ctx, "tarpeda")
	require.NoError(t, err)
	assert.Equal(t, "Tarpeda", found.Name)
	assert.False(t, found.CreatedAt.IsZero())
	created := found.CreatedAt

	require.NoError(t, repo.PutProduct(ctx, &entity.Product{ID: "tarpeda", Name: "Tarpeda Max", Price: "95,000 UZS"}))
	found, err = repo.FindProduct(ctx, "tarpeda")
	require.NoError(t, err)
	assert.Equal(t, "Tarpeda Max", found.Name)
	assert.True(t, created.Equal(found.CreatedAt), "created_at must survive updates")

	products, err = repo.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "siber_oil", products[0].ID)
	assert.Equal(t, "tarpeda", products[1].ID)

	require.NoError(t, repo.DeleteProduct(ctx, "tarpeda"))
	assert.ErrorIs(t, repo.DeleteProduct(ctx, "tarpeda"), repository.ErrProductNotFound)

	_, err = repo.FindProduct(ctx, "tarpeda")
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

// OrderContract exercises an OrderRepository starting from an empty store.
func OrderContract(t *testing.T, repo repository.OrderRepository) {
	t.Helper()
	ctx := context.Background()

	first := Order("aaaa0001", 1, entity.OrderStatusNew, 0)
	second := Order("aaaa0002", 2, entity.OrderStatusProcessing, time.Hour)
	third := Order("aaaa0003", 1, entity.OrderStatusNew, 2*time.Hour)

	for _, o := range []*entity.Order{first, second, third} {
		require.NoError(t, repo.CreateOrder(ctx, o))
	}
	assert.ErrorIs(t, repo.CreateOrder(ctx, Order("aaaa0001", 3, entity.OrderStatusNew, 0)), repository.ErrDuplicateOrder)

	found, err := repo.FindOrder(ctx, "aaaa0001")
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.UserID)
	require.Len(t, found.StatusHistory, 1)
	assert.Equal(t, entity.OrderStatusNew, found.StatusHistory[0].Status)

	_, err = repo.FindOrder(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)

	all, err := repo.ListOrders(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa0003", "aaaa0002", "aaaa0001"}, ids(all))

	status := entity.OrderStatusNew
	fresh, err := repo.ListOrders(ctx, repository.OrderFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa0003", "aaaa0001"}, ids(fresh))

	userID := int64(1)
	latest, err := repo.ListOrders(ctx, repository.OrderFilter{UserID: &userID, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa0003"}, ids(latest))

	found.ApplyStatus(entity.OrderStatusCompleted, "admin:9", found.CreatedAt.Add(3*time.Hour))
	found.Notes = append(found.Notes, entity.OrderNote{
		Text:      "Yetkazildi",
		Actor:     "admin:9",
		Timestamp: found.CreatedAt.Add(3 * time.Hour),
	})
	require.NoError(t, repo.UpdateOrder(ctx, found))

	updated, err := repo.FindOrder(ctx, "aaaa0001")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, updated.Status)
	require.Len(t, updated.StatusHistory, 2)
	assert.Equal(t, entity.OrderStatusCompleted, updated.StatusHistory[1].Status)
	require.Len(t, updated.Notes, 1)
	assert.Equal(t, "Yetkazildi", updated.Notes[0].Text)
	require.NotNil(t, updated.CompletedAt)

	assert.ErrorIs(t, repo.UpdateOrder(ctx, Order("missing1", 1, entity.OrderStatusNew, 0)), repository.ErrOrderNotFound)
}

func ids(orders []*entity.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}

	return out
}
