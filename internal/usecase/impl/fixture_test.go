package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"storebot/config"
	"storebot/internal/domain/entity"
	"storebot/internal/domain/repository"
	"storebot/internal/infra/persistence/memory"
	mockservice "storebot/internal/mocks/service"
	"storebot/internal/render"
	"storebot/internal/usecase"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	adminID    int64 = 9
	customerID int64 = 1
)

var customer = usecase.UserInfo{UserID: customerID, ChatID: customerID, Username: "aziz", FullName: "Aziz Karimov"}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Store.Name = "Test Store"
	cfg.Store.CapitalRegion = "capital"
	cfg.Store.PaymentCard = "8600 0000 0000 0000"
	cfg.Admin.IDs = []int64{adminID, 10}
	cfg.Admin.OrderChannel = "@orders"
	cfg.Checkout.PresetMonths = []int{1, 2, 3}
	cfg.Orders.PageSize = 10
	cfg.Orders.NotifyTimeout = time.Second

	return cfg
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture wires every service over the in-memory stores.
type fixture struct {
	cfg       *config.Config
	store     *memory.Store
	sessions  *memory.SessionStore
	messenger *mockservice.MockMessenger

	catalog  usecase.CatalogUsecase
	baskets  usecase.BasketUsecase
	orders   usecase.OrderUsecase
	checkout usecase.CheckoutUsecase
	admin    usecase.AdminUsecase
}

type fixtureOptions struct {
	configure func(cfg *config.Config)
	// expect registers specific messenger expectations ahead of the
	// catch-all ones.
	expect func(m *mockservice.MockMessenger)
	// orders replaces the order store, to inject failures.
	orders func(store *memory.Store) repository.OrderRepository
}

func newFixture(t *testing.T, opts fixtureOptions) *fixture {
	t.Helper()

	cfg := newTestConfig()
	if opts.configure != nil {
		opts.configure(cfg)
	}

	logger := newTestLogger()
	store := memory.NewStore()
	sessions := memory.NewSessionStore()

	messenger := mockservice.NewMockMessenger(t)
	if opts.expect != nil {
		opts.expect(messenger)
	}
	messenger.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(1, nil).Maybe()
	messenger.On("SendLocation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	var orders repository.OrderRepository = store
	if opts.orders != nil {
		orders = opts.orders(store)
	}

	ctx := context.Background()
	for _, p := range []*entity.Product{
		{ID: "bio_tribesteron", Name: "Bio Tribesteron", Price: "150,000 UZS"},
		{ID: "siber_oil", Name: "Siber Oil", Price: "120,000 UZS"},
	} {
		require.NoError(t, store.PutProduct(ctx, p))
	}

	catalog := NewCatalogService(store, logger)
	baskets := NewBasketService(sessions, catalog, logger)
	lifecycle := NewOrderService(orders, messenger, render.New(cfg), cfg, logger)

	f := &fixture{
		cfg:       cfg,
		store:     store,
		sessions:  sessions,
		messenger: messenger,
		catalog:   catalog,
		baskets:   baskets,
		orders:    lifecycle,
		checkout:  NewCheckoutService(sessions, orders, catalog, baskets, lifecycle, cfg, logger),
		admin:     NewAdminService(sessions, orders, catalog, lifecycle, cfg, logger),
	}
	t.Cleanup(lifecycle.Wait)

	return f
}

// placeOrder stores an order directly, bypassing checkout.
func (f *fixture) placeOrder(t *testing.T, id string) *entity.Order {
	t.Helper()

	order := &entity.Order{
		ID:        id,
		UserID:    customerID,
		ChatID:    customerID,
		FullName:  customer.FullName,
		ProductID: "bio_tribesteron",
		Medicine:  "Bio Tribesteron",
		Months:    1,
		Price:     "150000 UZS",
		Delivery:  entity.DeliveryInfo{Region: "Samarqand", District: "Urgut", Address: "Samarqand, Urgut", Phone: "+998901234567"},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	order.ApplyStatus(entity.OrderStatusNew, customer.Actor(), order.CreatedAt)
	require.NoError(t, f.store.CreateOrder(context.Background(), order))

	return order
}
