package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"storebot/config"
	"storebot/internal/domain/entity"
	"storebot/internal/errors"
	"storebot/internal/infra/persistence/memory"
	"storebot/internal/usecase/impl"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

type brokenCatalog struct {
	*memory.Store
	err error
}

func (b *brokenCatalog) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	if b.err != nil {
		return nil, b.err
	}

	return b.Store.ListProducts(ctx)
}

func newTestServer(t *testing.T, repo *brokenCatalog) *httpServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{}
	lc := fxtest.NewLifecycle(t)

	srv, err := NewServer(HTTPParams{
		Lifecycle: lc,
		Config:    cfg,
		Logger:    logger,
		Handler:   NewHealthHandler(impl.NewCatalogService(repo, logger), logger),
	})
	require.NoError(t, err)

	return srv.(*httpServer)
}

func get(t *testing.T, srv *httpServer, path string) (int, Response) {
	t.Helper()

	rec := httptest.NewRecorder()
	srv.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return rec.Code, body
}

func TestHealth_Live(t *testing.T) {
	srv := newTestServer(t, &brokenCatalog{Store: memory.NewStore(), err: errors.New("down")})

	code, body := get(t, srv, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, body.Success)
}

func TestHealth_Ready(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.PutProduct(context.Background(), &entity.Product{ID: "a", Name: "A", Price: "1 UZS"}))
	repo := &brokenCatalog{Store: store}
	srv := newTestServer(t, repo)

	code, body := get(t, srv, "/ready")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"products": float64(1)}, body.Data)

	repo.err = errors.New("connection refused")
	code, body = get(t, srv, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, body.Success)
}

func TestServe_Disabled(t *testing.T) {
	srv := newTestServer(t, &brokenCatalog{Store: memory.NewStore()})

	assert.NoError(t, srv.Serve(context.Background()))
}
