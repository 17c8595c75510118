package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
env:
  env: test
  serviceName: storebot
telegram:
  token: "123:abc"
  pollTimeout: 60
store:
  name: Shifo
  capitalRegion: ""
admin:
  ids: [7, 8]
  orderChannel: "@orders"
orders:
  notifyTimeout: 3s
session:
  ttl: 30m
storage:
  driver: postgres
  postgres:
    dsn: "postgres://localhost/storebot"
    connMaxLifetime: 1h
`

func writeConfig(t *testing.T, content string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	t.Chdir(dir)
}

func TestNew_LoadsYAMLAndDefaults(t *testing.T) {
	writeConfig(t, testYAML)

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, []int64{7, 8}, cfg.Admin.IDs)
	assert.Equal(t, int64(7), cfg.Admin.PrimaryAdmin())
	assert.Equal(t, "@orders", cfg.Admin.OrderChannel)
	assert.Equal(t, 3*time.Second, cfg.Orders.NotifyTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, time.Hour, cfg.Storage.Postgres.ConnMaxLifetime)

	assert.Equal(t, defaultCapitalRegion, cfg.Store.CapitalRegion)
	assert.Equal(t, []int{1, 2, 3}, cfg.Checkout.PresetMonths)
	assert.Equal(t, defaultPageSize, cfg.Orders.PageSize)
	assert.Equal(t, DriverMemory, cfg.Session.Driver)
}

func TestNew_EnvOverridesYAML(t *testing.T) {
	writeConfig(t, testYAML)
	t.Setenv("TELEGRAM_POLLTIMEOUT", "25")
	t.Setenv("TELEGRAM_TOKEN", "999:zzz")
	t.Setenv("ORDERS_STRICTTRANSITIONS", "true")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Telegram.PollTimeout)
	assert.Equal(t, "999:zzz", cfg.Telegram.Token)
	assert.True(t, cfg.Orders.StrictTransitions)
}

func TestNew_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := New()
	assert.ErrorContains(t, err, "config.yaml not found")
}

func TestNew_EnvAliasesAndSplitWords(t *testing.T) {
	writeConfig(t, testYAML)
	t.Setenv("BOT_TOKEN", "555:legacy")
	t.Setenv("ADMIN_IDS", "11,12")
	t.Setenv("ORDER_CHANNEL", "@zakazlar")
	t.Setenv("STORE_PAYMENT_CARD", "8600 0000 0000 0001")
	t.Setenv("STORAGE_DYNAMODB_PRODUCTS_TABLE", "catalog")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "555:legacy", cfg.Telegram.Token)
	assert.Equal(t, []int64{11, 12}, cfg.Admin.IDs)
	assert.Equal(t, "@zakazlar", cfg.Admin.OrderChannel)
	assert.Equal(t, "8600 0000 0000 0001", cfg.Store.PaymentCard)
	assert.Equal(t, "catalog", cfg.Storage.DynamoDB.ProductsTable)
}

func TestEnvKey(t *testing.T) {
	cases := map[string]string{
		"TELEGRAM_POLLTIMEOUT":     "telegram.pollTimeout",
		"TELEGRAM_POLL_TIMEOUT":    "telegram.pollTimeout",
		"ADMIN_ORDERCHATID":        "admin.orderChatId",
		"ADMIN_IDS":                "admin.ids",
		"ENV_LOG_LEVEL":            "env.log.level",
		"STORE_CAPITAL_REGION":     "store.capitalRegion",
		"BOT_TOKEN":                "telegram.token",
		"DATABASE_URL":             "storage.postgres.dsn",
		"PATH":                     "",
		"HOME":                     "",
		"STORE":                    "",
		"TELEGRAM_TOKEN_EXTRA":     "",
		"STORAGE_POSTGRES_UNKNOWN": "",
	}

	for name, want := range cases {
		assert.Equal(t, want, envKey(name), name)
	}
}

func TestPrimaryAdminEmpty(t *testing.T) {
	assert.Zero(t, AdminConfig{}.PrimaryAdmin())
}
