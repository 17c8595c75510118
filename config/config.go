package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const (
	configName           = "config"
	defaultPollTimeout   = 60
	defaultPageSize      = 10
	defaultNotifyTimeout = 10 * time.Second
	defaultCapitalRegion = "Toshkent"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverDynamoDB = "dynamodb"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Enabled  bool `json:"enabled" yaml:"enabled"`
		Port     int  `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout  time.Duration `json:"readTimeout" yaml:"readTimeout"`
			WriteTimeout time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Telegram TelegramConfig `json:"telegram" yaml:"telegram"`

	Store StoreConfig `json:"store" yaml:"store"`

	Admin AdminConfig `json:"admin" yaml:"admin"`

	Checkout CheckoutConfig `json:"checkout" yaml:"checkout"`

	Orders OrdersConfig `json:"orders" yaml:"orders"`

	Session SessionConfig `json:"session" yaml:"session"`

	Storage StorageConfig `json:"storage" yaml:"storage"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// TelegramConfig configures the Bot API client.
type TelegramConfig struct {
	Token       string `json:"token" yaml:"token"`
	PollTimeout int    `json:"pollTimeout" yaml:"pollTimeout"`
	Debug       bool   `json:"debug" yaml:"debug"`
}

// StoreConfig holds the storefront details shown to users.
type StoreConfig struct {
	Name          string `json:"name" yaml:"name"`
	Phone         string `json:"phone" yaml:"phone"`
	Address       string `json:"address" yaml:"address"`
	PaymentCard   string `json:"paymentCard" yaml:"paymentCard"`
	CapitalRegion string `json:"capitalRegion" yaml:"capitalRegion"`
}

// AdminConfig lists operator identities and the order relay target.
type AdminConfig struct {
	IDs []int64 `json:"ids" yaml:"ids"`
	// OrderChannel is a channel username such as "@orders".
	OrderChannel string `json:"orderChannel" yaml:"orderChannel"`
	// OrderChatID takes precedence over OrderChannel when set.
	OrderChatID int64 `json:"orderChatId" yaml:"orderChatId"`
}

// PrimaryAdmin is the fallback recipient for failed relays.
func (a AdminConfig) PrimaryAdmin() int64 {
	if len(a.IDs) == 0 {
		return 0
	}

	return a.IDs[0]
}

// CheckoutConfig tunes the checkout flow.
type CheckoutConfig struct {
	PresetMonths []int `json:"presetMonths" yaml:"presetMonths"`
}

// OrdersConfig tunes order listing and lifecycle.
type OrdersConfig struct {
	PageSize          int           `json:"pageSize" yaml:"pageSize"`
	StrictTransitions bool          `json:"strictTransitions" yaml:"strictTransitions"`
	NotifyTimeout     time.Duration `json:"notifyTimeout" yaml:"notifyTimeout"`
}

// SessionConfig selects the session backing store.
type SessionConfig struct {
	Driver string `json:"driver" yaml:"driver"`
	// TTL expires idle sessions; zero keeps them until completion or cancel.
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// StorageConfig selects the catalog/order backing store.
type StorageConfig struct {
	Driver   string         `json:"driver" yaml:"driver"`
	File     FileConfig     `json:"file" yaml:"file"`
	Postgres PostgresConfig `json:"postgres" yaml:"postgres"`
	DynamoDB DynamoDBConfig `json:"dynamodb" yaml:"dynamodb"`
}

// FileConfig configures the JSON file store.
type FileConfig struct {
	Dir string `json:"dir" yaml:"dir"`
}

// PostgresConfig configures the GORM connection.
type PostgresConfig struct {
	DSN             string        `json:"dsn" yaml:"dsn"`
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"`
	AutoMigrate     bool          `json:"autoMigrate" yaml:"autoMigrate"`
}

// DynamoDBConfig configures the DynamoDB tables.
type DynamoDBConfig struct {
	Region        string `json:"region" yaml:"region"`
	Endpoint      string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID   string `json:"accessKeyId" yaml:"accessKeyId"`
	SecretKey     string `json:"secretKey" yaml:"secretKey"`
	ProductsTable string `json:"productsTable" yaml:"productsTable"`
	OrdersTable   string `json:"ordersTable" yaml:"ordersTable"`
}

// envAliases maps the variable names used by earlier deployments of the
// bot onto config keys.
var envAliases = map[string]string{
	"BOT_TOKEN":     "telegram.token",
	"ADMIN_ID":      "admin.ids",
	"ORDER_CHANNEL": "admin.orderChannel",
	"ORDER_CHAT_ID": "admin.orderChatId",
	"DATABASE_URL":  "storage.postgres.dsn",
}

// keyNode is one level of the yaml key tree of Config; leaves are nil.
type keyNode map[string]keyNode

var configKeys = keyTree(reflect.TypeFor[Config]())

// New reads config.yaml from the working directory or a nearby config
// directory, then overlays environment variables.
func New() (*Config, error) {
	path, err := findConfig(".", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	// BOT_TOKEN -> telegram.token, STORE_PAYMENT_CARD -> store.paymentCard.
	// Variables that do not name a config field are skipped.
	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			return envKey(key), value
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	cfg := new(Config)
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s", path)
	}

	cfg.applyDefaults()

	return cfg, nil
}

func findConfig(dirs ...string) (string, error) {
	pwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "os.Getwd")
	}

	for _, dir := range dirs {
		candidate := filepath.Join(pwd, dir, configName+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", errors.Errorf("%s.yaml not found in %v", configName, dirs)
}

func (cfg *Config) applyDefaults() {
	if cfg.Telegram.PollTimeout <= 0 {
		cfg.Telegram.PollTimeout = defaultPollTimeout
	}
	if strings.TrimSpace(cfg.Store.CapitalRegion) == "" {
		cfg.Store.CapitalRegion = defaultCapitalRegion
	}
	if len(cfg.Checkout.PresetMonths) == 0 {
		cfg.Checkout.PresetMonths = []int{1, 2, 3}
	}
	if cfg.Orders.PageSize <= 0 {
		cfg.Orders.PageSize = defaultPageSize
	}
	if cfg.Orders.NotifyTimeout <= 0 {
		cfg.Orders.NotifyTimeout = defaultNotifyTimeout
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverMemory
	}
	if cfg.Session.Driver == "" {
		cfg.Session.Driver = DriverMemory
	}
}

// envKey resolves an environment variable name to a config key, or ""
// when it names no config field. Underscore-separated words may spell one
// camelCase key, so STORE_PAYMENT_CARD and STORE_PAYMENTCARD both resolve
// to store.paymentCard.
func envKey(name string) string {
	if key, ok := envAliases[name]; ok {
		return key
	}

	words := lo.Compact(strings.Split(strings.ToLower(name), "_"))
	path := make([]string, 0, len(words))
	node := configKeys

	for i := 0; i < len(words); {
		if node == nil {
			return ""
		}

		key, next, width := matchKey(node, words[i:])
		if width == 0 {
			return ""
		}
		path = append(path, key)
		node = next
		i += width
	}

	if len(path) == 0 || node != nil {
		return ""
	}

	return strings.Join(path, ".")
}

// matchKey finds the key in node spelled by the shortest prefix of words
// and reports how many words it consumed.
func matchKey(node keyNode, words []string) (string, keyNode, int) {
	var joined strings.Builder
	for n, word := range words {
		joined.WriteString(word)
		for key, child := range node {
			if normalizeToken(key) == joined.String() {
				return key, child, n + 1
			}
		}
	}

	return "", nil, 0
}

func keyTree(t reflect.Type) keyNode {
	tree := make(keyNode, t.NumField())
	for i := range t.NumField() {
		field := t.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			continue
		}
		if field.Type.Kind() == reflect.Struct {
			tree[name] = keyTree(field.Type)
		} else {
			tree[name] = nil
		}
	}

	return tree
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
