package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// 環境変数のprefix。ネストは "__"（STOREFRONT_POSTGRES__HOST など）
const EnvPrefix = "STOREFRONT_"

// Configはアプリ全体の設定
type Config struct {
	App struct {
		Env      string `koanf:"env"`       // dev/prod
		Addr     string `koanf:"addr"`      // :8080
		LogLevel string `koanf:"log_level"` // debug/info/warn/error
		LogFile  string `koanf:"log_file"`  // 空ならstdoutのみ
	} `koanf:"app"`

	Postgres struct {
		URL             string        `koanf:"url"` // あれば最優先
		Host            string        `koanf:"host"`
		Port            int           `koanf:"port"`
		User            string        `koanf:"user"`
		Password        string        `koanf:"password"`
		DB              string        `koanf:"db"`
		SSLMode         string        `koanf:"sslmode"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"postgres"`

	Redis struct {
		Addr     string `koanf:"addr"` // 空ならメモリのカートを使う
		Password string `koanf:"password"`
		DB       int    `koanf:"db"`
	} `koanf:"redis"`

	Session struct {
		Secret     string        `koanf:"secret"`
		CookieName string        `koanf:"cookie_name"`
		TTL        time.Duration `koanf:"ttl"`
		Secure     bool          `koanf:"secure"`
	} `koanf:"session"`

	Shop struct {
		ShippingFee      int64  `koanf:"shipping_fee"`
		FreeShippingOver int64  `koanf:"free_shipping_over"` // 0なら無効
		AllowBackorder   bool   `koanf:"allow_backorder"`    // falseなら在庫不足で注文不可
		StaticDir        string `koanf:"static_dir"`
		MaxUploadBytes   int64  `koanf:"max_upload_bytes"`
	} `koanf:"shop"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.env":       "dev",
		"app.addr":      ":8080",
		"app.log_level": "info",
		"app.log_file":  "",

		"postgres.host":              "localhost",
		"postgres.port":              5432,
		"postgres.user":              "postgres",
		"postgres.password":          "postgres",
		"postgres.db":                "storefront",
		"postgres.sslmode":           "disable",
		"postgres.max_open_conns":    25,
		"postgres.max_idle_conns":    5,
		"postgres.conn_max_lifetime": "5m",

		"redis.addr": "",
		"redis.db":   0,

		"session.secret":      "dev_secret_change_me",
		"session.cookie_name": "storefront_session",
		"session.ttl":         "168h",
		"session.secure":      false,

		"shop.shipping_fee":       1000,
		"shop.free_shipping_over": 0,
		"shop.allow_backorder":    true,
		"shop.static_dir":         "static",
		"shop.max_upload_bytes":   5 << 20,
	}
}

// Loadは .env（あれば）→ デフォルト → 環境変数 の順に重ねる
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) > 0 {
		// .envが無いのはエラーにしない
		_ = godotenv.Load(envFiles...)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) IsProd() bool {
	return c.App.Env == "prod"
}

//必須チェック
func (c Config) Validate() error {
	if c.App.Addr == "" {
		return errors.New("app.addr is required")
	}
	switch c.App.Env {
	case "dev", "prod", "test":
	default:
		return fmt.Errorf("app.env must be dev, prod or test: %q", c.App.Env)
	}
	if c.Postgres.URL == "" {
		if c.Postgres.Host == "" {
			return errors.New("postgres.host is required")
		}
		if c.Postgres.Port <= 0 {
			return errors.New("postgres.port must be positive")
		}
	}
	if c.Session.Secret == "" {
		return errors.New("session.secret is required")
	}
	if c.IsProd() && c.Session.Secret == "dev_secret_change_me" {
		return errors.New("session.secret must be set in prod")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	if c.Shop.ShippingFee < 0 {
		return errors.New("shop.shipping_fee must be >= 0")
	}
	if c.Shop.FreeShippingOver < 0 {
		return errors.New("shop.free_shipping_over must be >= 0")
	}
	if c.Shop.StaticDir == "" {
		return errors.New("shop.static_dir is required")
	}
	if c.Shop.MaxUploadBytes <= 0 {
		return errors.New("shop.max_upload_bytes must be positive")
	}
	return nil
}

// gorm/pgx用のDSN
func (c Config) PostgresDSN() string {
	if c.Postgres.URL != "" {
		return c.Postgres.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Postgres.Host, c.Postgres.Port, c.Postgres.User, c.Postgres.Password, c.Postgres.DB, c.Postgres.SSLMode,
	)
}
