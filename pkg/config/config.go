package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	HTTP         HTTPConfig
	DB           DBConfig
	Redis        RedisConfig
	Shopify      ShopifyConfig
	Admin        AdminConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyLegacyFallbacks()
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyLegacyFallbacks honours the unprefixed variable names used by earlier deployments.
func (c *Config) applyLegacyFallbacks() {
	if c.Shopify.WebhookSecret == "" {
		c.Shopify.WebhookSecret = os.Getenv(EnvLegacyShopifyWebhookSecret)
	}
	if os.Getenv(EnvFrontendURL) == "" {
		if legacy := strings.TrimSpace(os.Getenv(EnvLegacyFrontendURL)); legacy != "" {
			c.HTTP.FrontendURL = legacy
		}
	}
}

// StartupWarnings lists settings the service can run without but should
// not. Admin auth is only required in production.
func (c *Config) StartupWarnings() []string {
	var out []string
	if c.Shopify.WebhookSecret == "" {
		out = append(out, "shopify webhook secret is not configured; webhook requests will fail")
	}
	if c.App.IsProd() && !c.Admin.Enabled() {
		out = append(out, "admin jwt secret is not configured; waitlist admin routes are unauthenticated")
	}
	return out
}

// Redacted returns the non-secret settings suitable for a startup log line.
func (c *Config) Redacted() map[string]any {
	return map[string]any{
		"env":                    c.App.Env,
		"port":                   c.App.Port,
		"db_driver":              c.DB.Driver,
		"use_sqlite":             c.FeatureFlags.UseSQLite,
		"redis_enabled":          c.Redis.Enabled(),
		"webhook_secret_set":     c.Shopify.WebhookSecret != "",
		"auto_approve_on_order":  c.Shopify.AutoApproveOnOrder,
		"admin_auth_enabled":     c.Admin.Enabled(),
		"frontend_url":           c.HTTP.FrontendURL,
		"webhook_max_body_bytes": c.Shopify.MaxBodyBytes,
	}
}

type AppConfig struct {
	Env          string `envconfig:"WAITLIST_APP_ENV" default:"dev"`
	Port         string `envconfig:"WAITLIST_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"WAITLIST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WAITLIST_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"WAITLIST_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type HTTPConfig struct {
	FrontendURL       string        `envconfig:"WAITLIST_FRONTEND_URL" default:"http://localhost:3000"`
	ReadTimeout       time.Duration `envconfig:"WAITLIST_HTTP_READ_TIMEOUT" default:"15s"`
	ReadHeaderTimeout time.Duration `envconfig:"WAITLIST_HTTP_READ_HEADER_TIMEOUT" default:"5s"`
	WriteTimeout      time.Duration `envconfig:"WAITLIST_HTTP_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout       time.Duration `envconfig:"WAITLIST_HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout   time.Duration `envconfig:"WAITLIST_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

type DBConfig struct {
	DSN    string `envconfig:"WAITLIST_DB_DSN"`
	Driver string `envconfig:"WAITLIST_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WAITLIST_DB_HOST"`
	LegacyPort     int    `envconfig:"WAITLIST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WAITLIST_DB_USER"`
	LegacyPassword string `envconfig:"WAITLIST_DB_PASSWORD"`
	LegacyName     string `envconfig:"WAITLIST_DB_NAME"`
	LegacySSLMode  string `envconfig:"WAITLIST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WAITLIST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WAITLIST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WAITLIST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WAITLIST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	MonitorInterval time.Duration `envconfig:"WAITLIST_DB_MONITOR_INTERVAL" default:"30s"`
}

// IsSQLite reports whether the configured driver targets SQLite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"WAITLIST_REDIS_URL"`
	Address      string        `envconfig:"WAITLIST_REDIS_ADDR"`
	Password     string        `envconfig:"WAITLIST_REDIS_PASSWORD"`
	DB           int           `envconfig:"WAITLIST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WAITLIST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WAITLIST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WAITLIST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WAITLIST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WAITLIST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured. Redis is optional.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type ShopifyConfig struct {
	WebhookSecret      string        `envconfig:"WAITLIST_SHOPIFY_WEBHOOK_SECRET"`
	AutoApproveOnOrder bool          `envconfig:"WAITLIST_SHOPIFY_AUTO_APPROVE_ON_ORDER" default:"false"`
	MaxBodyBytes       int64         `envconfig:"WAITLIST_WEBHOOK_MAX_BODY_BYTES" default:"1048576"`
	DedupeTTL          time.Duration `envconfig:"WAITLIST_WEBHOOK_DEDUPE_TTL" default:"48h"`
}

type AdminConfig struct {
	JWTSecret       string        `envconfig:"WAITLIST_ADMIN_JWT_SECRET"`
	JWTIssuer       string        `envconfig:"WAITLIST_ADMIN_JWT_ISSUER" default:"limited-access"`
	TokenTTL        time.Duration `envconfig:"WAITLIST_ADMIN_TOKEN_TTL" default:"12h"`
	RateLimitWindow time.Duration `envconfig:"WAITLIST_ADMIN_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitPerIP  int           `envconfig:"WAITLIST_ADMIN_RATE_LIMIT_PER_IP" default:"120"`
}

// Enabled reports whether admin routes require a bearer token.
func (a AdminConfig) Enabled() bool {
	return strings.TrimSpace(a.JWTSecret) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WAITLIST_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WAITLIST_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = "sqlite"
	}
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
