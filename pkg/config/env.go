package config

const (
	EnvPrefix = "WAITLIST"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "WAITLIST_APP_ENV"
	EnvPort     = "WAITLIST_APP_PORT"
	EnvLogLevel = "WAITLIST_LOG_LEVEL"

	EnvFrontendURL       = "WAITLIST_FRONTEND_URL"
	EnvLegacyFrontendURL = "FRONTEND_URL"

	EnvDBDSN     = "WAITLIST_DB_DSN"
	EnvDBDriver  = "WAITLIST_DB_DRIVER"
	EnvDBHost    = "WAITLIST_DB_HOST"
	EnvDBUser    = "WAITLIST_DB_USER"
	EnvDBName    = "WAITLIST_DB_NAME"
	EnvUseSQLite = "WAITLIST_USE_SQLITE"

	EnvRedisURL = "WAITLIST_REDIS_URL"

	EnvShopifyWebhookSecret       = "WAITLIST_SHOPIFY_WEBHOOK_SECRET"
	EnvLegacyShopifyWebhookSecret = "SHOPIFY_WEBHOOK_SECRET"
	EnvShopifyAutoApprove         = "WAITLIST_SHOPIFY_AUTO_APPROVE_ON_ORDER"

	EnvAdminJWTSecret = "WAITLIST_ADMIN_JWT_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

const defaultSQLiteDSN = "file:waitlist.db?cache=shared&_foreign_keys=on"
