package config

// EnvPrefix is passed to envconfig; every field also carries its full name.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "STOREFRONT_APP_ENV"
	EnvPort         = "STOREFRONT_APP_PORT"
	EnvFrontendURL  = "STOREFRONT_FRONTEND_URL"
	EnvDBDSN        = "STOREFRONT_DB_DSN"
	EnvDBHost       = "STOREFRONT_DB_HOST"
	EnvDBUser       = "STOREFRONT_DB_USER"
	EnvDBPassword   = "STOREFRONT_DB_PASSWORD"
	EnvDBName       = "STOREFRONT_DB_NAME"
	EnvUseSQLite    = "STOREFRONT_USE_SQLITE"
	EnvRedisURL     = "STOREFRONT_REDIS_URL"
	EnvJWTSecret    = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer    = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins   = "STOREFRONT_JWT_EXPIRATION_MINUTES"
	EnvAuthLimit    = "STOREFRONT_RATE_LIMIT_AUTH_LIMIT"
	EnvAdminEmail   = "STOREFRONT_ADMIN_EMAIL"
	EnvPubSubTopic  = "STOREFRONT_PUBSUB_NEWSLETTER_TOPIC"
	EnvGCPProjectID = "STOREFRONT_GCP_PROJECT_ID"

	EnvTrustedProxies = "STOREFRONT_TRUSTED_PROXIES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
