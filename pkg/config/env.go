package config

const EnvPrefix = "TIFFIN"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "TIFFIN_APP_ENV"
	EnvPort                   = "TIFFIN_APP_PORT"
	EnvLogLevel               = "TIFFIN_LOG_LEVEL"
	EnvDBDSN                  = "TIFFIN_DB_DSN"
	EnvDBHost                 = "TIFFIN_DB_HOST"
	EnvDBUser                 = "TIFFIN_DB_USER"
	EnvDBName                 = "TIFFIN_DB_NAME"
	EnvRedisURL               = "TIFFIN_REDIS_URL"
	EnvJWTSecret              = "TIFFIN_JWT_SECRET"
	EnvJWTIssuer              = "TIFFIN_JWT_ISSUER"
	EnvJWTExpMins             = "TIFFIN_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "TIFFIN_REFRESH_TOKEN_TTL_MINUTES"
	EnvUseSQLite              = "TIFFIN_USE_SQLITE"
	EnvDeliveryFee            = "TIFFIN_DELIVERY_FEE"
	EnvCheckoutTaxRate        = "TIFFIN_CHECKOUT_TAX_RATE"
	EnvPlanGSTRate            = "TIFFIN_PLAN_GST_RATE"
	EnvStripeAPIKey           = "TIFFIN_STRIPE_API_KEY"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
