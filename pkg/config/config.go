package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Pricing       PricingConfig
	Cart          CartConfig
	Stripe        StripeConfig
	CORS          CORSConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TIFFIN_APP_ENV" required:"true"`
	Port         string `envconfig:"TIFFIN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TIFFIN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TIFFIN_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"TIFFIN_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN    string `envconfig:"TIFFIN_DB_DSN"`
	Driver string `envconfig:"TIFFIN_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"TIFFIN_DB_HOST"`
	Port     int    `envconfig:"TIFFIN_DB_PORT" default:"5432"`
	User     string `envconfig:"TIFFIN_DB_USER"`
	Password string `envconfig:"TIFFIN_DB_PASSWORD"`
	Name     string `envconfig:"TIFFIN_DB_NAME"`
	SSLMode  string `envconfig:"TIFFIN_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"TIFFIN_SQLITE_PATH" default:"tiffin.db"`

	MaxOpenConns    int           `envconfig:"TIFFIN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TIFFIN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TIFFIN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TIFFIN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TIFFIN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TIFFIN_REDIS_ADDR"`
	Password     string        `envconfig:"TIFFIN_REDIS_PASSWORD"`
	DB           int           `envconfig:"TIFFIN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TIFFIN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TIFFIN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TIFFIN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TIFFIN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TIFFIN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"TIFFIN_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"TIFFIN_JWT_ISSUER" default:"tiffin-backend"`
	ExpirationMinutes      int    `envconfig:"TIFFIN_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"TIFFIN_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TIFFIN_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TIFFIN_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TIFFIN_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TIFFIN_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TIFFIN_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"TIFFIN_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"TIFFIN_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"TIFFIN_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"TIFFIN_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"TIFFIN_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"TIFFIN_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TIFFIN_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TIFFIN_AUTO_MIGRATE" default:"false"`
	SeedDemo    bool `envconfig:"TIFFIN_SEED_DEMO" default:"false"`
}

// PricingConfig holds the checkout surcharges and the plan GST rate. Checkout
// tax and plan GST are independent rates.
type PricingConfig struct {
	Currency        string          `envconfig:"TIFFIN_CURRENCY" default:"inr"`
	DeliveryFee     decimal.Decimal `envconfig:"TIFFIN_DELIVERY_FEE" default:"249"`
	CheckoutTaxRate decimal.Decimal `envconfig:"TIFFIN_CHECKOUT_TAX_RATE" default:"0.18"`
	PlanGSTRate     decimal.Decimal `envconfig:"TIFFIN_PLAN_GST_RATE" default:"0.05"`
}

func (p PricingConfig) validate() error {
	if p.DeliveryFee.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvDeliveryFee)
	}
	if p.CheckoutTaxRate.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvCheckoutTaxRate)
	}
	if p.PlanGSTRate.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvPlanGSTRate)
	}
	return nil
}

type CartConfig struct {
	SessionHeader string        `envconfig:"TIFFIN_CART_SESSION_HEADER" default:"X-Cart-Session"`
	Namespace     string        `envconfig:"TIFFIN_CART_NAMESPACE" default:"cart-storage"`
	// LockTTL bounds how long one replica may hold a cart while mutating it.
	LockTTL       time.Duration `envconfig:"TIFFIN_CART_LOCK_TTL" default:"5s"`
	LockWait      time.Duration `envconfig:"TIFFIN_CART_LOCK_WAIT" default:"2s"`
}

type StripeConfig struct {
	APIKey string `envconfig:"TIFFIN_STRIPE_API_KEY"`
	Secret string `envconfig:"TIFFIN_STRIPE_WEBHOOK_SECRET"`
	Env    string `envconfig:"TIFFIN_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// Enabled reports whether a Stripe key was supplied.
func (s StripeConfig) Enabled() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"TIFFIN_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

// CronConfig drives the scheduled worker. Card payments still pending after
// PaymentTTL are marked failed.
type CronConfig struct {
	Interval   time.Duration `envconfig:"TIFFIN_CRON_INTERVAL" default:"15m"`
	LockTTL    time.Duration `envconfig:"TIFFIN_CRON_LOCK_TTL" default:"10m"`
	PaymentTTL time.Duration `envconfig:"TIFFIN_CRON_PAYMENT_TTL" default:"24h"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite || db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
