package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	AuthRateLimit AuthRateLimitConfig
	Password      PasswordConfig
	FeatureFlags  FeatureFlagsConfig
	Razorpay      RazorpayConfig
	Checkout      CheckoutConfig
	GuestCart     GuestCartConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARTLOOM_APP_ENV" required:"true"`
	Port         string `envconfig:"CARTLOOM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CARTLOOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARTLOOM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CARTLOOM_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CARTLOOM_DB_DSN"`
	Driver string `envconfig:"CARTLOOM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CARTLOOM_DB_HOST"`
	LegacyPort     int    `envconfig:"CARTLOOM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARTLOOM_DB_USER"`
	LegacyPassword string `envconfig:"CARTLOOM_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARTLOOM_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARTLOOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARTLOOM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTLOOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTLOOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTLOOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARTLOOM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CARTLOOM_REDIS_ADDR"`
	Password     string        `envconfig:"CARTLOOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTLOOM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTLOOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTLOOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTLOOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTLOOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTLOOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CARTLOOM_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CARTLOOM_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"CARTLOOM_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"CARTLOOM_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"CARTLOOM_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"CARTLOOM_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"CARTLOOM_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CARTLOOM_AUTO_MIGRATE" default:"false"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CARTLOOM_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CARTLOOM_ARGON_TIME" default:"1"`
	ArgonParallelism int `envconfig:"CARTLOOM_ARGON_PARALLELISM" default:"4"`
	ArgonSaltLen     int `envconfig:"CARTLOOM_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CARTLOOM_ARGON_KEY_LEN" default:"32"`
}

type RazorpayConfig struct {
	KeyID     string `envconfig:"CARTLOOM_RAZORPAY_KEY_ID" required:"true"`
	KeySecret string `envconfig:"CARTLOOM_RAZORPAY_KEY_SECRET" required:"true"`
	Currency  string `envconfig:"CARTLOOM_RAZORPAY_CURRENCY" default:"INR"`
}

type CheckoutConfig struct {
	StoreName       string        `envconfig:"CARTLOOM_CHECKOUT_STORE_NAME" default:"Cartloom"`
	PendingOrderTTL time.Duration `envconfig:"CARTLOOM_CHECKOUT_PENDING_ORDER_TTL" default:"168h"`
}

type GuestCartConfig struct {
	CookieName string        `envconfig:"CARTLOOM_GUEST_CART_COOKIE" default:"cartloom_cart"`
	CookieTTL  time.Duration `envconfig:"CARTLOOM_GUEST_CART_COOKIE_TTL" default:"720h"`
	IdleTTL    time.Duration `envconfig:"CARTLOOM_GUEST_CART_IDLE_TTL" default:"720h"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"CARTLOOM_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"CARTLOOM_CRON_LOCK_TTL" default:"25h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
