package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"

	pkgerrors "github.com/angelmondragon/activity-seeder/pkg/errors"
)

type Config struct {
	App         AppConfig
	Store       StoreConfig
	Collections CollectionsConfig
	Generation  GenerationConfig
	Redis       RedisConfig
	Metrics     MetricsConfig
	Passwords   PasswordConfig
}

// Load reads the environment into a Config and rejects missing connection or
// target parameters before any I/O happens.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfig, err, "parsing config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the store target and the generation parameters.
func (c *Config) Validate() error {
	var errs error
	errs = multierr.Append(errs, c.Store.ensureTarget())
	errs = multierr.Append(errs, c.Generation.Validate())
	errs = multierr.Append(errs, c.Passwords.validate())
	if errs == nil {
		return nil
	}
	problems := make([]string, 0)
	for _, err := range multierr.Errors(errs) {
		problems = append(problems, err.Error())
	}
	return pkgerrors.Wrap(pkgerrors.CodeConfig, errs, "invalid configuration").
		WithDetails(map[string]any{"problems": problems})
}

type AppConfig struct {
	Env          string `envconfig:"SEEDER_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"SEEDER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SEEDER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type StoreConfig struct {
	Driver string `envconfig:"SEEDER_STORE_DRIVER" default:"mongo"`

	MongoURI            string        `envconfig:"SEEDER_MONGO_URI"`
	MongoDatabase       string        `envconfig:"SEEDER_MONGO_DB"`
	MongoConnectTimeout time.Duration `envconfig:"SEEDER_MONGO_CONNECT_TIMEOUT" default:"10s"`
	MongoMaxPoolSize    uint64        `envconfig:"SEEDER_MONGO_MAX_POOL_SIZE" default:"20"`

	DSN            string `envconfig:"SEEDER_DB_DSN"`
	LegacyHost     string `envconfig:"SEEDER_DB_HOST"`
	LegacyPort     int    `envconfig:"SEEDER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SEEDER_DB_USER"`
	LegacyPassword string `envconfig:"SEEDER_DB_PASSWORD"`
	LegacyName     string `envconfig:"SEEDER_DB_NAME"`
	LegacySSLMode  string `envconfig:"SEEDER_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"SEEDER_SQLITE_PATH" default:"seeder.db"`

	MaxOpenConns    int           `envconfig:"SEEDER_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"SEEDER_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"SEEDER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SEEDER_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"SEEDER_AUTO_MIGRATE" default:"false"`
}

// IsSQL reports whether the configured driver is backed by GORM.
func (s StoreConfig) IsSQL() bool {
	return s.normalizedDriver() == DriverPostgres || s.normalizedDriver() == DriverSQLite
}

// DriverName returns the lower-cased driver.
func (s StoreConfig) DriverName() string {
	return s.normalizedDriver()
}

func (s StoreConfig) normalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(s.Driver))
}

type CollectionsConfig struct {
	Users    string `envconfig:"SEEDER_COLLECTION_USERS" default:"users"`
	Vendors  string `envconfig:"SEEDER_COLLECTION_VENDORS" default:"vendors"`
	Products string `envconfig:"SEEDER_COLLECTION_PRODUCTS" default:"products"`
	Orders   string `envconfig:"SEEDER_COLLECTION_ORDERS" default:"orders"`
	Reviews  string `envconfig:"SEEDER_COLLECTION_REVIEWS" default:"reviews"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SEEDER_REDIS_URL"`
	Address      string        `envconfig:"SEEDER_REDIS_ADDR"`
	Password     string        `envconfig:"SEEDER_REDIS_PASSWORD"`
	DB           int           `envconfig:"SEEDER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SEEDER_REDIS_POOL_SIZE" default:"4"`
	DialTimeout  time.Duration `envconfig:"SEEDER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SEEDER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SEEDER_REDIS_WRITE_TIMEOUT" default:"5s"`
	LockTTL      time.Duration `envconfig:"SEEDER_RUN_LOCK_TTL" default:"2h"`
}

// Enabled reports whether a Redis target was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type MetricsConfig struct {
	PushgatewayURL string `envconfig:"SEEDER_PUSHGATEWAY_URL"`
	JobName        string `envconfig:"SEEDER_METRICS_JOB" default:"activity-seeder"`
}

type PasswordConfig struct {
	BcryptCost int `envconfig:"SEEDER_BCRYPT_COST" default:"10"`
}

func (p PasswordConfig) validate() error {
	if p.BcryptCost < 4 || p.BcryptCost > 31 {
		return fmt.Errorf("%s must be between 4 and 31, got %d", EnvBcryptCost, p.BcryptCost)
	}
	return nil
}

func (s *StoreConfig) ensureTarget() error {
	switch s.normalizedDriver() {
	case DriverMongo:
		var errs error
		if s.MongoURI == "" {
			errs = multierr.Append(errs, fmt.Errorf("%s is required for the %s driver", EnvMongoURI, DriverMongo))
		}
		if s.MongoDatabase == "" {
			errs = multierr.Append(errs, fmt.Errorf("%s is required for the %s driver", EnvMongoDB, DriverMongo))
		}
		return errs
	case DriverPostgres:
		return s.ensureDSN()
	case DriverSQLite:
		if s.SQLitePath == "" {
			return fmt.Errorf("%s is required for the %s driver", EnvSQLitePath, DriverSQLite)
		}
		return nil
	case DriverMemory:
		return nil
	default:
		return fmt.Errorf("%s must be one of %s, got %q", EnvStoreDriver, strings.Join(validDrivers, "|"), s.Driver)
	}
}

func (s *StoreConfig) ensureDSN() error {
	if s.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: s.LegacyHost,
		EnvDBUser: s.LegacyUser,
		EnvDBName: s.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(s.LegacyUser)
	if s.LegacyPassword != "" {
		userInfo = url.UserPassword(s.LegacyUser, s.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", s.LegacyHost, s.LegacyPort),
		Path:   s.LegacyName,
	}

	if s.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", s.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	s.DSN = u.String()
	return nil
}
