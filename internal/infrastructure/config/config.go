package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	MailBrevo = "brevo"
	MailLog   = "log"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth   AuthConfig
	Store  StoreConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Notify NotifyConfig
}

type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET"`
	SessionTokenTTL time.Duration `env:"SESSION_TOKEN_TTL, default=720h"`
	CodeTTL         time.Duration `env:"CODE_TTL,          default=15m"`
	BcryptCost      int           `env:"BCRYPT_COST,       default=10"`
	AccessCodes     []string      `env:"ACCESS_CODES,      default=CIT25,COMSATS25,TEST1234,AMC25"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=mongo"`
}

type MongoConfig struct {
	URI            string        `env:"MONGO_URI,             default=mongodb://localhost:27017"`
	Database       string        `env:"MONGO_DB,              default=campusconnect"`
	Timeout        time.Duration `env:"MONGO_TIMEOUT,         default=5s"`
	ConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT, default=10s"`
	MaxPoolSize    uint64        `env:"MONGO_MAX_POOL,        default=50"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED,  default=false"`
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type NotifyConfig struct {
	Driver       string        `env:"MAIL_DRIVER,       default=log"`
	BrevoAPIKey  string        `env:"BREVO_API_KEY"`
	BrevoBaseURL string        `env:"BREVO_BASE_URL,    default=https://api.brevo.com"`
	From         string        `env:"MAIL_FROM,         default=no-reply@campusconnect.local"`
	FromName     string        `env:"MAIL_FROM_NAME,    default=CampusConnect"`
	Workers      int           `env:"NOTIFY_WORKERS,    default=4"`
	QueueSize    int           `env:"NOTIFY_QUEUE_SIZE, default=256"`
	Timeout      time.Duration `env:"NOTIFY_TIMEOUT,    default=15s"`
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.Auth.AccessCodes) == 0 {
		return errors.New("ACCESS_CODES must list at least one code")
	}
	switch c.Store.Driver {
	case StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Notify.Driver {
	case MailLog:
	case MailBrevo:
		if c.Notify.BrevoAPIKey == "" {
			return errors.New("BREVO_API_KEY is required when MAIL_DRIVER=brevo")
		}
	default:
		return fmt.Errorf("unknown MAIL_DRIVER %q", c.Notify.Driver)
	}
	return nil
}
