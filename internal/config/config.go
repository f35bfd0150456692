package config

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Carrier  CarrierConfig
	Pool     PoolConfig
	Mailer   MailerConfig
	Composer ComposerConfig
	Campaign CampaignConfig
}

type ServerConfig struct {
	Address         string        `env:"SERVER_ADDRESS,default=:8080"`
	MetricsAddress  string        `env:"METRICS_ADDRESS,default=:9090"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

type DatabaseConfig struct {
	Driver string `env:"DATABASE_DRIVER,default=pgx"`
	URL    string `env:"DATABASE_URL,required"`
}

type RedisConfig struct {
	Address  string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,default=0"`
	TTL      time.Duration `env:"REDIS_TTL,default=24h"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// CarrierConfig holds Twilio credentials. Missing credentials are not a startup error;
// sends fail with a configuration error instead.
type CarrierConfig struct {
	BaseURL           string        `env:"TWILIO_BASE_URL,default=https://api.twilio.com"`
	AccountSID        string        `env:"TWILIO_ACCOUNT_SID"`
	AuthToken         string        `env:"TWILIO_AUTH_TOKEN"`
	DefaultNumber     string        `env:"TWILIO_PHONE_NUMBER"`
	Timeout           time.Duration `env:"TWILIO_TIMEOUT,default=10s"`
	StatusCallbackURL string        `env:"TWILIO_STATUS_CALLBACK_URL"`
	ContentMax        int           `env:"SMS_CONTENT_MAX,default=1600"`
}

type PoolConfig struct {
	ResetEnabled      bool          `env:"POOL_RESET_ENABLED,default=true"`
	ResetInterval     time.Duration `env:"POOL_RESET_INTERVAL,default=5m"`
	DefaultDailyLimit int           `env:"POOL_DEFAULT_DAILY_LIMIT,default=200"`
}

type MailerConfig struct {
	BaseURL string `env:"INSTANTLY_BASE_URL,default=https://api.instantly.ai"`
	APIKey  string `env:"INSTANTLY_API_KEY"`
}

type ComposerConfig struct {
	BaseURL string `env:"OPENAI_BASE_URL"`
	APIKey  string `env:"OPENAI_API_KEY"`
	Model   string `env:"OPENAI_MODEL"`
}

type CampaignConfig struct {
	DispatchConcurrency int `env:"CAMPAIGN_DISPATCH_CONCURRENCY,default=4"`
}

func LoadAll() (*Config, error) {
	return LoadFrom(envconfig.OsLookuper())
}

// LoadFrom reads configuration through l and validates it.
func LoadFrom(l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(context.Background(), &cfg, l); err != nil {
		if key := envKeyFor(err); key != "" {
			return nil, fmt.Errorf("parsing env var %s: %w", key, err)
		}
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKeyFor maps an envconfig error, which names the Go field path
// ("Carrier: ContentMax(...)"), back to the variable that was read.
func envKeyFor(err error) string {
	msg := err.Error()
	root := reflect.TypeOf(Config{})
	for i := 0; i < root.NumField(); i++ {
		section := root.Field(i)
		if section.Type.Kind() != reflect.Struct {
			continue
		}
		for j := 0; j < section.Type.NumField(); j++ {
			field := section.Type.Field(j)
			key, _, _ := strings.Cut(field.Tag.Get("env"), ",")
			if key == "" {
				continue
			}
			path := section.Name + ": " + field.Name
			if strings.HasPrefix(msg, path+"(") || strings.HasPrefix(msg, path+":") {
				return key
			}
		}
	}
	return ""
}

func (c *Config) validate() error {
	var errs []error

	switch c.Database.Driver {
	case "pgx", "sqlite3":
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be pgx or sqlite3, got %q", c.Database.Driver))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be > 0"))
	}
	if c.Carrier.ContentMax <= 0 {
		errs = append(errs, errors.New("SMS_CONTENT_MAX must be > 0"))
	}
	if c.Carrier.Timeout <= 0 {
		errs = append(errs, errors.New("TWILIO_TIMEOUT must be > 0"))
	}
	if c.Pool.ResetEnabled && c.Pool.ResetInterval <= 0 {
		errs = append(errs, errors.New("POOL_RESET_INTERVAL must be > 0"))
	}
	if c.Pool.DefaultDailyLimit <= 0 {
		errs = append(errs, errors.New("POOL_DEFAULT_DAILY_LIMIT must be > 0"))
	}
	if c.Campaign.DispatchConcurrency <= 0 {
		errs = append(errs, errors.New("CAMPAIGN_DISPATCH_CONCURRENCY must be > 0"))
	}
	if c.Redis.Enabled() && c.Redis.TTL <= 0 {
		errs = append(errs, errors.New("REDIS_TTL must be > 0"))
	}

	return errors.Join(errs...)
}
