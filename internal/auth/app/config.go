package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/misenoti/misenoti/pkg/jwtx"
)

// ConfigFileEnv names an optional YAML or .env file read before the environment.
const ConfigFileEnv = "AUTH_CONFIG_FILE"

// Supported values of the backend selectors.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	VerificationsStore = "store"
	VerificationsRedis = "redis"

	NotifierLog  = "log"
	NotifierSMTP = "smtp"
	NotifierAMQP = "amqp"
)

type Config struct {
	Env                  string        `yaml:"env" env:"ENV" env-default:"dev" env-description:"Environment (dev, staging, prod)"`
	LogLevel             string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
	LogFormat            string        `yaml:"log_format" env:"LOG_FORMAT" env-default:"json" env-description:"json or text"`
	Port                 int           `yaml:"port" env:"PORT" env-default:"8080"`
	ShutdownGracePeriod  time.Duration `yaml:"shutdown_grace_period" env:"SHUTDOWN_GRACE_PERIOD" env-default:"10s"`
	HousekeepingInterval time.Duration `yaml:"housekeeping_interval" env:"HOUSEKEEPING_INTERVAL" env-default:"1h"`
	CORSOrigin           string        `yaml:"cors_origin" env:"CORS_ORIGIN" env-default:"*"`

	Auth          AuthConfig          `yaml:"auth"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Database      DatabaseConfig      `yaml:"database"`
	Verifications VerificationsConfig `yaml:"verifications"`
	Notifier      NotifierConfig      `yaml:"notifier"`
}

// RateLimitConfig sets the per-IP limit of POST /api/auth.
type RateLimitConfig struct {
	ActionRequests int           `yaml:"action_requests" env:"RATELIMIT_ACTION_REQUESTS" env-default:"10"`
	ActionWindow   time.Duration `yaml:"action_window" env:"RATELIMIT_ACTION_WINDOW" env-default:"1m"`
	ActionBurst    int           `yaml:"action_burst" env:"RATELIMIT_ACTION_BURST" env-default:"10"`
}

type AuthConfig struct {
	SessionSecret   string        `yaml:"session_secret" env:"AUTH_SESSION_SECRET" env-required:"true" env-description:"HMAC secret for session tokens, at least 32 bytes"`
	SessionTTL      time.Duration `yaml:"session_ttl" env:"AUTH_SESSION_TTL" env-default:"24h"`
	ResetTokenTTL   time.Duration `yaml:"reset_token_ttl" env:"AUTH_RESET_TOKEN_TTL" env-default:"1h"`
	VerificationTTL time.Duration `yaml:"verification_ttl" env:"AUTH_VERIFICATION_TTL" env-default:"10m"`
	MaxAttempts     int           `yaml:"verification_max_attempts" env:"AUTH_VERIFICATION_MAX_ATTEMPTS" env-default:"5"`
	PepperFile      string        `yaml:"pepper_file" env:"AUTH_PEPPER_FILE" env-default:"pepper"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite" env-description:"sqlite or postgres"`
	File   string `yaml:"file" env:"DB_FILE" env-default:"auth.db"`
	URL    string `yaml:"url" env:"DB_URL" env-description:"postgres connection URL"`
}

type VerificationsConfig struct {
	Backend       string `yaml:"backend" env:"VERIFICATION_BACKEND" env-default:"store" env-description:"store or redis"`
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
}

type NotifierConfig struct {
	Kind         string `yaml:"kind" env:"NOTIFIER" env-default:"log" env-description:"log, smtp or amqp"`
	SMTPHost     string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort     int    `yaml:"smtp_port" env:"SMTP_PORT" env-default:"587"`
	SMTPUsername string `yaml:"smtp_username" env:"SMTP_USERNAME"`
	SMTPPassword string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
	SMTPFrom     string `yaml:"smtp_from" env:"SMTP_FROM"`
	AMQPURL      string `yaml:"amqp_url" env:"AMQP_URL"`
	AMQPQueue    string `yaml:"amqp_queue" env:"AMQP_QUEUE" env-default:"auth.notifications"`
}

// LoadConfig reads path (when non-empty, else $AUTH_CONFIG_FILE) and then the
// environment, which wins over the file. The result is validated.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}

	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the application cannot start with.
func (c Config) Validate() error {
	var errs []error

	if len(c.Auth.SessionSecret) < jwtx.MinSecretLength {
		errs = append(errs, fmt.Errorf("AUTH_SESSION_SECRET must be at least %d bytes", jwtx.MinSecretLength))
	}
	if c.Auth.MaxAttempts < 1 {
		errs = append(errs, errors.New("AUTH_VERIFICATION_MAX_ATTEMPTS must be positive"))
	}
	if c.RateLimit.ActionRequests < 1 || c.RateLimit.ActionWindow <= 0 || c.RateLimit.ActionBurst < 1 {
		errs = append(errs, errors.New("RATELIMIT_ACTION_REQUESTS, RATELIMIT_ACTION_WINDOW and RATELIMIT_ACTION_BURST must be positive"))
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.File == "" {
			errs = append(errs, errors.New("DB_FILE is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DB_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver))
	}

	switch c.Verifications.Backend {
	case VerificationsStore:
	case VerificationsRedis:
		if c.Verifications.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis verification backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown VERIFICATION_BACKEND %q", c.Verifications.Backend))
	}

	switch c.Notifier.Kind {
	case NotifierLog:
		if c.Env == "prod" {
			errs = append(errs, errors.New("the log notifier prints secrets and cannot run in prod"))
		}
	case NotifierSMTP:
		if c.Notifier.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP_HOST is required for the smtp notifier"))
		}
	case NotifierAMQP:
		if c.Notifier.AMQPURL == "" {
			errs = append(errs, errors.New("AMQP_URL is required for the amqp notifier"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown NOTIFIER %q", c.Notifier.Kind))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
