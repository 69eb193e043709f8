package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/kong"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	ConfirmModal = "modal"
	ConfirmPlain = "plain"
)

// Config is the storefront's runtime configuration. Every field can be set by flag or
// environment variable.
type Config struct {
	HTTPAddr        string        `name:"http-addr" help:"Address the HTTP server listens on." env:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `help:"Grace period for in-flight requests on shutdown." env:"SHUTDOWN_TIMEOUT" default:"10s"`

	Storage       string        `help:"Cart storage backend." env:"STORAGE_BACKEND" enum:"memory,postgres" default:"memory"`
	DatabaseDSN   string        `name:"database-dsn" help:"Postgres DSN, required for the postgres backend." env:"DATABASE_DSN"`
	RunMigrations bool          `help:"Apply embedded migrations at startup." env:"RUN_MIGRATIONS" default:"true" negatable:""`
	SessionTTL    time.Duration `name:"session-ttl" help:"Idle time after which a session's stored cart is dropped." env:"SESSION_TTL" default:"720h"`
	CookieSecure  bool          `help:"Mark the session cookie Secure." env:"COOKIE_SECURE"`

	CatalogFile  string  `help:"YAML product catalog. The built-in catalog is used when empty." env:"CATALOG_FILE" type:"existingfile"`
	ConfirmStyle string  `help:"How confirmation prompts are rendered." env:"CONFIRM_STYLE" enum:"modal,plain" default:"modal"`
	ShippingFlat float64 `help:"Flat shipping charge for a non-empty cart." env:"SHIPPING_FLAT" default:"0"`

	RabbitMQURL      string `name:"rabbitmq-url" help:"AMQP URL for checkout events. Events are only logged when empty." env:"RABBITMQ_URL"`
	CORSAllowOrigins string `name:"cors-allow-origins" help:"Comma separated origins allowed on /api." env:"CORS_ALLOW_ORIGINS" default:"*"`

	LogLevel  string `help:"Log level." env:"LOG_LEVEL" enum:"debug,info,warn,error" default:"info"`
	LogFormat string `help:"Log encoding." env:"LOG_FORMAT" enum:"json,console" default:"json"`
}

// Validate is called by kong after parsing.
func (c *Config) Validate() error {
	var errs []error
	if c.Storage == StoragePostgres && strings.TrimSpace(c.DatabaseDSN) == "" {
		errs = append(errs, errors.New("database-dsn is required when storage is postgres"))
	}
	if c.ShippingFlat < 0 {
		errs = append(errs, fmt.Errorf("shipping-flat must not be negative, got %v", c.ShippingFlat))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, fmt.Errorf("session-ttl must not be negative, got %s", c.SessionTTL))
	}
	return errors.Join(errs...)
}

// AllowedOrigins splits CORSAllowOrigins, falling back to "*" when nothing usable is set.
func (c *Config) AllowedOrigins() []string {
	return splitCSV(c.CORSAllowOrigins)
}

// Parse reads flags from args and the environment.
func Parse(args []string, options ...kong.Option) (Config, error) {
	var cfg Config
	options = append([]kong.Option{
		kong.Name("storefront"),
		kong.Description("Storefront with a session cart, product pages and checkout."),
		kong.UsageOnError(),
	}, options...)

	parser, err := kong.New(&cfg, options...)
	if err != nil {
		return Config{}, fmt.Errorf("build parser: %w", err)
	}
	if _, err := parser.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
