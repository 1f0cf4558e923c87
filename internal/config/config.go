package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"evrental-backend/internal/domain"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Log        LogConfig        `yaml:"log"`
	Settlement SettlementConfig `yaml:"settlement"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Redis      RedisConfig      `yaml:"redis"`
	Events     EventsConfig     `yaml:"events"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host            string `yaml:"host"`
	HTTPPort        int    `yaml:"http_port"`
	GRPCPort        int    `yaml:"grpc_port"`
	ShutdownSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Driver       string `yaml:"driver"` // "postgres" or "memory"
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	Isolation    string `yaml:"isolation"` // "read_committed", "repeatable_read" or "serializable"
	MaxTxRetries int    `yaml:"max_tx_retries"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	AutoMigrate  bool   `yaml:"auto_migrate"`
	SeedFile     string `yaml:"seed_file"` // reference data loaded at startup by the memory driver
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SettlementConfig holds the fallback settlement settings used until an
// operator saves their own.
type SettlementConfig struct {
	LateFeeEnabled    bool   `yaml:"late_fee_enabled"`
	LateFeePerDay     string `yaml:"late_fee_per_day"`
	TaxPercentDefault string `yaml:"tax_percent_default"`
	DepositPolicy     string `yaml:"deposit_policy"` // "hold" or "offset"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	MarkOverdueRentals   string `yaml:"mark_overdue_rentals"`
	SendOverdueReminders string `yaml:"send_overdue_reminders"`
}

// RedisConfig enables the shared idempotency store when Addr is set
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// EventsConfig selects the domain event broker
type EventsConfig struct {
	Driver       string   `yaml:"driver"` // "log", "kafka" or "rabbitmq"
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
	AMQPURL      string   `yaml:"amqp_url"`
	AMQPQueue    string   `yaml:"amqp_queue"`
}

// TracingConfig enables OTLP export when Endpoint is set
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file. A .env file next to the working
// directory is loaded first so its values can feed the env overrides.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_DRIVER"); val != "" {
		c.Database.Driver = val
	}
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}
	if val := os.Getenv("DB_ISOLATION"); val != "" {
		c.Database.Isolation = val
	}
	if val := os.Getenv("DB_SEED_FILE"); val != "" {
		c.Database.SeedFile = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_HTTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.HTTPPort)
	}
	if val := os.Getenv("SERVER_GRPC_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.GRPCPort)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Brokers and caches
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("EVENTS_DRIVER"); val != "" {
		c.Events.Driver = val
	}
	if val := os.Getenv("KAFKA_BROKERS"); val != "" {
		c.Events.KafkaBrokers = strings.Split(val, ",")
	}
	if val := os.Getenv("AMQP_URL"); val != "" {
		c.Events.AMQPURL = val
	}
	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" {
		c.Tracing.Endpoint = val
	}

	// Settlement
	if val := os.Getenv("SETTLEMENT_LATE_FEE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Settlement.LateFeeEnabled = b
		}
	}
	if val := os.Getenv("SETTLEMENT_LATE_FEE_PER_DAY"); val != "" {
		c.Settlement.LateFeePerDay = val
	}
	if val := os.Getenv("SETTLEMENT_TAX_PERCENT"); val != "" {
		c.Settlement.TaxPercentDefault = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port: %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}
	if c.Server.ShutdownSeconds <= 0 {
		c.Server.ShutdownSeconds = 15
	}

	// Database validation
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database driver: %s", c.Database.Driver)
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.Isolation == "" {
		c.Database.Isolation = "read_committed"
	}
	if c.Database.MaxTxRetries < 0 {
		return fmt.Errorf("database max_tx_retries must not be negative")
	}
	if c.Database.MaxTxRetries == 0 && c.Database.Isolation == "serializable" {
		c.Database.MaxTxRetries = 3
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry <= 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Settlement defaults
	if c.Settlement.LateFeePerDay == "" {
		c.Settlement.LateFeePerDay = "0"
	}
	if c.Settlement.TaxPercentDefault == "" {
		c.Settlement.TaxPercentDefault = "0"
	}
	if _, err := decimal.NewFromString(c.Settlement.LateFeePerDay); err != nil {
		return fmt.Errorf("invalid settlement late_fee_per_day: %w", err)
	}
	if _, err := decimal.NewFromString(c.Settlement.TaxPercentDefault); err != nil {
		return fmt.Errorf("invalid settlement tax_percent_default: %w", err)
	}
	if c.Settlement.DepositPolicy == "" {
		c.Settlement.DepositPolicy = "hold"
	}
	if c.Settlement.DepositPolicy != "hold" && c.Settlement.DepositPolicy != "offset" {
		return fmt.Errorf("invalid settlement deposit_policy: %s", c.Settlement.DepositPolicy)
	}

	// Scheduler defaults
	if c.Scheduler.MarkOverdueRentals == "" {
		c.Scheduler.MarkOverdueRentals = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.SendOverdueReminders == "" {
		c.Scheduler.SendOverdueReminders = "0 0 9 * * *" // 9 AM UTC
	}

	// Events
	if c.Events.Driver == "" {
		c.Events.Driver = "log"
	}
	switch c.Events.Driver {
	case "log":
	case "kafka":
		if len(c.Events.KafkaBrokers) == 0 {
			return fmt.Errorf("kafka brokers are required for the kafka events driver")
		}
		if c.Events.KafkaTopic == "" {
			c.Events.KafkaTopic = "evrental.events"
		}
	case "rabbitmq":
		if c.Events.AMQPURL == "" {
			return fmt.Errorf("amqp url is required for the rabbitmq events driver")
		}
		if c.Events.AMQPQueue == "" {
			c.Events.AMQPQueue = "evrental.events"
		}
	default:
		return fmt.Errorf("unknown events driver: %s", c.Events.Driver)
	}

	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "evrental-backend"
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetHTTPAddress returns the HTTP listen address
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// GetGRPCAddress returns the gRPC listen address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

// ShutdownTimeout is how long in-flight requests get to drain on shutdown
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownSeconds) * time.Second
}

// AccessTokenTTL returns the lifetime of issued staff tokens
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenExpiry) * time.Minute
}

// SettlementDefaults converts the settlement section into domain values.
// Validate has already checked that the numbers parse.
func (c *Config) SettlementDefaults() domain.SettlementSettings {
	return domain.SettlementSettings{
		LateFeeEnabled:    c.Settlement.LateFeeEnabled,
		LateFeePerDay:     decimal.RequireFromString(c.Settlement.LateFeePerDay),
		TaxPercentDefault: decimal.RequireFromString(c.Settlement.TaxPercentDefault),
		DepositPolicy:     domain.DepositPolicy(c.Settlement.DepositPolicy),
	}
}
