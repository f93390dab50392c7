package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/simaogato/fundmetrics-backend/internal/usecase/batch"
	"github.com/simaogato/fundmetrics-backend/internal/usecase/metrics"
)

// EnvPrefix prefixes every environment override, e.g. FUNDMETRICS_SERVER_GRPC_PORT
const EnvPrefix = "FUNDMETRICS"

// Config holds all configuration for the application
type Config struct {
	Environment   string         `mapstructure:"environment"`
	LogLevel      string         `mapstructure:"log_level"`
	Server        ServerConfig   `mapstructure:"server"`
	Database      DatabaseConfig `mapstructure:"database"`
	Redis         RedisConfig    `mapstructure:"redis"`
	IRRSettings   IRRSettings    `mapstructure:"irr"`
	BatchSettings BatchSettings  `mapstructure:"batch"`
}

type ServerConfig struct {
	GRPCPort        int           `mapstructure:"grpc_port"`
	HTTPPort        int           `mapstructure:"http_port"`
	APIToken        string        `mapstructure:"api_token"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL          string `mapstructure:"url"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Name         string `mapstructure:"name"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	SSLMode      string `mapstructure:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	Migrate      bool   `mapstructure:"migrate"`
	SeedDemo     bool   `mapstructure:"seed_demo"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
}

// IRRSettings mirrors metrics.IRRConfig
type IRRSettings struct {
	Guess         float64 `mapstructure:"guess"`
	MaxIterations int     `mapstructure:"max_iterations"`
	Precision     float64 `mapstructure:"precision"`
	MinRate       float64 `mapstructure:"min_rate"`
	MaxRate       float64 `mapstructure:"max_rate"`
	MinDays       int     `mapstructure:"min_days"`
}

// BatchSettings mirrors batch.Config
type BatchSettings struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	InitTimeout    time.Duration `mapstructure:"init_timeout"`
	Concurrency    int           `mapstructure:"concurrency"`
	QueueSize      int           `mapstructure:"queue_size"`
}

// Load loads configuration from defaults, an optional config file, .env and the environment
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	// Read from config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names kept for existing docker setups
	_ = v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DB_CONN_STR")
	_ = v.BindEnv("server.api_token", EnvPrefix+"_SERVER_API_TOKEN", "API_TOKEN")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("server.grpc_port", 8080)
	v.SetDefault("server.http_port", 9090)
	v.SetDefault("server.api_token", "dev-token")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "fundmetrics")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.migrate", true)
	v.SetDefault("database.seed_demo", false)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "1h")
	v.SetDefault("redis.prefix", "fundmetrics:metrics:")

	irr := metrics.DefaultIRRConfig()
	v.SetDefault("irr.guess", irr.Guess)
	v.SetDefault("irr.max_iterations", irr.MaxIterations)
	v.SetDefault("irr.precision", irr.Precision)
	v.SetDefault("irr.min_rate", irr.MinRate)
	v.SetDefault("irr.max_rate", irr.MaxRate)
	v.SetDefault("irr.min_days", irr.MinDays)

	b := batch.DefaultConfig()
	v.SetDefault("batch.request_timeout", b.RequestTimeout.String())
	v.SetDefault("batch.init_timeout", b.InitTimeout.String())
	v.SetDefault("batch.concurrency", b.Concurrency)
	v.SetDefault("batch.queue_size", b.QueueSize)
}

// Validate checks the settings the service cannot start without
func (c *Config) Validate() error {
	if c.Server.GRPCPort <= 0 || c.Server.HTTPPort <= 0 {
		return errors.New("server ports must be positive")
	}
	if c.Server.APIToken == "" {
		return errors.New("server.api_token is required")
	}
	if c.IRRSettings.MaxIterations <= 0 {
		return errors.New("irr.max_iterations must be positive")
	}
	if c.IRRSettings.Precision <= 0 {
		return errors.New("irr.precision must be positive")
	}
	if c.IRRSettings.MinRate >= c.IRRSettings.MaxRate {
		return errors.New("irr.min_rate must be below irr.max_rate")
	}
	if c.BatchSettings.RequestTimeout <= 0 || c.BatchSettings.InitTimeout <= 0 {
		return errors.New("batch timeouts must be positive")
	}
	return nil
}

// DSN returns the postgres connection string, built from parts when no URL is set
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Addr returns host:port of the redis server
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// IRR converts the irr section to the engine configuration
func (c *Config) IRR() metrics.IRRConfig {
	return metrics.IRRConfig{
		Guess:         c.IRRSettings.Guess,
		MaxIterations: c.IRRSettings.MaxIterations,
		Precision:     c.IRRSettings.Precision,
		MinRate:       c.IRRSettings.MinRate,
		MaxRate:       c.IRRSettings.MaxRate,
		MinDays:       c.IRRSettings.MinDays,
	}
}

// Batch converts the batch section to the dispatcher configuration
func (c *Config) Batch() batch.Config {
	return batch.Config{
		RequestTimeout: c.BatchSettings.RequestTimeout,
		InitTimeout:    c.BatchSettings.InitTimeout,
		Concurrency:    c.BatchSettings.Concurrency,
		QueueSize:      c.BatchSettings.QueueSize,
	}
}
