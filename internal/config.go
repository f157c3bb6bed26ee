package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	Source          string        `mapstructure:"source" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	SeedOnStart     bool          `mapstructure:"seed_on_start"`
}

type SecurityConfig struct {
	JWTSecret           string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	JWTIssuer           string        `mapstructure:"jwt_issuer" validate:"required"`
	JWTAudience         string        `mapstructure:"jwt_audience" validate:"required"`
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration" validate:"required"`
	BCryptCost          int           `mapstructure:"bcrypt_cost" validate:"required,min=4,max=15"`
}

type RateLimitConfig struct {
	Auth FixedWindowConfig `mapstructure:"auth"`
}

type FixedWindowConfig struct {
	PermitLimit int           `mapstructure:"permit_limit" validate:"required,min=1"`
	Window      time.Duration `mapstructure:"window" validate:"required"`
	QueueLimit  int           `mapstructure:"queue_limit" validate:"min=0"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// DefaultConfig mirrors config.yml and is the base that viper and the
// environment loader override.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:              8080,
			AllowedOrigins:    "http://localhost:3000,http://localhost:5173",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
			WriteTimeout:      15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          DriverSQLite,
			Source:          "labtrack.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			AutoMigrate:     true,
			SeedOnStart:     true,
		},
		Security: SecurityConfig{
			JWTIssuer:           "LabTrackApi",
			JWTAudience:         "LabTrackApp",
			AccessTokenDuration: 24 * time.Hour,
			BCryptCost:          10,
		},
		RateLimit: RateLimitConfig{
			Auth: FixedWindowConfig{
				PermitLimit: 5,
				Window:      30 * time.Second,
				QueueLimit:  2,
			},
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{Level: "info", Format: "text"},
		},
	}
}

// LoadConfigFromEnv builds the configuration from plain environment variables,
// used for container deployments where no config.yml is mounted.
func LoadConfigFromEnv() *Config {
	cfg := DefaultConfig()

	cfg.Server.Port = getEnvAsInt("PORT", cfg.Server.Port)
	cfg.Server.AllowedOrigins = getEnv("ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)

	cfg.Database.Driver = getEnv("DB_DRIVER", DriverPostgres)
	cfg.Database.Source = getEnv("DATABASE_URL", cfg.Database.Source)
	cfg.Database.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", 25)
	cfg.Database.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.AutoMigrate = getEnvAsBool("DB_AUTO_MIGRATE", false)
	cfg.Database.SeedOnStart = getEnvAsBool("DB_SEED_ON_START", cfg.Database.SeedOnStart)

	cfg.Security.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.Security.JWTIssuer = getEnv("JWT_ISSUER", cfg.Security.JWTIssuer)
	cfg.Security.JWTAudience = getEnv("JWT_AUDIENCE", cfg.Security.JWTAudience)
	cfg.Security.AccessTokenDuration = getEnvAsDuration("JWT_TTL", cfg.Security.AccessTokenDuration)
	cfg.Security.BCryptCost = getEnvAsInt("BCRYPT_COST", cfg.Security.BCryptCost)

	cfg.Observability.Logging.Level = getEnv("LOG_LEVEL", cfg.Observability.Logging.Level)
	cfg.Observability.Logging.Format = getEnv("LOG_FORMAT", "json")

	return &cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	for _, origin := range c.Origins() {
		if origin == "*" {
			continue
		}
		if _, err := url.Parse(origin); err != nil {
			return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

// Origins splits the comma separated allowed_origins value.
func (c *ServerConfig) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}
