package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Security   SecurityConfig   `json:"security"`
	Logging    LoggingConfig    `json:"logging"`
	AWS        AWSConfig        `json:"aws"`
	Procedures ProceduresConfig `json:"procedures"`
	Sessions   SessionsConfig   `json:"sessions"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Environment  string   `json:"environment"`
	Host         string   `json:"host"`
	Port         int      `json:"port"`
	ReadTimeout  Duration `json:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout"`
	IdleTimeout  Duration `json:"idle_timeout"`
	// AllowedOrigins lists browser origins accepted on the event socket in
	// addition to the server's own host
	AllowedOrigins []string `json:"allowed_origins"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string   `json:"host"`
	Port           int      `json:"port"`
	User           string   `json:"user"`
	Password       string   `json:"password"`
	DBName         string   `json:"db_name"`
	SSLMode        string   `json:"ssl_mode"`
	MaxConnections int      `json:"max_connections"`
	MaxIdleConns   int      `json:"max_idle_conns"`
	MaxLifetime    Duration `json:"max_lifetime"`
}

// SecurityConfig
type SecurityConfig struct {
	JWTSecret string `json:"jwt_secret"`
	JWTIssuer string `json:"jwt_issuer"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// AWSConfig holds the archive bucket and SES sender. Empty credentials fall
// back to the default provider chain.
type AWSConfig struct {
	Region          string `json:"region"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	ArchiveBucket   string `json:"archive_bucket"`
	SESFromAddress  string `json:"ses_from_address"`
}

// ProceduresConfig selects where the remote procedure layer lives. An empty
// BaseURL means the in-process service is used.
type ProceduresConfig struct {
	BaseURL string   `json:"base_url"`
	Timeout Duration `json:"timeout"`
}

// SessionsConfig controls wizard snapshot retention
type SessionsConfig struct {
	Retention     Duration `json:"retention"`
	PurgeSchedule string   `json:"purge_schedule"`
	KeyPrefix     string   `json:"key_prefix"`
	// IdleTimeout is how long an untouched session stays in memory
	IdleTimeout   Duration `json:"idle_timeout"`
	EvictSchedule string   `json:"evict_schedule"`
}

// Duration decodes either a Go duration string ("30s") or integer nanoseconds
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid duration: %s", string(b))
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Environment:  "development",
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  Duration(15 * time.Second),
			WriteTimeout: Duration(30 * time.Second),
			IdleTimeout:  Duration(60 * time.Second),
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           os.Getenv("USER"),
			DBName:         "buyer_portal",
			SSLMode:        "disable",
			MaxConnections: 25,
			MaxIdleConns:   5,
			MaxLifetime:    Duration(30 * time.Minute),
		},
		Security: SecurityConfig{
			JWTIssuer: "buyer-portal",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		AWS: AWSConfig{
			Region: "eu-west-2",
		},
		Procedures: ProceduresConfig{
			Timeout: Duration(10 * time.Second),
		},
		Sessions: SessionsConfig{
			Retention:     Duration(30 * 24 * time.Hour),
			PurgeSchedule: "@every 1h",
			KeyPrefix:     "buyer-onboarding",
			IdleTimeout:   Duration(30 * time.Minute),
			EvictSchedule: "@every 5m",
		},
	}
}

// LoadConfig loads configuration from file, .env and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	// .env is optional
	_ = godotenv.Load()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := overrideWithEnv(config); err != nil {
		return nil, err
	}

	return config, nil
}

func overrideWithEnv(config *Config) error {
	if env := os.Getenv("APP_ENV"); env != "" {
		config.Server.Environment = env
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT %q: %w", port, err)
		}
		config.Server.Port = p
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DATABASE_PORT"); dbPort != "" {
		p, err := strconv.Atoi(dbPort)
		if err != nil {
			return fmt.Errorf("invalid DATABASE_PORT %q: %w", dbPort, err)
		}
		config.Database.Port = p
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Security.JWTSecret = secret
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		config.AWS.Region = region
	}
	if bucket := os.Getenv("ARCHIVE_BUCKET"); bucket != "" {
		config.AWS.ArchiveBucket = bucket
	}
	if from := os.Getenv("SES_FROM_ADDRESS"); from != "" {
		config.AWS.SESFromAddress = from
	}
	if url := os.Getenv("PROCEDURES_BASE_URL"); url != "" {
		config.Procedures.BaseURL = url
	}
	if retention := os.Getenv("SESSION_RETENTION"); retention != "" {
		d, err := time.ParseDuration(retention)
		if err != nil {
			return fmt.Errorf("invalid SESSION_RETENTION %q: %w", retention, err)
		}
		config.Sessions.Retention = Duration(d)
	}
	if idle := os.Getenv("SESSION_IDLE_TIMEOUT"); idle != "" {
		d, err := time.ParseDuration(idle)
		if err != nil {
			return fmt.Errorf("invalid SESSION_IDLE_TIMEOUT %q: %w", idle, err)
		}
		config.Sessions.IdleTimeout = Duration(d)
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.Server.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				config.Server.AllowedOrigins = append(config.Server.AllowedOrigins, o)
			}
		}
	}
	return nil
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// IsProduction reports whether the server runs in production
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
