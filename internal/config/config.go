package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	DataBackend  string
	SQLiteDBPath string
	PostgresURL  string

	// Authentication
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	// Rate limiting for credential endpoints
	AuthRequestsPerMinute int

	// CSV import
	ImportMaxRows int

	// AMQP (optional transaction event bus)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets backup (worker only, optional)
	SheetsSpreadsheetID   string
	SheetsSheetName       string
	SheetsCredentialsFile string
	SheetsCredentialsJSON string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		DataBackend:  getEnv("DATA_BACKEND", BackendSQLite),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/moneta.db"),
		PostgresURL:  getEnv("POSTGRES_URL", ""),

		JWTSecret:  getEnv("JWT_SECRET", "dev_secret_change_me"),
		TokenTTL:   getEnvDuration("TOKEN_TTL", 2*time.Hour),
		BcryptCost: getEnvInt("BCRYPT_COST", bcrypt.DefaultCost),

		AuthRequestsPerMinute: getEnvInt("AUTH_REQUESTS_PER_MINUTE", 20),

		ImportMaxRows: getEnvInt("IMPORT_MAX_ROWS", 10000),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "moneta"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transaction_events"),

		SheetsSpreadsheetID:   getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsSheetName:       getEnv("SHEETS_SHEET_NAME", "Backup"),
		SheetsCredentialsFile: getEnv("SHEETS_CREDENTIALS_FILE", ""),
		SheetsCredentialsJSON: getEnv("SHEETS_CREDENTIALS_JSON", ""),
	}

	return cfg
}

// DSN returns the connection string for the configured backend.
func (c *Config) DSN() string {
	if c.DataBackend == BackendPostgres {
		return c.PostgresURL
	}
	return c.SQLiteDBPath
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	switch c.DataBackend {
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case BackendPostgres:
		if c.PostgresURL == "" {
			errors = append(errors, "POSTGRES_URL is required when using postgres backend")
		} else if parsed, err := url.Parse(c.PostgresURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid postgres URL '%s': %v", c.PostgresURL, err))
		} else if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
			errors = append(errors, fmt.Sprintf("invalid postgres URL scheme '%s': must be 'postgres' or 'postgresql'", parsed.Scheme))
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]", c.DataBackend, BackendSQLite, BackendPostgres))
	}

	// Validate authentication settings
	if strings.TrimSpace(c.JWTSecret) == "" {
		errors = append(errors, "JWT secret cannot be empty")
	}
	if c.TokenTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	} else if c.TokenTTL > 7*24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be at most 7 days", c.TokenTTL))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errors = append(errors, fmt.Sprintf("invalid bcrypt cost %d: must be between %d and %d", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}

	if c.AuthRequestsPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid auth rate limit %d: must be at least 1", c.AuthRequestsPerMinute))
	}

	if c.ImportMaxRows < 1 {
		errors = append(errors, fmt.Sprintf("invalid import row limit %d: must be at least 1", c.ImportMaxRows))
	} else if c.ImportMaxRows > 100000 {
		errors = append(errors, fmt.Sprintf("invalid import row limit %d: must be at most 100000", c.ImportMaxRows))
	}

	// Validate AMQP settings if configured
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate Google Sheets backup settings if configured
	if c.SheetsSpreadsheetID != "" {
		if c.SheetsSheetName == "" {
			errors = append(errors, "sheet name cannot be empty when a spreadsheet ID is provided")
		}
		hasFile := c.SheetsCredentialsFile != ""
		hasJSON := c.SheetsCredentialsJSON != ""
		if !hasFile && !hasJSON {
			errors = append(errors, "either SHEETS_CREDENTIALS_FILE or SHEETS_CREDENTIALS_JSON must be provided for the sheets backup")
		}
		if hasFile {
			if _, err := os.Stat(c.SheetsCredentialsFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("sheets credentials file does not exist: %s", c.SheetsCredentialsFile))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
