// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment  string
	Server       ServerConfig
	Database     DatabaseConfig
	Tracker      TrackerConfig
	Notification NotificationConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

// TrackerConfig carries all cycle-level knobs. It is immutable after Load and
// handed to the orchestrator at construction, never read from the environment
// again.
type TrackerConfig struct {
	MinDiscountPercentage float64  `validate:"min=0,max=100"`
	Keywords              []string `validate:"required,min=1"`
	HiddenPricePhrases    []string `validate:"required,min=1"`
	CheckIntervalMinutes  int      `validate:"min=1"`
	FetchWorkers          int      `validate:"min=1,max=32"`
	SourceTimeoutSeconds  int      `validate:"min=1"`
	RealertOnImprovement  bool
}

type NotificationConfig struct {
	Method       string `validate:"oneof=console email"`
	EmailTo      string
	EmailFrom    string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
}

// defaultHiddenPricePhrases covers the withheld-price wording retailers use to
// force an add-to-cart or sign-in before showing a number.
var defaultHiddenPricePhrases = []string{
	"see price in cart",
	"price in cart",
	"add to cart to see price",
	"add to bag to see price",
	"login to see price",
	"sign in to see price",
	"view price in cart",
	"price available in cart",
	"cart price",
	"special price in cart",
	"member price",
	"members only",
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "shoedeal"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		Tracker: TrackerConfig{
			MinDiscountPercentage: getEnvAsFloat("MIN_DISCOUNT_PERCENTAGE", 10),
			Keywords:              getEnvAsList("KEYWORDS", "running,run,runner,trail,marathon,athletic"),
			HiddenPricePhrases:    getEnvAsPhrases("HIDDEN_PRICE_PHRASES"),
			CheckIntervalMinutes:  getEnvAsInt("CHECK_INTERVAL_MINUTES", 60),
			FetchWorkers:          getEnvAsInt("FETCH_WORKERS", 4),
			SourceTimeoutSeconds:  getEnvAsInt("SOURCE_TIMEOUT_SECONDS", 120),
			RealertOnImprovement:  getEnvAsBool("REALERT_ON_IMPROVEMENT", false),
		},
		Notification: NotificationConfig{
			Method:       strings.ToLower(getEnv("NOTIFICATION_METHOD", "console")),
			EmailTo:      getEnv("EMAIL_TO", ""),
			EmailFrom:    getEnv("EMAIL_FROM", ""),
			SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		},
	}

	return config, config.Validate()
}

// Validate fails fast on a broken configuration; a bad threshold or keyword
// list is fatal at startup, never a per-cycle condition.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(&c.Tracker); err != nil {
		return fmt.Errorf("invalid tracker configuration: %w", err)
	}
	if err := validate.Struct(&c.Notification); err != nil {
		return fmt.Errorf("invalid notification configuration: %w", err)
	}

	if c.Notification.Method == "email" && (c.Notification.EmailTo == "" || c.Notification.EmailFrom == "") {
		return fmt.Errorf("EMAIL_TO and EMAIL_FROM are required when NOTIFICATION_METHOD=email")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.ToLower(strings.TrimSpace(p)); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func getEnvAsPhrases(key string) []string {
	if value := os.Getenv(key); value != "" {
		return getEnvAsList(key, "")
	}
	return defaultHiddenPricePhrases
}
