package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/akmmp241/product-catalog/shared"
	"github.com/go-playground/validator/v10"
)

const ServiceName = "Product Service"

const (
	EnvPort             = "PORT"
	EnvDatabaseBaseURL  = "MONGO_DB_ATLAS_URL"
	EnvDatabaseName     = "DB_NAME"
	missingConfigReason = "Missing required environment variables. Please check PORT, MONGO_DB_ATLAS_URL, and DB_NAME."
)

// Config is read once at startup and passed by value afterwards.
type Config struct {
	Port            string `validate:"required"`
	DatabaseBaseURL string `validate:"required"`
	DatabaseName    string `validate:"required"`

	AppEnv   string
	LogLevel string

	GrpcPort          string
	RedisAddr         string
	KafkaAddr         string
	ElasticsearchAddr string
	JWTSecret         string

	ProductCacheTTL  time.Duration
	DBConnectTimeout time.Duration
	DBHealthInterval time.Duration
}

// ConfigurationError reports missing or malformed required settings.
type ConfigurationError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s (missing: %s)", missingConfigReason, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("Invalid environment variables: %s", strings.Join(e.Invalid, ", "))
}

// LoadConfiguration reads the service settings from the process environment.
func LoadConfiguration() (Config, error) {
	cfg := Config{
		Port:            strings.TrimSpace(os.Getenv(EnvPort)),
		DatabaseBaseURL: strings.TrimSpace(os.Getenv(EnvDatabaseBaseURL)),
		DatabaseName:    strings.TrimSpace(os.Getenv(EnvDatabaseName)),

		AppEnv:   shared.EnvOrDefault("APP_ENV", "development"),
		LogLevel: shared.EnvOrDefault("LOG_LEVEL", "info"),

		GrpcPort:          shared.EnvOrDefault("PRODUCT_SERVICE_GRPC_PORT", ""),
		RedisAddr:         shared.HostPort("REDIS_HOST", "REDIS_PORT"),
		KafkaAddr:         shared.HostPort("KAFKA_HOST", "KAFKA_PORT"),
		ElasticsearchAddr: shared.HostPort("ES_HOST", "ES_PORT"),
		JWTSecret:         os.Getenv("USER_JWT_SECRET_KEY"),

		ProductCacheTTL:  shared.EnvSeconds("PRODUCT_CACHE_TTL_SECONDS", 5*time.Minute),
		DBConnectTimeout: shared.EnvSeconds("DB_CONNECT_TIMEOUT_SECONDS", 10*time.Second),
		DBHealthInterval: shared.EnvSeconds("DB_HEALTH_INTERVAL_SECONDS", 15*time.Second),
	}

	if err := ValidateConfiguration(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

var configValidator = validator.New()

// ValidateConfiguration checks that every required setting is present and
// that the ports are usable TCP ports.
func ValidateConfiguration(cfg Config) error {
	if err := configValidator.Struct(cfg); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		configErr := &ConfigurationError{}
		for _, fieldErr := range validationErrs {
			configErr.Missing = append(configErr.Missing, envNameFor(fieldErr.StructField()))
		}
		return configErr
	}

	var invalid []string
	if !validPort(cfg.Port) {
		invalid = append(invalid, EnvPort)
	}
	if cfg.GrpcPort != "" && !validPort(cfg.GrpcPort) {
		invalid = append(invalid, "PRODUCT_SERVICE_GRPC_PORT")
	}
	if cfg.GrpcPort != "" && cfg.GrpcPort == cfg.Port {
		invalid = append(invalid, "PRODUCT_SERVICE_GRPC_PORT")
	}
	if len(invalid) > 0 {
		return &ConfigurationError{Invalid: invalid}
	}

	return nil
}

func envNameFor(field string) string {
	switch field {
	case "Port":
		return EnvPort
	case "DatabaseBaseURL":
		return EnvDatabaseBaseURL
	case "DatabaseName":
		return EnvDatabaseName
	default:
		return field
	}
}

func validPort(port string) bool {
	n, err := strconv.Atoi(port)
	return err == nil && n > 0 && n <= 65535
}

// ComposeConnectionURI joins the base URL and database name with exactly one
// separating slash.
func ComposeConnectionURI(cfg Config) string {
	return strings.TrimRight(cfg.DatabaseBaseURL, "/") + "/" + strings.TrimLeft(cfg.DatabaseName, "/")
}
