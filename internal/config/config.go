// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the ops HTTP server will bind to.
	ServerHost string
	// ServerPort is the port number the ops HTTP server will listen on.
	ServerPort int

	// DBDriver is the database driver to use ("sqlite" or "postgres").
	DBDriver string
	// DBConnectionString is the connection string for the database. For the
	// sqlite driver this is a file path.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// AnthropicAPIKey authenticates calls to the classification model.
	AnthropicAPIKey string
	// AnthropicModel is the model used for classification.
	AnthropicModel string
	// ClassifierMaxTokens caps the classification completion size.
	ClassifierMaxTokens int

	// ServiceNowInstanceURL is the base URL of the ticketing instance.
	ServiceNowInstanceURL string
	// ServiceNowUsername is the basic-auth user for the ticketing API.
	ServiceNowUsername string
	// ServiceNowPassword is the basic-auth password for the ticketing API.
	ServiceNowPassword string
	// ServiceNowResolvedState is the incident state code that means resolved.
	ServiceNowResolvedState string

	// GraphClientID is the application (client) id for the mail transport.
	GraphClientID string
	// GraphAuthority is the identity platform authority URL.
	GraphAuthority string
	// GraphTokenCachePath is where the OAuth token is cached between runs.
	GraphTokenCachePath string

	// PollInterval is the cadence of the live intake/resolution loop.
	PollInterval time.Duration
	// FetchLimit is the maximum number of unread messages fetched per cycle.
	FetchLimit int
	// RoutingRulesPath points at the routing rules YAML file.
	RoutingRulesPath string

	// RateLimitEnabled indicates whether rate limiting for the ops API is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second on the ops API.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for the ops API rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// KafkaBrokers is a comma-separated broker list; empty disables event publishing.
	KafkaBrokers string
	// KafkaEventsTopic is the topic processed/resolved events are published to.
	KafkaEventsTopic string
	// EventsBatchSize is the maximum number of stored events relayed per cycle.
	EventsBatchSize int
	// EventsMaxRetries is the number of publish attempts before an event is marked failed.
	EventsMaxRetries int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Ops server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Database configuration
		DBDriver:             env.GetString("DB_DRIVER", "sqlite"),
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", "triage_audit.db"),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Classification
		AnthropicAPIKey:     env.GetString("ANTHROPIC_API_KEY", ""),
		AnthropicModel:      env.GetString("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		ClassifierMaxTokens: env.GetInt("CLASSIFIER_MAX_TOKENS", 256),

		// Ticketing
		ServiceNowInstanceURL:   env.GetString("SERVICENOW_INSTANCE_URL", ""),
		ServiceNowUsername:      env.GetString("SERVICENOW_USERNAME", ""),
		ServiceNowPassword:      env.GetString("SERVICENOW_PASSWORD", ""),
		ServiceNowResolvedState: env.GetString("SERVICENOW_RESOLVED_STATE", "6"),

		// Mail transport
		GraphClientID:       env.GetString("MS_CLIENT_ID", ""),
		GraphAuthority:      env.GetString("MS_AUTHORITY", "https://login.microsoftonline.com/common"),
		GraphTokenCachePath: env.GetString("MS_TOKEN_CACHE_PATH", "token_cache.json"),

		// Loop configuration
		PollInterval:     env.GetDuration("POLL_INTERVAL_SECONDS", 60, time.Second),
		FetchLimit:       env.GetInt("FETCH_LIMIT", 10),
		RoutingRulesPath: env.GetString("ROUTING_RULES_PATH", "config/routing_rules.yaml"),

		// Rate Limiting (ops API)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "triage"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// Event publishing
		KafkaBrokers:     env.GetString("KAFKA_BROKERS", ""),
		KafkaEventsTopic: env.GetString("KAFKA_EVENTS_TOPIC", "triage.processed"),
		EventsBatchSize:  env.GetInt("EVENTS_BATCH_SIZE", 100),
		EventsMaxRetries: env.GetInt("EVENTS_MAX_RETRIES", 3),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	case "info", "warn", "error":
		return "release"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
