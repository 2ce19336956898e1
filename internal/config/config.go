// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Provider names for the generation and hosting switches.
const (
	GenerationProviderOpenAI = "openai"
	GenerationProviderGoogle = "google"

	HostingProviderImgBB = "imgbb"
	HostingProviderMinIO = "minio"
)

// Config holds all application configuration. Credentials are not validated
// here; each client fails fast with a ConfigurationError when its own key is
// absent, so the CLI can run without keys for services it does not touch.
type Config struct {
	Port     string
	APIKey   string
	LogLevel string

	// Clothing-list generation
	GenerationProvider string
	GenerationModel    string
	OpenAIAPIKey       string
	GoogleAPIKey       string

	// CLIP embedding sidecar
	ClipServiceURL string
	EmbedTimeout   time.Duration

	// Image hosting
	HostingProvider string
	ImgBBAPIKey     string
	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioBucket     string
	MinioUseSSL     bool
	MinioURLExpiry  time.Duration

	// Visual product search
	SerpAPIKey    string
	SearchCountry string
	SearchLocale  string
	SearchType    string

	// Catalog and index persistence
	CatalogManifest string
	IndexSnapshot   string

	// Pipeline defaults
	TopK       int
	MaxResults int

	// Timeout for each outbound generation/hosting/search call
	ExternalCallTimeout time.Duration

	// Outbound calls per second against rate-limited providers (publish, search)
	OutboundRatePerSecond float64
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool retrieves an environment variable as a bool or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration retrieves an environment variable as a duration or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat retrieves an environment variable as a float64 or returns a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// Load reads configuration from environment variables and returns a Config struct.
// It automatically loads .env file if it exists. Returns default values for any
// missing environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists. Skip logging when absent (e.g. env from secrets/parameter store).
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	topK := getEnvAsInt("TOP_K", 1)
	if topK < 1 {
		return nil, errors.New("TOP_K must be a positive integer")
	}

	maxResults := getEnvAsInt("MAX_RESULTS", 5)
	if maxResults < 1 {
		return nil, errors.New("MAX_RESULTS must be a positive integer")
	}

	ratePerSecond := getEnvAsFloat("OUTBOUND_RATE_PER_SECOND", 1)
	if ratePerSecond <= 0 {
		return nil, errors.New("OUTBOUND_RATE_PER_SECOND must be positive")
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		APIKey:   os.Getenv("API_KEY"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		GenerationProvider: getEnv("GENERATION_PROVIDER", GenerationProviderOpenAI),
		GenerationModel:    os.Getenv("GENERATION_MODEL"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		GoogleAPIKey:       os.Getenv("GOOGLE_API_KEY"),

		ClipServiceURL: getEnv("CLIP_SERVICE_URL", "http://localhost:8901"),
		EmbedTimeout:   getEnvAsDuration("EMBED_TIMEOUT", 2*time.Minute),

		HostingProvider: getEnv("HOSTING_PROVIDER", HostingProviderImgBB),
		ImgBBAPIKey:     os.Getenv("IMGBB_API_KEY"),
		MinioEndpoint:   os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey:  os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:  os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:     getEnv("MINIO_BUCKET", "scout-looks"),
		MinioUseSSL:     getEnvAsBool("MINIO_USE_SSL", false),
		MinioURLExpiry:  getEnvAsDuration("MINIO_URL_EXPIRY", 24*time.Hour),

		SerpAPIKey:    os.Getenv("SERPAPI_API_KEY"),
		SearchCountry: getEnv("SEARCH_COUNTRY", "us"),
		SearchLocale:  getEnv("SEARCH_LOCALE", "en"),
		SearchType:    getEnv("SEARCH_TYPE", "products"),

		CatalogManifest: getEnv("CATALOG_MANIFEST", "catalog.json"),
		IndexSnapshot:   getEnv("INDEX_SNAPSHOT", "index.gob"),

		TopK:       topK,
		MaxResults: maxResults,

		ExternalCallTimeout:   getEnvAsDuration("EXTERNAL_CALL_TIMEOUT", 30*time.Second),
		OutboundRatePerSecond: ratePerSecond,
	}

	return cfg, nil
}
