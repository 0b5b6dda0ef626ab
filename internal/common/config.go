package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server Server
	Vision VisionConfig
	Remote RemoteConfig
	AI     AIConfig
	Chain  ChainConfig
	Store  StoreConfig
	Engine EngineConfig
}

// Server holds HTTP server configuration
type Server struct {
	HTTPAddr string
}

// VisionConfig holds the upstream OCR recognition service configuration
type VisionConfig struct {
	Endpoint string
	APIKey   string
	Enhance  bool
}

// RemoteConfig holds the remote structured-parse service configuration
type RemoteConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// AIConfig holds the generative parser configuration
type AIConfig struct {
	Provider    string // "openai" | "gemini"
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// ChainConfig holds fallback orchestration knobs
type ChainConfig struct {
	StrategyTimeout time.Duration
}

// StoreConfig holds receipt store configuration
type StoreConfig struct {
	Path string
}

// EngineConfig holds defaults applied to extraction requests
type EngineConfig struct {
	Currency     string
	ExchangeRate float64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: Server{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
		Vision: VisionConfig{
			Endpoint: getEnv("VISION_ENDPOINT", ""),
			APIKey:   getEnv("VISION_API_KEY", ""),
			Enhance:  getEnvAsBool("VISION_ENHANCE", true),
		},
		Remote: RemoteConfig{
			BaseURL: getEnv("REMOTE_PARSE_URL", ""),
			APIKey:  getEnv("REMOTE_PARSE_API_KEY", ""),
			Timeout: getEnvAsDuration("REMOTE_PARSE_TIMEOUT", 15*time.Second),
		},
		AI: AIConfig{
			Provider:    getEnv("AI_PROVIDER", "openai"),
			APIKey:      getEnv("AI_API_KEY", os.Getenv("OPENAI_API_KEY")),
			Model:       getEnv("AI_MODEL", ""),
			Temperature: getEnvAsFloat32("AI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("AI_TIMEOUT", 45*time.Second),
		},
		Chain: ChainConfig{
			StrategyTimeout: getEnvAsDuration("STRATEGY_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			Path: getEnv("STORE_PATH", "./receipts.db"),
		},
		Engine: EngineConfig{
			Currency:     getEnv("SOURCE_CURRENCY", "JPY"),
			ExchangeRate: getEnvAsFloat64("EXCHANGE_RATE", 1.0),
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Store.Path == "" {
		return NewAppError("CONFIG_ERROR", "STORE_PATH is required", ErrInvalidInput)
	}
	if c.Engine.ExchangeRate <= 0 {
		return NewAppError("CONFIG_ERROR", "EXCHANGE_RATE must be positive", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
