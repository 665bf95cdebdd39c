package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the client.
type Config struct {
	AppName     string
	Environment string
	API         APIConfig
	OTP         OTPConfig
	Storage     StorageConfig
	Logger      LoggerConfig
	Context     ContextConfig
}

type APIConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

type OTPConfig struct {
	CodeLength     int
	ResendCooldown time.Duration
	AutoSubmit     bool
}

type StorageConfig struct {
	Path   string
	Bucket string
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type ContextConfig struct {
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the client can start in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "pure-delivery-client"),
		Environment: getString("APP_ENV", "development"),
		API: APIConfig{
			BaseURL:        getString("API_BASE_URL", "https://localhost:7155/api/v1"),
			RequestTimeout: getDuration("API_REQUEST_TIMEOUT", 10*time.Second),
		},
		OTP: OTPConfig{
			CodeLength:     getInt("OTP_CODE_LENGTH", 6),
			ResendCooldown: getDuration("OTP_RESEND_COOLDOWN", 60*time.Second),
			AutoSubmit:     getBool("OTP_AUTO_SUBMIT", true),
		},
		Storage: StorageConfig{
			Path:   getString("STATE_DB_PATH", "./data/state.db"),
			Bucket: getString("STATE_DB_BUCKET", "state"),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "console"),
		},
		Context: ContextConfig{
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
	}

	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
