package configs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"anneta.link/configs/configslog"

	"github.com/joho/godotenv"
)

// PaymentConfig holds the signed-token gateway settings.
type PaymentConfig struct {
	APIURL     string        // gateway endpoint for payment initiation
	AccountKey string        // access key embedded in every token, echoed back in callbacks
	Secret     string        // shared HMAC secret
	Currency   string        // ISO 4217, e.g. "EUR"
	TokenTTL   time.Duration // validity window of outbound tokens
	Timeout    time.Duration // HTTP client timeout for the gateway round trip
}

// AppConfig is the process configuration, read once at startup and passed
// down explicitly. Nothing in the request path reads the environment.
type AppConfig struct {
	AppEnv        string
	ListenAddr    string
	DatabaseDSN   string
	PublicBaseURL string

	Payment PaymentConfig

	// ExternalOrganizationKey designates the catalog organization that
	// receives the full amount of external/foreign donations.
	ExternalOrganizationKey string
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		configslog.SLog.Debug(".env not loaded, relying on process environment")
	}

	cfg := &AppConfig{
		AppEnv:        getEnv("APP_ENV", "development"),
		ListenAddr:    getEnv("LISTEN_ADDR", ":3000"),
		DatabaseDSN:   os.Getenv("DATABASE_DSN"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),
		Payment: PaymentConfig{
			APIURL:     os.Getenv("PAYMENT_API_URL"),
			AccountKey: os.Getenv("PAYMENT_ACCOUNT_KEY"),
			Secret:     os.Getenv("PAYMENT_SECRET"),
			Currency:   getEnv("PAYMENT_CURRENCY", "EUR"),
			TokenTTL:   getEnvDuration("PAYMENT_TOKEN_TTL_MINUTES", 10) * time.Minute,
			Timeout:    getEnvDuration("PAYMENT_TIMEOUT_SECONDS", 10) * time.Second,
		},
		ExternalOrganizationKey: getEnv("EXTERNAL_ORGANIZATION_KEY", "valisannetus"),
	}

	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("DATABASE_DSN is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback int64) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return time.Duration(n)
		}
		configslog.SLog.Warnf("invalid %s value %q, using default %d", key, v, fallback)
	}
	return time.Duration(fallback)
}
