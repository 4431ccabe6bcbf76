package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	Mode            string
	OTelServiceName string
	OTelEndpoint    string
	Environment     string
	LayoutFile      string
	Layout          Layout
}

// Load reads .env (when present), the environment and, if FACILITY_LAYOUT_FILE
// is set, the TOML layout file. Environment variables override the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            envOr("APP_PORT", "8080"),
		Mode:            envOr("APP_MODE", "server"),
		OTelServiceName: envOr("OTEL_SERVICE_NAME", "parking-facility-service"),
		OTelEndpoint:    envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		Environment:     envOr("SCOUT_ENVIRONMENT", "development"),
		LayoutFile:      os.Getenv("FACILITY_LAYOUT_FILE"),
		Layout:          DefaultLayout(),
	}

	if cfg.LayoutFile != "" {
		layout, err := LoadLayout(cfg.LayoutFile)
		if err != nil {
			return nil, err
		}
		cfg.Layout = layout
	}

	cfg.Layout.Floors = envOrInt("FACILITY_FLOORS", cfg.Layout.Floors)
	cfg.Layout.Allocation = envOr("ALLOCATION_POLICY", cfg.Layout.Allocation)
	cfg.Layout.Pricing.Policy = envOr("PRICING_POLICY", cfg.Layout.Pricing.Policy)
	cfg.Layout.Pricing.ChargingRate = envOrFloat("CHARGING_HOURLY_RATE", cfg.Layout.Pricing.ChargingRate)
	cfg.Layout.Pricing.MinimumFee = envOrFloat("MINIMUM_PARKING_FEE", cfg.Layout.Pricing.MinimumFee)

	if err := cfg.Layout.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envOrFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
