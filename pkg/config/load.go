package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the first .env file found among envFilePath (searching parent
// directories) and then builds the config from the process environment.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	logger.Info("Loading environment variables")

	if len(envFilePath) == 0 {
		logger.Debug("No environment file specified, trying default .env")
		if err := godotenv.Load(); err != nil {
			logger.Warn("No .env file found in current directory")
		}
		return loadFromEnv()
	}

	for _, path := range envFilePath {
		foundPath, err := FindEnvFile(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}

		logger.Info("Loading environment from file", "path", foundPath)
		if err := godotenv.Load(foundPath); err != nil {
			logger.Error("Failed to load environment file", "path", foundPath, "error", err)
			continue
		}
		return loadFromEnv()
	}

	logger.Info("No valid environment files found, using system environment")
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Default().Info("App config loaded",
		"env", cfg.Env,
		"server_addr", cfg.Server.Addr(),
		"rate_limit_max_requests", cfg.RateLimit.MaxRequests,
		"rate_limit_window", cfg.RateLimit.Window,
		"rates_ttl", cfg.Rates.TTL,
		"rates_failure_cooldown", cfg.Rates.FailureCooldown,
		"rates_fetch_timeout", cfg.Rates.FetchTimeout,
		"oxr_url", cfg.OpenExchangeRates.URL,
		"oxr_app_id", maskValue(cfg.OpenExchangeRates.AppID),
		"exchange_rate_api_key", maskValue(cfg.ExchangeRateAPI.APIKey),
		"redis_url", maskValue(cfg.Redis.URL),
		"quote_max_amount", cfg.Quote.MaxAmount,
		"quote_volume_threshold", cfg.Quote.VolumeThreshold,
	)
	return &cfg, nil
}

func maskValue(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
