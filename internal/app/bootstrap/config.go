// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for StaffHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, token_key, etc.
//   - Environment variables: STAFFHUB_MONGO_URI, STAFFHUB_TOKEN_KEY, etc.
//   - Command-line flags: --mongo_uri, --token_key, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "staffhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "token_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Bearer token signing key (must be strong in production)"},
	{Name: "token_ttl", Default: "12h", Desc: "Bearer token lifetime (e.g., 12h, 30m)"},

	{Name: "cors_allowed_origins", Default: "http://localhost:5173", Desc: "Comma-separated origins allowed to call the API"},

	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts allowed per client IP per window"},
	{Name: "login_rate_window", Default: "1m", Desc: "Sliding window for login throttling"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STAFFHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "STAFFHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		TokenKey: appValues.String("token_key"),
		TokenTTL: appValues.Duration("token_ttl", 12*time.Hour),

		CORSAllowedOrigins: splitOrigins(appValues.String("cors_allowed_origins")),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", time.Minute),
	}

	return coreCfg, appCfg, nil
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// ValidateConfig performs app-specific config validation.
//
// StaffHub validates the MongoDB URI format to catch configuration errors
// early, before attempting to connect, and refuses the development token
// key in production.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.TokenKey == "" {
		return fmt.Errorf("token_key must not be empty")
	}
	if coreCfg.Env == "prod" && strings.HasPrefix(appCfg.TokenKey, "dev-only-") {
		return fmt.Errorf("token_key is still the development default; set STAFFHUB_TOKEN_KEY")
	}
	if appCfg.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}

	return nil
}
