// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging level, request limits). AppConfig is everything specific to
// StaffHub: the MongoDB connection, token signing, CORS for the SPA, and
// login throttling.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Token configuration
	TokenKey string        // HMAC secret for signing bearer tokens (must be strong in production)
	TokenTTL time.Duration // Lifetime of issued tokens

	// CORS configuration for the separately served SPA
	CORSAllowedOrigins []string // Origins allowed to call the API

	// Login throttling
	LoginRateLimit  int           // Attempts allowed per client IP per window
	LoginRateWindow time.Duration // Sliding window for login attempts
}
