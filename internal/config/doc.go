// Package config manages application configuration for the back-office API.
//
// Configuration is read from environment variables, optionally seeded from
// a .env file:
//
//	_ = config.LoadDotEnv()
//	cfg, err := config.Load()
//	if err == nil {
//	    err = cfg.Validate()
//	}
//
// # Configuration Groups
//
//   - ServerConfig: port, timeouts, CORS origins, metrics endpoint
//   - DatabaseConfig: DB_DRIVER (postgres, sqlite, surrealdb) plus DSN or host settings
//   - RateLimitConfig: per-client request budget
//   - LogConfig: LOG_LEVEL
//   - SeedConfig: fake data generation, never allowed in production
//   - SecurityConfig: bcrypt cost and idempotency replay window
//
// Validate reports every problem at once via errors.Join.
package config
