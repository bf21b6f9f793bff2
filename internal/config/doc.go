// Package config manages application configuration for the sharing engine.
//
// The config package loads and validates configuration from environment
// variables. All configuration is centralized here to provide a single
// source of truth.
//
// # Configuration Loading
//
// Configuration is loaded from environment variables:
//
//	cfg, err := config.Load()
//
// # Configuration Groups
//
// Configuration is organized into logical groups:
//
//   - ServerConfig: process settings (environment, metrics listener)
//   - DatabaseConfig: SurrealDB connection settings
//   - EngineConfig: cleanup grace period and sweep interval
//
// # Environment Variables
//
// Key environment variables:
//
//	DB_HOST               - SurrealDB host (default: localhost)
//	DB_PORT               - SurrealDB port (default: 8000)
//	DB_NAMESPACE          - Database namespace (default: wander)
//	DB_DATABASE           - Database name (default: main)
//	DB_USER               - Database username
//	DB_PASSWORD           - Database password
//	CLEANUP_GRACE_PERIOD  - Empty-group grace period (default: 2s)
//	SWEEP_INTERVAL        - Background sweep interval (default: 1m)
//	METRICS_ADDR          - Prometheus metrics listen address (default: :9090)
//
// # Default Values
//
// Sensible defaults are provided for development; Validate reports every
// missing or inconsistent value at once.
package config
