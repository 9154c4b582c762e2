// Package config provides 12-factor configuration management for the shell service.
//
// Configuration is loaded from environment variables with defaults.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Shell: Shell origin, trusted sibling label, store app, keyboard shortcuts
//   - Catalog: Catalog fetch URL, push channel URL, local seed directory
//   - Probe: Escape-hatch probe timeout
//   - Storage: Layout persistence driver and path
//   - Logging: Log level and output format
//   - RateLimit: Per-client rate limiting
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Shell served from %s\n", cfg.Shell.Origin)
//
// Environment Variables:
//   - PORT, HOST
//   - SHELL_ORIGIN, SHELL_TRUSTED_LABEL, SHELL_STORE_APP, SHELL_LOCAL_HOSTS
//   - SHELL_KEY_DRAWER, SHELL_KEY_SWITCHER, SHELL_KEY_HOME
//   - CATALOG_URL, CATALOG_PUSH_URL, CATALOG_SEED_DIR
//   - PROBE_TIMEOUT, PROBE_ENABLED
//   - STORAGE_DRIVER, STORAGE_PATH
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
