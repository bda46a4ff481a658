package config

const (
	EnvAPIURL       = "CATALOG_API_URL"
	EnvDatabasePath = "CATALOG_DATABASE_PATH"
)

// parseEnv overlays Config with non-empty environment variables.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		cfg.APIBaseURL = v
	}
	if v, ok := lookup(EnvDatabasePath); ok && v != "" {
		cfg.DatabasePath = v
	}
}
