package config

// CatalogConfig configures the SQLite conversion history.
type CatalogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// BatchConfig configures multi-input conversions.
type BatchConfig struct {
	// Upper bound on conversions running at the same time.
	MaxParallel int `yaml:"max_parallel"`
}
