package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Library   LibraryConfig   `toml:"library"`
	Analysis  AnalysisConfig  `toml:"analysis"`
	Recommend RecommendConfig `toml:"recommend"`
}

// LibraryConfig contains library scanning and storage settings.
//
// DataDir is resolved relative to the library root and holds both databases.
type LibraryConfig struct {
	DataDir      string   `toml:"data_dir"`
	DatabaseFile string   `toml:"database_file"`
	IndexFile    string   `toml:"index_file"`
	Extensions   []string `toml:"extensions"`
	MaxOpenConns int      `toml:"max_open_conns"`
	MaxIdleConns int      `toml:"max_idle_conns"`
}

// AnalysisConfig contains feature-extraction worker settings.
type AnalysisConfig struct {
	NumWorkers  int     `toml:"num_workers"`
	RateLimit   float64 `toml:"rate_limit"`
	SampleBytes int64   `toml:"sample_bytes"`
}

// RecommendConfig contains recommendation defaults.
type RecommendConfig struct {
	DefaultNum int `toml:"default_num"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
