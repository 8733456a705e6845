package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sitelens/sitelens/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Endpoint string       `json:"endpoint"`
	Scenario string       `json:"scenario"`
	Upload   UploadConfig `json:"upload"`
}

// UploadConfig controls the optional client-side downscale applied before
// an image is sent to the service.
type UploadConfig struct {
	MaxDim  int `json:"max_dim"` // long side bound in px; 0 sends the original file
	Quality int `json:"quality"` // JPEG quality when MaxDim is set
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Endpoint: "http://localhost:5000",
		Scenario: string(types.DefaultScenario),
		Upload: UploadConfig{
			MaxDim:  0,
			Quality: 85,
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads a .env file if one is present and applies environment
// overrides on top of the file/default values.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("SITELENS_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("SITELENS_SCENARIO"); v != "" {
		c.Scenario = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}

	if _, err := types.ParseScenario(c.Scenario); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}

	if c.Upload.MaxDim < 0 {
		return fmt.Errorf("upload.max_dim must not be negative")
	}

	if c.Upload.Quality < 1 || c.Upload.Quality > 100 {
		return fmt.Errorf("upload.quality must be between 1 and 100")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "sitelens", "config.json")
}
