package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/menta2k/image-cropper/pkg/ratio"
)

// Config holds the application configuration
type Config struct {
	Controller ControllerConfig `json:"controller"`
	Ratio      RatioConfig      `json:"ratio"`
	Export     ExportConfig     `json:"export"`
	Suggest    SuggestConfig    `json:"suggest"`
}

// ControllerConfig holds the crop controller's interaction parameters,
// in image-pixel units.
type ControllerConfig struct {
	HandleTolerance float64 `json:"handle_tolerance"`
	MinDimension    float64 `json:"min_dimension"`
}

// RatioConfig holds the default aspect-ratio constraint.
type RatioConfig struct {
	// Mode is "free", "original" or a "W:H" pair such as "16:9".
	Mode string `json:"mode"`
	// Portrait applies one orientation swap to the mode.
	Portrait bool `json:"portrait"`
}

// ExportConfig holds defaults for encoding the cropped region.
type ExportConfig struct {
	Format    string `json:"format"`
	Quality   int    `json:"quality"`
	Lossless  bool   `json:"lossless"`
	OutputDir string `json:"output_dir"`
	Suffix    string `json:"suffix"`
}

// SuggestConfig holds the vision-model crop-suggestion settings.
type SuggestConfig struct {
	Backend     string  `json:"backend"`
	Model       string  `json:"model"`
	URL         string  `json:"url"`
	SendFormat  string  `json:"send_format"`
	SendMaxDim  int     `json:"send_max_dim"`
	SendQuality int     `json:"send_quality"`
	Zoom        float64 `json:"zoom"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Controller: ControllerConfig{
			HandleTolerance: 10,
			MinDimension:    8,
		},
		Ratio: RatioConfig{
			Mode:     "free",
			Portrait: false,
		},
		Export: ExportConfig{
			Format:    "jpg",
			Quality:   90,
			Lossless:  false,
			OutputDir: "./output",
			Suffix:    "_cropped",
		},
		Suggest: SuggestConfig{
			Backend:     "llamacpp",
			Model:       "openbmb/minicpm-v4.5",
			URL:         "",
			SendFormat:  "jpg",
			SendMaxDim:  1536,
			SendQuality: 85,
			Zoom:        1.0,
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

// Mode resolves the configured ratio mode, with the portrait swap applied.
func (c *Config) Mode() (ratio.Mode, error) {
	m, err := ratio.Parse(c.Ratio.Mode)
	if err != nil {
		return ratio.Mode{}, err
	}
	if c.Ratio.Portrait {
		m = m.Swapped()
	}
	return m, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Controller.HandleTolerance <= 0 {
		return fmt.Errorf("controller.handle_tolerance must be positive")
	}

	if c.Controller.MinDimension <= 0 {
		return fmt.Errorf("controller.min_dimension must be positive")
	}

	if _, err := ratio.Parse(c.Ratio.Mode); err != nil {
		return fmt.Errorf("ratio.mode: %w", err)
	}

	if c.Export.Quality < 1 || c.Export.Quality > 100 {
		return fmt.Errorf("export.quality must be between 1 and 100")
	}

	switch c.Export.Format {
	case "jpg", "jpeg", "png", "bmp", "webp":
	default:
		return fmt.Errorf("export.format must be one of jpg, jpeg, png, bmp, webp")
	}

	if c.Suggest.Zoom <= 0 || c.Suggest.Zoom > 1 {
		return fmt.Errorf("suggest.zoom must be in (0, 1]")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "image-cropper", "config.json")
}
