package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the model and optimizer configuration
type Config struct {
	NumChar      int     `json:"num_char"`
	HiddenDim    int     `json:"hidden_dim"`
	LearningRate float64 `json:"learning_rate"`
	Decay        float64 `json:"decay"`
	GradClip     float64 `json:"grad_clip"`
	Seed         int64   `json:"seed"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c == nil {
		return errors.Wrap(ErrInvalidConfig, "nil config")
	}
	if c.NumChar <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "num_char must be positive, got %d", c.NumChar)
	}
	if c.HiddenDim <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "hidden_dim must be positive, got %d", c.HiddenDim)
	}
	if c.LearningRate <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "learning_rate must be positive, got %g", c.LearningRate)
	}
	if c.Decay <= 0 || c.Decay > 1 {
		return errors.Wrapf(ErrInvalidConfig, "decay must be in (0, 1], got %g", c.Decay)
	}
	if c.GradClip < 0 {
		return errors.Wrapf(ErrInvalidConfig, "grad_clip must not be negative, got %g", c.GradClip)
	}
	return nil
}

// Load reads a JSON configuration. Fields missing from the file keep their Default value.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "failed to parse config JSON")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Default returns a default configuration covering 7-bit ASCII
func Default() *Config {
	return &Config{
		NumChar:      128,
		HiddenDim:    200,
		LearningRate: 0.5,
		Decay:        0.95,
		GradClip:     10,
		Seed:         1,
	}
}
