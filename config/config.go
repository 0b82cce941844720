// Package config loads the client configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the file leaves a field unset.
const (
	DefaultBufferSize                     = 100
	DefaultLogLevel                       = "info"
	DefaultSlippageToleranceBps           = 50
	DefaultPriceImpactWarningThresholdBps = 200
)

// DefaultSlippagePresetsBps are the enumerated tolerances a UI offers beside
// the user-supplied custom value.
var DefaultSlippagePresetsBps = []uint16{10, 50, 100}

// ClientConfig holds everything the client needs to run.
type ClientConfig struct {
	// FeedURL is the websocket endpoint of the pool-state feed.
	FeedURL string `yaml:"feedUrl"`

	// BufferSize is the capacity of the snapshot channel.
	BufferSize uint `yaml:"bufferSize"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`

	// DefaultSlippageToleranceBps is applied when the user has not chosen one.
	DefaultSlippageToleranceBps uint16 `yaml:"defaultSlippageToleranceBps"`

	// SlippagePresetsBps are the selectable tolerance presets.
	SlippagePresetsBps []uint16 `yaml:"slippagePresetsBps"`

	// PriceImpactWarningThresholdBps is presentation-only: quotes above it get
	// flagged in the UI, the computed quote itself is unaffected.
	PriceImpactWarningThresholdBps uint32 `yaml:"priceImpactWarningThresholdBps"`
}

// LoadConfig reads and validates the configuration at path, filling defaults
// for unset fields.
func LoadConfig(path string) (*ClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &ClientConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ClientConfig) applyDefaults() {
	if c.BufferSize == 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.DefaultSlippageToleranceBps == 0 {
		c.DefaultSlippageToleranceBps = DefaultSlippageToleranceBps
	}
	if len(c.SlippagePresetsBps) == 0 {
		c.SlippagePresetsBps = append([]uint16(nil), DefaultSlippagePresetsBps...)
	}
	if c.PriceImpactWarningThresholdBps == 0 {
		c.PriceImpactWarningThresholdBps = DefaultPriceImpactWarningThresholdBps
	}
}

func (c *ClientConfig) validate() error {
	if c.FeedURL == "" {
		return errors.New("config: feedUrl is required")
	}
	if c.DefaultSlippageToleranceBps > 10000 {
		return fmt.Errorf("config: defaultSlippageToleranceBps must be in [0, 10000], got %d", c.DefaultSlippageToleranceBps)
	}
	for _, preset := range c.SlippagePresetsBps {
		if preset > 10000 {
			return fmt.Errorf("config: slippage preset must be in [0, 10000], got %d", preset)
		}
	}
	return nil
}
