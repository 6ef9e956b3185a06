package config

import (
	"os"

	"github.com/ccollicutt/ncclreplay/pkg/decoder"
	"github.com/ccollicutt/ncclreplay/pkg/synth"
)

// Default values for configuration.
const (
	DefaultOutputScriptName = "net_nccl_rccl"
	DefaultBinaryPrefix     = synth.DefaultBinaryPrefix
)

// Environment variable names.
const (
	EnvBinaryPrefix     = "NCCLREPLAY_BINARY_PREFIX"
	EnvOutputScriptName = "NCCLREPLAY_OUTPUT_SCRIPT_NAME"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	prefixes := make([]string, len(decoder.DefaultVariantPrefixes))
	copy(prefixes, decoder.DefaultVariantPrefixes)

	return &Config{
		OutputScriptName: DefaultOutputScriptName,
		BinaryPrefix:     DefaultBinaryPrefix,
		VariantPrefixes:  prefixes,
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if prefix := os.Getenv(EnvBinaryPrefix); prefix != "" {
		c.BinaryPrefix = prefix
	}
	if name := os.Getenv(EnvOutputScriptName); name != "" {
		c.OutputScriptName = name
	}
}
