// Package config provides configuration loading and validation for ncclreplay.
package config

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// OutputScriptName is the base name of generated files. It may carry a
	// directory prefix.
	OutputScriptName string `yaml:"output_script_name"`

	// Unique selects deduplication mode.
	Unique bool `yaml:"unique"`

	// BinaryPrefix is prepended to every benchmark binary name.
	// Environment variables ($VAR or ${VAR}) are expanded.
	BinaryPrefix string `yaml:"binary_prefix"`

	// VariantPrefixes are method-name prefixes stripped before the
	// operation lookup (for example mscclFunc).
	VariantPrefixes []string `yaml:"variant_prefixes"`

	// WarnInexact logs a warning for every unique command whose tally is
	// not a multiple of its rank count. Output files are unaffected.
	WarnInexact bool `yaml:"warn_inexact,omitempty"`
}
