package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var variantPrefixRe = regexp.MustCompile(`^\w+$`)

// Load builds a configuration from defaults, an optional YAML file and the
// environment, then validates it. An empty path skips the file.
//
// Environment variables in the binary prefix are expanded once, after the
// environment overrides are applied.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()
	cfg.BinaryPrefix = expandEnvVar(cfg.BinaryPrefix)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors. It does not modify cfg, so it
// is safe to call again after flags have been applied.
func Validate(cfg *Config) error {
	if err := validateOutputScriptName(cfg.OutputScriptName); err != nil {
		return fmt.Errorf("output_script_name: %w", err)
	}

	for i, p := range cfg.VariantPrefixes {
		if !variantPrefixRe.MatchString(p) {
			return fmt.Errorf("variant_prefixes[%d]: %q must be a non-empty word (letters, digits, _)", i, p)
		}
	}

	return nil
}

func validateOutputScriptName(name string) error {
	if name == "" {
		return errors.New("must not be empty")
	}

	if strings.HasSuffix(name, "/") || strings.HasSuffix(name, string(filepath.Separator)) {
		return fmt.Errorf("%q names a directory, not a file base name", name)
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR
// anywhere in s.
func expandEnvVar(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}
	return os.ExpandEnv(s)
}
