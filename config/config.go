// Package config holds the knobs of the detection passes. Configuration
// is read from an optional TOML file; absent keys keep their defaults and
// the command line may override individual settings.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config configures a single analysis run.
type Config struct {
	// WideningEnabled applies landmark widening after every transfer of
	// the interval range analysis. Disabling it is only safe on IR
	// without cyclic dataflow.
	WideningEnabled bool `toml:"widening-enabled"`
	// MaxExponent bounds the geometric series ±2^k, 0 ≤ k < MaxExponent,
	// injected into the widening landmark set.
	MaxExponent int `toml:"max-exponent"`
	// Debug enables human-readable traces on the diagnostic stream.
	Debug bool `toml:"debug"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		WideningEnabled: true,
		MaxExponent:     32,
		Debug:           false,
	}
}

// Load reads a TOML configuration file on top of the defaults. Keys absent
// from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, err
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return cfg, fmt.Errorf("%s: unknown configuration key %q", path, undec[0].String())
	}
	if cfg.MaxExponent < 0 {
		return cfg, fmt.Errorf("%s: max-exponent must be non-negative", path)
	}
	return cfg, nil
}
