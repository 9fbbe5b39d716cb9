package cli

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tether/pkg/cache"
	errs "github.com/matzehuels/tether/pkg/errors"
	"github.com/matzehuels/tether/pkg/pipeline"
)

// Config is the contents of the TOML config file.
//
//	[solver]
//	max_iterations = 20
//	tolerance = 0.5
//	anchored = true
//
//	[cache]
//	enabled = true
//	ttl = "24h"
//	namespace = "editor"
//
//	[render]
//	format = "svg"
//	hide_invisible = false
type Config struct {
	Solver SolverConfig `toml:"solver"`
	Cache  CacheConfig  `toml:"cache"`
	Render RenderConfig `toml:"render"`
}

// SolverConfig holds solver defaults. Zero values defer to the solver's own
// defaults.
type SolverConfig struct {
	MaxIterations int     `toml:"max_iterations"`
	Tolerance     float64 `toml:"tolerance"`
	Anchored      bool    `toml:"anchored"`
}

// CacheConfig controls the solve result cache.
type CacheConfig struct {
	Enabled   bool     `toml:"enabled"`
	TTL       duration `toml:"ttl"`
	Namespace string   `toml:"namespace"`
}

// RenderConfig holds render defaults.
type RenderConfig struct {
	Format        string `toml:"format"`
	HideInvisible bool   `toml:"hide_invisible"`
}

// duration decodes Go duration strings such as "36h" from TOML.
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func defaultConfig() *Config {
	return &Config{
		Cache:  CacheConfig{Enabled: true, TTL: duration{cache.DefaultTTL}},
		Render: RenderConfig{Format: pipeline.FormatSVG},
	}
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing default file yields the defaults; a missing
// explicit file is an error. Unknown keys are rejected.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := configFile()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidOptions, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errs.New(errs.ErrCodeInvalidOptions, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidOptions, err, "config %s", path)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if err := errs.ValidateIterations(c.Solver.MaxIterations); err != nil {
		return err
	}
	if err := errs.ValidateTolerance(c.Solver.Tolerance); err != nil {
		return err
	}
	if c.Render.Format != "" {
		if err := pipeline.ValidateFormat(c.Render.Format); err != nil {
			return err
		}
	}
	return nil
}
