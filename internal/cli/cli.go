// Package cli implements the tether command-line interface.
//
// tether loads a scene file (objects, anchor offsets and distance
// constraints), relaxes it with the constraint solver, and writes the
// adjusted scene back. It also reports graph structure and renders
// constraint diagrams.
//
// # Commands
//
//   - solve: Relax a scene and write the adjusted positions
//   - check: Report connected components and over-constrained objects
//   - render: Draw the constraint graph as DOT, SVG, PNG or PDF
//   - cache: Manage the solve result cache
//
// # Configuration
//
// Flags take precedence over the TOML config file
// ($XDG_CONFIG_HOME/tether/config.toml, or --config), which takes
// precedence over built-in defaults.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so solver and cache hooks can reach them.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tether/pkg/buildinfo"
	"github.com/matzehuels/tether/pkg/cache"
	"github.com/matzehuels/tether/pkg/observability"
	"github.com/matzehuels/tether/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "tether"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath  string
	config      *Config
	metricsFile string
	registry    *prometheus.Registry
	metrics     *observability.Metrics
}

// New creates a new CLI instance with a default logger and a private
// metrics registry.
func New(w io.Writer, level log.Level) *CLI {
	reg := prometheus.NewRegistry()
	return &CLI{
		Logger:   newLogger(w, level),
		registry: reg,
		metrics:  observability.NewMetrics(reg),
	}
}

// InstallHooks registers debug logging and metrics collection as the
// process-wide observability hooks.
func (c *CLI) InstallHooks() {
	observability.SetSolverHooks(observability.MultiSolver(LogHooks{}, c.metrics))
	observability.SetCacheHooks(observability.MultiCache(LogHooks{}, c.metrics))
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "tether keeps attached objects at their distances",
		Long:          `tether solves distance constraints between anchor points on scene objects, nudging unpinned objects until every attachment sits at its target distance.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/tether/config.toml)")
	root.PersistentFlags().StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics in text format to this file on exit")

	root.AddCommand(c.solveCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// WriteMetrics dumps the metrics registry to --metrics-file, if set, in the
// node_exporter textfile format. Call it after the root command returns so
// failed runs are recorded too.
func (c *CLI) WriteMetrics() error {
	if c.metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(c.metricsFile, c.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// cfg returns the loaded config, or defaults when no command has loaded one.
func (c *CLI) cfg() *Config {
	if c.config == nil {
		return defaultConfig()
	}
	return c.config
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cfg := c.cfg()
	store, err := newCache(noCache || !cfg.Cache.Enabled)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(store, cache.NewScopedKeyer(nil, cfg.Cache.Namespace), c.Logger)
	if cfg.Cache.TTL.Duration > 0 {
		runner.TTL = cfg.Cache.TTL.Duration
	}
	return runner, nil
}

func newCache(disabled bool) (cache.Cache, error) {
	if disabled {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/tether/).
func cacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// configFile returns the default config file path
// (~/.config/tether/config.toml).
func configFile() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}

// outputPath derives an output file next to input: scene.json with suffix
// ".solved" and ext ".json" becomes scene.solved.json.
func outputPath(input, suffix, ext string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + suffix + ext
}
