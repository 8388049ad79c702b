// Package cli implements the schemagraph command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/schemagraph/pkg/buildinfo"
	"github.com/matzehuels/schemagraph/pkg/cache"
	"github.com/matzehuels/schemagraph/pkg/config"
	"github.com/matzehuels/schemagraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "schemagraph"

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
	// Out receives status lines, tables and other user-facing output.
	Out io.Writer
}

// New creates a new CLI instance whose logger writes to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "schemagraph",
		Short: "schemagraph draws API schemas as graphs",
		Long: `schemagraph reads the component schemas of an API description (OpenAPI,
JSON Schema definitions, or any mapping of named schemas) and draws them as a
graph of object boxes, arrays, references and unions.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().String("config", "", "config file (default ./"+config.DefaultFile+")")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves configuration for cmd, including its flags.
func (c *CLI) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		c.SetLogLevel(LogDebug)
	}
	c.Logger.Debug("loaded configuration",
		"formats", cfg.Artifacts(),
		"theme", cfg.Theme,
		"engine", cfg.Engine,
		"cache", cfg.Cache.Backend)
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) *pipeline.Runner {
	c.installHooks()
	return pipeline.NewRunner(c.newCache(ctx, cfg), nil, c.Logger)
}

// newCache opens the configured cache backend. A backend that cannot be
// opened is logged and replaced by the null cache; caching never fails a run.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) cache.Cache {
	switch cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache()
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, appName+":")
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "error", err)
			return cache.NewNullCache()
		}
		return rc
	}

	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "error", err)
			return cache.NewNullCache()
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "error", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/schemagraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Shared Flags
// =============================================================================

// addOutputFlags registers the flags shared by commands that render.
func addOutputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceP("format", "f", nil, "extra output formats: html, json, dot, png, pdf (svg is always written)")
	f.String("theme", "", "color theme: light (default), dark")
	f.String("engine", "", "layout engine: builtin (default), graphviz")
	f.String("root-id", "", "id of the root <svg> element")
	f.Float64("scale", 0, "PNG resolution multiplier")
	f.Bool("no-cache", false, "disable the artifact cache")
	f.Bool("refresh", false, "ignore cached artifacts and render again")
}
