// Package cli implements the flowcanvas command-line interface.
//
// The commands load a workflow graph file (or the built-in demo graph),
// apply edits through the canvas, and render the routed result:
//   - render: write SVG, JSON, PNG, or PDF artifacts
//   - routes: print each connection's faces, curve intensity, and path data
//   - move: replay block moves and joint drags, printing joint positions
//   - edit: drag blocks and joints from the keyboard in a terminal editor
//   - serve: HTTP editor with per-client drag sessions
//   - mcp: the same edits as Model Context Protocol tools over stdio
//   - cache: inspect and clear the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// attached to the command context and retrieved with loggerFromContext.
//
// # Configuration
//
// Defaults for rendering, caching, and the editor server are read from
// $XDG_CONFIG_HOME/flowcanvas/config.toml when present (see [Config]).
// Command-line flags override file values.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/buildinfo"
	"github.com/matzehuels/flowcanvas/pkg/cache"
	"github.com/matzehuels/flowcanvas/pkg/canvas"
	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/pipeline"
	"github.com/matzehuels/flowcanvas/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "flowcanvas"

// LogInfo is the level main starts the logger at; --verbose lowers it to debug.
const LogInfo = log.InfoLevel

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetVerbose switches between info and debug logging.
func (c *CLI) SetVerbose(verbose bool) {
	c.SetLogLevel(levelFor(verbose))
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Flowcanvas lays out and routes workflow node graphs",
		Long:         `Flowcanvas keeps workflow block joints on their blocks while you drag them and routes every connection as a smooth curve leaving and entering blocks perpendicular to their faces.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/flowcanvas/config.toml)")

	for _, cmd := range []*cobra.Command{
		c.renderCommand(),
		c.routesCommand(),
		c.moveCommand(),
		c.editCommand(),
		c.serveCommand(),
		c.mcpCommand(),
	} {
		cmd.ValidArgsFunction = completeGraphFiles
		root.AddCommand(cmd)
	}
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Graph Loading
// =============================================================================

// loadCanvas reads the graph at path (the demo graph when path is empty)
// and builds a canvas over it.
func loadCanvas(ctx context.Context, path string) (*canvas.Canvas, error) {
	logger := loggerFromContext(ctx)

	g, err := graph.Load(path)
	if err != nil {
		return nil, err
	}
	blocks, conns, err := graph.ToWorkflow(g)
	if err != nil {
		return nil, err
	}

	name := path
	if name == "" {
		name = "demo graph"
	}
	logger.Debugf("Loaded %s: %d blocks, %d connections", name, len(blocks), len(conns))

	return canvas.New(blocks, conns, canvas.WithLogger(logger)), nil
}

// graphArg returns the optional graph path argument.
func graphArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Keys are scoped by
// version because rendering output may change between releases.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(nil, buildinfo.Version+":")
	return pipeline.NewRunner(ch, keyer, loggerFromContext(ctx)), nil
}

// newCache opens the configured cache backend. A redis backend that cannot
// be reached falls back to the file cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache || cfg.Backend == BackendNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Backend == BackendRedis {
		rc, err := cache.NewRedisCache(ctx, cfg.redisConfig())
		if err == nil {
			return rc, nil
		}
		loggerFromContext(ctx).Warn("redis cache unavailable, using file cache", "addr", cfg.RedisAddr, "err", err)
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/flowcanvas/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/flowcanvas/).
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
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	return strings.Split(s, ",")
}
