package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/canvas"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/pipeline"
	"github.com/matzehuels/flowcanvas/pkg/render"
)

// defaultBaseName names outputs rendered from the demo graph.
const defaultBaseName = "workflow"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output file path (or base path for multiple outputs)
	layout   string  // previously exported layout to render instead of a graph
	formats  string  // comma-separated output formats
	width    float64 // rendered SVG width
	height   float64 // rendered SVG height
	noLabels bool    // hide "1 item" flow labels
	noGrid   bool    // hide the background grid
	selected string  // joint to highlight
	scale    float64 // PNG scale factor
	noCache  bool    // disable the artifact cache
	refresh  bool    // ignore cached artifacts
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [graph]",
		Short: "Render a workflow graph to SVG, JSON, PNG, or PDF",
		Long: `Render a workflow graph with every connection routed.

The graph file may be JSON, TOML, or YAML. Without an argument the built-in
demo workflow is rendered. Artifacts are cached by graph content and render
options.

With --layout, a layout exported by "render -f json" is rendered as-is:
its routes are drawn without re-routing and nothing is cached.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts := c.renderPipelineOptions(cmd, opts)
			if err := popts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if opts.layout != "" {
				if len(args) > 0 {
					return errors.New(errors.ErrCodeInvalidInput, "--layout cannot be combined with a graph argument")
				}
				return c.runRenderLayout(ctx, cmd.OutOrStdout(), opts, popts)
			}
			input := graphArg(args)

			cv, err := loadCanvas(ctx, input)
			if err != nil {
				return err
			}
			return c.runRender(ctx, cmd.OutOrStdout(), cv, input, opts, popts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&opts.layout, "layout", "", "render an exported layout JSON file instead of a graph")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), json, png, pdf (comma-separated)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "rendered width (default: layout frame)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "rendered height (default: layout frame)")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "hide flow labels")
	cmd.Flags().BoolVar(&opts.noGrid, "no-grid", false, "hide the background grid")
	cmd.Flags().StringVar(&opts.selected, "select", "", "highlight a joint and its connections")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "PNG scale factor (default 2)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached artifacts")

	return cmd
}

// renderPipelineOptions merges config defaults with the flags that were set.
func (c *CLI) renderPipelineOptions(cmd *cobra.Command, opts renderOpts) pipeline.Options {
	popts := c.Config.Render.pipelineOptions()
	flags := cmd.Flags()
	if flags.Changed("format") {
		popts.Formats = parseFormats(opts.formats)
	}
	if flags.Changed("width") {
		popts.Width = opts.width
	}
	if flags.Changed("height") {
		popts.Height = opts.height
	}
	if flags.Changed("no-labels") {
		popts.NoFlowLabels = opts.noLabels
	}
	if flags.Changed("no-grid") {
		popts.NoGrid = opts.noGrid
	}
	if flags.Changed("scale") {
		popts.Scale = opts.scale
	}
	popts.SelectedJoint = opts.selected
	popts.Refresh = opts.refresh
	return popts
}

// runRender renders cv, writes one file per format, and reports to w.
func (c *CLI) runRender(ctx context.Context, w io.Writer, cv *canvas.Canvas, input string, opts renderOpts, popts pipeline.Options) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts.Logger = logger
	result, err := runner.Execute(ctx, cv, popts)
	if err != nil {
		return err
	}
	prog.done("Rendered " + strings.Join(popts.Formats, ", "))

	// Artifacts written to stdout must not be interleaved with status lines.
	quiet := opts.output == "-"
	out := newPrinter(w)
	if !quiet {
		out.stats(result.Stats.BlockCount, result.Stats.ConnectionCount, result.Stats.SkippedCount,
			result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
		if n := result.Stats.SkippedCount; n > 0 {
			out.warning("%d connection(s) skipped: endpoint joints not on canvas", n)
		}
	}

	for _, format := range popts.Formats {
		path := outputPath(opts.output, input, format, len(popts.Formats) > 1)
		if err := writeOutput(w, path, result.Artifacts[format]); err != nil {
			return err
		}
		if !quiet {
			out.file(path)
		}
	}

	if input != "" && !quiet {
		out.nextStep("Inspect routes", fmt.Sprintf("%s routes %s", appName, input))
	}
	return nil
}

// runRenderLayout renders a previously exported layout without routing or
// caching. Outputs are named after the layout file.
func (c *CLI) runRenderLayout(ctx context.Context, w io.Writer, opts renderOpts, popts pipeline.Options) error {
	l, err := graph.ReadLayoutFile(opts.layout)
	if err != nil {
		return err
	}
	artifacts, err := pipeline.RenderFromLayout(ctx, l, popts)
	if err != nil {
		return err
	}
	loggerFromContext(ctx).Debug("rendered layout", "path", opts.layout, "formats", popts.Formats)

	quiet := opts.output == "-"
	out := newPrinter(w)
	if !quiet {
		out.stats(len(l.Blocks), len(l.Connections), len(l.Skipped), false)
	}
	for _, format := range popts.Formats {
		path := outputPath(opts.output, opts.layout, format, len(popts.Formats) > 1)
		if filepath.Clean(path) == filepath.Clean(opts.layout) {
			return errors.New(errors.ErrCodeInvalidPath, "output %s would overwrite the input layout", path)
		}
		if err := writeOutput(w, path, artifacts[format]); err != nil {
			return err
		}
		if !quiet {
			out.file(path)
		}
	}
	return nil
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input. If output has a
// format extension (.svg, .pdf, etc.), that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == "" {
			return defaultBaseName
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if render.ValidFormat(strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns where format is written. A single format honors an
// explicit output path verbatim; "-" writes to stdout.
func outputPath(output, input, format string, multiple bool) string {
	if output != "" && !multiple {
		return output
	}
	return basePath(output, input) + "." + format
}

// formatForPath picks the render format from an output file extension,
// defaulting to SVG.
func formatForPath(path string) string {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !render.ValidFormat(format) {
		return render.FormatSVG
	}
	return format
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
