// Package pipeline runs the layout → render pipeline shared by the CLI and
// the editor server.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Layout: export the routed state of a canvas as a [graph.Layout]
//  2. Render: draw the layout in one or more formats (SVG, JSON, PNG, PDF)
//
// Both stages are cached. Layouts are keyed by the hash of the graph after
// all edits; artifacts are keyed by the layout hash plus the render options
// that change the output bytes.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, c, pipeline.Options{
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcanvas/pkg/cache"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0

	// MaxScale bounds PNG output size.
	MaxScale = 8.0
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. It supports JSON for editor requests.
type Options struct {
	Formats []string `json:"formats,omitempty"`

	// Width and Height override the rendered SVG size. Zero keeps the
	// layout frame.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// NoFlowLabels and NoGrid switch off the default decorations.
	NoFlowLabels bool `json:"no_flow_labels,omitempty"`
	NoGrid       bool `json:"no_grid,omitempty"`

	SelectedJoint string  `json:"selected_joint,omitempty"`
	Scale         float64 `json:"scale,omitempty"`

	// Refresh bypasses cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the routed canvas state.
	Layout graph.Layout

	// GraphHash is the content hash of the edited graph.
	GraphHash string

	// LayoutHash is the content hash of Layout.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	BlockCount      int
	ConnectionCount int
	SkippedCount    int
	LayoutTime      time.Duration
	RenderTime      time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // all requested artifacts came from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !render.ValidFormat(format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks every format in formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{render.FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "frame size must not be negative (got %gx%g)", o.Width, o.Height)
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 || o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be in (0, %g], got %g", MaxScale, o.Scale)
	}
	if o.SelectedJoint != "" {
		if err := errors.ValidateID("joint", o.SelectedJoint); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ArtifactKeyOpts returns cache key options for rendering format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:        format,
		FlowLabels:    !o.NoFlowLabels,
		Grid:          !o.NoGrid,
		SelectedJoint: o.SelectedJoint,
	}
	switch format {
	case render.FormatJSON:
		// JSON output ignores the drawing options.
		return cache.ArtifactKeyOpts{Format: format}
	case render.FormatPNG:
		k.Scale = o.Scale
	}
	k.Width, k.Height = o.Width, o.Height
	return k
}

