package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/observability"
	"github.com/matzehuels/flowcanvas/pkg/render"
	"github.com/matzehuels/flowcanvas/pkg/render/sink"
)

// RenderFromLayout renders every format in opts.Formats without caching.
func RenderFromLayout(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(ctx, l, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// SVGOptions translates pipeline options into renderer options.
func (o *Options) SVGOptions() []sink.SVGOption {
	svgOpts := []sink.SVGOption{
		sink.WithFlowLabels(!o.NoFlowLabels),
		sink.WithGrid(!o.NoGrid),
	}
	if o.SelectedJoint != "" {
		svgOpts = append(svgOpts, sink.WithSelectedJoint(o.SelectedJoint))
	}
	if o.Width > 0 && o.Height > 0 {
		svgOpts = append(svgOpts, sink.WithFrame(o.Width, o.Height))
	}
	return svgOpts
}

func renderFormat(ctx context.Context, l graph.Layout, format string, opts Options) (data []byte, err error) {
	start := time.Now()
	observability.Render().OnRenderStart(ctx, format)
	defer func() {
		observability.Render().OnRenderComplete(ctx, format, len(l.Connections), time.Since(start), err)
	}()

	switch format {
	case render.FormatSVG:
		return sink.RenderSVG(l, opts.SVGOptions()...), nil
	case render.FormatJSON:
		return sink.RenderJSON(l)
	case render.FormatPNG:
		return render.ToPNG(ctx, sink.RenderSVG(l, opts.SVGOptions()...), opts.Scale)
	case render.FormatPDF:
		return render.ToPDF(ctx, sink.RenderSVG(l, opts.SVGOptions()...))
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
