// Package render names the output formats and rasterizes SVG.
//
// Vector output (SVG and the JSON layout export) is produced by [sink].
// PNG and PDF are converted from that SVG by an external rsvg-convert:
//
//	svg := sink.RenderSVG(layout)
//	png, err := render.ToPNG(ctx, svg, 2)
//
// Use a [Converter] with an explicit Binary to point at a specific librsvg
// install.
package render
