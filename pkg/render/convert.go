package render

import (
	"bytes"
	"context"
	"os/exec"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/flowcanvas/pkg/errors"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatJSON, FormatPNG, FormatPDF}

var contentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatJSON: "application/json",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
}

// ValidFormat reports whether f is one of [Formats].
func ValidFormat(f string) bool { return slices.Contains(Formats, f) }

// Rasterized reports whether f is produced by converting SVG output.
func Rasterized(f string) bool { return f == FormatPNG || f == FormatPDF }

// ContentType returns the MIME type for an output format.
func ContentType(f string) string {
	if ct, ok := contentTypes[f]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Converter turns SVG documents into PNG or PDF through an external
// rsvg-convert binary.
type Converter struct {
	// Binary is the converter executable. Empty means rsvg-convert on PATH.
	Binary string
}

// DefaultConverter looks up rsvg-convert on PATH.
var DefaultConverter = Converter{}

func (c Converter) binary() string {
	if c.Binary == "" {
		return "rsvg-convert"
	}
	return c.Binary
}

// Available reports whether the converter binary can be found.
func (c Converter) Available() bool {
	_, err := exec.LookPath(c.binary())
	return err == nil
}

// Convert renders svg as format. scale only applies to PNG output, where 2
// doubles the pixel size.
func (c Converter) Convert(ctx context.Context, svg []byte, format string, scale float64) ([]byte, error) {
	if !Rasterized(format) {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "cannot convert svg to %q", format)
	}
	bin, err := exec.LookPath(c.binary())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err,
			"%s output needs librsvg (brew install librsvg, apt install librsvg2-bin)", format)
	}

	args := []string{"-f", format}
	if format == FormatPNG && scale > 0 {
		args = append(args, "-z", strconv.FormatFloat(scale, 'f', 2, 64))
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(svg)
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", c.binary(), strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// ToPNG converts svg to PNG with [DefaultConverter].
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	return DefaultConverter.Convert(ctx, svg, FormatPNG, scale)
}

// ToPDF converts svg to PDF with [DefaultConverter].
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return DefaultConverter.Convert(ctx, svg, FormatPDF, 0)
}
