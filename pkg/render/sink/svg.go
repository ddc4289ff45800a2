package sink

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	selected   string
	flowLabels bool
	grid       bool
	width      float64
	height     float64
}

// WithSelectedJoint highlights a joint and every connection that ends at it.
func WithSelectedJoint(id string) SVGOption { return func(r *svgRenderer) { r.selected = id } }

// WithFlowLabels toggles the "1 item" label drawn above each connection.
func WithFlowLabels(on bool) SVGOption { return func(r *svgRenderer) { r.flowLabels = on } }

// WithGrid toggles the dotted background grid.
func WithGrid(on bool) SVGOption { return func(r *svgRenderer) { r.grid = on } }

// WithFrame sets the rendered width and height. The viewBox still covers the
// layout frame, scaled to fit. Non-positive values keep the layout size.
func WithFrame(w, h float64) SVGOption {
	return func(r *svgRenderer) { r.width, r.height = w, h }
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{flowLabels: true, grid: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws the layout as a standalone SVG document.
func RenderSVG(l graph.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	w, h := l.Width, l.Height
	if r.width > 0 && r.height > 0 {
		w, h = r.width, r.height
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%s" height="%s">`+"\n",
		num(l.MinX), num(l.MinY), num(l.Width), num(l.Height), num(w), num(h))

	renderDefs(&buf)
	renderBackground(&buf, l, r.grid)

	buf.WriteString(`  <g class="connections">` + "\n")
	for _, c := range l.Connections {
		r.renderConnection(&buf, c)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="blocks">` + "\n")
	for _, b := range l.Blocks {
		renderBlock(&buf, b)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="joints">` + "\n")
	for _, b := range l.Blocks {
		for _, j := range b.Joints {
			r.renderJoint(&buf, j)
		}
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	for _, m := range []struct{ id, color string }{
		{"arrow-normal", colorFlow},
		{"arrow-selected", colorFlowSelected},
	} {
		fmt.Fprintf(buf, `    <marker id="%s" viewBox="0 0 12 12" refX="10" refY="6" markerWidth="8" markerHeight="8" orient="auto-start-reverse">`+
			`<path d="M 0 0 L 12 6 L 0 12 z" fill="%s"/></marker>`+"\n", m.id, m.color)
	}
	fmt.Fprintf(buf, `    <pattern id="grid" width="%s" height="%s" patternUnits="userSpaceOnUse">`+
		`<circle cx="%s" cy="%s" r="%s" fill="%s"/></pattern>`+"\n",
		num(gridSpacing), num(gridSpacing), num(gridDotSize), num(gridDotSize), num(gridDotSize/2), colorGridDot)
	buf.WriteString("  </defs>\n")
}

func renderBackground(buf *bytes.Buffer, l graph.Layout, grid bool) {
	fmt.Fprintf(buf, `  <rect class="background" x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
		num(l.MinX), num(l.MinY), num(l.Width), num(l.Height), colorBackground)
	if grid {
		fmt.Fprintf(buf, `  <rect class="grid" x="%s" y="%s" width="%s" height="%s" fill="url(#grid)"/>`+"\n",
			num(l.MinX), num(l.MinY), num(l.Width), num(l.Height))
	}
}

func (r *svgRenderer) renderConnection(buf *bytes.Buffer, c graph.LayoutConnection) {
	color, glow, marker := colorFlow, colorGlow, "arrow-normal"
	if r.selected != "" && (c.Source == r.selected || c.Target == r.selected) {
		color, glow, marker = colorFlowSelected, colorGlowSelected, "arrow-selected"
	}

	fmt.Fprintf(buf, `    <g class="connection" id="conn-%s">`+"\n", escapeXML(c.ID))
	fmt.Fprintf(buf, `      <path d="%s" stroke="%s" stroke-width="%s" stroke-opacity="%s" fill="none"/>`+"\n",
		c.Path, glow, num(glowWidth), num(glowOpacity))
	fmt.Fprintf(buf, `      <path d="%s" stroke="%s" stroke-width="%s" fill="none" stroke-linecap="round" stroke-linejoin="round" marker-end="url(#%s)"/>`+"\n",
		c.Path, color, num(strokeWidth), marker)
	if r.flowLabels {
		fmt.Fprintf(buf, `      <text x="%s" y="%s" text-anchor="middle" fill="%s" font-size="%s" font-family="%s">%s</text>`+"\n",
			num(c.LabelAt.X), num(c.LabelAt.Y), color, num(flowFontSize), fontFamily, flowLabel)
	}
	buf.WriteString("    </g>\n")
}

func renderBlock(buf *bytes.Buffer, b graph.LayoutBlock) {
	p := paletteFor(b.Type)
	cx, cy := b.X+b.Width/2, b.Y+b.Height/2

	fmt.Fprintf(buf, `    <g class="block block-%s" id="block-%s">`+"\n", escapeXML(b.Type), escapeXML(b.ID))
	fmt.Fprintf(buf, `      <rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s" stroke="%s" stroke-width="%s"/>`+"\n",
		num(b.X), num(b.Y), num(b.Width), num(b.Height), num(blockRadius), p.Fill, p.Stroke, num(p.StrokeWidth))
	fmt.Fprintf(buf, `      <text x="%s" y="%s" text-anchor="middle" dominant-baseline="central" fill="%s" font-size="28" font-family="%s">%s</text>`+"\n",
		num(cx), num(cy), p.Icon, fontFamily, escapeXML(p.Glyph))
	if b.Title != "" {
		fmt.Fprintf(buf, `      <text x="%s" y="%s" text-anchor="middle" fill="%s" font-size="14" font-weight="500" font-family="%s">%s</text>`+"\n",
			num(cx), num(b.Y-titleOffset), p.Title, fontFamily, escapeXML(b.Title))
	}
	if t, err := workflow.ParseBlockType(b.Type); err == nil && t == workflow.Condition {
		for _, j := range b.Joints {
			if j.Label == "" {
				continue
			}
			fmt.Fprintf(buf, `      <text class="branch-label" x="%s" y="%s" dominant-baseline="central" fill="%s" font-size="%s" font-family="%s">%s</text>`+"\n",
				num(j.X+branchDX), num(j.Y+branchDY), colorBranchLabel, num(flowFontSize), fontFamily, escapeXML(j.Label))
		}
	}
	buf.WriteString("    </g>\n")
}

func (r *svgRenderer) renderJoint(buf *bytes.Buffer, j graph.LayoutJoint) {
	selected := j.ID == r.selected
	color := colorFlow
	if selected {
		color = colorFlowSelected
	}

	cls := "joint joint-" + escapeXML(j.Type)
	if selected {
		cls += " selected"
	}
	fmt.Fprintf(buf, `    <g class="%s" id="joint-%s" transform="translate(%s, %s)">`+"\n",
		cls, escapeXML(j.ID), num(j.X), num(j.Y))
	if selected {
		fmt.Fprintf(buf, `      <circle r="%s" fill="%s" fill-opacity="0.2"/>`+"\n", num(glowRadius), colorGlowSelected)
		fmt.Fprintf(buf, `      <circle r="%s" stroke="%s" stroke-width="2" stroke-opacity="0.75" fill="none"/>`+"\n", num(ringRadius), colorRingSelected)
	}
	if j.Type == string(workflow.Input) {
		fmt.Fprintf(buf, `      <rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			num(-jointSize/2), num(-jointSize/2), num(jointSize), num(jointSize), color)
	} else {
		fmt.Fprintf(buf, `      <circle r="%s" fill="%s"/>`+"\n", num(jointRadius), color)
	}
	buf.WriteString("    </g>\n")
}

// num prints v with up to two decimals and no trailing zeros.
func num(v float64) string {
	s := strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
	if s == "-0" {
		return "0"
	}
	return s
}
