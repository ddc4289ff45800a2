// Package route computes connector paths between joints.
//
// A connection leaves its source joint perpendicular to the nearest face of
// the source block, curves through the open space between blocks, and enters
// the target joint perpendicular to the nearest face of the target block:
//
//	start ──L──> departure ~~C~~> arrival ──L──> end
//
// The straight stubs keep the curve from cutting back through either block
// body near the attachment point. The curve's control points sit beyond the
// departure and arrival points along each face's outward normal, displaced
// by a fraction of the span (never less than geom.MinCurveDistance).
//
// # Usage
//
//	p := route.ComputePath(srcJoint.Position, dstJoint.Position, srcBlock, dstBlock)
//	d := p.SVG() // "M 200 150 L 220 150 C ..."
//
// The router never sees dangling connections: callers resolve both blocks
// first and skip the connection when either is missing.
package route

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/flowcanvas/pkg/geom"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

// Op is a path drawing command.
type Op byte

const (
	MoveTo  Op = 'M'
	LineTo  Op = 'L'
	CurveTo Op = 'C'
)

// String returns the SVG command letter.
func (o Op) String() string { return string(rune(o)) }

// MarshalText implements encoding.TextMarshaler.
func (o Op) MarshalText() ([]byte, error) { return []byte{byte(o)}, nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Op) UnmarshalText(text []byte) error {
	if len(text) == 1 {
		switch op := Op(text[0]); op {
		case MoveTo, LineTo, CurveTo:
			*o = op
			return nil
		}
	}
	return fmt.Errorf("unknown path op %q", text)
}

// Segment is one drawing command. C1 and C2 are only meaningful for CurveTo.
type Segment struct {
	Op Op         `json:"op"`
	C1 geom.Point `json:"c1,omitzero"`
	C2 geom.Point `json:"c2,omitzero"`
	To geom.Point `json:"to"`
}

// Path is a routed connector: MoveTo(start), LineTo(departure),
// CurveTo(c1, c2, arrival), LineTo(end).
type Path struct {
	Segments   []Segment `json:"segments"`
	SourceEdge geom.Edge `json:"source_edge"`
	TargetEdge geom.Edge `json:"target_edge"`
	Intensity  float64   `json:"intensity"`
}

// ComputePath routes a connector from start on src to end on dst.
func ComputePath(start, end geom.Point, src, dst workflow.Block) Path {
	srcEdge := geom.NearestEdge(start, src.Position)
	dstEdge := geom.NearestEdge(end, dst.Position)

	departure := perpendicularPoint(start, src.Position, srcEdge)
	arrival := perpendicularPoint(end, dst.Position, dstEdge)

	intensity := CurveIntensity(departure, arrival)
	c1 := departure.Add(srcEdge.Normal().Scale(intensity))
	c2 := arrival.Add(dstEdge.Normal().Scale(intensity))

	return Path{
		Segments: []Segment{
			{Op: MoveTo, To: start},
			{Op: LineTo, To: departure},
			{Op: CurveTo, C1: c1, C2: c2, To: arrival},
			{Op: LineTo, To: end},
		},
		SourceEdge: srcEdge,
		TargetEdge: dstEdge,
		Intensity:  intensity,
	}
}

// CurveIntensity returns the control-point displacement for a curve spanning
// from departure to arrival.
func CurveIntensity(departure, arrival geom.Point) float64 {
	return math.Max(geom.Distance(departure, arrival)*geom.CurveIntensityFactor, geom.MinCurveDistance)
}

// perpendicularPoint offsets p to geom.PerpendicularOffset outside the given
// edge of the block anchored at anchor, keeping p's coordinate along the edge.
func perpendicularPoint(p, anchor geom.Point, edge geom.Edge) geom.Point {
	line := edge.Line(anchor)
	n := edge.Normal()
	if edge.Horizontal() {
		return geom.Point{X: line + n.X*geom.PerpendicularOffset, Y: p.Y}
	}
	return geom.Point{X: p.X, Y: line + n.Y*geom.PerpendicularOffset}
}

// Start returns the first point of the path.
func (p Path) Start() geom.Point {
	if len(p.Segments) == 0 {
		return geom.Point{}
	}
	return p.Segments[0].To
}

// End returns the last point of the path.
func (p Path) End() geom.Point {
	if len(p.Segments) == 0 {
		return geom.Point{}
	}
	return p.Segments[len(p.Segments)-1].To
}

// Departure returns the point where the path leaves the source stub.
func (p Path) Departure() geom.Point { return p.pointAt(1) }

// Arrival returns the point where the curve meets the target stub.
func (p Path) Arrival() geom.Point { return p.pointAt(2) }

func (p Path) pointAt(i int) geom.Point {
	if i >= len(p.Segments) {
		return p.End()
	}
	return p.Segments[i].To
}

// Curve returns the CurveTo segment and true, or false if the path has none.
func (p Path) Curve() (Segment, bool) {
	for _, s := range p.Segments {
		if s.Op == CurveTo {
			return s, true
		}
	}
	return Segment{}, false
}

// SVG returns the path as SVG path data.
func (p Path) SVG() string {
	var b strings.Builder
	for i, s := range p.Segments {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(byte(s.Op))
		b.WriteByte(' ')
		if s.Op == CurveTo {
			writePoint(&b, s.C1)
			b.WriteString(", ")
			writePoint(&b, s.C2)
			b.WriteString(", ")
		}
		writePoint(&b, s.To)
	}
	return b.String()
}

func writePoint(b *strings.Builder, p geom.Point) {
	b.WriteString(formatCoord(p.X))
	b.WriteByte(' ')
	b.WriteString(formatCoord(p.Y))
}

// formatCoord prints v with up to two decimals and no trailing zeros.
func formatCoord(v float64) string {
	s := strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
	if s == "-0" {
		return "0"
	}
	return s
}

// LabelAnchor returns where a connection's flow label is drawn: above the
// midpoint of its two joints.
func LabelAnchor(start, end geom.Point) geom.Point {
	return geom.Midpoint(start, end).Add(geom.Pt(0, -labelRise))
}

const labelRise = 10.0
