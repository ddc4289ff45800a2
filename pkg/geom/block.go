package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// =============================================================================
// Constants
// =============================================================================

// Block dimensions and routing constants shared by every block and connection.
const (
	// BlockWidth is the width of every block body.
	BlockWidth = 100.0

	// BlockHeight is the height of every block body.
	BlockHeight = 100.0

	// Padding expands a block's rectangle on all sides in [BoundsOf].
	Padding = 20.0

	// PerpendicularOffset is how far a connection runs straight out of a
	// block face before it starts to curve.
	PerpendicularOffset = 20.0

	// MinCurveDistance is the floor for the Bezier control-point displacement.
	MinCurveDistance = 50.0

	// CurveIntensityFactor is the fraction of the span distance used as the
	// control-point displacement.
	CurveIntensityFactor = 0.5
)

// =============================================================================
// Edge
// =============================================================================

// Edge identifies one of the four sides of a block.
// The declaration order is also the tie-break priority of [NearestEdge].
type Edge int

const (
	Left Edge = iota
	Right
	Top
	Bottom
)

// Edges lists all edges in tie-break order.
var Edges = [4]Edge{Left, Right, Top, Bottom}

// String returns the lowercase edge name.
func (e Edge) String() string {
	switch e {
	case Left:
		return "left"
	case Right:
		return "right"
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (e Edge) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Edge) UnmarshalText(text []byte) error {
	edge, err := ParseEdge(string(text))
	if err != nil {
		return err
	}
	*e = edge
	return nil
}

// ParseEdge parses a lowercase edge name.
func ParseEdge(s string) (Edge, error) {
	for _, e := range Edges {
		if e.String() == s {
			return e, nil
		}
	}
	return 0, fmt.Errorf("unknown edge %q", s)
}

// Horizontal reports whether the edge's outward normal points along x
// (left and right edges).
func (e Edge) Horizontal() bool { return e == Left || e == Right }

// Normal returns the outward unit normal of the edge.
func (e Edge) Normal() Point {
	switch e {
	case Left:
		return Point{X: -1}
	case Right:
		return Point{X: 1}
	case Top:
		return Point{Y: -1}
	default:
		return Point{Y: 1}
	}
}

// Line returns the fixed coordinate of edge e for a block anchored at anchor:
// an x value for left/right, a y value for top/bottom.
func (e Edge) Line(anchor Point) float64 {
	switch e {
	case Left:
		return anchor.X
	case Right:
		return anchor.X + BlockWidth
	case Top:
		return anchor.Y
	default:
		return anchor.Y + BlockHeight
	}
}

// =============================================================================
// Bounds
// =============================================================================

// Bounds is an axis-aligned rectangle in canvas coordinates.
type Bounds struct {
	Left, Right float64
	Top, Bottom float64
}

// BoundsOf returns the rectangle of a block anchored at anchor, expanded by
// [Padding] on every side.
func BoundsOf(anchor Point) Bounds {
	return Bounds{
		Left:   anchor.X - Padding,
		Right:  anchor.X + BlockWidth + Padding,
		Top:    anchor.Y - Padding,
		Bottom: anchor.Y + BlockHeight + Padding,
	}
}

// Box returns b as a gonum box.
func (b Bounds) Box() r2.Box {
	return r2.Box{
		Min: r2.Vec{X: b.Left, Y: b.Top},
		Max: r2.Vec{X: b.Right, Y: b.Bottom},
	}
}

// Width returns the horizontal span of b.
func (b Bounds) Width() float64 { return b.Right - b.Left }

// Height returns the vertical span of b.
func (b Bounds) Height() float64 { return b.Bottom - b.Top }

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p Point) bool { return b.Box().Contains(p.Vec()) }

// Contains reports whether p lies inside the padded bounds of the block
// anchored at anchor, edges included.
func Contains(p, anchor Point) bool { return BoundsOf(anchor).Contains(p) }

// BodyOf returns the unpadded rectangle of the block anchored at anchor.
func BodyOf(anchor Point) Bounds {
	return Bounds{
		Left:   anchor.X,
		Right:  anchor.X + BlockWidth,
		Top:    anchor.Y,
		Bottom: anchor.Y + BlockHeight,
	}
}

// BodyContains reports whether p lies on the block body itself, edges
// included. Pointer presses hit-test against the body, not the padding.
func BodyContains(p, anchor Point) bool { return BodyOf(anchor).Contains(p) }

// =============================================================================
// Edge Classification
// =============================================================================

// EdgeDistances returns the perpendicular distance from p to each edge of the
// block anchored at anchor, indexed by [Edge].
func EdgeDistances(p, anchor Point) [4]float64 {
	rel := p.Sub(anchor)
	return [4]float64{
		Left:   math.Abs(rel.X),
		Right:  math.Abs(rel.X - BlockWidth),
		Top:    math.Abs(rel.Y),
		Bottom: math.Abs(rel.Y - BlockHeight),
	}
}

// NearestEdge returns the edge of the block anchored at anchor that is
// closest to p. Equal distances resolve to the earlier edge in [Edges].
func NearestEdge(p, anchor Point) Edge {
	d := EdgeDistances(p, anchor)
	best := Left
	for _, e := range Edges[1:] {
		if d[e] < d[best] {
			best = e
		}
	}
	return best
}
