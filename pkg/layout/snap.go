package layout

import (
	"github.com/matzehuels/flowcanvas/pkg/geom"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

// SnapToPerimeter returns the point on b's rectangular boundary nearest to p.
//
// The edge is chosen with geom.NearestEdge; the coordinate along that edge is
// clamped to the block's extent. The result is always exactly on the
// perimeter, however far p is from the block.
func SnapToPerimeter(p geom.Point, b workflow.Block) geom.Point {
	rel := p.Sub(b.Position)
	edge := geom.NearestEdge(p, b.Position)

	if edge.Horizontal() {
		return geom.Point{
			X: edge.Line(b.Position),
			Y: b.Position.Y + geom.Clamp(rel.Y, 0, geom.BlockHeight),
		}
	}
	return geom.Point{
		X: b.Position.X + geom.Clamp(rel.X, 0, geom.BlockWidth),
		Y: edge.Line(b.Position),
	}
}

// OnPerimeter reports whether p lies exactly on b's rectangular boundary.
func OnPerimeter(p geom.Point, b workflow.Block) bool {
	left, right := b.Position.X, b.Position.X+geom.BlockWidth
	top, bottom := b.Position.Y, b.Position.Y+geom.BlockHeight

	withinX := p.X >= left && p.X <= right
	withinY := p.Y >= top && p.Y <= bottom

	return (withinY && (p.X == left || p.X == right)) ||
		(withinX && (p.Y == top || p.Y == bottom))
}
