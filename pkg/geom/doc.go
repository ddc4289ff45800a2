// Package geom provides the point math and block-boundary queries used by the
// layout and routing packages.
//
// All coordinates live in a single canvas space where x grows to the right and
// y grows downward, so a block's top edge has a smaller y than its bottom edge.
// Every block shares the same fixed size ([BlockWidth] x [BlockHeight]); a
// block is therefore fully described by its top-left anchor, which is what the
// functions in this package take.
//
// # Edges
//
// [NearestEdge] classifies a point against the four edges of a block. Ties are
// broken in the fixed order left, right, top, bottom:
//
//	anchor := geom.Point{X: 500, Y: 50}
//	geom.NearestEdge(geom.Point{X: 480, Y: 75}, anchor) // geom.Left
//
// # Vector Math
//
// [Point] converts to and from gonum's r2.Vec, and the arithmetic helpers
// delegate to gonum.org/v1/gonum/spatial/r2.
//
// All functions are pure and safe for concurrent use.
package geom
