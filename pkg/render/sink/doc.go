// Package sink renders a routed [graph.Layout] as SVG or JSON.
//
// The SVG draws, bottom to top: the dotted grid, each connection (a faint
// wide glow under a 2px stroke ending in an arrowhead, with a flow label at
// its midpoint), the blocks with their titles, and finally the joints
// (inputs as squares, outputs as circles). Condition blocks label their
// branch joints.
//
//	l := graph.Export(c)
//	svg := sink.RenderSVG(l,
//	    sink.WithSelectedJoint("if-1-input"),
//	    sink.WithFrame(1200, 800),
//	)
//
// Rendering is deterministic: the same layout and options produce the same
// bytes, which is what makes rendered artifacts cacheable.
package sink
