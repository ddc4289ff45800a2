// Package pkg holds the flowcanvas libraries.
//
// Flowcanvas keeps the joints of workflow blocks attached to their blocks
// while the user drags things around, and routes every connection as a cubic
// Bezier that leaves and enters blocks perpendicular to their faces.
//
// # Data flow
//
//	graph file (TOML, YAML, JSON)
//	         ↓
//	    [graph] decode + validate into [workflow] values
//	         ↓
//	    [canvas] block moves, joint drags, routing
//	         ↓
//	    [graph.Export] routed layout
//	         ↓
//	    [render/sink] SVG or JSON, [render] PNG or PDF
//
// # Quick start
//
//	blocks, conns, _ := graph.ToWorkflow(graph.Default())
//	c := canvas.New(blocks, conns)
//	c.MoveBlock("trigger-1", geom.Pt(100, 275))
//	svg := sink.RenderSVG(graph.Export(c))
//
// # Packages
//
// Geometry and model:
//   - [geom]: points, block faces, nearest-edge classification
//   - [workflow]: blocks, joints, connections and their validation
//   - [layout]: relative joint offsets and perimeter snapping
//   - [route]: connection path geometry and SVG path data
//
// Editing and output:
//   - [canvas]: the editable graph and drag gesture tracking
//   - [graph]: file formats and the exported layout
//   - [render], [render/sink]: output formats
//   - [pipeline]: cached layout and render orchestration
//
// Infrastructure:
//   - [cache]: file, redis and null caches with key derivation
//   - [session]: per-client drag sessions for the HTTP editor
//   - [observability], [metrics]: hooks and their Prometheus implementation
//   - [errors]: coded errors and input validation
//   - [buildinfo]: version reporting
package pkg
