// Package graph provides the file format for workflow graphs and the
// serialized form of a routed layout.
//
// # Graph Files
//
// A [Graph] lists blocks with their joints, and connections between joint
// ids. The same structure reads from JSON, TOML, or YAML; [ReadFile] picks the
// decoder from the file extension:
//
//	[[blocks]]
//	id = "trigger-1"
//	type = "trigger"
//	title = "When clicking 'Test workflow'"
//	x = 100
//	y = 100
//
//	  [[blocks.joints]]
//	  id = "trigger-1-output"
//	  type = "output"
//	  x = 200
//	  y = 150
//
//	[[connections]]
//	source = "trigger-1-output"
//	target = "if-1-input"
//
// Joint coordinates are absolute canvas coordinates. A joint's owning block
// is implied by nesting. Connections without an id get a random UUID when
// converted with [ToWorkflow].
//
// Common operations:
//
//	g, _ := graph.ReadFile("workflow.toml")   // File → Graph
//	blocks, conns, _ := graph.ToWorkflow(g)    // Graph → validated model
//	c := canvas.New(blocks, conns)
//	l := graph.Export(c)                       // Canvas → Layout
//	data, _ := graph.MarshalLayout(l)          // Layout → JSON
//
// [Default] returns the built-in demo graph used when no file is given.
//
// # Layouts
//
// A [Layout] is the routed state of a canvas: block rectangles, joint
// positions, and each connection's path. It is a render artifact consumed by
// pkg/render/sink and by external renderers; graph edits are never written
// back to graph files.
package graph
