package mcp

// Tool arguments. Fields without omitempty are required by the generated
// input schema.

type MoveBlockArgs struct {
	BlockID string  `json:"block_id" jsonschema:"id of the block to move"`
	X       float64 `json:"x" jsonschema:"new left edge of the block"`
	Y       float64 `json:"y" jsonschema:"new top edge of the block"`
}

type DragJointArgs struct {
	JointID string  `json:"joint_id" jsonschema:"id of the joint to drag"`
	X       float64 `json:"x" jsonschema:"pointer x; the joint snaps to the nearest face of its block"`
	Y       float64 `json:"y" jsonschema:"pointer y"`
}

type RenderArgs struct {
	SelectedJoint string `json:"selected_joint,omitempty" jsonschema:"joint to highlight together with the connections ending at it"`
}

type RoutesArgs struct{}

// Tool results.

type JointInfo struct {
	ID    string  `json:"id"`
	Block string  `json:"block"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Edge  string  `json:"edge"`
}

type RouteInfo struct {
	ID         string  `json:"id"`
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	SourceEdge string  `json:"source_edge"`
	TargetEdge string  `json:"target_edge"`
	Intensity  float64 `json:"intensity"`
	Path       string  `json:"path"`
}

type RoutesResult struct {
	Routes  []RouteInfo `json:"routes"`
	Skipped []string    `json:"skipped,omitempty"`
}

type MoveResult struct {
	Joints []JointInfo `json:"joints"`
	Routes []RouteInfo `json:"routes"`
}

type RenderResult struct {
	SVG string `json:"svg"`
}
