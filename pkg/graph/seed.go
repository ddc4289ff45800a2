package graph

// Default returns the demo workflow: a trigger feeding a condition whose
// true and false branches each run a command.
func Default() Graph {
	return Graph{
		Blocks: []Block{
			{
				ID: "trigger-1", Type: "trigger", Title: "When clicking 'Test workflow'", X: 100, Y: 100,
				Joints: []Joint{
					{ID: "trigger-1-output", Type: "output", X: 200, Y: 150},
				},
			},
			{
				ID: "if-1", Type: "condition", Title: "If Condition", X: 300, Y: 100,
				Joints: []Joint{
					{ID: "if-1-input", Type: "input", X: 300, Y: 150},
					{ID: "if-1-output-true", Type: "output", X: 400, Y: 125, Label: "true"},
					{ID: "if-1-output-false", Type: "output", X: 400, Y: 175, Label: "false"},
				},
			},
			{
				ID: "command-1", Type: "action", Title: "Execute Command", X: 500, Y: 50,
				Joints: []Joint{
					{ID: "command-1-input", Type: "input", X: 500, Y: 100},
				},
			},
			{
				ID: "command-2", Type: "action", Title: "Execute Command", X: 500, Y: 150,
				Joints: []Joint{
					{ID: "command-2-input", Type: "input", X: 500, Y: 200},
				},
			},
		},
		Connections: []Connection{
			{ID: "conn-1", Source: "trigger-1-output", Target: "if-1-input"},
			{ID: "conn-2", Source: "if-1-output-true", Target: "command-1-input"},
			{ID: "conn-3", Source: "if-1-output-false", Target: "command-2-input"},
		},
	}
}

// Load reads the graph file at path, or returns Default when path is empty.
func Load(path string) (Graph, error) {
	if path == "" {
		return Default(), nil
	}
	return ReadFile(path)
}
