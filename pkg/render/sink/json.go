package sink

import (
	"encoding/json"

	"github.com/matzehuels/flowcanvas/pkg/graph"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	compact bool
}

// WithCompactJSON disables indentation.
func WithCompactJSON() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

// RenderJSON exports the layout as a JSON document for external renderers.
// It includes block rectangles, joint positions and faces, and each
// connection's path both as SVG path data and as structured segments.
func RenderJSON(l graph.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if r.compact {
		return json.Marshal(l)
	}
	return graph.MarshalLayout(l)
}
