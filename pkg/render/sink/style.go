package sink

import (
	"bytes"
	"encoding/xml"

	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

const (
	colorBackground = "#111827"
	colorGridDot    = "#1F2937"

	colorFlow         = "#4CAF50"
	colorFlowSelected = "#64B5F6"
	colorGlow         = "#43A047"
	colorGlowSelected = "#1E88E5"
	colorRingSelected = "#90CAF9"

	colorBranchLabel = "#64B5F6"

	gridSpacing = 24.0
	gridDotSize = 2.0

	blockRadius  = 8.0
	titleOffset  = 12.0
	flowLabel    = "1 item"
	fontFamily   = "Inter, sans-serif"
	branchDX     = 16.0
	branchDY     = -6.0
	jointSize    = 10.0
	jointRadius  = 5.0
	glowRadius   = 16.0
	ringRadius   = 12.0
	glowWidth    = 8.0
	strokeWidth  = 2.0
	glowOpacity  = 0.2
	flowFontSize = 12.0
)

// palette is the look of one block type.
type palette struct {
	Fill, Stroke, Title, Icon string
	StrokeWidth               float64
	Glyph                     string
}

var palettes = map[workflow.BlockType]palette{
	workflow.Trigger:   {Fill: "#F5F5F5", Stroke: "#E0E0E0", Title: "#F5F5F5", Icon: "#424242", StrokeWidth: 1, Glyph: "▶"},
	workflow.Condition: {Fill: "#424242", Stroke: "#64B5F6", Title: "#64B5F6", Icon: "#64B5F6", StrokeWidth: 2, Glyph: "⑂"},
	workflow.Action:    {Fill: "#212121", Stroke: "#DC3545", Title: "#DC3545", Icon: "#DC3545", StrokeWidth: 2, Glyph: ">_"},
}

func paletteFor(t string) palette {
	bt, err := workflow.ParseBlockType(t)
	if err != nil {
		return palettes[workflow.Action]
	}
	return palettes[bt]
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
