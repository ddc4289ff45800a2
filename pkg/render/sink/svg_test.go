package sink

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/flowcanvas/pkg/canvas"
	"github.com/matzehuels/flowcanvas/pkg/graph"
)

func defaultLayout(t *testing.T) graph.Layout {
	t.Helper()
	blocks, conns, err := graph.ToWorkflow(graph.Default())
	if err != nil {
		t.Fatal(err)
	}
	return graph.Export(canvas.New(blocks, conns))
}

func wellFormed(t *testing.T, data []byte) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("SVG is not well-formed XML: %v\n%s", err, data)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	l := defaultLayout(t)
	svg := RenderSVG(l)
	wellFormed(t, svg)
	s := string(svg)

	checks := []struct {
		name, want string
		count      int
	}{
		{"viewBox", `viewBox="60 10 580 280"`, 1},
		{"connections", `class="connection"`, 3},
		{"blocks", `<g class="block `, 4},
		{"input joints", `class="joint joint-input"`, 3},
		{"output joints", `class="joint joint-output"`, 3},
		{"flow labels", ">1 item</text>", 3},
		{"branch labels", `class="branch-label"`, 2},
		{"arrow markers", `marker-end="url(#arrow-normal)"`, 3},
		{"connection glow", `stroke="` + colorGlow + `" stroke-width="8"`, 3},
		{"grid", `fill="url(#grid)"`, 1},
		{"escaped title", "When clicking &#39;Test workflow&#39;", 1},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if got := strings.Count(s, c.want); got != c.count {
				t.Errorf("count(%q) = %d, want %d", c.want, got, c.count)
			}
		})
	}

	if !strings.Contains(s, `d="M 200 150 L 220 150 C 270 150, 230 150, 280 150 L 300 150"`) {
		t.Error("conn-1 path data missing")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	l := defaultLayout(t)

	s := string(RenderSVG(l,
		WithSelectedJoint("if-1-input"),
		WithFlowLabels(false),
		WithGrid(false),
		WithFrame(1200, 600),
	))

	if strings.Contains(s, "1 item") {
		t.Error("flow labels rendered with WithFlowLabels(false)")
	}
	if strings.Contains(s, `fill="url(#grid)"`) {
		t.Error("grid rendered with WithGrid(false)")
	}
	if !strings.Contains(s, `width="1200" height="600"`) {
		t.Error("frame size not applied")
	}
	if got := strings.Count(s, `marker-end="url(#arrow-selected)"`); got != 1 {
		t.Errorf("selected connections = %d, want 1", got)
	}
	if got := strings.Count(s, `stroke="`+colorGlowSelected+`"`); got != 1 {
		t.Errorf("selected glow paths = %d, want 1", got)
	}
	if !strings.Contains(s, `class="joint joint-input selected" id="joint-if-1-input"`) {
		t.Error("selected joint not highlighted")
	}
}

func TestRenderSVGDeterministic(t *testing.T) {
	l := defaultLayout(t)
	if !bytes.Equal(RenderSVG(l), RenderSVG(l)) {
		t.Error("RenderSVG() output differs between calls")
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	blocks, conns, _ := graph.ToWorkflow(graph.Graph{})
	svg := RenderSVG(graph.Export(canvas.New(blocks, conns)))
	wellFormed(t, svg)
	if !bytes.Contains(svg, []byte(`viewBox="0 0 80 80"`)) {
		t.Errorf("empty layout viewBox:\n%s", svg)
	}
}

func TestRenderJSON(t *testing.T) {
	l := defaultLayout(t)

	data, err := RenderJSON(l)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if n := len(decoded["connections"].([]any)); n != 3 {
		t.Errorf("connections = %d, want 3", n)
	}

	compact, err := RenderJSON(l, WithCompactJSON())
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(compact, []byte("\n  ")) {
		t.Error("WithCompactJSON() output is indented")
	}
}

func TestNum(t *testing.T) {
	tests := map[float64]string{
		0:       "0",
		-0.001:  "0",
		12.5:    "12.5",
		100:     "100",
		1.23456: "1.23",
	}
	for in, want := range tests {
		if got := num(in); got != want {
			t.Errorf("num(%v) = %q, want %q", in, got, want)
		}
	}
}
