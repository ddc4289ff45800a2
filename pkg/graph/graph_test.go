package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/flowcanvas/pkg/cache"
	"github.com/matzehuels/flowcanvas/pkg/canvas"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/geom"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

const tomlGraph = `
[[blocks]]
id = "trigger-1"
type = "trigger"
title = "Start"
x = 100
y = 100

  [[blocks.joints]]
  id = "trigger-1-output"
  type = "output"
  x = 200
  y = 150

[[blocks]]
id = "command-1"
type = "command"
x = 300
y = 100

  [[blocks.joints]]
  id = "command-1-input"
  type = "input"
  x = 300
  y = 150

[[connections]]
source = "trigger-1-output"
target = "command-1-input"
`

const yamlGraph = `
blocks:
  - id: trigger-1
    type: trigger
    title: Start
    x: 100
    y: 100
    joints:
      - {id: trigger-1-output, type: output, x: 200, y: 150}
  - id: command-1
    type: command
    x: 300
    y: 100
    joints:
      - {id: command-1-input, type: input, x: 300, y: 150}
connections:
  - source: trigger-1-output
    target: command-1-input
`

const jsonGraph = `{
  "blocks": [
    {"id": "trigger-1", "type": "trigger", "title": "Start", "x": 100, "y": 100,
     "joints": [{"id": "trigger-1-output", "type": "output", "x": 200, "y": 150}]},
    {"id": "command-1", "type": "command", "x": 300, "y": 100,
     "joints": [{"id": "command-1-input", "type": "input", "x": 300, "y": 150}]}
  ],
  "connections": [{"source": "trigger-1-output", "target": "command-1-input"}]
}`

func TestReadFormats(t *testing.T) {
	tests := []struct {
		format Format
		input  string
	}{
		{FormatTOML, tomlGraph},
		{FormatYAML, yamlGraph},
		{FormatJSON, jsonGraph},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			g, err := Read(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("Read() error: %v", err)
			}
			if len(g.Blocks) != 2 || len(g.Connections) != 1 {
				t.Fatalf("got %d blocks, %d connections", len(g.Blocks), len(g.Connections))
			}
			if g.Blocks[0].Title != "Start" || g.Blocks[1].Joints[0].X != 300 {
				t.Errorf("decoded graph = %+v", g)
			}

			blocks, conns, err := ToWorkflow(g)
			if err != nil {
				t.Fatalf("ToWorkflow() error: %v", err)
			}
			if blocks[1].Type != workflow.Action {
				t.Errorf("legacy type: got %q, want action", blocks[1].Type)
			}
			if blocks[1].Joints[0].BlockID != "command-1" {
				t.Errorf("BlockID = %q, want command-1", blocks[1].Joints[0].BlockID)
			}
			if _, err := uuid.Parse(conns[0].ID); err != nil {
				t.Errorf("generated id %q is not a UUID: %v", conns[0].ID, err)
			}
		})
	}
}

func TestToWorkflowStableConnectionIDs(t *testing.T) {
	load := func() ([]workflow.Block, []workflow.Connection) {
		t.Helper()
		g, err := Read(strings.NewReader(jsonGraph), FormatJSON)
		if err != nil {
			t.Fatalf("Read() error: %v", err)
		}
		blocks, conns, err := ToWorkflow(g)
		if err != nil {
			t.Fatalf("ToWorkflow() error: %v", err)
		}
		return blocks, conns
	}
	hash := func(blocks []workflow.Block, conns []workflow.Connection) string {
		t.Helper()
		data, err := Marshal(FromWorkflow(blocks, conns))
		if err != nil {
			t.Fatalf("Marshal() error: %v", err)
		}
		return cache.Hash(data)
	}

	b1, c1 := load()
	b2, c2 := load()
	if c1[0].ID != c2[0].ID {
		t.Errorf("connection id changed between loads: %q vs %q", c1[0].ID, c2[0].ID)
	}
	if h1, h2 := hash(b1, c1), hash(b2, c2); h1 != h2 {
		t.Errorf("content hash changed between loads: %s vs %s", h1, h2)
	}

	g := Graph{Connections: []Connection{
		{Source: "a", Target: "b"},
		{Source: "a", Target: "b"},
	}}
	if connectionID(0, g.Connections[0]) == connectionID(1, g.Connections[1]) {
		t.Error("duplicate endpoints at different positions share an id")
	}
}

func TestReadRejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		format Format
		input  string
	}{
		{FormatTOML, "colour = \"red\"\n"},
		{FormatYAML, "colour: red\n"},
		{FormatJSON, `{"colour": "red"}`},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), tt.format)
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("Read() error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestReadEmpty(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		if _, err := Read(strings.NewReader(""), f); !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("Read(empty %s) error = %v, want INVALID_FORMAT", f, err)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.json", FormatJSON, false},
		{"dir/a.TOML", FormatTOML, false},
		{"a.yaml", FormatYAML, false},
		{"a.yml", FormatYAML, false},
		{"a.txt", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromPath(%q) error = %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.toml")
	if err := os.WriteFile(path, []byte(tomlGraph), 0644); err != nil {
		t.Fatal(err)
	}

	g, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if len(g.Blocks) != 2 {
		t.Errorf("len(Blocks) = %d, want 2", len(g.Blocks))
	}

	_, err = ReadFile(filepath.Join(dir, "missing.yaml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadFile(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestToWorkflowErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Graph)
		code   errors.Code
	}{
		{"unknown block type", func(g *Graph) { g.Blocks[0].Type = "loop" }, errors.ErrCodeInvalidGraph},
		{"empty block id", func(g *Graph) { g.Blocks[0].ID = "" }, errors.ErrCodeInvalidGraph},
		{"bad joint id", func(g *Graph) { g.Blocks[0].Joints[0].ID = "a b" }, errors.ErrCodeInvalidGraph},
		{"bad joint type", func(g *Graph) { g.Blocks[0].Joints[0].Type = "sideways" }, errors.ErrCodeInvalidGraph},
		{"duplicate connection id", func(g *Graph) {
			g.Connections = append(g.Connections, g.Connections[0])
		}, errors.ErrCodeInvalidGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Default()
			tt.mutate(&g)
			_, _, err := ToWorkflow(g)
			if !errors.Is(err, tt.code) {
				t.Errorf("ToWorkflow() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestToWorkflowKeepsDanglingConnections(t *testing.T) {
	g := Default()
	g.Connections = append(g.Connections, Connection{ID: "gone", Source: "if-1-output-true", Target: "deleted"})

	_, conns, err := ToWorkflow(g)
	if err != nil {
		t.Fatalf("ToWorkflow() error: %v", err)
	}
	if len(conns) != 4 {
		t.Errorf("len(conns) = %d, want 4", len(conns))
	}
}

func TestFromWorkflowPreservesGeometry(t *testing.T) {
	blocks, conns, err := ToWorkflow(Default())
	if err != nil {
		t.Fatal(err)
	}
	c := canvas.New(blocks, conns)
	c.MoveBlock("if-1", geom.Pt(300, 300))

	g := FromWorkflow(c.Blocks(), c.Connections())
	if g.Blocks[1].Y != 300 || g.Blocks[1].Joints[2].Y != 375 {
		t.Errorf("moved block = %+v", g.Blocks[1])
	}
	if g.Connections[2].Source != "if-1-output-false" {
		t.Errorf("connection = %+v", g.Connections[2])
	}
}

func TestWriteThenRead(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, Default(), f); err != nil {
				t.Fatalf("Write() error: %v", err)
			}
			g, err := Read(&buf, f)
			if err != nil {
				t.Fatalf("Read() error: %v\n%s", err, buf.String())
			}
			if len(g.Blocks) != 4 || g.Blocks[1].Joints[1].Label != "true" {
				t.Errorf("decoded = %+v", g)
			}
		})
	}
}

func TestMarshalDeterministic(t *testing.T) {
	a, err := Marshal(Default())
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Marshal(Default())
	if !bytes.Equal(a, b) {
		t.Error("Marshal() output differs between calls")
	}
}

func TestExport(t *testing.T) {
	blocks, conns, err := ToWorkflow(Default())
	if err != nil {
		t.Fatal(err)
	}
	conns = append(conns, workflow.Connection{ID: "gone", SourceJointID: "x", TargetJointID: "y"})
	l := Export(canvas.New(blocks, conns))

	if l.MinX != 60 || l.MinY != 10 || l.Width != 580 || l.Height != 280 {
		t.Errorf("frame = (%v, %v, %v, %v), want (60, 10, 580, 280)", l.MinX, l.MinY, l.Width, l.Height)
	}
	if len(l.Connections) != 3 {
		t.Fatalf("len(Connections) = %d, want 3", len(l.Connections))
	}
	if len(l.Skipped) != 1 || l.Skipped[0] != "gone" {
		t.Errorf("Skipped = %v", l.Skipped)
	}

	c2 := l.Connections[1]
	if want := "M 400 125 L 420 125 C 470 125, 430 100, 480 100 L 500 100"; c2.Path != want {
		t.Errorf("conn-2 path = %q, want %q", c2.Path, want)
	}
	if c2.LabelAt != geom.Pt(450, 102.5) {
		t.Errorf("conn-2 label = %v, want (450, 102.5)", c2.LabelAt)
	}
	if l.Blocks[1].Joints[0].Edge != geom.Left {
		t.Errorf("if-1-input edge = %v, want left", l.Blocks[1].Joints[0].Edge)
	}
}

func TestLayoutJSON(t *testing.T) {
	blocks, conns, _ := ToWorkflow(Default())
	l := Export(canvas.New(blocks, conns))

	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"source_edge": "right"`)) {
		t.Errorf("edges should serialize by name:\n%s", data)
	}

	back, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout() error: %v", err)
	}
	if back.Connections[0].TargetEdge != geom.Left || back.Connections[0].Path != l.Connections[0].Path {
		t.Errorf("decoded connection = %+v", back.Connections[0])
	}

	if _, err := UnmarshalLayout([]byte(`{"width": 0}`)); err == nil {
		t.Error("UnmarshalLayout() accepted an empty frame")
	}

}

func TestReadLayoutFile(t *testing.T) {
	dir := t.TempDir()
	blocks, conns, _ := ToWorkflow(Default())
	data, err := MarshalLayout(Export(canvas.New(blocks, conns)))
	if err != nil {
		t.Fatal(err)
	}
	good := filepath.Join(dir, "layout.json")
	if err := os.WriteFile(good, data, 0o644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"width": 0}`), 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := ReadLayoutFile(good)
	if err != nil {
		t.Fatalf("ReadLayoutFile() error: %v", err)
	}
	if len(l.Connections) != 3 {
		t.Errorf("connections = %d, want 3", len(l.Connections))
	}
	if _, err := ReadLayoutFile(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: got %v, want FILE_NOT_FOUND", err)
	}
	if _, err := ReadLayoutFile(bad); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty frame: got %v, want INVALID_INPUT", err)
	}
}

func TestLoad(t *testing.T) {
	g, err := Load("")
	if err != nil || len(g.Blocks) != 4 {
		t.Errorf("Load(\"\") = %d blocks, %v", len(g.Blocks), err)
	}
}

func TestExampleFiles(t *testing.T) {
	g, err := Load(filepath.Join("..", "..", "examples", "workflow.toml"))
	if err != nil {
		t.Fatal(err)
	}
	got, _ := Marshal(g)
	want, _ := Marshal(Default())
	if !bytes.Equal(got, want) {
		t.Errorf("examples/workflow.toml differs from Default():\n%s", got)
	}

	g, err = Load(filepath.Join("..", "..", "examples", "stacked.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	blocks, conns, err := ToWorkflow(g)
	if err != nil {
		t.Fatal(err)
	}
	l := Export(canvas.New(blocks, conns))
	if c := l.Connections[0]; c.SourceEdge != geom.Bottom || c.TargetEdge != geom.Top {
		t.Errorf("stacked faces = %v -> %v, want bottom -> top", c.SourceEdge, c.TargetEdge)
	}
}
