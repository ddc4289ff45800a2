package graph

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/geom"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

// =============================================================================
// Formats
// =============================================================================

// Format is a graph file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Formats lists the supported graph file formats.
var Formats = []Format{FormatJSON, FormatTOML, FormatYAML}

// FormatFromPath returns the format for a file name's extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"unsupported graph file %q (want .json, .toml, .yaml, or .yml)", filepath.Base(path))
}

// =============================================================================
// Graph - Workflow Graph File
// =============================================================================

// Graph is the file format of a workflow graph.
type Graph struct {
	Blocks      []Block      `json:"blocks" toml:"blocks" yaml:"blocks"`
	Connections []Connection `json:"connections" toml:"connections" yaml:"connections"`
}

// Block is a block entry in a graph file. Type accepts the legacy names
// "if" and "command".
type Block struct {
	ID     string  `json:"id" toml:"id" yaml:"id"`
	Type   string  `json:"type" toml:"type" yaml:"type"`
	Title  string  `json:"title,omitempty" toml:"title,omitempty" yaml:"title,omitempty"`
	X      float64 `json:"x" toml:"x" yaml:"x"`
	Y      float64 `json:"y" toml:"y" yaml:"y"`
	Joints []Joint `json:"joints,omitempty" toml:"joints,omitempty" yaml:"joints,omitempty"`
}

// Joint is a joint entry nested under its block.
type Joint struct {
	ID    string  `json:"id" toml:"id" yaml:"id"`
	Type  string  `json:"type" toml:"type" yaml:"type"`
	X     float64 `json:"x" toml:"x" yaml:"x"`
	Y     float64 `json:"y" toml:"y" yaml:"y"`
	Label string  `json:"label,omitempty" toml:"label,omitempty" yaml:"label,omitempty"`
}

// Connection links a source joint to a target joint.
type Connection struct {
	ID     string `json:"id,omitempty" toml:"id,omitempty" yaml:"id,omitempty"`
	Source string `json:"source" toml:"source" yaml:"source"`
	Target string `json:"target" toml:"target" yaml:"target"`
}

// =============================================================================
// Graph ↔ Workflow Conversion
// =============================================================================

func connectionID(i int, c Connection) string {
	name := fmt.Sprintf("%d:%s->%s", i, c.Source, c.Target)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// ToWorkflow converts a graph file into validated workflow values.
// Connections without an id are assigned a name-based UUID derived from
// their position in the file and their endpoints, so reloading the same
// file yields the same ids and the same content hash.
func ToWorkflow(g Graph) ([]workflow.Block, []workflow.Connection, error) {
	blocks := make([]workflow.Block, len(g.Blocks))
	for i, b := range g.Blocks {
		if err := errors.ValidateID("block", b.ID); err != nil {
			return nil, nil, err
		}
		bt, err := workflow.ParseBlockType(b.Type)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "block %q", b.ID)
		}

		joints := make([]workflow.Joint, len(b.Joints))
		for k, j := range b.Joints {
			if err := errors.ValidateID("joint", j.ID); err != nil {
				return nil, nil, err
			}
			joints[k] = workflow.Joint{
				ID:       j.ID,
				Type:     workflow.JointType(strings.ToLower(strings.TrimSpace(j.Type))),
				Position: geom.Pt(j.X, j.Y),
				BlockID:  b.ID,
				Label:    j.Label,
			}
		}

		blocks[i] = workflow.Block{
			ID:       b.ID,
			Type:     bt,
			Title:    b.Title,
			Position: geom.Pt(b.X, b.Y),
			Joints:   joints,
		}
	}

	conns := make([]workflow.Connection, len(g.Connections))
	for i, c := range g.Connections {
		id := c.ID
		if id == "" {
			id = connectionID(i, c)
		}
		conns[i] = workflow.Connection{ID: id, SourceJointID: c.Source, TargetJointID: c.Target}
	}

	if err := workflow.Validate(blocks, conns); err != nil {
		return nil, nil, err
	}
	return blocks, conns, nil
}

// FromWorkflow converts workflow values into the graph file format.
// Relative joint positions are not part of the file format.
func FromWorkflow(blocks []workflow.Block, conns []workflow.Connection) Graph {
	out := Graph{
		Blocks:      make([]Block, len(blocks)),
		Connections: make([]Connection, len(conns)),
	}
	for i, b := range blocks {
		joints := make([]Joint, len(b.Joints))
		for k, j := range b.Joints {
			joints[k] = Joint{ID: j.ID, Type: string(j.Type), X: j.Position.X, Y: j.Position.Y, Label: j.Label}
		}
		out.Blocks[i] = Block{
			ID:     b.ID,
			Type:   string(b.Type),
			Title:  b.Title,
			X:      b.Position.X,
			Y:      b.Position.Y,
			Joints: joints,
		}
	}
	for i, c := range conns {
		out.Connections[i] = Connection{ID: c.ID, Source: c.SourceJointID, Target: c.TargetJointID}
	}
	return out
}
