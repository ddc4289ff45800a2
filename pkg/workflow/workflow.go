// Package workflow defines the blocks, joints, and connections of an editable
// workflow graph.
//
// A [Block] is a fixed-size node anchored at its top-left corner. It owns an
// ordered list of [Joint]s, the attachment points where [Connection]s end.
// A joint may carry a relative position: its fixed offset from the owning
// block's anchor, used to carry the joint along rigidly when the block moves.
//
// Connections reference joints by id only and own no geometry. A connection
// whose endpoints cannot be resolved is dangling: it is skipped when routing
// and rendering, never treated as an error.
//
// Values in this package are plain data. [Block.Clone] deep-copies a block so
// callers can hand out copies without aliasing relative-position pointers.
package workflow

import (
	"fmt"
	"strings"

	"github.com/matzehuels/flowcanvas/pkg/geom"
)

// =============================================================================
// Block Types
// =============================================================================

// BlockType classifies a block. The set is closed.
type BlockType string

const (
	Trigger   BlockType = "trigger"
	Condition BlockType = "condition"
	Action    BlockType = "action"
)

// BlockTypes lists every valid block type.
var BlockTypes = []BlockType{Trigger, Condition, Action}

// Valid reports whether t is one of [BlockTypes].
func (t BlockType) Valid() bool {
	switch t {
	case Trigger, Condition, Action:
		return true
	}
	return false
}

// ParseBlockType parses a block type name. The legacy names "if" and
// "command" are accepted for condition and action.
func ParseBlockType(s string) (BlockType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trigger":
		return Trigger, nil
	case "condition", "if":
		return Condition, nil
	case "action", "command":
		return Action, nil
	}
	return "", fmt.Errorf("unknown block type %q (must be trigger, condition, or action)", s)
}

// JointType is the direction of a joint.
type JointType string

const (
	Input  JointType = "input"
	Output JointType = "output"
)

// Valid reports whether t is input or output.
func (t JointType) Valid() bool { return t == Input || t == Output }

// =============================================================================
// Joint
// =============================================================================

// Joint is an attachment point on a block.
type Joint struct {
	ID       string     `json:"id" toml:"id" yaml:"id"`
	Type     JointType  `json:"type" toml:"type" yaml:"type"`
	Position geom.Point `json:"position" toml:"position" yaml:"position"`
	BlockID  string     `json:"block_id" toml:"block_id" yaml:"block_id"`
	Label    string     `json:"label,omitempty" toml:"label,omitempty" yaml:"label,omitempty"`

	// RelativePosition is the joint's offset from its block's anchor.
	// Nil until derived or backfilled by the first block move.
	RelativePosition *geom.Point `json:"relative_position,omitempty" toml:"relative_position,omitempty" yaml:"relative_position,omitempty"`
}

// Clone returns a copy of j that shares no memory with it.
func (j Joint) Clone() Joint {
	if j.RelativePosition != nil {
		rel := *j.RelativePosition
		j.RelativePosition = &rel
	}
	return j
}

// =============================================================================
// Block
// =============================================================================

// Block is a node of the workflow graph. Every block is
// geom.BlockWidth x geom.BlockHeight.
type Block struct {
	ID       string     `json:"id" toml:"id" yaml:"id"`
	Type     BlockType  `json:"type" toml:"type" yaml:"type"`
	Title    string     `json:"title" toml:"title" yaml:"title"`
	Position geom.Point `json:"position" toml:"position" yaml:"position"`
	Joints   []Joint    `json:"joints" toml:"joints" yaml:"joints"`
}

// Clone returns a deep copy of b.
func (b Block) Clone() Block {
	joints := make([]Joint, len(b.Joints))
	for i, j := range b.Joints {
		joints[i] = j.Clone()
	}
	b.Joints = joints
	return b
}

// Bounds returns the block rectangle expanded by geom.Padding.
func (b Block) Bounds() geom.Bounds { return geom.BoundsOf(b.Position) }

// BodyContains reports whether p lies on the unpadded body of b.
func (b Block) BodyContains(p geom.Point) bool { return geom.BodyContains(p, b.Position) }

// NearestEdge returns the edge of b closest to p.
func (b Block) NearestEdge(p geom.Point) geom.Edge { return geom.NearestEdge(p, b.Position) }

// Center returns the center of the block body.
func (b Block) Center() geom.Point {
	return b.Position.Add(geom.Pt(geom.BlockWidth/2, geom.BlockHeight/2))
}

// Joint returns the joint with the given id.
func (b Block) Joint(id string) (Joint, bool) {
	if i := b.JointIndex(id); i >= 0 {
		return b.Joints[i], true
	}
	return Joint{}, false
}

// JointIndex returns the index of the joint with the given id, or -1.
func (b Block) JointIndex(id string) int {
	for i, j := range b.Joints {
		if j.ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// Connection
// =============================================================================

// Connection is a directed edge between two joints.
type Connection struct {
	ID            string `json:"id" toml:"id" yaml:"id"`
	SourceJointID string `json:"source_joint_id" toml:"source_joint_id" yaml:"source_joint_id"`
	TargetJointID string `json:"target_joint_id" toml:"target_joint_id" yaml:"target_joint_id"`
}

// FindJoint returns the block owning the joint with the given id, and the joint.
func FindJoint(blocks []Block, jointID string) (Block, Joint, bool) {
	for _, b := range blocks {
		if j, ok := b.Joint(jointID); ok {
			return b, j, true
		}
	}
	return Block{}, Joint{}, false
}

// DanglingConnections returns the connections with at least one endpoint that
// does not resolve to a joint in blocks.
func DanglingConnections(blocks []Block, conns []Connection) []Connection {
	var out []Connection
	for _, c := range conns {
		_, _, okS := FindJoint(blocks, c.SourceJointID)
		_, _, okT := FindJoint(blocks, c.TargetJointID)
		if !okS || !okT {
			out = append(out, c)
		}
	}
	return out
}
