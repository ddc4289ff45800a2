// Package layout keeps joints attached to their blocks.
//
// Two things move on a workflow canvas: whole blocks and individual joints.
//
// When a block moves, its joints follow rigidly. [DeriveRelativePositions]
// records each joint's offset from the block anchor once at load time, and
// [ApplyBlockMove] re-applies those offsets at the new anchor:
//
//	joints := layout.DeriveRelativePositions(block)  // once, at load
//	block.Joints = joints
//	block = layout.MoveBlock(block, geom.Pt(300, 100)) // per pointer move
//
// When a joint itself is dragged, [SnapToPerimeter] keeps it on the block's
// rectangular boundary.
//
// Every function here is pure: inputs are never modified and results share no
// memory with them. Callers decide when to commit the returned values.
package layout

import (
	"github.com/matzehuels/flowcanvas/pkg/geom"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

// DeriveRelativePositions returns b's joints with RelativePosition set to
// joint.Position - b.Position. Absolute positions are unchanged.
func DeriveRelativePositions(b workflow.Block) []workflow.Joint {
	joints := make([]workflow.Joint, len(b.Joints))
	for i, j := range b.Joints {
		rel := j.Position.Sub(b.Position)
		j.RelativePosition = &rel
		joints[i] = j
	}
	return joints
}

// ApplyBlockMove returns b's joints repositioned for a block anchored at to.
//
// A joint without a relative position gets one computed from b's current
// (pre-move) anchor first. Relative positions are never changed by a move.
func ApplyBlockMove(b workflow.Block, to geom.Point) []workflow.Joint {
	joints := make([]workflow.Joint, len(b.Joints))
	for i, j := range b.Joints {
		var rel geom.Point
		if j.RelativePosition != nil {
			rel = *j.RelativePosition
		} else {
			rel = j.Position.Sub(b.Position)
		}
		j.RelativePosition = &rel
		j.Position = to.Add(rel)
		joints[i] = j
	}
	return joints
}

// MoveBlock returns a copy of b anchored at to, with its joints carried along.
func MoveBlock(b workflow.Block, to geom.Point) workflow.Block {
	moved := b
	moved.Joints = ApplyBlockMove(b, to)
	moved.Position = to
	return moved
}

// PlaceJoint returns j moved to p with its relative position recomputed
// against the anchor of owner.
func PlaceJoint(owner workflow.Block, j workflow.Joint, p geom.Point) workflow.Joint {
	rel := p.Sub(owner.Position)
	j.Position = p
	j.RelativePosition = &rel
	return j
}
