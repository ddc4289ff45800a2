package canvas

import (
	"fmt"

	"github.com/matzehuels/flowcanvas/pkg/geom"
)

// DefaultHitRadius is how close a press must land to a joint to grab it.
const DefaultHitRadius = 8.0

// GestureKind is what a pointer gesture is dragging.
type GestureKind int

const (
	GestureNone GestureKind = iota
	GestureBlock
	GestureJoint
)

func (k GestureKind) String() string {
	switch k {
	case GestureBlock:
		return "block"
	case GestureJoint:
		return "joint"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k GestureKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Gesture is the state of an in-progress drag.
//
// For a block drag, Offset is the pointer position minus the block anchor at
// press time, so the block keeps its grip point under the pointer.
type Gesture struct {
	Kind   GestureKind `json:"kind"`
	ID     string      `json:"id,omitempty"`
	Offset geom.Point  `json:"offset"`
}

// Active reports whether a drag is in progress.
func (g Gesture) Active() bool { return g.Kind != GestureNone }

func (g Gesture) String() string {
	if !g.Active() {
		return "idle"
	}
	return fmt.Sprintf("dragging %s %s", g.Kind, g.ID)
}

// Tracker turns a press/move/release pointer sequence into canvas edits.
// Moves are applied in call order; release keeps the last position.
type Tracker struct {
	canvas  *Canvas
	gesture Gesture
}

// NewTracker returns an idle tracker editing c.
func NewTracker(c *Canvas) *Tracker {
	return &Tracker{canvas: c}
}

// Gesture returns the current gesture state.
func (t *Tracker) Gesture() Gesture { return t.gesture }

// BeginBlockDrag starts dragging block id, gripped at pointer.
// It reports false and stays idle if the block does not exist.
func (t *Tracker) BeginBlockDrag(id string, pointer geom.Point) bool {
	b, ok := t.canvas.Block(id)
	if !ok {
		return false
	}
	t.gesture = Gesture{Kind: GestureBlock, ID: id, Offset: pointer.Sub(b.Position)}
	return true
}

// BeginJointDrag starts dragging joint id.
// It reports false and stays idle if the joint does not exist.
func (t *Tracker) BeginJointDrag(id string) bool {
	if _, _, ok := t.canvas.Joint(id); !ok {
		return false
	}
	t.gesture = Gesture{Kind: GestureJoint, ID: id}
	return true
}

// Press starts a drag of whatever is under pointer: a joint within radius
// takes precedence over a block. It reports false if nothing was hit.
func (t *Tracker) Press(pointer geom.Point, radius float64) bool {
	if j, ok := t.canvas.JointAt(pointer, radius); ok {
		return t.BeginJointDrag(j.ID)
	}
	if b, ok := t.canvas.BlockAt(pointer); ok {
		return t.BeginBlockDrag(b.ID, pointer)
	}
	return false
}

// Drag applies a pointer move to the current gesture. It reports false when
// idle.
func (t *Tracker) Drag(pointer geom.Point) bool {
	switch t.gesture.Kind {
	case GestureBlock:
		return t.canvas.MoveBlock(t.gesture.ID, pointer.Sub(t.gesture.Offset))
	case GestureJoint:
		return t.canvas.DragJoint(t.gesture.ID, pointer)
	default:
		return false
	}
}

// End finishes the current gesture without rolling anything back.
func (t *Tracker) End() {
	t.gesture = Gesture{}
}
