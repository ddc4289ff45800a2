package canvas

import (
	"testing"

	"github.com/matzehuels/flowcanvas/pkg/geom"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

func fixture() ([]workflow.Block, []workflow.Connection) {
	blocks := []workflow.Block{
		{
			ID: "trigger-1", Type: workflow.Trigger, Title: "On push", Position: geom.Pt(100, 100),
			Joints: []workflow.Joint{
				{ID: "trigger-1-output", Type: workflow.Output, Position: geom.Pt(200, 150), BlockID: "trigger-1"},
			},
		},
		{
			ID: "if-1", Type: workflow.Condition, Title: "Branch?", Position: geom.Pt(300, 100),
			Joints: []workflow.Joint{
				{ID: "if-1-input", Type: workflow.Input, Position: geom.Pt(300, 150), BlockID: "if-1"},
				{ID: "if-1-output-true", Type: workflow.Output, Position: geom.Pt(400, 125), BlockID: "if-1", Label: "true"},
				{ID: "if-1-output-false", Type: workflow.Output, Position: geom.Pt(400, 175), BlockID: "if-1", Label: "false"},
			},
		},
		{
			ID: "action-1", Type: workflow.Action, Title: "Deploy", Position: geom.Pt(500, 0),
			Joints: []workflow.Joint{
				{ID: "action-1-input", Type: workflow.Input, Position: geom.Pt(500, 50), BlockID: "action-1"},
			},
		},
		{
			ID: "action-2", Type: workflow.Action, Title: "Notify", Position: geom.Pt(500, 200),
			Joints: []workflow.Joint{
				{ID: "action-2-input", Type: workflow.Input, Position: geom.Pt(500, 250), BlockID: "action-2"},
			},
		},
	}
	conns := []workflow.Connection{
		{ID: "c1", SourceJointID: "trigger-1-output", TargetJointID: "if-1-input"},
		{ID: "c2", SourceJointID: "if-1-output-true", TargetJointID: "action-1-input"},
		{ID: "dangling", SourceJointID: "if-1-output-true", TargetJointID: "deleted-input"},
		{ID: "c3", SourceJointID: "if-1-output-false", TargetJointID: "action-2-input"},
	}
	return blocks, conns
}

func newFixture(opts ...Option) *Canvas {
	blocks, conns := fixture()
	return New(blocks, conns, opts...)
}

func TestNewCopiesInputsAndDerivesOffsets(t *testing.T) {
	blocks, conns := fixture()
	c := New(blocks, conns)

	blocks[0].Position = geom.Pt(-1, -1)
	blocks[0].Joints[0].Position = geom.Pt(-1, -1)
	conns[0].ID = "changed"

	b, ok := c.Block("trigger-1")
	if !ok {
		t.Fatal("Block(trigger-1) not found")
	}
	if b.Position != geom.Pt(100, 100) {
		t.Errorf("Position = %v, canvas aliased its input", b.Position)
	}
	if b.Joints[0].RelativePosition == nil || *b.Joints[0].RelativePosition != geom.Pt(100, 50) {
		t.Errorf("RelativePosition = %v, want (100, 50)", b.Joints[0].RelativePosition)
	}
	if got := c.Connections()[0].ID; got != "c1" {
		t.Errorf("Connections()[0].ID = %q, want c1", got)
	}
	if blocks[1].Joints[0].RelativePosition != nil {
		t.Error("New modified input joints")
	}
}

func TestQueriesReturnCopies(t *testing.T) {
	c := newFixture()

	bs := c.Blocks()
	bs[0].Position = geom.Pt(9, 9)
	*bs[0].Joints[0].RelativePosition = geom.Pt(9, 9)

	b, _ := c.Block("trigger-1")
	if b.Position != geom.Pt(100, 100) || *b.Joints[0].RelativePosition != geom.Pt(100, 50) {
		t.Errorf("Blocks() result aliases canvas state: %+v", b)
	}

	j, owner, ok := c.Joint("if-1-output-false")
	if !ok || owner != "if-1" || j.Label != "false" {
		t.Errorf("Joint() = %+v, %q, %v", j, owner, ok)
	}
	if _, _, ok := c.Joint("nope"); ok {
		t.Error("Joint(nope) found")
	}
}

func TestMoveBlock(t *testing.T) {
	c := newFixture()

	if !c.MoveBlock("trigger-1", geom.Pt(300, 100)) {
		t.Fatal("MoveBlock() = false")
	}
	b, _ := c.Block("trigger-1")
	if b.Position != geom.Pt(300, 100) {
		t.Errorf("Position = %v, want (300, 100)", b.Position)
	}
	if got := b.Joints[0].Position; got != geom.Pt(400, 150) {
		t.Errorf("joint Position = %v, want (400, 150)", got)
	}

	before := c.Blocks()
	if c.MoveBlock("missing", geom.Pt(0, 0)) {
		t.Error("MoveBlock(missing) = true")
	}
	after := c.Blocks()
	for i := range before {
		if before[i].Position != after[i].Position {
			t.Errorf("block %d moved on unknown id", i)
		}
	}
}

func TestDragJointSnapsAndRebasesOffset(t *testing.T) {
	c := newFixture()

	if !c.DragJoint("if-1-input", geom.Pt(280, 130)) {
		t.Fatal("DragJoint() = false")
	}
	j, _, _ := c.Joint("if-1-input")
	if j.Position != geom.Pt(300, 130) {
		t.Errorf("Position = %v, want (300, 130)", j.Position)
	}
	if *j.RelativePosition != geom.Pt(0, 30) {
		t.Errorf("RelativePosition = %v, want (0, 30)", *j.RelativePosition)
	}

	c.MoveBlock("if-1", geom.Pt(300, 300))
	j, _, _ = c.Joint("if-1-input")
	if j.Position != geom.Pt(300, 330) {
		t.Errorf("Position after block move = %v, want (300, 330)", j.Position)
	}

	if c.DragJoint("missing", geom.Pt(0, 0)) {
		t.Error("DragJoint(missing) = true")
	}
}

func TestMoveJointUnsnapped(t *testing.T) {
	c := newFixture()

	c.MoveJoint("action-1-input", geom.Pt(550, 60))
	j, _, _ := c.Joint("action-1-input")
	if j.Position != geom.Pt(550, 60) || *j.RelativePosition != geom.Pt(50, 60) {
		t.Errorf("joint = %v rel %v", j.Position, *j.RelativePosition)
	}
	if c.MoveJoint("missing", geom.Pt(0, 0)) {
		t.Error("MoveJoint(missing) = true")
	}
}

func TestRoutesSkipDangling(t *testing.T) {
	c := newFixture()
	routes := c.Routes()

	want := []string{"c1", "c2", "c3"}
	if len(routes) != len(want) {
		t.Fatalf("len(Routes()) = %d, want %d", len(routes), len(want))
	}
	for i, r := range routes {
		if r.Connection.ID != want[i] {
			t.Errorf("routes[%d] = %q, want %q", i, r.Connection.ID, want[i])
		}
		if r.Path.Start() != r.Source.Position || r.Path.End() != r.Target.Position {
			t.Errorf("routes[%d] endpoints do not match joints", i)
		}
	}

	if got, want := routes[0].Path.SVG(), "M 200 150 L 220 150 C 270 150, 230 150, 280 150 L 300 150"; got != want {
		t.Errorf("c1 SVG = %q, want %q", got, want)
	}

	dangling := c.Dangling()
	if len(dangling) != 1 || dangling[0].ID != "dangling" {
		t.Errorf("Dangling() = %v", dangling)
	}
	if _, ok := c.RouteOf("dangling"); ok {
		t.Error("RouteOf(dangling) resolved")
	}
}

func TestRoutesFollowBlockMoves(t *testing.T) {
	c := newFixture()
	c.MoveBlock("trigger-1", geom.Pt(100, 300))

	r, ok := c.RouteOf("c1")
	if !ok {
		t.Fatal("RouteOf(c1) not found")
	}
	if r.Path.Start() != geom.Pt(200, 350) {
		t.Errorf("Start() = %v, want (200, 350)", r.Path.Start())
	}
	if r.Path.SourceEdge != geom.Right || r.Path.TargetEdge != geom.Left {
		t.Errorf("edges = %v, %v", r.Path.SourceEdge, r.Path.TargetEdge)
	}
}

func TestConnectedBlocks(t *testing.T) {
	c := newFixture()
	conns := c.Connections()

	src, dst, ok := c.ConnectedBlocks(conns[1])
	if !ok || src.ID != "if-1" || dst.ID != "action-1" {
		t.Errorf("ConnectedBlocks(c2) = %q, %q, %v", src.ID, dst.ID, ok)
	}
	if _, _, ok := c.ConnectedBlocks(conns[2]); ok {
		t.Error("ConnectedBlocks(dangling) = ok")
	}
}

func TestHitTesting(t *testing.T) {
	c := newFixture()

	if b, ok := c.BlockAt(geom.Pt(150, 150)); !ok || b.ID != "trigger-1" {
		t.Errorf("BlockAt(inside trigger) = %q, %v", b.ID, ok)
	}
	if b, ok := c.BlockAt(geom.Pt(100, 100)); !ok || b.ID != "trigger-1" {
		t.Errorf("BlockAt(corner) = %q, %v", b.ID, ok)
	}
	if b, ok := c.BlockAt(geom.Pt(85, 150)); ok {
		t.Errorf("BlockAt(padding) hit %q", b.ID)
	}
	if _, ok := c.BlockAt(geom.Pt(0, 400)); ok {
		t.Error("BlockAt(empty) hit")
	}
	if j, ok := c.JointAt(geom.Pt(402, 127), 8); !ok || j.ID != "if-1-output-true" {
		t.Errorf("JointAt() = %q, %v", j.ID, ok)
	}
	if _, ok := c.JointAt(geom.Pt(450, 150), 8); ok {
		t.Error("JointAt(far) hit")
	}
}

type recordingHooks struct {
	blockMoves []string
	jointMoves []string
	snapped    []bool
}

func (h *recordingHooks) OnBlockMove(id string, _ geom.Point, _ int) {
	h.blockMoves = append(h.blockMoves, id)
}

func (h *recordingHooks) OnJointMove(id string, _ geom.Point, snapped bool) {
	h.jointMoves = append(h.jointMoves, id)
	h.snapped = append(h.snapped, snapped)
}

func TestHooks(t *testing.T) {
	h := &recordingHooks{}
	c := newFixture(WithHooks(h))

	c.MoveBlock("trigger-1", geom.Pt(0, 0))
	c.MoveBlock("missing", geom.Pt(0, 0))
	c.DragJoint("if-1-input", geom.Pt(280, 130))
	c.MoveJoint("action-1-input", geom.Pt(500, 40))

	if len(h.blockMoves) != 1 || h.blockMoves[0] != "trigger-1" {
		t.Errorf("block moves = %v", h.blockMoves)
	}
	if len(h.jointMoves) != 2 || !h.snapped[0] || h.snapped[1] {
		t.Errorf("joint moves = %v snapped = %v", h.jointMoves, h.snapped)
	}
}
