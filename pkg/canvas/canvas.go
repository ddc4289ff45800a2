// Package canvas holds the editable state of a workflow graph.
//
// A [Canvas] owns the blocks and connections of one graph. It applies the
// pure operations of pkg/layout and commits their results, and it routes
// every resolvable connection with pkg/route:
//
//	c := canvas.New(blocks, conns)
//	c.MoveBlock("trigger-1", geom.Pt(300, 100))
//	c.DragJoint("if-1-input", pointer)
//	for _, r := range c.Routes() {
//	    fmt.Println(r.Connection.ID, r.Path.SVG())
//	}
//
// Edits never fail. An unknown block or joint id is a no-op reported through
// the boolean result, and a connection whose joints cannot be resolved is
// left out of [Canvas.Routes].
//
// A Canvas is not safe for concurrent use. Callers that share one between
// goroutines serialize access themselves.
package canvas

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcanvas/pkg/geom"
	"github.com/matzehuels/flowcanvas/pkg/layout"
	"github.com/matzehuels/flowcanvas/pkg/observability"
	"github.com/matzehuels/flowcanvas/pkg/route"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

// Canvas is the single owner of a graph's blocks and connections.
type Canvas struct {
	blocks []workflow.Block
	conns  []workflow.Connection

	blockIndex map[string]int
	jointIndex map[string]jointRef

	logger *log.Logger
	hooks  observability.CanvasHooks
}

type jointRef struct{ block, joint int }

// Option configures a Canvas.
type Option func(*Canvas)

// WithLogger sets the logger used for debug output of edits.
func WithLogger(l *log.Logger) Option {
	return func(c *Canvas) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHooks overrides the globally registered canvas hooks.
func WithHooks(h observability.CanvasHooks) Option {
	return func(c *Canvas) {
		if h != nil {
			c.hooks = h
		}
	}
}

// New builds a canvas from deep copies of blocks and conns and derives the
// relative position of every joint.
func New(blocks []workflow.Block, conns []workflow.Connection, opts ...Option) *Canvas {
	c := &Canvas{
		blocks:     make([]workflow.Block, len(blocks)),
		conns:      append([]workflow.Connection(nil), conns...),
		blockIndex: make(map[string]int, len(blocks)),
		jointIndex: make(map[string]jointRef),
		logger:     log.Default(),
		hooks:      observability.Canvas(),
	}
	for _, opt := range opts {
		opt(c)
	}

	for i, b := range blocks {
		b.Joints = layout.DeriveRelativePositions(b)
		c.blocks[i] = b
	}
	c.reindex()
	return c
}

// reindex rebuilds the id lookups. The first occurrence of a duplicated id
// wins, matching workflow.FindJoint.
func (c *Canvas) reindex() {
	clear(c.blockIndex)
	clear(c.jointIndex)
	for bi, b := range c.blocks {
		if _, dup := c.blockIndex[b.ID]; !dup {
			c.blockIndex[b.ID] = bi
		}
		for ji, j := range b.Joints {
			if _, dup := c.jointIndex[j.ID]; !dup {
				c.jointIndex[j.ID] = jointRef{bi, ji}
			}
		}
	}
}

// =============================================================================
// Queries
// =============================================================================

// Blocks returns a deep copy of the blocks in their original order.
func (c *Canvas) Blocks() []workflow.Block {
	out := make([]workflow.Block, len(c.blocks))
	for i, b := range c.blocks {
		out[i] = b.Clone()
	}
	return out
}

// Block returns a copy of the block with the given id.
func (c *Canvas) Block(id string) (workflow.Block, bool) {
	i, ok := c.blockIndex[id]
	if !ok {
		return workflow.Block{}, false
	}
	return c.blocks[i].Clone(), true
}

// Connections returns the connections in their original order.
func (c *Canvas) Connections() []workflow.Connection {
	return append([]workflow.Connection(nil), c.conns...)
}

// Joint returns a copy of the joint with the given id and the id of its block.
func (c *Canvas) Joint(id string) (workflow.Joint, string, bool) {
	ref, ok := c.jointIndex[id]
	if !ok {
		return workflow.Joint{}, "", false
	}
	b := c.blocks[ref.block]
	return b.Joints[ref.joint].Clone(), b.ID, true
}

// BlockAt returns the topmost block whose body contains p. The padding
// around a block is not part of it. Later blocks are drawn over earlier
// ones.
func (c *Canvas) BlockAt(p geom.Point) (workflow.Block, bool) {
	for i := len(c.blocks) - 1; i >= 0; i-- {
		if c.blocks[i].BodyContains(p) {
			return c.blocks[i].Clone(), true
		}
	}
	return workflow.Block{}, false
}

// JointAt returns the joint nearest to p within radius, if any.
func (c *Canvas) JointAt(p geom.Point, radius float64) (workflow.Joint, bool) {
	var (
		best  workflow.Joint
		bestD = radius
		found bool
	)
	for _, b := range c.blocks {
		for _, j := range b.Joints {
			if d := geom.Distance(p, j.Position); d <= bestD {
				best, bestD, found = j, d, true
			}
		}
	}
	return best.Clone(), found
}

// =============================================================================
// Edits
// =============================================================================

// MoveBlock anchors the block at to and carries its joints along.
// It reports false if no block has the given id.
func (c *Canvas) MoveBlock(id string, to geom.Point) bool {
	i, ok := c.blockIndex[id]
	if !ok {
		c.logger.Debug("move of unknown block ignored", "block", id)
		return false
	}
	c.blocks[i] = layout.MoveBlock(c.blocks[i], to)
	c.hooks.OnBlockMove(id, to, len(c.blocks[i].Joints))
	c.logger.Debug("moved block", "block", id, "x", to.X, "y", to.Y)
	return true
}

// MoveJoint places the joint at to and recomputes its offset from the owning
// block's current anchor. It reports false if no joint has the given id.
func (c *Canvas) MoveJoint(id string, to geom.Point) bool {
	return c.placeJoint(id, to, false)
}

// DragJoint snaps pointer to the perimeter of the joint's block and moves the
// joint there. It reports false if no joint has the given id.
func (c *Canvas) DragJoint(id string, pointer geom.Point) bool {
	ref, ok := c.jointIndex[id]
	if !ok {
		c.logger.Debug("drag of unknown joint ignored", "joint", id)
		return false
	}
	snapped := layout.SnapToPerimeter(pointer, c.blocks[ref.block])
	return c.placeJoint(id, snapped, true)
}

func (c *Canvas) placeJoint(id string, to geom.Point, snapped bool) bool {
	ref, ok := c.jointIndex[id]
	if !ok {
		c.logger.Debug("move of unknown joint ignored", "joint", id)
		return false
	}
	b := c.blocks[ref.block].Clone()
	b.Joints[ref.joint] = layout.PlaceJoint(b, b.Joints[ref.joint], to)
	c.blocks[ref.block] = b
	c.hooks.OnJointMove(id, to, snapped)
	c.logger.Debug("moved joint", "joint", id, "x", to.X, "y", to.Y, "snapped", snapped)
	return true
}

// =============================================================================
// Routing
// =============================================================================

// Route is a connection resolved against the current block positions.
type Route struct {
	Connection workflow.Connection
	Source     workflow.Joint
	Target     workflow.Joint
	Path       route.Path
}

// ConnectedBlocks returns the blocks owning the source and target joints of
// conn. It reports false when either endpoint is dangling.
func (c *Canvas) ConnectedBlocks(conn workflow.Connection) (src, dst workflow.Block, ok bool) {
	s, okS := c.jointIndex[conn.SourceJointID]
	t, okT := c.jointIndex[conn.TargetJointID]
	if !okS || !okT {
		return workflow.Block{}, workflow.Block{}, false
	}
	return c.blocks[s.block].Clone(), c.blocks[t.block].Clone(), true
}

// Routes returns one route per resolvable connection, in connection order.
func (c *Canvas) Routes() []Route {
	routes := make([]Route, 0, len(c.conns))
	for _, conn := range c.conns {
		r, ok := c.routeFor(conn)
		if !ok {
			c.logger.Debug("skipping dangling connection", "connection", conn.ID,
				"source", conn.SourceJointID, "target", conn.TargetJointID)
			continue
		}
		routes = append(routes, r)
	}
	return routes
}

// RouteOf returns the route of the connection with the given id.
func (c *Canvas) RouteOf(connID string) (Route, bool) {
	for _, conn := range c.conns {
		if conn.ID == connID {
			return c.routeFor(conn)
		}
	}
	return Route{}, false
}

func (c *Canvas) routeFor(conn workflow.Connection) (Route, bool) {
	s, okS := c.jointIndex[conn.SourceJointID]
	t, okT := c.jointIndex[conn.TargetJointID]
	if !okS || !okT {
		return Route{}, false
	}
	srcBlock, dstBlock := c.blocks[s.block], c.blocks[t.block]
	src, dst := srcBlock.Joints[s.joint], dstBlock.Joints[t.joint]
	return Route{
		Connection: conn,
		Source:     src.Clone(),
		Target:     dst.Clone(),
		Path:       route.ComputePath(src.Position, dst.Position, srcBlock, dstBlock),
	}, true
}

// Dangling returns the connections left out of Routes.
func (c *Canvas) Dangling() []workflow.Connection {
	return workflow.DanglingConnections(c.blocks, c.conns)
}
