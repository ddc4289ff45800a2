package mcp

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matzehuels/flowcanvas/pkg/canvas"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/geom"
	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/render/sink"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

// Service holds the canvas the tools edit. Tool calls may arrive
// concurrently; mu applies them one at a time.
type Service struct {
	mu     sync.Mutex
	canvas *canvas.Canvas
	logger *log.Logger
}

func NewService(cv *canvas.Canvas, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{canvas: cv, logger: logger}
}

func (s *Service) Routes(ctx context.Context, req *mcp.CallToolRequest, _ RoutesArgs) (*mcp.CallToolResult, RoutesResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := RoutesResult{Routes: s.routes()}
	for _, conn := range s.canvas.Dangling() {
		res.Skipped = append(res.Skipped, conn.ID)
	}
	return nil, res, nil
}

func (s *Service) MoveBlock(ctx context.Context, req *mcp.CallToolRequest, args MoveBlockArgs) (*mcp.CallToolResult, MoveResult, error) {
	to := geom.Pt(args.X, args.Y)
	if !to.IsFinite() {
		return nil, MoveResult{}, errors.New(errors.ErrCodeInvalidInput, "position (%g, %g) is not finite", args.X, args.Y)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.canvas.MoveBlock(args.BlockID, to) {
		return nil, MoveResult{}, errors.New(errors.ErrCodeNotFound, "no block %q", args.BlockID)
	}
	b, _ := s.canvas.Block(args.BlockID)
	s.logger.Debug("tool moved block", "block", b.ID, "to", to)
	return nil, MoveResult{Joints: jointsOf(b), Routes: s.routes()}, nil
}

func (s *Service) DragJoint(ctx context.Context, req *mcp.CallToolRequest, args DragJointArgs) (*mcp.CallToolResult, MoveResult, error) {
	pointer := geom.Pt(args.X, args.Y)
	if !pointer.IsFinite() {
		return nil, MoveResult{}, errors.New(errors.ErrCodeInvalidInput, "pointer (%g, %g) is not finite", args.X, args.Y)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.canvas.DragJoint(args.JointID, pointer) {
		return nil, MoveResult{}, errors.New(errors.ErrCodeNotFound, "no joint %q", args.JointID)
	}
	_, blockID, _ := s.canvas.Joint(args.JointID)
	b, _ := s.canvas.Block(blockID)
	s.logger.Debug("tool dragged joint", "joint", args.JointID, "pointer", pointer)
	return nil, MoveResult{Joints: jointsOf(b), Routes: s.routes()}, nil
}

func (s *Service) Render(ctx context.Context, req *mcp.CallToolRequest, args RenderArgs) (*mcp.CallToolResult, RenderResult, error) {
	if args.SelectedJoint != "" {
		if err := errors.ValidateID("joint", args.SelectedJoint); err != nil {
			return nil, RenderResult{}, err
		}
	}

	s.mu.Lock()
	l := graph.Export(s.canvas)
	s.mu.Unlock()

	var opts []sink.SVGOption
	if args.SelectedJoint != "" {
		opts = append(opts, sink.WithSelectedJoint(args.SelectedJoint))
	}
	return nil, RenderResult{SVG: string(sink.RenderSVG(l, opts...))}, nil
}

// routes must be called with mu held.
func (s *Service) routes() []RouteInfo {
	routes := s.canvas.Routes()
	out := make([]RouteInfo, 0, len(routes))
	for _, r := range routes {
		out = append(out, RouteInfo{
			ID:         r.Connection.ID,
			Source:     r.Source.ID,
			Target:     r.Target.ID,
			SourceEdge: r.Path.SourceEdge.String(),
			TargetEdge: r.Path.TargetEdge.String(),
			Intensity:  r.Path.Intensity,
			Path:       r.Path.SVG(),
		})
	}
	return out
}

func jointsOf(b workflow.Block) []JointInfo {
	out := make([]JointInfo, 0, len(b.Joints))
	for _, j := range b.Joints {
		out = append(out, JointInfo{
			ID:    j.ID,
			Block: b.ID,
			X:     j.Position.X,
			Y:     j.Position.Y,
			Edge:  geom.NearestEdge(j.Position, b.Position).String(),
		})
	}
	return out
}
