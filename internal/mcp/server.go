// Package mcp exposes a canvas to language-model clients as Model Context
// Protocol tools.
//
// The tools mirror the editor gestures: move a block, drag a joint (snapped
// to its block), list the routed connections, and render the canvas as SVG.
// Edits stay in memory for the life of the server.
package mcp

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matzehuels/flowcanvas/pkg/buildinfo"
	"github.com/matzehuels/flowcanvas/pkg/canvas"
)

// NewServer registers the canvas tools on a new MCP server.
func NewServer(cv *canvas.Canvas, logger *log.Logger) *mcp.Server {
	svc := NewService(cv, logger)

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "flowcanvas",
		Version: buildinfo.Version,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_routes",
		Description: "List every routed connection with the block faces it leaves and enters and its SVG path data. Connections whose joints are missing are listed as skipped.",
	}, svc.Routes)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "move_block",
		Description: "Move a block so its top-left corner is at (x, y). Joints keep their offset from the block; returns the block's joints and the rerouted connections.",
	}, svc.MoveBlock)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "drag_joint",
		Description: "Drag a joint toward a pointer position. The joint snaps onto the nearest face of its block.",
	}, svc.DragJoint)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "render_svg",
		Description: "Render the canvas as a standalone SVG document.",
	}, svc.Render)

	return s
}

// Serve runs the tools over stdin and stdout until ctx is done or the client
// disconnects.
func Serve(ctx context.Context, cv *canvas.Canvas, logger *log.Logger) error {
	return NewServer(cv, logger).Run(ctx, &mcp.StdioTransport{})
}
