package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/matzehuels/flowcanvas/pkg/canvas"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/geom"
	"github.com/matzehuels/flowcanvas/pkg/route"
)

// FrameMargin is the space kept around the drawing when a layout computes
// its own frame.
const FrameMargin = 40.0

// =============================================================================
// Layout - Routed Canvas State
// =============================================================================

// Layout is the serialized, routed state of a canvas.
//
// The frame (MinX, MinY, Width, Height) covers every block, joint, and
// curve control point plus FrameMargin on each side, so a renderer can use
// it directly as an SVG viewBox.
type Layout struct {
	MinX   float64 `json:"min_x"`
	MinY   float64 `json:"min_y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Blocks      []LayoutBlock      `json:"blocks"`
	Connections []LayoutConnection `json:"connections"`

	// Skipped lists the ids of dangling connections that were not routed.
	Skipped []string `json:"skipped,omitempty"`
}

// LayoutBlock is a positioned block.
type LayoutBlock struct {
	ID     string        `json:"id"`
	Type   string        `json:"type"`
	Title  string        `json:"title,omitempty"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Joints []LayoutJoint `json:"joints"`
}

// LayoutJoint is a positioned joint. Edge is the block face it sits nearest.
type LayoutJoint struct {
	ID    string    `json:"id"`
	Type  string    `json:"type"`
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
	Label string    `json:"label,omitempty"`
	Edge  geom.Edge `json:"edge"`
}

// LayoutConnection is a routed connection.
type LayoutConnection struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	Target     string          `json:"target"`
	SourceEdge geom.Edge       `json:"source_edge"`
	TargetEdge geom.Edge       `json:"target_edge"`
	Intensity  float64         `json:"intensity"`
	Path       string          `json:"path"`
	Segments   []route.Segment `json:"segments"`
	LabelAt    geom.Point      `json:"label_at"`
}

// Export captures the current state of c as a Layout.
func Export(c *canvas.Canvas) Layout {
	var (
		l    Layout
		ext  extent
		blks = c.Blocks()
	)

	l.Blocks = make([]LayoutBlock, len(blks))
	for i, b := range blks {
		lb := LayoutBlock{
			ID:     b.ID,
			Type:   string(b.Type),
			Title:  b.Title,
			X:      b.Position.X,
			Y:      b.Position.Y,
			Width:  geom.BlockWidth,
			Height: geom.BlockHeight,
			Joints: make([]LayoutJoint, len(b.Joints)),
		}
		for k, j := range b.Joints {
			lb.Joints[k] = LayoutJoint{
				ID:    j.ID,
				Type:  string(j.Type),
				X:     j.Position.X,
				Y:     j.Position.Y,
				Label: j.Label,
				Edge:  b.NearestEdge(j.Position),
			}
			ext.add(j.Position)
		}
		ext.add(b.Position)
		ext.add(b.Position.Add(geom.Pt(geom.BlockWidth, geom.BlockHeight)))
		l.Blocks[i] = lb
	}

	routes := c.Routes()
	l.Connections = make([]LayoutConnection, len(routes))
	for i, r := range routes {
		p := r.Path
		l.Connections[i] = LayoutConnection{
			ID:         r.Connection.ID,
			Source:     r.Connection.SourceJointID,
			Target:     r.Connection.TargetJointID,
			SourceEdge: p.SourceEdge,
			TargetEdge: p.TargetEdge,
			Intensity:  p.Intensity,
			Path:       p.SVG(),
			Segments:   p.Segments,
			LabelAt:    route.LabelAnchor(r.Source.Position, r.Target.Position),
		}
		for _, s := range p.Segments {
			ext.add(s.To)
			if s.Op == route.CurveTo {
				ext.add(s.C1)
				ext.add(s.C2)
			}
		}
	}

	for _, d := range c.Dangling() {
		l.Skipped = append(l.Skipped, d.ID)
	}

	l.MinX, l.MinY, l.Width, l.Height = ext.frame(FrameMargin)
	return l
}

// extent accumulates the bounding box of a set of points.
type extent struct {
	minX, minY, maxX, maxY float64
	seen                   bool
}

func (e *extent) add(p geom.Point) {
	if !e.seen {
		e.minX, e.maxX, e.minY, e.maxY = p.X, p.X, p.Y, p.Y
		e.seen = true
		return
	}
	e.minX, e.maxX = math.Min(e.minX, p.X), math.Max(e.maxX, p.X)
	e.minY, e.maxY = math.Min(e.minY, p.Y), math.Max(e.maxY, p.Y)
}

func (e *extent) frame(margin float64) (x, y, w, h float64) {
	if !e.seen {
		return 0, 0, 2 * margin, 2 * margin
	}
	return e.minX - margin, e.minY - margin, e.maxX - e.minX + 2*margin, e.maxY - e.minY + 2*margin
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Width <= 0 || l.Height <= 0 {
		return Layout{}, fmt.Errorf("layout frame must have positive size, got %gx%g", l.Width, l.Height)
	}
	return l, nil
}

// ReadLayoutFile reads a Layout previously exported as JSON, for example
// by "render -f json".
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
	}
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	l, err := UnmarshalLayout(data)
	if err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", path)
	}
	return l, nil
}
