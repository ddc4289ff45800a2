package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/canvas"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/geom"
)

// Step kinds accepted by --step.
const (
	stepBlock = "block"
	stepJoint = "joint"
)

// moveStep is one replayed edit: a block move to an anchor position or a
// joint drag to a pointer position.
type moveStep struct {
	kind string
	id   string
	to   geom.Point
}

func (s moveStep) String() string {
	return fmt.Sprintf("%s %s %s (%g, %g)", s.kind, s.id, iconArrow, s.to.X, s.to.Y)
}

// moveCommand creates the move command.
func (c *CLI) moveCommand() *cobra.Command {
	var (
		steps   []string
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "move [graph] --step block:ID=X,Y --step joint:ID=X,Y ...",
		Short: "Replay block moves and joint drags",
		Long: `Replay an ordered sequence of edits and print joint positions after each.

A block step anchors the block's top-left corner at X,Y and carries its
joints along. A joint step drags the joint toward X,Y and snaps it onto the
nearest face of its block. Steps naming unknown ids change nothing.`,
		Example: `  flowcanvas move --step block:trigger-1=100,275
  flowcanvas move graph.toml --step joint:if-1-input=280,130 -o moved.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseSteps(steps)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			cv, err := loadCanvas(ctx, graphArg(args))
			if err != nil {
				return err
			}

			replay(cmd.OutOrStdout(), cv, parsed)

			if output == "" {
				return nil
			}
			popts := c.Config.Render.pipelineOptions()
			popts.Formats = []string{formatForPath(output)}
			return c.runRender(ctx, cmd.OutOrStdout(), cv, graphArg(args), renderOpts{output: output, noCache: noCache}, popts)
		},
	}

	cmd.Flags().StringArrayVarP(&steps, "step", "s", nil, "edit to apply: block:ID=X,Y or joint:ID=X,Y (repeatable, applied in order)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "render the final state to this file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	_ = cmd.MarkFlagRequired("step")

	return cmd
}

// replay applies steps in order, printing the moved block's joints after
// each one.
func replay(w io.Writer, cv *canvas.Canvas, steps []moveStep) {
	for i, s := range steps {
		var (
			ok      bool
			blockID string
		)
		switch s.kind {
		case stepBlock:
			ok, blockID = cv.MoveBlock(s.id, s.to), s.id
		case stepJoint:
			ok = cv.DragJoint(s.id, s.to)
			_, blockID, _ = cv.Joint(s.id)
		}

		fmt.Fprintf(w, "%s %s\n", StyleDim.Render(fmt.Sprintf("%d.", i+1)), s)
		if !ok {
			fmt.Fprintf(w, "  %s\n", StyleWarning.Render(fmt.Sprintf("no %s %q, nothing moved", s.kind, s.id)))
			continue
		}
		b, _ := cv.Block(blockID)
		fmt.Fprintf(w, "  %s %s\n", StyleHighlight.Render(b.ID), StyleDim.Render(fmt.Sprintf("at (%g, %g)", b.Position.X, b.Position.Y)))
		for _, j := range b.Joints {
			fmt.Fprintf(w, "    %-16s %s\n", j.ID, StyleValue.Render(fmt.Sprintf("(%g, %g) %s", j.Position.X, j.Position.Y, b.NearestEdge(j.Position))))
		}
	}
}

// parseSteps parses every --step value.
func parseSteps(values []string) ([]moveStep, error) {
	steps := make([]moveStep, 0, len(values))
	for _, v := range values {
		s, err := parseStep(v)
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, nil
}

// parseStep parses "kind:id=x,y".
func parseStep(s string) (moveStep, error) {
	kind, rest, ok := strings.Cut(s, ":")
	if !ok || (kind != stepBlock && kind != stepJoint) {
		return moveStep{}, errors.New(errors.ErrCodeInvalidInput, "invalid step %q: want block:ID=X,Y or joint:ID=X,Y", s)
	}
	id, pos, ok := strings.Cut(rest, "=")
	if !ok {
		return moveStep{}, errors.New(errors.ErrCodeInvalidInput, "invalid step %q: missing =X,Y", s)
	}
	if err := errors.ValidateID(kind, id); err != nil {
		return moveStep{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid step %q", s)
	}
	p, err := parsePoint(pos)
	if err != nil {
		return moveStep{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid step %q", s)
	}
	return moveStep{kind: kind, id: id, to: p}, nil
}

// parsePoint parses "x,y" into a finite point.
func parsePoint(s string) (geom.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geom.Point{}, fmt.Errorf("point %q: want X,Y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	p := geom.Pt(x, y)
	if !p.IsFinite() {
		return geom.Point{}, fmt.Errorf("point %q is not finite", s)
	}
	return p, nil
}

