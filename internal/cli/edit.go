package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/canvas"
	"github.com/matzehuels/flowcanvas/pkg/geom"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

// Keyboard drag step sizes.
const (
	nudgeStep = 1.0
	shiftStep = 10.0
)

// Editor styles
var (
	editSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	editJointStyle    = lipgloss.NewStyle().Foreground(colorBlue)
	editNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	editDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// editCommand creates the interactive editor command.
func (c *CLI) editCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "edit [graph]",
		Short: "Drag blocks and joints from the keyboard",
		Long: `Open a terminal editor over a workflow graph.

Tab selects the next block or joint; arrow keys drag the selection one unit
(shift: ten units). Dragged joints stay on their block's perimeter and
routes update as you move. With --output the final state is rendered on exit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cv, err := loadCanvas(ctx, graphArg(args))
			if err != nil {
				return err
			}

			p := tea.NewProgram(newEditorModel(cv), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("editor: %w", err)
			}

			if output == "" {
				return nil
			}
			popts := c.Config.Render.pipelineOptions()
			popts.Formats = []string{formatForPath(output)}
			return c.runRender(ctx, cmd.OutOrStdout(), cv, graphArg(args), renderOpts{output: output, noCache: noCache}, popts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "render the final state to this file on exit")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// =============================================================================
// editorModel - keyboard drag gestures
// =============================================================================

// selection is a draggable canvas element.
type selection struct {
	kind canvas.GestureKind
	id   string
}

// editorModel drives a canvas.Tracker from key presses. Each arrow key is a
// complete press, drag, release gesture.
type editorModel struct {
	canvas  *canvas.Canvas
	tracker *canvas.Tracker
	items   []selection
	cursor  int
	status  string
}

func newEditorModel(cv *canvas.Canvas) editorModel {
	m := editorModel{canvas: cv, tracker: canvas.NewTracker(cv)}
	for _, b := range cv.Blocks() {
		m.items = append(m.items, selection{kind: canvas.GestureBlock, id: b.ID})
		for _, j := range b.Joints {
			m.items = append(m.items, selection{kind: canvas.GestureJoint, id: j.ID})
		}
	}
	return m
}

func (m editorModel) Init() tea.Cmd {
	return nil
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		if len(m.items) > 0 {
			m.cursor = (m.cursor + 1) % len(m.items)
		}
	case "shift+tab":
		if len(m.items) > 0 {
			m.cursor = (m.cursor + len(m.items) - 1) % len(m.items)
		}
	case "left", "h":
		m.nudge(geom.Pt(-nudgeStep, 0))
	case "right", "l":
		m.nudge(geom.Pt(nudgeStep, 0))
	case "up", "k":
		m.nudge(geom.Pt(0, -nudgeStep))
	case "down", "j":
		m.nudge(geom.Pt(0, nudgeStep))
	case "shift+left", "H":
		m.nudge(geom.Pt(-shiftStep, 0))
	case "shift+right", "L":
		m.nudge(geom.Pt(shiftStep, 0))
	case "shift+up", "K":
		m.nudge(geom.Pt(0, -shiftStep))
	case "shift+down", "J":
		m.nudge(geom.Pt(0, shiftStep))
	}
	return m, nil
}

// nudge drags the selection by d as a single gesture.
func (m *editorModel) nudge(d geom.Point) {
	sel, ok := m.selected()
	if !ok {
		return
	}
	switch sel.kind {
	case canvas.GestureBlock:
		b, _ := m.canvas.Block(sel.id)
		m.tracker.BeginBlockDrag(sel.id, b.Position)
		m.tracker.Drag(b.Position.Add(d))
	case canvas.GestureJoint:
		j, _, _ := m.canvas.Joint(sel.id)
		m.tracker.BeginJointDrag(sel.id)
		m.tracker.Drag(j.Position.Add(d))
	}
	m.status = m.tracker.Gesture().String()
	m.tracker.End()
}

func (m editorModel) selected() (selection, bool) {
	if len(m.items) == 0 {
		return selection{}, false
	}
	return m.items[m.cursor], true
}

func (m editorModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Workflow Editor"))
	b.WriteString("\n")
	b.WriteString(editDimStyle.Render("tab select  ←↑↓→ drag  shift+arrow drag 10  q quit"))
	b.WriteString("\n\n")

	sel, _ := m.selected()
	for _, blk := range m.canvas.Blocks() {
		b.WriteString(m.blockLine(blk, sel))
		b.WriteString("\n")
		for _, j := range blk.Joints {
			b.WriteString(m.jointLine(blk, j, sel))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(routesTable(m.canvas.Routes(), false))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(editDimStyle.Render("  last: " + m.status))
		b.WriteString("\n")
	}
	return b.String()
}

func (m editorModel) blockLine(blk workflow.Block, sel selection) string {
	cursor := "  "
	style := editNormalStyle
	if sel.kind == canvas.GestureBlock && sel.id == blk.ID {
		cursor = "▸ "
		style = editSelectedStyle
	}
	title := ""
	if blk.Title != "" {
		title = editDimStyle.Render(" " + blk.Title)
	}
	return style.Render(fmt.Sprintf("%s%-12s %-9s (%g, %g)", cursor, blk.ID, blk.Type, blk.Position.X, blk.Position.Y)) + title
}

func (m editorModel) jointLine(blk workflow.Block, j workflow.Joint, sel selection) string {
	cursor := "    "
	style := editJointStyle
	if sel.kind == canvas.GestureJoint && sel.id == j.ID {
		cursor = "  ▸ "
		style = editSelectedStyle
	}
	return style.Render(fmt.Sprintf("%s%-14s %-6s (%g, %g) %s", cursor, j.ID, j.Type, j.Position.X, j.Position.Y, blk.NearestEdge(j.Position)))
}

