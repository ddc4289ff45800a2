package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flowcanvas/pkg/errors"
)

// Palette. Block and joint colors in the terminal follow the SVG output.
var (
	colorCyan   = lipgloss.Color("36")  // selection, block ids
	colorGreen  = lipgloss.Color("35")  // success, cache hits
	colorYellow = lipgloss.Color("220") // warnings, skipped connections
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // joints, suggested commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // headers
	colorDim    = lipgloss.Color("240") // secondary text
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// PrintError writes err to w. Coded errors print their message with the
// code dimmed after it.
func PrintError(w io.Writer, err error) {
	var coded *errors.Error
	if !stderrors.As(err, &coded) {
		fmt.Fprintln(w, styleIconError.Render(iconError)+" "+err.Error())
		return
	}
	msg := coded.Message
	if coded.Cause != nil {
		msg += ": " + coded.Cause.Error()
	}
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+msg+" "+StyleDim.Render("("+string(coded.Code)+")"))
}

// printer writes styled status lines for humans. Machine-readable output
// (artifacts on stdout, route tables) is written directly instead.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) printer { return printer{w: w} }

func (p printer) line(icon lipgloss.Style, glyph, msg string) {
	fmt.Fprintln(p.w, icon.Render(glyph)+" "+msg)
}

func (p printer) success(format string, args ...any) {
	p.line(styleIconSuccess, iconSuccess, fmt.Sprintf(format, args...))
}

func (p printer) warning(format string, args ...any) {
	p.line(styleIconWarning, iconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (p printer) info(format string, args ...any) {
	p.line(styleIconInfo, iconInfo, fmt.Sprintf(format, args...))
}

// detail prints an indented secondary line.
func (p printer) detail(format string, args ...any) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints a written output path.
func (p printer) file(path string) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// stats prints one line summarizing a render:
//
//	4 blocks · 3 routes · 1 skipped · cached
func (p printer) stats(blocks, routes, skipped int, cached bool) {
	parts := []string{fmt.Sprintf("%d blocks", blocks), fmt.Sprintf("%d routes", routes)}
	if skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", skipped))
	}
	status := StyleDim.Render("fresh")
	if cached {
		status = styleCached.Render("cached")
	}
	sep := StyleDim.Render(" · ")
	fmt.Fprintln(p.w, "  "+StyleDim.Render(strings.Join(parts, " · "))+sep+status)
}

// nextStep suggests a follow-up command.
func (p printer) nextStep(description, cmd string) {
	fmt.Fprintln(p.w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
