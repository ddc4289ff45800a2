package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/canvas"
)

// routesCommand creates the routes command.
func (c *CLI) routesCommand() *cobra.Command {
	var showPath bool

	cmd := &cobra.Command{
		Use:   "routes [graph]",
		Short: "Print how every connection is routed",
		Long: `Print each connection's source and target faces, curve intensity, and
optionally its SVG path data. Connections whose joints are missing are
listed as skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cv, err := loadCanvas(cmd.Context(), graphArg(args))
			if err != nil {
				return err
			}
			printRoutes(cmd.OutOrStdout(), cv, showPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showPath, "path", "p", false, "include SVG path data")

	return cmd
}

// printRoutes writes the routes table and any skipped connections to w.
func printRoutes(w io.Writer, cv *canvas.Canvas, showPath bool) {
	fmt.Fprintln(w, routesTable(cv.Routes(), showPath))
	for _, conn := range cv.Dangling() {
		fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+
			StyleWarning.Render(fmt.Sprintf("skipped %s: %s %s %s not on canvas", conn.ID, conn.SourceJointID, iconArrow, conn.TargetJointID)))
	}
}

// routesTable renders routes as a bordered table.
func routesTable(routes []canvas.Route, showPath bool) string {
	headers := []string{"Connection", "Source", "Target", "Faces", "Intensity"}
	if showPath {
		headers = append(headers, "Path")
	}

	rows := make([][]string, 0, len(routes))
	for _, r := range routes {
		row := []string{
			r.Connection.ID,
			r.Source.ID,
			r.Target.ID,
			fmt.Sprintf("%s %s %s", r.Path.SourceEdge, iconArrow, r.Path.TargetEdge),
			strconv.FormatFloat(r.Path.Intensity, 'f', -1, 64),
		}
		if showPath {
			row = append(row, r.Path.SVG())
		}
		rows = append(rows, row)
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
