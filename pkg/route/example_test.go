package route_test

import (
	"fmt"

	"github.com/matzehuels/flowcanvas/pkg/geom"
	"github.com/matzehuels/flowcanvas/pkg/route"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

func ExampleComputePath() {
	trigger := workflow.Block{ID: "trigger-1", Position: geom.Pt(100, 100)}
	cond := workflow.Block{ID: "if-1", Position: geom.Pt(300, 100)}

	p := route.ComputePath(geom.Pt(200, 150), geom.Pt(300, 150), trigger, cond)

	fmt.Println(p.SourceEdge, "->", p.TargetEdge)
	fmt.Println(p.SVG())
	// Output:
	// right -> left
	// M 200 150 L 220 150 C 270 150, 230 150, 280 150 L 300 150
}

func ExampleComputePath_stacked() {
	upper := workflow.Block{ID: "a", Position: geom.Pt(0, 0)}
	lower := workflow.Block{ID: "b", Position: geom.Pt(0, 400)}

	p := route.ComputePath(geom.Pt(50, 100), geom.Pt(50, 400), upper, lower)

	fmt.Println(p.SourceEdge, "->", p.TargetEdge, p.Intensity)
	fmt.Println(p.SVG())
	// Output:
	// bottom -> top 130
	// M 50 100 L 50 120 C 50 250, 50 250, 50 380 L 50 400
}
