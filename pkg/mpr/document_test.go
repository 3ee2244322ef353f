package mpr_test

import (
	"strings"
	"testing"
	"time"

	"woodpost/pkg/compile"
	"woodpost/pkg/geometry"
	"woodpost/pkg/mpr"
)

var testTime = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func testDoc(out *compile.Output) *mpr.Document {
	return &mpr.Document{
		Output:    out,
		Workpiece: compile.Workpiece{Length: 800, Width: 600, Thickness: 20},
		ZSafe:     20,
		Precision: 3,
		Comments:  true,
		Now:       testTime,
	}
}

func contains(t *testing.T, text, want string) {
	t.Helper()
	if !strings.Contains(text, want) {
		t.Errorf("output missing %q\noutput:\n%s", want, text)
	}
}

func TestRenderHeader(t *testing.T) {
	text := testDoc(compile.NewOutput()).Render()

	contains(t, text, "[H\r\nVERSION=\"4.0 Alpha\"")
	contains(t, text, "UF=\"z_safe\"")
	contains(t, text, "_BSX=800.000000")
	contains(t, text, "_BSY=600.000000")
	contains(t, text, "_BSZ=20.000000")
	contains(t, text, "_RX=800.000000")
	contains(t, text, "_RY=600.000000")
}

func TestRenderHeaderStockExtents(t *testing.T) {
	doc := testDoc(compile.NewOutput())
	doc.Workpiece.ExtentXNeg = 5
	doc.Workpiece.ExtentXPos = 10
	doc.Workpiece.ExtentYNeg = 2
	doc.Workpiece.OffsetX = 100
	text := doc.Render()

	contains(t, text, "_FNX=5.000000")
	contains(t, text, "_FNY=2.000000")
	contains(t, text, "_RNX=100.000000")
	contains(t, text, "_RX=815.000000")
	contains(t, text, "_RY=602.000000")
}

func TestRenderVariables(t *testing.T) {
	text := testDoc(compile.NewOutput()).Render()

	contains(t, text, "[001\r\nl=\"800.000\"\r\nKM=\"length in X\"")
	contains(t, text, "th=\"20.000\"\r\nKM=\"thickness in Z\"")
	contains(t, text, "z_safe=\"20.000\"\r\nKM=\"clearance height\"")
}

func TestRenderVariablesNoComments(t *testing.T) {
	doc := testDoc(compile.NewOutput())
	doc.Comments = false
	text := doc.Render()

	contains(t, text, "l=\"800.000\"\r\nw=\"600.000\"")
	if strings.Contains(text, "KM=") {
		t.Errorf("comments disabled but KM lines present:\n%s", text)
	}
	if strings.Contains(text, `<101 \Kommentar\`) {
		t.Errorf("comments disabled but comment block present:\n%s", text)
	}
}

func TestRenderContourOffset(t *testing.T) {
	out := compile.NewOutput()
	out.Contours = append(out.Contours, compile.Contour{
		ID:     1,
		StartX: 10, StartY: 10,
		StartZ: compile.NumericZ(0),
		Elements: []compile.Element{
			{Kind: compile.KindLine, X: 30, Y: 40, Z: 5, MoveType: "G1"},
		},
	})
	doc := testDoc(out)
	doc.Offset = geometry.Point3{X: -10, Y: -10}
	text := doc.Render()

	// Start point and endpoint both shift by the offset.
	contains(t, text, "]1\r\n$E0\r\nKP \r\nX=0.000\r\nY=0.000\r\nZ=0.000")
	contains(t, text, "$E1\r\nKL \r\nX=20.000\r\nY=30.000\r\nZ=5.000")
}

func TestRenderContourRawZ(t *testing.T) {
	out := compile.NewOutput()
	out.Contours = append(out.Contours, compile.Contour{
		ID:     1,
		StartZ: compile.NumericZ(0),
		Elements: []compile.Element{
			{Kind: compile.KindLine, X: 10, Z: -3, MoveType: "G1"},
		},
	})

	doc := testDoc(out)
	doc.Offset = geometry.Point3{Z: 3}
	contains(t, doc.Render(), "KL \r\nX=10.000\r\nY=0.000\r\nZ=0.000")

	doc = testDoc(out)
	doc.Offset = geometry.Point3{Z: 3}
	doc.UseRawZ = true
	contains(t, doc.Render(), "KL \r\nX=10.000\r\nY=0.000\r\nZ=-3.000")
}

func TestRenderSymbolicStartZ(t *testing.T) {
	out := compile.NewOutput()
	out.Contours = append(out.Contours, compile.Contour{
		ID:     1,
		StartZ: compile.SymbolicZ("th+z_safe"),
		Elements: []compile.Element{
			{Kind: compile.KindLine, X: 10, MoveType: "G1"},
		},
	})
	doc := testDoc(out)
	// The symbolic expression goes through verbatim even with an offset.
	doc.Offset = geometry.Point3{Z: -7}
	text := doc.Render()

	contains(t, text, "KP \r\nX=0.000\r\nY=0.000\r\nZ=th+z_safe")
}

func TestRenderArcDirectionCodes(t *testing.T) {
	// All four arcs start at (0,0) around the center (10,0), radius 10.
	tests := []struct {
		name      string
		endX      float64
		endY      float64
		clockwise bool
		ds        string
	}{
		{"clockwise small", 10, 10, true, `DS=0`},
		{"counterclockwise small", 10, -10, false, `DS=1`},
		{"clockwise large", 10, -10, true, `DS=2`},
		{"counterclockwise large", 10, 10, false, `DS=3`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out := compile.NewOutput()
			out.Contours = append(out.Contours, compile.Contour{
				ID:     1,
				StartZ: compile.NumericZ(0),
				Elements: []compile.Element{{
					Kind:      compile.KindArc,
					X:         test.endX,
					Y:         test.endY,
					I:         10,
					J:         0,
					R:         10,
					Clockwise: test.clockwise,
				}},
			})
			text := testDoc(out).Render()
			contains(t, text, test.ds+"\r\nR=10.000")
			contains(t, text, ".I=10.000\r\n.J=0.000")
		})
	}
}

func TestRenderArcCenterNotOffsetTwice(t *testing.T) {
	// The stored I/J are relative to the pre-offset previous point; the
	// rendered absolute center must carry the offset exactly once.
	out := compile.NewOutput()
	out.Contours = append(out.Contours, compile.Contour{
		ID:     1,
		StartX: 100, StartY: 50,
		StartZ: compile.NumericZ(0),
		Elements: []compile.Element{{
			Kind:      compile.KindArc,
			X:         120,
			Y:         50,
			I:         10,
			J:         0,
			R:         10,
			Clockwise: true,
		}},
	})
	doc := testDoc(out)
	doc.Offset = geometry.Point3{X: -100, Y: -50}
	text := doc.Render()

	contains(t, text, ".I=10.000\r\n.J=0.000")
	contains(t, text, "KA \r\nX=20.000\r\nY=0.000")
}

func TestRenderSemicircleRadius(t *testing.T) {
	// A true semicircle gets its radius inflated slightly past half the
	// chord so the consumer can always fit the arc.
	out := compile.NewOutput()
	out.Contours = append(out.Contours, compile.Contour{
		ID:     1,
		StartZ: compile.NumericZ(0),
		Elements: []compile.Element{{
			Kind:      compile.KindArc,
			X:         20,
			Y:         0,
			I:         10,
			J:         0,
			R:         10,
			Clockwise: true,
		}},
	})
	text := testDoc(out).Render()
	contains(t, text, "R=10.001")
}

func TestRenderDrillOperation(t *testing.T) {
	out := compile.NewOutput()
	out.Operations = append(out.Operations, compile.Operation{
		Type: compile.OpDrill, Tool: 4, X: 50, Y: 60, Depth: 12,
	})
	doc := testDoc(out)
	doc.Offset = geometry.Point3{X: 5, Y: -10}
	text := doc.Render()

	contains(t, text, `<102 \BohrVert\`)
	contains(t, text, "XA=\"55.000\"\r\nYA=\"50.000\"\r\nTI=\"12.000\"\r\nTNO=\"4\"\r\nBM=\"SS\"")
}

func TestRenderContourMillOperation(t *testing.T) {
	out := compile.NewOutput()
	out.Contours = append(out.Contours, compile.Contour{
		ID:     1,
		StartZ: compile.NumericZ(0),
		Elements: []compile.Element{
			{Kind: compile.KindLine, X: 10, MoveType: "G1"},
			{Kind: compile.KindLine, X: 10, Y: 10, MoveType: "G1"},
			{Kind: compile.KindLine, Y: 10, MoveType: "G1"},
		},
	})
	out.Operations = append(out.Operations, compile.Operation{
		Type:         compile.OpContourMill,
		Contour:      1,
		Tool:         3,
		Compensation: compile.CompLeft,
		LastElement:  2,
	})
	text := testDoc(out).Render()

	contains(t, text, `<105 \Konturfraesen\`)
	contains(t, text, `EA="1:0"`)
	contains(t, text, `EE="1:3"`)
	contains(t, text, `RK="WRKL"`)
	contains(t, text, `TNO="3"`)
	// The comment block uses ordinal 1; the milling comment and operation
	// take the next two.
	contains(t, text, "MNM=\"Vertical trimming\"\r\nORI=\"2\"")
	contains(t, text, `ORI="3"`)
}

func TestRenderPocketOperation(t *testing.T) {
	out := compile.NewOutput()
	out.Contours = append(out.Contours, compile.Contour{
		ID:     1,
		StartZ: compile.NumericZ(0),
		Elements: []compile.Element{
			{Kind: compile.KindLine, X: 10, MoveType: "G1"},
		},
	})
	out.Operations = append(out.Operations, compile.Operation{
		Type: compile.OpPocket, Contour: 1, Tool: 2,
	})
	text := testDoc(out).Render()

	contains(t, text, "<103 \\Pocket\\\r\nEA=\"1:0\"\r\nTNO=\"2\"")
}

func TestRenderCommentBlock(t *testing.T) {
	doc := testDoc(compile.NewOutput())
	doc.CoordSystem = "G54"
	doc.Offset = geometry.Point3{X: -10, Y: -20, Z: 0}
	text := doc.Render()

	contains(t, text, `KM="Generated by woodpost"`)
	contains(t, text, `KM="Date: 2024-03-15 10:30:00"`)
	contains(t, text, `KM="Coordinate System: G54 (offset: X=-10.000, Y=-20.000, Z=0.000)"`)
}

func TestRenderFooterAndTerminator(t *testing.T) {
	text := testDoc(compile.NewOutput()).Render()

	contains(t, text, "<100 \\WerkStck\\\r\nLA=\"l\"\r\nBR=\"w\"\r\nDI=\"th\"")
	contains(t, text, `RL="l_off+l+r_oz"`)
	if !strings.HasSuffix(text, "!") {
		t.Errorf("document does not end with the terminator:\n%q", text[len(text)-20:])
	}
}

func TestMinimalDocument(t *testing.T) {
	if !strings.HasPrefix(mpr.Minimal, "[H\r\n") || !strings.HasSuffix(mpr.Minimal, "!") {
		t.Errorf("minimal document malformed: %q", mpr.Minimal)
	}
}
