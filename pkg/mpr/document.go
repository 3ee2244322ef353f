package mpr

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"woodpost/pkg/cfg"
	"woodpost/pkg/compile"
	"woodpost/pkg/geometry"
)

// Minimal is the guaranteed fallback document: the consumer must never
// receive an empty or structurally broken file.
const Minimal = "[H\r\nVERSION=\"4.0 Alpha\"\r\n]H\r\n[001\r\nz_safe=20.0\r\n]001\r\n!"

// Document holds everything needed to render one MPR file. The coordinate
// Offset is applied to output coordinates only; the compiled elements keep
// their original values.
type Document struct {
	Output    *compile.Output
	Workpiece compile.Workpiece
	Offset    geometry.Point3
	ZSafe     float64
	Precision int

	// Comments enables the descriptive KM lines and the comment blocks.
	Comments bool
	// UseRawZ suppresses the Z component of the coordinate offset, emitting
	// Z values exactly as compiled.
	UseRawZ bool
	// CoordSystem names the active work-coordinate system ("G54") for the
	// comment block; empty when no offsetting is active.
	CoordSystem string

	Now time.Time
	Log logrus.FieldLogger
}

// Render serializes the document. The result still goes through the
// line-ending normalizer before leaving the pipeline.
func (d *Document) Render() string {
	f := NewFormatter(d.Precision)

	var lines []string
	add := func(format string, args ...interface{}) {
		if len(args) > 0 {
			format = fmt.Sprintf(format, args...)
		}
		lines = append(lines, format)
	}

	d.header(add)
	d.variables(add, f)
	for i := range d.Output.Contours {
		d.contourBlock(add, f, &d.Output.Contours[i])
	}
	d.footer(add)
	d.commentBlock(add)
	d.operations(add, f)

	return strings.Join(lines, "\r\n")
}

var headerFields = []string{
	`VERSION="4.0 Alpha"`,
	`WW="9.0.152"`,
	`OP="1"`,
	`WRK2="0"`,
	`SCHN="0"`,
	`CVR="0"`,
	`POI="0"`,
	`HSP="0"`,
	`O2="0"`,
	`O4="0"`,
	`O3="0"`,
	`O5="0"`,
	`SR="0"`,
	`FM="1"`,
	`ML="2000"`,
	`UF="z_safe"`,
	`ZS="z_safe"`,
	`DN="STANDARD"`,
	`DST="0"`,
	`GP="0"`,
	`GY="0"`,
	`GXY="0"`,
	`NP="1"`,
	`NE="0"`,
	`NA="0"`,
	`BFS="0"`,
	`US="0"`,
	`CB="0"`,
	`UP="0"`,
	`DW="0"`,
	`MAT="HOMAG"`,
	`HP_A_O="STANDARD"`,
	`OVD_U="1"`,
	`OVD="0"`,
	`OHD_U="0"`,
	`OHD="2"`,
	`OOMD_U="0"`,
	`EWL="1"`,
	`INCH="0"`,
	`VIEW="NOMIRROR"`,
	`ANZ="1"`,
	`BES="0"`,
	`ENT="0"`,
	`MATERIAL=""`,
	`CUSTOMER=""`,
	`ORDER=""`,
	`ARTICLE=""`,
	`PARTID=""`,
	`PARTTYPE=""`,
	`MPRCOUNT="1"`,
	`MPRNUMBER="1"`,
	`INFO1=""`,
	`INFO2=""`,
	`INFO3=""`,
	`INFO4=""`,
	`INFO5=""`,
}

func (d *Document) header(add func(string, ...interface{})) {
	wp := d.Workpiece

	add("[H")
	for _, field := range headerFields {
		add(field)
	}
	// Base dimensions, front offsets, program offsets, total stock extents.
	// Header geometry always carries 6 decimals.
	add("_BSX=%s", Fmt6(wp.Length))
	add("_BSY=%s", Fmt6(wp.Width))
	add("_BSZ=%s", Fmt6(wp.Thickness))
	add("_FNX=%s", Fmt6(wp.ExtentXNeg))
	add("_FNY=%s", Fmt6(wp.ExtentYNeg))
	add("_RNX=%s", Fmt6(wp.OffsetX))
	add("_RNY=%s", Fmt6(wp.OffsetY))
	add("_RNZ=%s", Fmt6(wp.OffsetZ))
	add("_RX=%s", Fmt6(wp.ExtentXNeg+wp.Length+wp.ExtentXPos))
	add("_RY=%s", Fmt6(wp.ExtentYNeg+wp.Width+wp.ExtentYPos))
	add("")
}

func (d *Document) variables(add func(string, ...interface{}), f Formatter) {
	wp := d.Workpiece

	variable := func(name string, value float64, comment string) {
		add(`%s="%s"`, name, f.Fmt(value))
		if d.Comments {
			add(`KM="%s"`, comment)
		}
	}

	add("[001")
	variable("l", wp.Length, "length in X")
	variable("w", wp.Width, "width in Y")
	variable("th", wp.Thickness, "thickness in Z")
	variable("x", wp.OffsetX, "offset programs in x")
	variable("y", wp.OffsetY, "offset programs in y")
	variable("z", wp.OffsetZ, "z offset")
	variable("l_off", wp.ExtentXNeg, "left offset")
	variable("f_off", wp.ExtentYNeg, "front offset")
	variable("r_oz", wp.ExtentXPos, "right oversize")
	variable("b_oz", wp.ExtentYPos, "back oversize")
	variable("z_safe", d.ZSafe, "clearance height")
	add("")
}

func (d *Document) contourBlock(add func(string, ...interface{}), f Formatter, contour *compile.Contour) {
	add("]%d", contour.ID)

	startX := contour.StartX + d.Offset.X
	startY := contour.StartY + d.Offset.Y

	// A symbolic start Z is passed through verbatim: it is already relative
	// to the controller's origin and the controller evaluates it.
	var zText string
	if contour.StartZ.IsSymbolic() {
		zText = contour.StartZ.Expr
	} else {
		z := contour.StartZ.Num
		if !d.UseRawZ {
			z += d.Offset.Z
		}
		zText = f.Fmt(z)
	}

	add("$E0")
	add("KP ")
	add("X=%s", f.Fmt(startX))
	add("Y=%s", f.Fmt(startY))
	add("Z=%s", zText)
	add("KO=00")
	add(".X=0.000000")
	add(".Y=0.000000")
	add(".Z=0.000000")
	add(".KO=00")
	add("")

	// Offset coordinates feed the output; the original coordinates anchor
	// arc-center math so the I/J offsets are never offset twice.
	prev := geometry.Point{X: startX, Y: startY}
	prevOrig := geometry.Point{X: contour.StartX, Y: contour.StartY}
	prevZ := 0.0
	if !contour.StartZ.IsSymbolic() {
		prevZ = contour.StartZ.Num
		if !d.UseRawZ {
			prevZ += d.Offset.Z
		}
	}

	for idx := range contour.Elements {
		elem := &contour.Elements[idx]
		add("$E%d", idx+1)

		out := geometry.Point{X: elem.X + d.Offset.X, Y: elem.Y + d.Offset.Y}
		z := elem.Z
		if !d.UseRawZ {
			z += d.Offset.Z
		}

		switch elem.Kind {
		case compile.KindLine:
			d.lineElement(add, f, out, z, prev, prevZ)
		case compile.KindArc:
			d.arcElement(add, f, contour.ID, idx+1, elem, out, z, prev, prevOrig)
		}
		add("")

		prev = out
		prevOrig = geometry.Point{X: elem.X, Y: elem.Y}
		prevZ = z
	}

	add("")
}

func (d *Document) lineElement(add func(string, ...interface{}), f Formatter, out geometry.Point, z float64, prev geometry.Point, prevZ float64) {
	add("KL ")
	add("X=%s", f.Fmt(out.X))
	add("Y=%s", f.Fmt(out.Y))
	add("Z=%s", f.Fmt(z))

	// Heading and elevation angles; both ambiguous (and defined as zero)
	// when the corresponding run length vanishes.
	dx := out.X - prev.X
	dy := out.Y - prev.Y
	dz := z - prevZ

	wi := 0.0
	if math.Abs(dx) > cfg.Epsilon || math.Abs(dy) > cfg.Epsilon {
		wi = math.Atan2(dy, dx)
	}
	wz := 0.0
	if runXY := math.Hypot(dx, dy); runXY > cfg.Epsilon {
		wz = math.Atan2(dz, runXY)
	}

	add(".X=%s", f.Fmt(out.X))
	add(".Y=%s", f.Fmt(out.Y))
	add(".Z=%s", f.Fmt(z))
	add(".WI=%s", f.Fmt(wi))
	add(".WZ=%s", f.Fmt(wz))
}

func (d *Document) arcElement(add func(string, ...interface{}), f Formatter, contourID, elemNum int, elem *compile.Element, out geometry.Point, z float64, prev, prevOrig geometry.Point) {
	// Recompute the center from the previous element's original, pre-offset
	// coordinates plus the stored I/J, then offset the result for output.
	centerOrig := geometry.Point{X: prevOrig.X + elem.I, Y: prevOrig.Y + elem.J}
	center := geometry.Point{X: centerOrig.X + d.Offset.X, Y: centerOrig.Y + d.Offset.Y}

	startAngle := geometry.Angle(center, prev)
	endAngle := geometry.Angle(center, out)
	endAngle = geometry.NormalizeArcEnd(startAngle, endAngle, elem.Clockwise)

	arcAngle := math.Abs(endAngle - startAngle)
	smallArc := arcAngle <= math.Pi

	radiusFromStart := prev.Distance(center)
	radiusToEnd := out.Distance(center)
	radiusAvg := (radiusFromStart + radiusToEnd) / 2

	radius := elem.R
	if radius <= cfg.Epsilon {
		radius = radiusAvg
	}
	if math.Abs(radius-radiusFromStart) > cfg.Epsilon || math.Abs(radius-radiusToEnd) > cfg.Epsilon {
		radius = radiusAvg
	}

	chord := prev.Distance(out)

	// A true semicircle is numerically unstable to fit: inflate the radius
	// until twice the radius covers the chord.
	if math.Abs(arcAngle-math.Pi) < cfg.Epsilon {
		for iteration := 0; chord-2*radius > 0.0001 && iteration < 10; iteration++ {
			radius = chord/2 + 0.001
			if iteration == 0 && d.Log != nil {
				d.Log.Warnf("contour %d element %d: 180° arc radius too small for chord %.3f, adjusting to %.3f",
					contourID, elemNum, chord, radius)
			}
		}
		if minRadius := chord/2 + 0.001; radius < minRadius {
			radius = minRadius
		}
		if correction := 2*radius - chord; correction < 0 {
			radius = chord/2 + math.Abs(correction)/2 + 0.001
		}
	}

	ds := 0
	if elem.Clockwise {
		if !smallArc {
			ds = 2
		}
	} else {
		ds = 1
		if !smallArc {
			ds = 3
		}
	}

	add("KA ")
	add("X=%s", f.Fmt(out.X))
	add("Y=%s", f.Fmt(out.Y))
	add("Z=%s", f.Fmt(z))
	add("DS=%d", ds)
	add("R=%s", f.Fmt(radius))

	add(".X=%s", f.Fmt(out.X))
	add(".Y=%s", f.Fmt(out.Y))
	add(".Z=%s", f.Fmt(z))
	add(".I=%s", f.Fmt(center.X))
	add(".J=%s", f.Fmt(center.Y))
	add(".DS=%d", ds)
	add(".R=%s", f.Fmt(radius))
	add(".WI=%s", f.Fmt(startAngle))
	add(".WO=%s", f.Fmt(endAngle))
	add(".WAZ=%s", f.Fmt(0))
}

func (d *Document) footer(add func(string, ...interface{})) {
	add(`<100 \WerkStck\`)
	add(`LA="l"`)
	add(`BR="w"`)
	add(`DI="th"`)
	add(`FNX="l_off"`)
	add(`FNY="f_off"`)
	add(`RNX="x"`)
	add(`RNY="y"`)
	add(`RNZ="z"`)
	add(`RL="l_off+l+r_oz"`)
	add(`RB="f_off+w+b_oz"`)
	add("")
}

func (d *Document) commentBlock(add func(string, ...interface{})) {
	if !d.Comments {
		return
	}
	add(`<101 \Kommentar\`)
	add(`KM="Generated by woodpost"`)
	add(`KM="Date: %s"`, d.Now.Format("2006-01-02 15:04:05"))
	if d.CoordSystem != "" {
		add(`KM="Coordinate System: %s (offset: X=%.3f, Y=%.3f, Z=%.3f)"`,
			d.CoordSystem, d.Offset.X, d.Offset.Y, d.Offset.Z)
	}
	add(`KAT="Kommentar"`)
	add(`MNM="Kommentar"`)
	add(`ORI="1"`)
	add("")
}

func (d *Document) operations(add func(string, ...interface{}), f Formatter) {
	// Each comment and each operation consumes one ordinal; the leading
	// comment block already used 1.
	ori := 1

	for i := range d.Output.Operations {
		op := &d.Output.Operations[i]
		switch op.Type {
		case compile.OpDrill:
			add(`<102 \BohrVert\`)
			add(`XA="%s"`, f.Fmt(op.X+d.Offset.X))
			add(`YA="%s"`, f.Fmt(op.Y+d.Offset.Y))
			add(`TI="%s"`, f.Fmt(op.Depth))
			add(`TNO="%d"`, op.Tool)
			add(`BM="SS"`)
			add("")

		case compile.OpContourMill:
			// The last element number in the block is 1-based: $E1..$En.
			lastNum := 0
			if contour := d.Output.Contour(op.Contour); contour != nil {
				lastNum = len(contour.Elements)
			}
			rk := op.Compensation
			if rk == "" {
				rk = compile.CompNone
			}

			ori++
			add(`<101 \Kommentar\`)
			add(`KAT="Fräsen"`)
			add(`MNM="Vertical trimming"`)
			add(`ORI="%d"`, ori)
			add("")

			ori++
			add(`<105 \Konturfraesen\`)
			add(`EA="%d:0"`, op.Contour)
			add(`MDA="SEN"`)
			add(`STUFEN="0"`)
			add(`BL="0"`)
			add(`WZS="1"`)
			add(`OSZI="0"`)
			add(`OSZVS="0"`)
			add(`ZSTART="0"`)
			add(`ANZZST="0"`)
			add(`RK="%s"`, rk)
			add(`EE="%d:%d"`, op.Contour, lastNum)
			add(`MDE="SEN_AB"`)
			add(`EM="0"`)
			add(`RI="1"`)
			add(`TNO="%d"`, op.Tool)
			add(`SM="0"`)
			add(`S_="STANDARD"`)
			add(`F_="5"`)
			add(`AB="0"`)
			add(`AF="0"`)
			add(`AW="0"`)
			add(`BW="0"`)
			add(`VLS="0"`)
			add(`VLE="0"`)
			add(`ZA="@0"`)
			add(`SC="0"`)
			add(`TDM="0"`)
			add(`HP="0"`)
			add(`SP="0"`)
			add(`YVE="0"`)
			add(`WW="1,2,3,401,402,403"`)
			add(`ASG="2"`)
			add(`HP_A_O="STANDARD"`)
			add(`KG="0"`)
			add(`RP="STANDARD"`)
			add(`RSEL="0"`)
			add(`RWID="0"`)
			add(`KAT="Fräsen"`)
			add(`MNM="Vertical trimming"`)
			add(`ORI="%d"`, ori)
			add(`MX="0"`)
			add(`MY="0"`)
			add(`MZ="0"`)
			add(`MXF="1"`)
			add(`MYF="1"`)
			add(`MZF="1"`)
			add(`SYA="0"`)
			add(`SYV="0"`)
			add("")

		case compile.OpPocket:
			add(`<103 \Pocket\`)
			add(`EA="%d:0"`, op.Contour)
			add(`TNO="%d"`, op.Tool)
			add("")
		}
	}

	if len(d.Output.Operations) > 0 {
		add("")
	}
	add("!")
}
