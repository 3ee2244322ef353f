// Package job is the host-facing surface: it adapts the host's path objects
// and stock description into the compiler's types and drives the full export
// pipeline (compile → offset → serialize → normalize).
package job

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"woodpost/pkg/cfg"
	"woodpost/pkg/compile"
	"woodpost/pkg/geometry"
	"woodpost/pkg/motion"
	"woodpost/pkg/mpr"
	"woodpost/pkg/mprfile"
)

// clearanceExpr is the symbolic start-Z expression evaluated by the
// controller: workpiece thickness plus the clearance height variable.
const clearanceExpr = "th+z_safe"

// PathObject is one path-bearing operation from the host. Commands may be
// given directly or as word-address text in GCode (used by the CLI); when
// both are present, Commands wins.
type PathObject struct {
	Label    string           `json:"label,omitempty"`
	Kind     string           `json:"kind,omitempty"`
	Tool     int              `json:"tool,omitempty"`
	Commands []motion.Command `json:"commands,omitempty"`
	GCode    string           `json:"gcode,omitempty"`
}

// Stock describes the raw material: finished dimensions, oversize extents,
// and the program offset of the stock on the machine.
type Stock struct {
	Length     float64         `json:"length,omitempty"`
	Width      float64         `json:"width,omitempty"`
	Thickness  float64         `json:"thickness,omitempty"`
	ExtentXNeg float64         `json:"extent_x_neg,omitempty"`
	ExtentXPos float64         `json:"extent_x_pos,omitempty"`
	ExtentYNeg float64         `json:"extent_y_neg,omitempty"`
	ExtentYPos float64         `json:"extent_y_pos,omitempty"`
	Position   geometry.Point3 `json:"position,omitempty"`
}

// Job is the host's export request.
type Job struct {
	Name string `json:"name,omitempty"`

	Stock Stock `json:"stock,omitempty"`

	// ModelBounds is the part bounding box, the fallback source for
	// workpiece dimensions when the stock does not carry them.
	ModelBounds *geometry.Bounds3 `json:"model_bounds,omitempty"`

	// Fixtures lists the work-coordinate systems selected in the job
	// ("G54" and so on); a G5x entry activates coordinate offsetting.
	Fixtures []string `json:"fixtures,omitempty"`

	// ClearanceHeight is the job's safe retract height hint; zero means
	// unset.
	ClearanceHeight float64 `json:"clearance_height,omitempty"`

	Objects []PathObject `json:"objects"`
}

// Exporter runs export invocations. The logger is the host's diagnostic
// channel; warnings never abort an export.
type Exporter struct {
	Log logrus.FieldLogger
}

func NewExporter(log logrus.FieldLogger) *Exporter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Exporter{Log: log}
}

// Export compiles the job and returns the final MPR text, CRLF-normalized.
// The compiled aggregate is scoped to this call; concurrent exports do not
// share state. A pipeline that produces no text yields the minimal fallback
// document instead of failing.
func (e *Exporter) Export(j *Job, opts Options) (string, error) {
	wp := e.resolveWorkpiece(j, opts)
	coordSystem := e.resolveCoordSystem(j, opts)

	startZ := compile.ZValue{}
	if opts.ClearanceStart {
		startZ = compile.SymbolicZ(clearanceExpr)
	}

	out := compile.NewOutput()
	for i, obj := range j.Objects {
		cmds := obj.Commands
		if len(cmds) == 0 && obj.GCode != "" {
			parsed, err := motion.Parse(obj.GCode)
			if err != nil {
				return "", fmt.Errorf("object %d (%s): %w", i, obj.Label, err)
			}
			cmds = parsed
		}
		out.AddObject(compile.Object{
			Label:    obj.Label,
			Hint:     obj.Kind,
			Tool:     obj.Tool,
			Commands: cmds,
		}, opts.IncludeRapids, startZ, wp)
	}

	if opts.SortDrills {
		sortDrills(out)
	}

	var offset geometry.Point3
	if coordSystem != "" {
		offset = compile.PartMinimum(out).Negate()
		e.Log.Debugf("%s offset: X=%.3f, Y=%.3f, Z=%.3f", coordSystem, offset.X, offset.Y, offset.Z)
	}

	zSafe := j.ClearanceHeight
	if zSafe == 0 {
		zSafe = cfg.MinClearanceHeight
	}
	if zSafe < cfg.MinClearanceHeight && !opts.NoClearanceClamp {
		e.Log.Warnf("clearance height %.3f mm is below the %.0f mm minimum, raising it",
			zSafe, cfg.MinClearanceHeight)
		zSafe = cfg.MinClearanceHeight
	}

	doc := mpr.Document{
		Output:      out,
		Workpiece:   wp,
		Offset:      offset,
		ZSafe:       zSafe,
		Precision:   opts.Precision,
		Comments:    opts.Comments,
		UseRawZ:     opts.UseRawZ,
		CoordSystem: coordSystem,
		Now:         time.Now(),
		Log:         e.Log,
	}

	content := mprfile.Normalize(doc.Render())
	if content == "" {
		e.Log.Warn("serializer produced no content, falling back to the minimal document")
		content = mprfile.Normalize(mpr.Minimal)
	}
	return content, nil
}

// resolveWorkpiece resolves the workpiece geometry: flag overrides win, then
// the job's stock, then the model bounding box, then the defaults.
func (e *Exporter) resolveWorkpiece(j *Job, opts Options) compile.Workpiece {
	wp := compile.Workpiece{
		Length:     opts.WorkpieceLength,
		Width:      opts.WorkpieceWidth,
		Thickness:  opts.WorkpieceThickness,
		ExtentXNeg: j.Stock.ExtentXNeg,
		ExtentXPos: j.Stock.ExtentXPos,
		ExtentYNeg: j.Stock.ExtentYNeg,
		ExtentYPos: j.Stock.ExtentYPos,
		OffsetX:    j.Stock.Position.X,
		OffsetY:    j.Stock.Position.Y,
		OffsetZ:    j.Stock.Position.Z,
	}

	if wp.Length == 0 {
		wp.Length = j.Stock.Length
	}
	if wp.Width == 0 {
		wp.Width = j.Stock.Width
	}
	if wp.Thickness == 0 {
		wp.Thickness = j.Stock.Thickness
	}

	if b := j.ModelBounds; b != nil {
		if wp.Length == 0 {
			wp.Length = b.Max.X - b.Min.X
			e.Log.Debugf("workpiece length from model bounds: %.3f mm", wp.Length)
		}
		if wp.Width == 0 {
			wp.Width = b.Max.Y - b.Min.Y
			e.Log.Debugf("workpiece width from model bounds: %.3f mm", wp.Width)
		}
		if wp.Thickness == 0 {
			wp.Thickness = b.Max.Z - b.Min.Z
			e.Log.Debugf("workpiece thickness from model bounds: %.3f mm", wp.Thickness)
		}
	}

	if wp.Length == 0 {
		wp.Length = cfg.DefaultWorkpieceLength
		e.Log.Debugf("using default workpiece length: %.3f mm", wp.Length)
	}
	if wp.Width == 0 {
		wp.Width = cfg.DefaultWorkpieceWidth
		e.Log.Debugf("using default workpiece width: %.3f mm", wp.Width)
	}
	if wp.Thickness == 0 {
		wp.Thickness = cfg.DefaultWorkpieceThickness
		e.Log.Debugf("using default workpiece thickness: %.3f mm", wp.Thickness)
	}
	return wp
}

// resolveCoordSystem picks the work-coordinate system: the flag wins, then
// G54 from the job's fixtures, then the first G5x fixture.
func (e *Exporter) resolveCoordSystem(j *Job, opts Options) string {
	if opts.CoordSystem != "" {
		return opts.CoordSystem
	}
	for _, fixture := range j.Fixtures {
		if fixture == "G54" {
			return "G54"
		}
	}
	if len(j.Fixtures) > 0 && strings.HasPrefix(j.Fixtures[0], "G5") {
		return j.Fixtures[0]
	}
	return ""
}
