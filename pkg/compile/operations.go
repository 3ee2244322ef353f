package compile

import (
	"strings"

	"woodpost/pkg/motion"
)

// Object is one path-bearing source operation handed over by the host.
type Object struct {
	Label    string
	Hint     string // host classification hint, may be empty
	Tool     int    // 0 when the host could not resolve a tool
	Commands []motion.Command
}

// Classify resolves the operation type of an object. The host hint wins;
// without one the command stream decides: drilling cycles make it a drilling
// operation, arcs make it a profile, anything else is a plain contour.
func Classify(obj Object) string {
	hint := strings.ToLower(obj.Hint)
	switch {
	case strings.Contains(hint, "profile") || strings.Contains(hint, "contour"):
		return "profile"
	case strings.Contains(hint, "drill"):
		return "drilling"
	case strings.Contains(hint, "pocket"):
		return "pocket"
	}

	hasArcs, hasDrills := false, false
	for _, cmd := range obj.Commands {
		if cmd.IsArc() {
			hasArcs = true
		}
		if cmd.IsDrill() {
			hasDrills = true
		}
	}
	switch {
	case hasDrills:
		return "drilling"
	case hasArcs:
		return "profile"
	default:
		return "contour"
	}
}

// AddObject compiles one source object into the output: profile and contour
// objects become a contour plus a milling operation, pockets a contour plus a
// pocket operation, drilling objects one drill operation per cycle. The
// start Z is replaced by the symbolic clearance expression when startZ is
// symbolic (deferring evaluation to the controller).
func (o *Output) AddObject(obj Object, includeRapids bool, startZ ZValue, wp Workpiece) {
	tool := obj.Tool
	if tool == 0 {
		tool = 1
	}

	switch Classify(obj) {
	case "drilling":
		ops := ExtractDrills(obj.Commands, tool)
		if len(ops) == 0 {
			return
		}
		o.Operations = append(o.Operations, ops...)
		o.addTool(tool)

	case "pocket":
		contourID, ok := o.addContour(obj, includeRapids, startZ)
		if !ok {
			return
		}
		o.addTool(tool)
		o.Operations = append(o.Operations, Operation{
			Type:    OpPocket,
			Contour: contourID,
			Tool:    tool,
		})

	default: // profile, contour
		contourID, ok := o.addContour(obj, includeRapids, startZ)
		if !ok {
			return
		}
		o.addTool(tool)
		contour := o.Contour(contourID)
		o.Operations = append(o.Operations, Operation{
			Type:         OpContourMill,
			Contour:      contourID,
			Tool:         tool,
			Compensation: Compensation(o, contourID, wp),
			LastElement:  len(contour.Elements) - 1,
		})
	}
}

func (o *Output) addContour(obj Object, includeRapids bool, startZ ZValue) (int, bool) {
	elements, start := ExtractContour(obj.Commands, includeRapids)
	if len(elements) == 0 {
		return 0, false
	}

	id := o.nextContourID
	o.nextContourID++

	z := NumericZ(start.Z)
	if startZ.IsSymbolic() {
		z = startZ
	}

	label := obj.Label
	if label == "" {
		label = "Contour"
	}
	o.Contours = append(o.Contours, Contour{
		ID:       id,
		Label:    label,
		Elements: elements,
		StartX:   start.X,
		StartY:   start.Y,
		StartZ:   z,
	})
	return id, true
}
