// Package compile turns motion-command streams into the closed-form contour
// and operation records the document serializer renders. All compiled state
// lives in an Output value scoped to one export invocation; nothing here is
// process-global.
package compile

// Kind tags a contour element with its target-format record kind.
type Kind string

const (
	KindLine Kind = "KL"
	KindArc  Kind = "KA"
)

// Element is one contour element. Line elements use X/Y/Z and MoveType; arc
// elements additionally carry the center offset I/J (relative to the arc's
// start point), the nominal radius, the sweep direction, and a midpoint used
// for three-point disambiguation. Arcs never encode a Z change.
type Element struct {
	Kind Kind
	X    float64
	Y    float64
	Z    float64

	I         float64
	J         float64
	R         float64
	Clockwise bool
	MidX      float64
	MidY      float64

	// MoveType records the source command name of line elements ("G0" or
	// "G1") for downstream analysis.
	MoveType string
}

// ZValue is a Z coordinate that is usually numeric but may be a symbolic
// expression (for example "th+z_safe") evaluated by the consuming controller.
// Symbolic values are emitted verbatim, unoffset and unformatted.
type ZValue struct {
	Expr string
	Num  float64
}

func NumericZ(v float64) ZValue    { return ZValue{Num: v} }
func SymbolicZ(expr string) ZValue { return ZValue{Expr: expr} }
func (z ZValue) IsSymbolic() bool  { return z.Expr != "" }

// Contour is an identified, ordered sequence of elements plus the position
// the cut starts from. It is never mutated after creation; coordinate offsets
// are applied at serialization time, not stored back.
type Contour struct {
	ID       int
	Label    string
	Elements []Element
	StartX   float64
	StartY   float64
	StartZ   ZValue
}

// OpType tags an operation with its target-format block name.
type OpType string

const (
	OpContourMill OpType = "Konturfraesen"
	OpPocket      OpType = "Pocket"
	OpDrill       OpType = "BohrVert"
)

// Operation is a single machining operation. Mill and pocket operations
// reference a contour by ID (the contour stays owned by the Output); drill
// operations are self-contained points.
type Operation struct {
	Type    OpType
	Contour int
	Tool    int

	// Compensation and LastElement apply to contour milling only.
	Compensation string
	LastElement  int

	// X, Y, Depth apply to drilling only.
	X     float64
	Y     float64
	Depth float64
}

// Workpiece describes the stock geometry and program offsets the compiled
// output is positioned against.
type Workpiece struct {
	Length    float64
	Width     float64
	Thickness float64

	// Stock oversize relative to the finished part: left, right, front, back.
	ExtentXNeg float64
	ExtentXPos float64
	ExtentYNeg float64
	ExtentYPos float64

	// Program offsets (workpiece positioning on the machine).
	OffsetX float64
	OffsetY float64
	OffsetZ float64
}

// Output is the compiled aggregate for one export invocation. Contour IDs
// are 1-based and sequential.
type Output struct {
	Contours   []Contour
	Operations []Operation
	Tools      map[int]struct{}

	nextContourID int
}

func NewOutput() *Output {
	return &Output{
		Tools:         map[int]struct{}{},
		nextContourID: 1,
	}
}

// Contour returns the contour with the given ID, or nil.
func (o *Output) Contour(id int) *Contour {
	for i := range o.Contours {
		if o.Contours[i].ID == id {
			return &o.Contours[i]
		}
	}
	return nil
}

func (o *Output) addTool(tool int) {
	if tool != 0 {
		o.Tools[tool] = struct{}{}
	}
}
