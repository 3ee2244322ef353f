// Package motion models the motion-command stream handed over by the host
// CAM application: one named command per move plus a sparse letter→value
// parameter map. Omitted axes carry the previous position forward (modal
// positioning); resolution against the running position happens at the
// consumer via Param.
package motion

// Command is a single motion command. Name is the word-address name exactly
// as supplied by the host ("G0" and "G00" are both valid spellings). Params
// holds only the letters that were explicitly present on the command.
type Command struct {
	Name   string             `json:"name"`
	Params map[string]float64 `json:"params,omitempty"`
}

// Param returns the value of the given parameter letter, or fallback when the
// command does not carry it.
func (c Command) Param(letter string, fallback float64) float64 {
	if v, ok := c.Params[letter]; ok {
		return v
	}
	return fallback
}

// Has reports whether the command explicitly carries the given letter.
func (c Command) Has(letter string) bool {
	_, ok := c.Params[letter]
	return ok
}

// IsRapid reports a rapid positioning move (G0/G00).
func (c Command) IsRapid() bool {
	return c.Name == "G0" || c.Name == "G00"
}

// IsLinear reports a linear interpolation move (G1/G01).
func (c Command) IsLinear() bool {
	return c.Name == "G1" || c.Name == "G01"
}

// IsArc reports a circular interpolation move in either direction.
func (c Command) IsArc() bool {
	switch c.Name {
	case "G2", "G02", "G3", "G03":
		return true
	}
	return false
}

// IsClockwise reports the arc direction. Only meaningful when IsArc is true.
func (c Command) IsClockwise() bool {
	return c.Name == "G2" || c.Name == "G02"
}

// IsDrill reports a canned drilling cycle (G81/G82/G83).
func (c Command) IsDrill() bool {
	switch c.Name {
	case "G81", "G82", "G83":
		return true
	}
	return false
}

// IsWorking reports a working move: linear or circular interpolation. Rapids
// and drilling cycles are not working moves.
func (c Command) IsWorking() bool {
	return c.IsLinear() || c.IsArc()
}

// IsMove reports any position-affecting move (rapid, linear, or arc).
func (c Command) IsMove() bool {
	return c.IsRapid() || c.IsWorking()
}
