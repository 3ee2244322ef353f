// Package mpr serializes a compiled output into the WoodWOP MPR 4.0 text
// grammar: header fields, a variable block, per-contour element blocks, the
// workpiece footer, and per-operation blocks.
package mpr

import (
	"strconv"

	"woodpost/pkg/cfg"
)

// Formatter renders body coordinate fields at a fixed decimal precision.
type Formatter struct {
	precision int
}

// NewFormatter clamps the precision into the supported 1–6 range; anything
// out of range falls back to the default.
func NewFormatter(precision int) Formatter {
	if precision < cfg.MinPrecision || precision > cfg.MaxPrecision {
		precision = cfg.DefaultPrecision
	}
	return Formatter{precision: precision}
}

func (f Formatter) Fmt(v float64) string {
	return strconv.FormatFloat(v, 'f', f.precision, 64)
}

// Fmt6 renders header geometry fields, which always use 6 decimals
// regardless of the body precision setting.
func Fmt6(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
