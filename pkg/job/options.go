package job

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"woodpost/pkg/cfg"
)

// Options are the output flags the host passes as a raw argument string.
type Options struct {
	// Precision is the decimal precision of body coordinate fields (1–6).
	Precision int
	// Comments enables descriptive comment lines in the output.
	Comments bool
	// IncludeRapids emits every rapid move as a contour line instead of
	// skipping the leading and trailing rapid chains.
	IncludeRapids bool
	// UseRawZ emits Z coordinates exactly as compiled, without the
	// work-coordinate-system offset.
	UseRawZ bool
	// CoordSystem forces a work-coordinate system ("G54"); when empty the
	// job's fixture list decides.
	CoordSystem string
	// NoClearanceClamp disables raising the clearance height to the minimum.
	NoClearanceClamp bool
	// ClearanceStart starts contours at the symbolic clearance expression
	// instead of the compiled numeric start Z.
	ClearanceStart bool
	// SortDrills reorders drill operations by nearest neighbor to reduce
	// rapid travel.
	SortDrills bool
	// Verbose enables debug logging.
	Verbose bool

	// Workpiece dimension overrides; zero means auto-detect from the job.
	WorkpieceLength    float64
	WorkpieceWidth     float64
	WorkpieceThickness float64
}

func DefaultOptions() Options {
	return Options{
		Precision: cfg.DefaultPrecision,
		Comments:  true,
	}
}

// ParseArgs applies a host flag string ("--precision=4 --g54 /use_g0") on top
// of the defaults. Flags accept both "--" and "/" prefixes; unknown flags are
// ignored, invalid values fall back to defaults with a warning.
func ParseArgs(argstring string, log logrus.FieldLogger) Options {
	opts := DefaultOptions()
	for _, arg := range strings.Fields(argstring) {
		name := strings.TrimLeft(arg, "-/")
		value := ""
		if i := strings.IndexByte(name, '='); i >= 0 {
			name, value = name[:i], name[i+1:]
		}

		switch strings.ToLower(name) {
		case "log":
			opts.Verbose = true
		case "no-comments":
			opts.Comments = false
		case "use_g0":
			opts.IncludeRapids = true
		case "use_z_part":
			opts.UseRawZ = true
		case "g54":
			opts.CoordSystem = "G54"
		case "no_z_safe20":
			opts.NoClearanceClamp = true
		case "g0_start":
			opts.ClearanceStart = true
		case "sort_drills":
			opts.SortDrills = true
		case "precision":
			p, err := strconv.Atoi(value)
			if err != nil || p < cfg.MinPrecision || p > cfg.MaxPrecision {
				if log != nil {
					log.Warnf("invalid precision %q, using default %d", value, cfg.DefaultPrecision)
				}
				p = cfg.DefaultPrecision
			}
			opts.Precision = p
		case "workpiece-length":
			opts.WorkpieceLength = parseDimension(value, log)
		case "workpiece-width":
			opts.WorkpieceWidth = parseDimension(value, log)
		case "workpiece-thickness":
			opts.WorkpieceThickness = parseDimension(value, log)
		}
	}
	return opts
}

func parseDimension(value string, log logrus.FieldLogger) float64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || v <= 0 {
		if log != nil {
			log.Warnf("invalid workpiece dimension %q, auto-detecting", value)
		}
		return 0
	}
	return v
}
