package motion_test

import (
	"testing"

	"woodpost/pkg/motion"

	"github.com/google/go-cmp/cmp"
)

func TestParseBasic(t *testing.T) {
	cmds, err := motion.Parse("G0 X10 Y20\nG1 X30 Y40 Z-5 F1000\nG2 X50 Y40 I10 J0\n")
	if err != nil {
		t.Fatalf("parsing failed: %s", err)
	}
	expected := []motion.Command{
		{Name: "G0", Params: map[string]float64{"X": 10, "Y": 20}},
		{Name: "G1", Params: map[string]float64{"X": 30, "Y": 40, "Z": -5, "F": 1000}},
		{Name: "G2", Params: map[string]float64{"X": 50, "Y": 40, "I": 10, "J": 0}},
	}
	if diff := cmp.Diff(expected, cmds); diff != "" {
		t.Errorf("incorrect output: %s", diff)
	}
}

func TestParseKeepsCommandSpelling(t *testing.T) {
	cmds, err := motion.Parse("G01 X1\nG1 X2")
	if err != nil {
		t.Fatalf("parsing failed: %s", err)
	}
	if cmds[0].Name != "G01" || cmds[1].Name != "G1" {
		t.Errorf("command names not kept verbatim: %q, %q", cmds[0].Name, cmds[1].Name)
	}
	if !cmds[0].IsLinear() || !cmds[1].IsLinear() {
		t.Errorf("both spellings should report linear moves")
	}
}

func TestParseCommentsAndLineNumbers(t *testing.T) {
	cmds, err := motion.Parse("N10 G1 X5 (feed in) Y6 ; trailing\n( whole line )\n\nn20 g81 x1 y2 z-8 r0")
	if err != nil {
		t.Fatalf("parsing failed: %s", err)
	}
	expected := []motion.Command{
		{Name: "G1", Params: map[string]float64{"X": 5, "Y": 6}},
		{Name: "G81", Params: map[string]float64{"X": 1, "Y": 2, "Z": -8, "R": 0}},
	}
	if diff := cmp.Diff(expected, cmds); diff != "" {
		t.Errorf("incorrect output: %s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bare command letter", "G X5"},
		{"missing parameter value", "G1 X"},
		{"unterminated comment", "G1 (never closed"},
		{"stray character", "G1 X5 #7"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := motion.Parse(test.data); err == nil {
				t.Errorf("Parse(%q) succeeded, expected an error", test.data)
			}
		})
	}
}

func TestParamFallback(t *testing.T) {
	cmd := motion.Command{Name: "G1", Params: map[string]float64{"X": 3}}
	if got := cmd.Param("X", 99); got != 3 {
		t.Errorf("Param(X) = %v, expected 3", got)
	}
	if got := cmd.Param("Y", 42); got != 42 {
		t.Errorf("Param(Y) = %v, expected the fallback 42", got)
	}
	if cmd.Has("Y") {
		t.Errorf("Has(Y) = true for a command without Y")
	}
}

func TestCommandKinds(t *testing.T) {
	tests := []struct {
		name                           string
		rapid, working, drill, move, cw bool
	}{
		{"G0", true, false, false, true, false},
		{"G00", true, false, false, true, false},
		{"G1", false, true, false, true, false},
		{"G2", false, true, false, true, true},
		{"G02", false, true, false, true, true},
		{"G3", false, true, false, true, false},
		{"G81", false, false, true, false, false},
		{"G82", false, false, true, false, false},
		{"G83", false, false, true, false, false},
		{"M3", false, false, false, false, false},
	}
	for _, test := range tests {
		cmd := motion.Command{Name: test.name}
		if cmd.IsRapid() != test.rapid {
			t.Errorf("%s: IsRapid() = %v", test.name, cmd.IsRapid())
		}
		if cmd.IsWorking() != test.working {
			t.Errorf("%s: IsWorking() = %v", test.name, cmd.IsWorking())
		}
		if cmd.IsDrill() != test.drill {
			t.Errorf("%s: IsDrill() = %v", test.name, cmd.IsDrill())
		}
		if cmd.IsMove() != test.move {
			t.Errorf("%s: IsMove() = %v", test.name, cmd.IsMove())
		}
		if cmd.IsClockwise() != test.cw {
			t.Errorf("%s: IsClockwise() = %v", test.name, cmd.IsClockwise())
		}
	}
}
