package faultgen_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hjwilson4/digisim"
	"github.com/hjwilson4/digisim/faultgen"
	"github.com/hjwilson4/digisim/internal/netlist"
)

const andNetlist = "Y .AND 1 1 A B\n"

func patternStimulus(a, b bool) []netlist.StimulusRecord {
	bit := func(v bool) string {
		if v {
			return "1"
		}
		return "0"
	}
	return []netlist.StimulusRecord{
		{Time: 0, Node: "A", Raw: bit(a)},
		{Time: 0, Node: "B", Raw: bit(b)},
	}
}

// TestStuckAtYDetectedByAllOnesPattern is spec scenario 5: the good
// circuit outputs Y=1 on (A=1, B=1); a Y stuck-at-0 fault flips that to
// Y=0, so the all-ones pattern detects it.
func TestStuckAtYDetectedByAllOnesPattern(t *testing.T) {
	good := digisim.NewCircuit(digisim.DiscardDiagnostics{})
	if err := good.Load(strings.NewReader(andNetlist)); err != nil {
		t.Fatalf("loading good circuit: %v", err)
	}
	if err := good.Run(digisim.ModeFunctional, patternStimulus(true, true), nil); err != nil {
		t.Fatalf("running good circuit: %v", err)
	}
	if got := good.OutputValues()["Y"]; !got {
		t.Fatalf("good circuit Y = %v, want true", got)
	}

	faulty := digisim.NewCircuit(digisim.DiscardDiagnostics{})
	if err := faulty.Load(strings.NewReader(andNetlist)); err != nil {
		t.Fatalf("loading faulty circuit: %v", err)
	}
	if err := faulty.LockNode("Y", false); err != nil {
		t.Fatalf("locking Y stuck-at-0: %v", err)
	}
	if err := faulty.Run(digisim.ModeFunctional, patternStimulus(true, true), nil); err != nil {
		t.Fatalf("running faulty circuit: %v", err)
	}
	if got := faulty.OutputValues()["Y"]; got {
		t.Fatalf("stuck-at-0 circuit Y = %v, want false", got)
	}
}

func TestGeneratorProducesWellFormedVectors(t *testing.T) {
	gen, err := faultgen.New([]byte(andNetlist), digisim.DiscardDiagnostics{}, 42)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if total := gen.TotalFaults(); total != 6 {
		t.Fatalf("TotalFaults() = %d, want 6 (3 nodes x 2 polarities)", total)
	}

	vectors, err := gen.Generate(0.01)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(vectors) == 0 {
		t.Fatalf("Generate(0.01) returned no vectors")
	}
	for i, v := range vectors {
		if len(v.Detected) == 0 {
			t.Fatalf("vector %d detects no faults", i)
		}
		if _, ok := v.Inputs["A"]; !ok {
			t.Fatalf("vector %d missing assignment for input A", i)
		}
	}

	var buf bytes.Buffer
	if err := faultgen.WriteVectors(&buf, vectors, gen.TotalFaults()); err != nil {
		t.Fatalf("WriteVectors: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "--- Test Vector #1 ---") {
		t.Fatalf("WriteVectors output missing banner:\n%s", out)
	}
	if !strings.Contains(out, "coverage:") {
		t.Fatalf("WriteVectors output missing coverage line:\n%s", out)
	}
}
