package digisim

import "testing"

func TestFlipFlopCapturesOnRisingEdge(t *testing.T) {
	// Scenario 3 (spec): D rises at t=0, Clk rises at t=5. Setup margin
	// is ample (1 unit required, 5 elapsed), so no violation.
	nodes := []Node{{Name: "D"}, {Name: "Clk"}, {Name: "Q"}, {Name: "Qn"}}
	f := NewFlipFlop(0, 1, 2, 3, "Q", 1, 1)
	diag := &RecordingDiagnostics{}

	f.OnDataEvent(0, ModeTiming, diag)
	nodes[0].value = true

	nodes[1].value = true
	q, qn, rising := f.OnClockEvent(5, nodes, ModeTiming, diag)
	if !rising {
		t.Fatalf("OnClockEvent() rising = false, want true")
	}
	if !q || qn {
		t.Fatalf("OnClockEvent() = (Q=%v, Qn=%v), want (true, false)", q, qn)
	}
	if len(diag.Violations) != 0 {
		t.Fatalf("unexpected violations: %v", diag.Violations)
	}
}

func TestFlipFlopHoldViolationInTimingModeOnly(t *testing.T) {
	// Scenario 4 (spec): Clk and D both change at t=5 — D changes with
	// zero margin after the clock edge, violating the 1-unit hold time.
	nodes := []Node{{Name: "D"}, {Name: "Clk"}, {Name: "Q"}, {Name: "Qn"}}

	timingDiag := &RecordingDiagnostics{}
	ffTiming := NewFlipFlop(0, 1, 2, 3, "Q", 1, 1)
	nodes[1].value = true
	ffTiming.OnClockEvent(5, nodes, ModeTiming, timingDiag)
	ffTiming.OnDataEvent(5, ModeTiming, timingDiag)
	if len(timingDiag.Violations) != 1 {
		t.Fatalf("timing mode: got %d violations, want 1: %v", len(timingDiag.Violations), timingDiag.Violations)
	}

	funcDiag := &RecordingDiagnostics{}
	ffFunctional := NewFlipFlop(0, 1, 2, 3, "Q", 1, 1)
	ffFunctional.OnClockEvent(5, nodes, ModeFunctional, funcDiag)
	ffFunctional.OnDataEvent(5, ModeFunctional, funcDiag)
	if len(funcDiag.Violations) != 0 {
		t.Fatalf("functional mode: got %d violations, want 0: %v", len(funcDiag.Violations), funcDiag.Violations)
	}
}
