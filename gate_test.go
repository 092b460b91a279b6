package digisim

import "testing"

func TestGateKindEval(t *testing.T) {
	cases := []struct {
		kind   GateKind
		inputs []bool
		want   bool
	}{
		{AND, []bool{true, true}, true},
		{AND, []bool{true, false}, false},
		{OR, []bool{false, false}, false},
		{OR, []bool{false, true}, true},
		{XOR, []bool{true, true}, false},
		{XOR, []bool{true, false}, true},
		{NAND, []bool{true, true}, false},
		{NAND, []bool{false, false}, true},
		{NOR, []bool{false, false}, true},
		{NOR, []bool{true, false}, false},
		{XNOR, []bool{true, true}, true},
		{XNOR, []bool{true, false}, false},
	}
	for _, c := range cases {
		if got := c.kind.eval(c.inputs); got != c.want {
			t.Errorf("%s.eval(%v) = %v, want %v", c.kind, c.inputs, got, c.want)
		}
	}
}

func TestGateEvaluateDelaySelection(t *testing.T) {
	nodes := []Node{{Name: "A"}, {Name: "B"}, {Name: "Y"}}
	g := &Gate{Kind: AND, Inputs: []int{0, 1}, Output: 2, RiseDelay: 3, FallDelay: 5}

	if v, d := g.Evaluate(nodes); v || d != 0 {
		t.Fatalf("initial Evaluate() = (%v, %d), want (false, 0)", v, d)
	}

	nodes[0].value, nodes[1].value = true, true
	v, d := g.Evaluate(nodes)
	if !v || d != 3 {
		t.Fatalf("rising Evaluate() = (%v, %d), want (true, 3)", v, d)
	}

	nodes[0].value = false
	v, d = g.Evaluate(nodes)
	if v || d != 5 {
		t.Fatalf("falling Evaluate() = (%v, %d), want (false, 5)", v, d)
	}
}

func TestGateWouldChangeAndRevert(t *testing.T) {
	nodes := []Node{{Name: "A"}, {Name: "B"}, {Name: "Y"}}
	g := &Gate{Kind: NAND, Inputs: []int{0, 1}, Output: 2, RiseDelay: 2, FallDelay: 2}
	g.Evaluate(nodes) // commits Y=1 (NAND of 0,0)

	if g.WouldChange(nodes) {
		t.Fatalf("WouldChange() = true before any input changed")
	}

	nodes[0].value = true
	nodes[1].value = true
	if !g.WouldChange(nodes) {
		t.Fatalf("WouldChange() = false, want true (NAND(1,1) = 0 != committed 1)")
	}

	g.Evaluate(nodes) // commits Y=0
	g.Revert()
	if !g.committed {
		t.Fatalf("Revert() left committed = false, want true (the pre-Evaluate value)")
	}
}
