package digisim

// A GateKind tags the boolean function a Gate evaluates. The simulator
// supports exactly the six combinational families named in the netlist
// grammar; everything else (muxes, arithmetic, multi-valued logic) is
// out of scope.
type GateKind uint8

// Supported gate kinds.
const (
	AND GateKind = iota
	OR
	XOR
	NAND
	NOR
	XNOR
)

// String returns the name of k as used in netlist directives, without
// the leading dot (e.g. "AND").
func (k GateKind) String() string {
	switch k {
	case AND:
		return "AND"
	case OR:
		return "OR"
	case XOR:
		return "XOR"
	case NAND:
		return "NAND"
	case NOR:
		return "NOR"
	case XNOR:
		return "XNOR"
	default:
		return "UNKNOWN"
	}
}

// reduce folds present inputs with op starting from identity, mirroring
// the teacher library's per-kind gate closures (hwlib.And/Or/Xor/...)
// generalized from fixed two-input pairs to a variable 1-8 input list.
func reduce(identity bool, op func(a, b bool) bool, inputs []bool) bool {
	acc := identity
	for _, in := range inputs {
		acc = op(acc, in)
	}
	return acc
}

func parity(a, b bool) bool { return a != b }

// eval computes the gate function over present input values. AND/NAND
// treat absent input slots as 1 (the identity for AND); OR/NOR/XOR/XNOR
// treat them as 0 (the identity for OR/XOR) — per spec this is handled
// simply by folding only over the present inputs, which already starts
// from the correct identity element.
func (k GateKind) eval(inputs []bool) bool {
	switch k {
	case AND:
		return reduce(true, func(a, b bool) bool { return a && b }, inputs)
	case OR:
		return reduce(false, func(a, b bool) bool { return a || b }, inputs)
	case XOR:
		return reduce(false, parity, inputs)
	case NAND:
		return !reduce(true, func(a, b bool) bool { return a && b }, inputs)
	case NOR:
		return !reduce(false, func(a, b bool) bool { return a || b }, inputs)
	case XNOR:
		return !reduce(false, parity, inputs)
	default:
		return false
	}
}

// A Gate is a combinational component: up to 8 input node indices, one
// output node index, and rise/fall delays. Gates address nodes by index
// into the owning Circuit's node slice rather than by pointer, per the
// index-based addressing scheme described in the design notes.
type Gate struct {
	Kind      GateKind
	Inputs    []int // 1-8 node indices, in declaration order
	Output    int
	RiseDelay int
	FallDelay int

	committed bool // last-committed output
	previous  bool // output before the most recent evaluate()
}

// Evaluate recomputes the gate's output from the current input node
// values, stashes the previously-committed output for a possible
// Revert, commits the new output, and returns the new value together
// with the delay that should be used to schedule its propagation: the
// rise delay on a 0→1 transition, the fall delay on 1→0, and 0 when the
// output does not change.
func (g *Gate) Evaluate(nodes []Node) (value bool, delay int) {
	v := g.Kind.eval(inputValues(nodes, g.Inputs))
	old := g.committed
	g.previous = old
	g.committed = v
	switch {
	case !old && v:
		return v, g.RiseDelay
	case old && !v:
		return v, g.FallDelay
	default:
		return v, 0
	}
}

// WouldChange recomputes the gate's function speculatively, without
// committing anything, and reports whether the result differs from the
// currently committed output. The scheduler uses this to decide whether
// an input change invalidates an in-flight propagation.
func (g *Gate) WouldChange(nodes []Node) bool {
	return g.Kind.eval(inputValues(nodes, g.Inputs)) != g.committed
}

// Revert restores the committed output to the value it held before the
// most recent Evaluate. It is only meaningful immediately after an
// Evaluate whose scheduled propagation was cancelled before it fired.
func (g *Gate) Revert() {
	g.committed = g.previous
}

func inputValues(nodes []Node, idx []int) []bool {
	vs := make([]bool, len(idx))
	for i, n := range idx {
		vs[i] = nodes[n].value
	}
	return vs
}
