package digisim

import "math"

// A FlipFlop is a clocked D flip-flop: Q takes D's value on a rising
// edge of Clk; Qn is always its complement. Unlike a Gate, a FlipFlop
// introduces no propagation delay of its own — Q/Qn updates are
// scheduled at the same timestamp as the triggering clock edge — but it
// tracks the timing of its last D and Clk transitions to detect
// setup/hold violations, mirroring the edge-detection idiom the teacher
// library uses for its own (delay-free, tick-driven) DFF part.
type FlipFlop struct {
	D, Clk, Q, Qn int
	QName         string // for diagnostic messages
	Setup, Hold   float64

	lastClk  bool
	tDLast   float64
	tClkLast float64
}

// NewFlipFlop returns a FlipFlop with its last-event timestamps
// initialized far enough in the past that no spurious setup/hold
// violation fires before the first real D or Clk event is observed.
func NewFlipFlop(d, clk, q, qn int, qName string, setup, hold float64) *FlipFlop {
	return &FlipFlop{
		D: d, Clk: clk, Q: q, Qn: qn, QName: qName,
		Setup: setup, Hold: hold,
		tDLast:   math.Inf(-1),
		tClkLast: math.Inf(-1),
	}
}

// OnClockEvent processes a change of the Clk node's committed value at
// time t. If it is a rising edge (previous Clk was 0, current Clk is 1)
// it reports the values Q and Qn should take — the caller is
// responsible for scheduling NodeUpdate events to actually commit
// them — and, in timing mode, reports a setup violation to diag if the
// most recent D change happened too close to this edge. The stored
// "last Clk value" is updated unconditionally, on every call, edge or
// not.
func (f *FlipFlop) OnClockEvent(t float64, nodes []Node, mode Mode, diag Diagnostics) (q, qn bool, rising bool) {
	cur := nodes[f.Clk].value
	rising = !f.lastClk && cur
	if rising {
		d := nodes[f.D].value
		q, qn = d, !d
		if mode == ModeTiming && t-f.tDLast < f.Setup {
			diag.Violation("setup", t, f.QName)
		}
		f.tClkLast = t
	}
	f.lastClk = cur
	return q, qn, rising
}

// OnDataEvent records the time of a D node change and, in timing mode,
// reports a hold violation to diag if it happened too soon after the
// last rising Clk edge.
func (f *FlipFlop) OnDataEvent(t float64, mode Mode, diag Diagnostics) {
	f.tDLast = t
	if mode == ModeTiming && t-f.tClkLast < f.Hold {
		diag.Violation("hold", t, f.QName)
	}
}
