package digisim

import (
	"io"
	"sort"

	"github.com/hjwilson4/digisim/internal/netlist"
	"github.com/pkg/errors"
)

// WaveformSink is the interface a Circuit reports node activity to. The
// vcd package implements it; Circuit has no knowledge of the VCD format
// itself — waveform emission is an external collaborator, not part of
// the core engine.
type WaveformSink interface {
	// Init is called once per Run, before any stimulus is applied, with
	// every node name in declaration order and its corresponding value.
	// In functional mode the values are those after initial-state
	// settling; in timing mode they are the pre-settlement values.
	Init(names []string, values []bool) error
	// Transition is called for every NodeUpdate the engine commits.
	Transition(t float64, name string, value bool) error
}

// Circuit owns a netlist's nodes, combinational gates and flip-flops,
// classifies which nodes are primary inputs/outputs, and drives the
// discrete-event simulation described in spec §4.6/§4.7.
type Circuit struct {
	Nodes     []Node
	Gates     []Gate
	FlipFlops []FlipFlop

	nodeIndex map[string]int
	driven    map[int]bool // node ever used as a gate/FF output
	consumed  map[int]bool // node ever used as a gate/FF input

	gateInputs map[int][]int // node idx -> gate indices reading it
	ffByClock  map[int][]int // node idx -> FF indices clocked by it
	ffByData   map[int][]int // node idx -> FF indices fed by it as D

	inputOrder  []int // node indices classified as inputs, name-sorted
	outputOrder []int // node indices classified as outputs, name-sorted

	queue EventQueue
	Diag  Diagnostics
}

// NewCircuit returns an empty Circuit ready for Load.
func NewCircuit(diag Diagnostics) *Circuit {
	if diag == nil {
		diag = DiscardDiagnostics{}
	}
	return &Circuit{
		nodeIndex:  make(map[string]int),
		driven:     make(map[int]bool),
		consumed:   make(map[int]bool),
		gateInputs: make(map[int][]int),
		ffByClock:  make(map[int][]int),
		ffByData:   make(map[int][]int),
		Diag:       diag,
	}
}

// Load parses netlist text from r into the circuit's nodes, gates and
// flip-flops, then classifies inputs/outputs. It may be called only
// once per Circuit.
func (c *Circuit) Load(r io.Reader) error {
	gateRecs, ffRecs, err := netlist.ReadNetlist(r)
	if err != nil {
		return errors.Wrap(err, "parsing netlist")
	}

	for _, gr := range gateRecs {
		out := c.nodeID(gr.Output)
		c.driven[out] = true
		kind, err := gateKindOf(gr.Kind)
		if err != nil {
			return errors.Wrapf(err, "netlist line %d", gr.Line)
		}
		ins := make([]int, len(gr.Inputs))
		for i, name := range gr.Inputs {
			ins[i] = c.nodeID(name)
			c.consumed[ins[i]] = true
		}
		gi := len(c.Gates)
		c.Gates = append(c.Gates, Gate{
			Kind: kind, Inputs: ins, Output: out,
			RiseDelay: gr.Rise, FallDelay: gr.Fall,
		})
		for _, in := range ins {
			c.addGateInput(in, gi)
		}
	}

	for _, fr := range ffRecs {
		d := c.nodeID(fr.D)
		clk := c.nodeID(fr.Clk)
		q := c.nodeID(fr.Q)
		qn := c.nodeID(fr.Qn)
		c.consumed[d] = true
		c.consumed[clk] = true
		c.driven[q] = true
		c.driven[qn] = true
		fi := len(c.FlipFlops)
		c.FlipFlops = append(c.FlipFlops, *NewFlipFlop(d, clk, q, qn, fr.Q, fr.Setup, fr.Hold))
		c.ffByClock[clk] = append(c.ffByClock[clk], fi)
		c.ffByData[d] = append(c.ffByData[d], fi)
	}

	c.classifyIO()
	return nil
}

func gateKindOf(k netlist.GateKind) (GateKind, error) {
	switch k {
	case netlist.AND:
		return AND, nil
	case netlist.OR:
		return OR, nil
	case netlist.XOR:
		return XOR, nil
	case netlist.NAND:
		return NAND, nil
	case netlist.NOR:
		return NOR, nil
	case netlist.XNOR:
		return XNOR, nil
	default:
		return 0, errors.Errorf("unsupported gate kind %q", k)
	}
}

func (c *Circuit) addGateInput(nodeIdx, gateIdx int) {
	for _, g := range c.gateInputs[nodeIdx] {
		if g == gateIdx {
			return
		}
	}
	c.gateInputs[nodeIdx] = append(c.gateInputs[nodeIdx], gateIdx)
}

// nodeID returns the index of the node named name, creating it (with
// initial value 0) on first reference.
func (c *Circuit) nodeID(name string) int {
	if idx, ok := c.nodeIndex[name]; ok {
		return idx
	}
	idx := len(c.Nodes)
	c.Nodes = append(c.Nodes, Node{Name: name})
	c.nodeIndex[name] = idx
	return idx
}

// NodeIndex looks up a node by name.
func (c *Circuit) NodeIndex(name string) (int, bool) {
	idx, ok := c.nodeIndex[name]
	return idx, ok
}

// classifyIO implements spec §3: a node is an input iff it is never a
// gate/FF output; it is an output iff it is never a gate/FF input. A
// node can be both (unconnected on one side) or neither (purely
// internal).
func (c *Circuit) classifyIO() {
	var inNames, outNames []string
	for i, n := range c.Nodes {
		if !c.driven[i] {
			inNames = append(inNames, n.Name)
		}
		if !c.consumed[i] {
			outNames = append(outNames, n.Name)
		}
	}
	sort.Strings(inNames)
	sort.Strings(outNames)
	c.inputOrder = make([]int, len(inNames))
	for i, name := range inNames {
		c.inputOrder[i] = c.nodeIndex[name]
	}
	c.outputOrder = make([]int, len(outNames))
	for i, name := range outNames {
		c.outputOrder[i] = c.nodeIndex[name]
	}
}

// InputNames returns the names of every node classified as a primary
// input, sorted for determinism.
func (c *Circuit) InputNames() []string {
	names := make([]string, len(c.inputOrder))
	for i, idx := range c.inputOrder {
		names[i] = c.Nodes[idx].Name
	}
	return names
}

// OutputNames returns the names of every node classified as a primary
// output, sorted for determinism.
func (c *Circuit) OutputNames() []string {
	names := make([]string, len(c.outputOrder))
	for i, idx := range c.outputOrder {
		names[i] = c.Nodes[idx].Name
	}
	return names
}

// OutputValues returns a name-keyed snapshot of every primary output
// node's current value. Per spec §9 ("Order-independent output
// comparison"), comparing two circuits' outputs should go through this
// map rather than through any positional ordering.
func (c *Circuit) OutputValues() map[string]bool {
	vals := make(map[string]bool, len(c.outputOrder))
	for _, idx := range c.outputOrder {
		vals[c.Nodes[idx].Name] = c.Nodes[idx].value
	}
	return vals
}

// AllNodeNames returns the name of every node in the circuit, input,
// output or purely internal, sorted for determinism. FaultGenerator
// uses this to enumerate the 2·|nodes| stuck-at faults it injects.
func (c *Circuit) AllNodeNames() []string {
	names := make([]string, len(c.Nodes))
	for i, n := range c.Nodes {
		names[i] = n.Name
	}
	sort.Strings(names)
	return names
}

// LockNode applies a permanent stuck-at fault to the named node. It is
// how FaultGenerator builds its 2·|nodes| faulty circuit copies.
func (c *Circuit) LockNode(name string, value bool) error {
	idx, ok := c.nodeIndex[name]
	if !ok {
		return errors.Errorf("no such node %q", name)
	}
	c.Nodes[idx].Lock(value)
	return nil
}

// nodeNames returns every node's name in declaration order, used to
// assign VCD wire ids.
func (c *Circuit) nodeNames() []string {
	names := make([]string, len(c.Nodes))
	for i, n := range c.Nodes {
		names[i] = n.Name
	}
	return names
}

func (c *Circuit) nodeValues() []bool {
	vals := make([]bool, len(c.Nodes))
	for i, n := range c.Nodes {
		vals[i] = n.value
	}
	return vals
}

// Run drives the event-driven simulation described in spec §4.6
// (ModeTiming) and §4.7 (ModeFunctional). stimulus need not be
// time-sorted — the event queue reorders it. sink receives the
// resulting waveform; it may be nil to run the simulation without
// recording a waveform (used internally by FaultGenerator, which only
// cares about final output values).
func (c *Circuit) Run(mode Mode, stimulus []netlist.StimulusRecord, sink WaveformSink) error {
	c.queue = EventQueue{}

	// 1. Seed from gates whose zero-state output is forced non-zero
	// (NAND/NOR/XNOR with all-zero inputs).
	for gi := range c.Gates {
		g := &c.Gates[gi]
		_, delay := g.Evaluate(c.Nodes)
		if delay == 0 {
			continue
		}
		t := 0.0
		if mode == ModeTiming {
			t = float64(delay)
		}
		c.queue.Push(Event{Kind: NodeUpdateEvent, Time: t, NodeIdx: g.Output, Value: g.committed})
	}

	if mode == ModeFunctional {
		// Settle the initial state before anything is reported: the
		// functional $dumpvars block reflects post-settlement values,
		// not the all-zero pre-settlement ones.
		c.drain(mode, nil)
	}

	if sink != nil {
		if err := sink.Init(c.nodeNames(), c.nodeValues()); err != nil {
			return errors.Wrap(err, "writing waveform header")
		}
	}

	for _, s := range stimulus {
		v, ok := s.ParseValue()
		if !ok {
			c.Diag.Warnf("stimulus line %d: value %q resolves to %s, not 0/1; ignored", s.Line, s.Raw, s.State())
			continue
		}
		idx, known := c.nodeIndex[s.Node]
		if !known {
			c.Diag.Warnf("stimulus line %d: unknown node %q; ignored", s.Line, s.Node)
			continue
		}
		c.queue.Push(Event{Kind: NodeUpdateEvent, Time: s.Time, NodeIdx: idx, Value: v})
	}

	return c.drain(mode, sink)
}

// drain empties the event queue, dispatching each event by kind. This
// is the heart of spec §4.6/§4.7's main loop, including the
// inertial-delay cancellation (would_change + purge + revert) that
// makes a glitch that never reaches steady state not propagate.
func (c *Circuit) drain(mode Mode, sink WaveformSink) error {
	for c.queue.Len() > 0 {
		e := c.queue.Pop()
		switch e.Kind {
		case NodeUpdateEvent:
			if err := c.dispatchNodeUpdate(e, mode, sink); err != nil {
				return err
			}
		case GateEvalEvent:
			c.dispatchGateEval(e, mode)
		case FFEvalEvent:
			c.dispatchFFEval(e, mode)
		}
	}
	return nil
}

func (c *Circuit) dispatchNodeUpdate(e Event, mode Mode, sink WaveformSink) error {
	n := &c.Nodes[e.NodeIdx]
	n.Write(e.Value)
	if sink != nil {
		if err := sink.Transition(e.Time, n.Name, n.Read()); err != nil {
			return errors.Wrap(err, "writing waveform transition")
		}
	}

	for _, gi := range c.gateInputs[e.NodeIdx] {
		g := &c.Gates[gi]
		if !g.WouldChange(c.Nodes) {
			continue
		}
		c.queue.Purge(g.Output, g.Revert)
		c.queue.Push(Event{Kind: GateEvalEvent, Time: e.Time, GateIdx: gi})
	}
	for _, fi := range c.ffByClock[e.NodeIdx] {
		c.queue.Push(Event{Kind: FFEvalEvent, Time: e.Time, FFIdx: fi, Edge: FFClockEdge})
	}
	for _, fi := range c.ffByData[e.NodeIdx] {
		c.FlipFlops[fi].OnDataEvent(e.Time, mode, c.Diag)
	}
	return nil
}

func (c *Circuit) dispatchGateEval(e Event, mode Mode) {
	g := &c.Gates[e.GateIdx]
	_, delay := g.Evaluate(c.Nodes)
	if delay == 0 {
		return
	}
	t := e.Time
	if mode == ModeTiming {
		t += float64(delay)
	}
	c.queue.Push(Event{Kind: NodeUpdateEvent, Time: t, NodeIdx: g.Output, Value: g.committed})
}

func (c *Circuit) dispatchFFEval(e Event, mode Mode) {
	f := &c.FlipFlops[e.FFIdx]
	q, qn, rising := f.OnClockEvent(e.Time, c.Nodes, mode, c.Diag)
	if !rising {
		return
	}
	c.queue.Push(Event{Kind: NodeUpdateEvent, Time: e.Time, NodeIdx: f.Q, Value: q})
	c.queue.Push(Event{Kind: NodeUpdateEvent, Time: e.Time, NodeIdx: f.Qn, Value: qn})
}
