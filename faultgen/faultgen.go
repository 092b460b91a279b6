// Package faultgen generates stuck-at fault test vectors for a
// digisim.Circuit: it builds one good circuit plus two locked copies
// per node (stuck-at-0 and stuck-at-1), then greedily searches random
// input patterns for the ones that detect the most still-undetected
// faults, grounded on spec §4.8.
package faultgen

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"sort"

	"github.com/hjwilson4/digisim"
	"github.com/hjwilson4/digisim/internal/netlist"
	"github.com/pkg/errors"
)

// ErrCoverageUnreachable is wrapped into the error Generate returns
// when the trial budget is exhausted before reaching the requested
// coverage. This bounds the open-ended loop in
// original_source/digisim.cpp, which has no such limit (spec §7/§9).
var ErrCoverageUnreachable = errors.New("faultgen: coverage target unreachable within trial budget")

type stuckAt struct {
	Node  string
	Value bool
}

func (s stuckAt) String() string {
	bit := "0"
	if s.Value {
		bit = "1"
	}
	return fmt.Sprintf("%s stuck-at-%s", s.Node, bit)
}

// Generator owns the good circuit and every stuck-at faulty copy and
// drives the coverage-directed search for fault vectors.
type Generator struct {
	good      *digisim.Circuit
	faulty    map[stuckAt]*digisim.Circuit
	rng       *rand.Rand
	MaxRounds int
}

// New parses netlist once for the good circuit and once more per
// stuck-at fault (one per node per polarity), per spec §4.8. seed
// fixes the Generator's PRNG so that two Generators built with the
// same seed produce byte-identical fault vectors — the teacher's
// hwtest helpers seed math/rand explicitly for the same reason.
func New(netlistText []byte, diag digisim.Diagnostics, seed int64) (*Generator, error) {
	good := digisim.NewCircuit(diag)
	if err := good.Load(bytes.NewReader(netlistText)); err != nil {
		return nil, errors.Wrap(err, "faultgen: loading good circuit")
	}

	faulty := make(map[stuckAt]*digisim.Circuit)
	for _, name := range good.AllNodeNames() {
		for _, v := range [2]bool{false, true} {
			fc := digisim.NewCircuit(diag)
			if err := fc.Load(bytes.NewReader(netlistText)); err != nil {
				return nil, errors.Wrapf(err, "faultgen: loading faulty circuit for %s", stuckAt{name, v})
			}
			if err := fc.LockNode(name, v); err != nil {
				return nil, errors.Wrap(err, "faultgen: locking node")
			}
			faulty[stuckAt{name, v}] = fc
		}
	}

	return &Generator{
		good:      good,
		faulty:    faulty,
		rng:       rand.New(rand.NewSource(seed)),
		MaxRounds: 4 * len(faulty),
	}, nil
}

// TotalFaults returns 2·|nodes| — the number of stuck-at faults this
// Generator injected.
func (g *Generator) TotalFaults() int {
	return len(g.faulty)
}

// Vector is one accepted fault vector: the input assignment and the
// set of faults it was found to detect.
type Vector struct {
	Inputs   map[string]bool
	Detected []string // stuckAt.String() of every fault this vector caught
}

// Generate runs the greedy coverage loop of spec §4.8 until cumulative
// coverage reaches target (in [0,1]) or the trial budget defined by
// MaxRounds is exhausted. On exhaustion it returns every vector found
// so far together with an error wrapping ErrCoverageUnreachable,
// rather than looping forever like the reference implementation.
func (g *Generator) Generate(target float64) ([]Vector, error) {
	remaining := make(map[stuckAt]*digisim.Circuit, len(g.faulty))
	for k, v := range g.faulty {
		remaining[k] = v
	}
	total := len(g.faulty)
	inputs := g.good.InputNames()

	var vectors []Vector
	rounds := 0
	covered := 0

	for len(remaining) > 0 && float64(covered)/float64(total) < target-1e-3 {
		trials := len(remaining)
		var bestPattern map[string]bool
		var bestDetected []stuckAt

		for i := 0; i < trials; i++ {
			rounds++
			if rounds > g.MaxRounds {
				return vectors, errors.Wrapf(ErrCoverageUnreachable,
					"reached %d/%d faults after %d trials", covered, total, rounds-1)
			}

			pattern := randomPattern(inputs, g.rng)
			goodOut, err := runFunctional(g.good, pattern)
			if err != nil {
				return vectors, err
			}

			var detected []stuckAt
			for key, fc := range remaining {
				faultyOut, err := runFunctional(fc, pattern)
				if err != nil {
					return vectors, err
				}
				if !equalOutputs(goodOut, faultyOut) {
					detected = append(detected, key)
				}
			}
			if len(detected) > len(bestDetected) {
				bestPattern, bestDetected = pattern, detected
			}
		}

		if len(bestDetected) == 0 {
			continue // spec §4.8 step 3: max is zero, repeat step 2
		}

		names := make([]string, len(bestDetected))
		for i, k := range bestDetected {
			delete(remaining, k)
			names[i] = k.String()
		}
		sort.Strings(names)
		vectors = append(vectors, Vector{Inputs: bestPattern, Detected: names})
		covered += len(bestDetected)
	}

	return vectors, nil
}

func randomPattern(inputs []string, rng *rand.Rand) map[string]bool {
	pattern := make(map[string]bool, len(inputs))
	for _, name := range inputs {
		pattern[name] = rng.Intn(2) == 1
	}
	return pattern
}

func runFunctional(c *digisim.Circuit, pattern map[string]bool) (map[string]bool, error) {
	stimulus := make([]netlist.StimulusRecord, 0, len(pattern))
	for name, v := range pattern {
		raw := "0"
		if v {
			raw = "1"
		}
		stimulus = append(stimulus, netlist.StimulusRecord{Time: 0, Node: name, Raw: raw})
	}
	if err := c.Run(digisim.ModeFunctional, stimulus, nil); err != nil {
		return nil, err
	}
	return c.OutputValues(), nil
}

// equalOutputs implements spec §4.8's order-independent comparison:
// two output snapshots are equal iff they have the same number of
// entries and every name in a maps to the same value in b. Both sides always come from circuits built off the
// same netlist, so their output name sets are identical.
func equalOutputs(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// WriteVectors renders vectors in the FaultVectors.txt format of
// spec §6: a header line, then per vector a banner, its input
// assignments, and the running coverage.
func WriteVectors(w io.Writer, vectors []Vector, totalFaults int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Fault vectors (%d faults total)\n", totalFaults)
	covered := 0
	for i, v := range vectors {
		fmt.Fprintf(bw, "--- Test Vector #%d ---\n", i+1)
		names := make([]string, 0, len(v.Inputs))
		for name := range v.Inputs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			bit := "0"
			if v.Inputs[name] {
				bit = "1"
			}
			fmt.Fprintf(bw, "%s %s\n", name, bit)
		}
		covered += len(v.Detected)
		fmt.Fprintf(bw, "coverage: %d/%d\n", covered, totalFaults)
	}
	return bw.Flush()
}
