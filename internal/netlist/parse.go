// Package netlist tokenizes netlist and stimulus files into structured
// records. It never resolves node names to circuit state — that is
// digisim.Circuit's job — it only recognizes the two record shapes a
// netlist line can take and the one shape a stimulus line can take,
// skipping comments and blank lines along the way.
package netlist

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/hjwilson4/digisim/internal/lex"
	"github.com/pkg/errors"
)

// token types for the field lexer.
const (
	tEOF lex.Type = lex.Type(lex.EOF)
	tField lex.Type = iota
)

func lexInit(l *lex.Lexer) lex.StateFn {
	r := l.Next()
	switch {
	case r == lex.EOF:
		l.Emit(tEOF, "end of input")
		return nil
	case unicode.IsSpace(r):
		l.AcceptWhile(unicode.IsSpace)
		return nil
	default:
		return lexField
	}
}

func lexField(l *lex.Lexer) lex.StateFn {
	var b strings.Builder
	b.WriteRune(l.Current())
	for {
		r := l.Next()
		if r == lex.EOF || unicode.IsSpace(r) {
			if r != lex.EOF {
				l.Backup()
			}
			break
		}
		b.WriteRune(r)
	}
	l.Emit(tField, b.String())
	return nil
}

// Fields splits a line into whitespace-separated fields using the
// internal/lex scanner.
func Fields(line string) []string {
	l := lex.New(strings.NewReader(line), lexInit)
	var out []string
	for {
		i := l.Lex()
		if i.Type == tEOF {
			return out
		}
		out = append(out, i.Value.(string))
	}
}

// GateKind names one of the six supported combinational gate types.
type GateKind string

// Supported combinational gate kinds.
const (
	AND  GateKind = "AND"
	OR   GateKind = "OR"
	XOR  GateKind = "XOR"
	NAND GateKind = "NAND"
	NOR  GateKind = "NOR"
	XNOR GateKind = "XNOR"
)

// GateRecord is a parsed combinational gate line:
// "<out> .<GATE> <rise> <fall> <in1> [<in2>..<in8>]"
type GateRecord struct {
	Output string
	Kind   GateKind
	Rise   int
	Fall   int
	Inputs []string
	Line   int
}

// DFFRecord is a parsed flip-flop line:
// "<q> .DFF <setup> <hold> <d> <clk> <q> <qn>"
type DFFRecord struct {
	Setup float64
	Hold  float64
	D     string
	Clk   string
	Q     string
	Qn    string
	Line  int
}

// LogicState names the value a stimulus token resolves to. The engine
// itself only ever drives Zero/One onto a Node, but the parser has to
// account for every token a stimulus file can legally contain without
// aborting the read, so the enum reserves the remaining four-valued-logic
// states even though nothing downstream of ParseValue produces them yet.
type LogicState uint8

// Recognized logic states. Only Zero and One ever reach a Circuit; the
// rest classify a token ParseValue could not resolve to a definite value.
const (
	Zero LogicState = iota
	One
	Unknown
	Uninitialized
	HighZ
)

func (s LogicState) String() string {
	switch s {
	case Zero:
		return "0"
	case One:
		return "1"
	case Uninitialized:
		return "uninitialized"
	case HighZ:
		return "Z"
	default:
		return "X"
	}
}

// StimulusRecord is a parsed stimulus line: "<time> <node> <value>".
// Raw holds the value token verbatim; State/ParseValue interpret it.
type StimulusRecord struct {
	Time float64
	Node string
	Raw  string
	Line int
}

// State classifies the record's raw value token. "z"/"Z" reads as
// high-impedance and "x"/"X" as unknown; anything else that isn't "0" or
// "1" is Unknown too, matching ParseValue's permissive fallback.
func (s StimulusRecord) State() LogicState {
	switch s.Raw {
	case "0":
		return Zero
	case "1":
		return One
	case "z", "Z":
		return HighZ
	case "x", "X":
		return Unknown
	default:
		return Unknown
	}
}

// ParseValue interprets the stimulus record's value token. Per spec, any
// token other than "0" or "1" maps to the reserved unknown placeholder
// (ok is false) rather than aborting the parse.
func (s StimulusRecord) ParseValue() (value bool, ok bool) {
	switch s.State() {
	case Zero:
		return false, true
	case One:
		return true, true
	default:
		return false, false
	}
}

// ParseNetlistLine recognizes one non-empty, non-comment netlist line.
// Blank lines and lines starting with '#' return (nil, nil, nil); callers
// should treat that as "skip this line".
func ParseNetlistLine(line string, lineNo int) (*GateRecord, *DFFRecord, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, nil, nil
	}
	f := Fields(line)
	if len(f) < 4 {
		return nil, nil, errors.Errorf("line %d: expected at least 4 fields, got %d", lineNo, len(f))
	}
	out, kindTok := f[0], f[1]
	if kindTok == ".DFF" {
		if len(f) != 8 {
			return nil, nil, errors.Errorf("line %d: .DFF expects 6 fields after the directive, got %d", lineNo, len(f)-2)
		}
		setup, err := strconv.ParseFloat(f[2], 64)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "line %d: invalid setup time %q", lineNo, f[2])
		}
		hold, err := strconv.ParseFloat(f[3], 64)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "line %d: invalid hold time %q", lineNo, f[3])
		}
		return nil, &DFFRecord{
			Setup: setup,
			Hold:  hold,
			D:     f[4],
			Clk:   f[5],
			Q:     out,
			Qn:    f[7],
			Line:  lineNo,
		}, nil
	}

	kind, ok := parseGateKind(kindTok)
	if !ok {
		// Unknown gate tokens are silently ignored, per spec — a known
		// source-behavior quirk carried over from the reference tool.
		return nil, nil, nil
	}
	if len(f) < 5 || len(f) > 12 {
		return nil, nil, errors.Errorf("line %d: %s expects 2 delays plus 1-8 inputs, got %d fields", lineNo, kindTok, len(f)-2)
	}
	rise, err := strconv.Atoi(f[2])
	if err != nil {
		return nil, nil, errors.Wrapf(err, "line %d: invalid rise delay %q", lineNo, f[2])
	}
	fall, err := strconv.Atoi(f[3])
	if err != nil {
		return nil, nil, errors.Wrapf(err, "line %d: invalid fall delay %q", lineNo, f[3])
	}
	return &GateRecord{
		Output: out,
		Kind:   kind,
		Rise:   rise,
		Fall:   fall,
		Inputs: append([]string(nil), f[4:]...),
		Line:   lineNo,
	}, nil, nil
}

func parseGateKind(tok string) (GateKind, bool) {
	switch tok {
	case ".AND":
		return AND, true
	case ".OR":
		return OR, true
	case ".XOR":
		return XOR, true
	case ".NAND":
		return NAND, true
	case ".NOR":
		return NOR, true
	case ".XNOR":
		return XNOR, true
	default:
		return "", false
	}
}

// ParseStimulusLine recognizes one stimulus line "<time> <node> <value>".
// Blank lines return a nil record and nil error.
func ParseStimulusLine(line string, lineNo int) (*StimulusRecord, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, nil
	}
	f := Fields(line)
	if len(f) != 3 {
		return nil, errors.Errorf("line %d: expected <time> <node> <value>, got %d fields", lineNo, len(f))
	}
	t, err := strconv.ParseFloat(f[0], 64)
	if err != nil {
		return nil, errors.Wrapf(err, "line %d: invalid time %q", lineNo, f[0])
	}
	return &StimulusRecord{Time: t, Node: f[1], Raw: f[2], Line: lineNo}, nil
}

// ReadNetlist reads every gate/DFF record out of r in order.
func ReadNetlist(r io.Reader) ([]GateRecord, []DFFRecord, error) {
	var gates []GateRecord
	var dffs []DFFRecord
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		g, d, err := ParseNetlistLine(sc.Text(), lineNo)
		if err != nil {
			return nil, nil, err
		}
		switch {
		case g != nil:
			gates = append(gates, *g)
		case d != nil:
			dffs = append(dffs, *d)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "reading netlist")
	}
	return gates, dffs, nil
}

// ReadStimulus reads every stimulus record out of r in file order. Records
// need not be time-sorted; the caller's event queue reorders them.
func ReadStimulus(r io.Reader) ([]StimulusRecord, error) {
	var recs []StimulusRecord
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		rec, err := ParseStimulusLine(sc.Text(), lineNo)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			recs = append(recs, *rec)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading stimulus")
	}
	return recs, nil
}
