package digisim

import "fmt"

// Mode selects between a timing-aware simulation (rise/fall delay and
// setup/hold checking) and a functional, zero-delay simulation.
type Mode uint8

const (
	ModeFunctional Mode = iota
	ModeTiming
)

// String returns "timing" or "functional".
func (m Mode) String() string {
	if m == ModeTiming {
		return "timing"
	}
	return "functional"
}

// Diagnostics is the sink recoverable conditions are reported to:
// setup/hold violations (timing mode only) and warnings about skipped
// stimulus records. A Circuit never aborts a run because of a diagnostic —
// simulation continues; Q still latches D on a violated edge.
type Diagnostics interface {
	// Violation reports a setup or hold time violation. kind is
	// "setup" or "hold".
	Violation(kind string, t float64, qName string)
	// Warnf reports a non-fatal condition, such as a permissively
	// skipped parse record.
	Warnf(format string, args ...interface{})
}

// StderrDiagnostics formats violations exactly as spec'd:
// "ERROR: <kind> time violation at time <T> on Q output node <name>",
// and routes everything through a std-library *log.Logger, matching
// the teacher CLI's own use of the log package for diagnostics.
type StderrDiagnostics struct {
	Logger interface {
		Printf(format string, v ...interface{})
	}
}

// Violation implements Diagnostics.
func (d StderrDiagnostics) Violation(kind string, t float64, qName string) {
	d.Logger.Printf("ERROR: %s time violation at time %v on Q output node %s", kind, t, qName)
}

// Warnf implements Diagnostics.
func (d StderrDiagnostics) Warnf(format string, args ...interface{}) {
	d.Logger.Printf(format, args...)
}

// DiscardDiagnostics silently drops every report; useful in tests that
// only care about the resulting waveform.
type DiscardDiagnostics struct{}

func (DiscardDiagnostics) Violation(string, float64, string)  {}
func (DiscardDiagnostics) Warnf(string, ...interface{})       {}

// RecordingDiagnostics accumulates reports in memory instead of
// printing them, for tests that assert on violations.
type RecordingDiagnostics struct {
	Violations []string
	Warnings   []string
}

func (d *RecordingDiagnostics) Violation(kind string, t float64, qName string) {
	d.Violations = append(d.Violations, fmt.Sprintf("%s@%v:%s", kind, t, qName))
}

func (d *RecordingDiagnostics) Warnf(format string, args ...interface{}) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}
