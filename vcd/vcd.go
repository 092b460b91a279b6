// Package vcd writes Value Change Dump waveform files. It knows
// nothing about digisim.Circuit — it implements digisim.WaveformSink
// structurally (Init/Transition) so the simulator's core package never
// has to import it.
package vcd

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Writer streams a VCD file as a Circuit reports node activity. The
// zero value is not usable; construct one with New.
type Writer struct {
	w        *bufio.Writer
	ids      map[string]string // node name -> "s<N>" identifier
	lastTime float64
	wroteHdr bool
}

// New wraps w. date and version populate the VCD header's $date and
// $version lines; version is typically a program name and is written
// verbatim between "$version" and "$end".
func New(w io.Writer, date, version string) *Writer {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "$date\n   %s\n$end\n", date)
	fmt.Fprintf(bw, "$version\n   %s\n$end\n", version)
	fmt.Fprintf(bw, "$timescale 1ns $end\n")
	return &Writer{w: bw, ids: make(map[string]string)}
}

// Init implements digisim.WaveformSink. It assigns every node an "s<N>"
// identifier in the order given, writes the $scope/$var/$upscope/
// $enddefinitions block, and then a $dumpvars block with the supplied
// initial values.
func (w *Writer) Init(names []string, values []bool) error {
	if w.wroteHdr {
		return errors.New("vcd: Init called more than once")
	}
	fmt.Fprintf(w.w, "$scope module circuit $end\n")
	for i, name := range names {
		id := fmt.Sprintf("s%d", i+1)
		w.ids[name] = id
		fmt.Fprintf(w.w, "$var wire 1 %s %s $end\n", id, name)
	}
	fmt.Fprintf(w.w, "$upscope $end\n")
	fmt.Fprintf(w.w, "$enddefinitions $end\n")

	fmt.Fprintf(w.w, "$dumpvars\n")
	for i, name := range names {
		writeBit(w.w, w.ids[name], values[i])
	}
	w.wroteHdr = true
	w.lastTime = -1
	return w.w.Flush()
}

// Transition implements digisim.WaveformSink. Consecutive transitions
// at the same simulated time share one "#<time>" marker, matching the
// grammar in spec §6.
func (w *Writer) Transition(t float64, name string, value bool) error {
	if !w.wroteHdr {
		return errors.New("vcd: Transition called before Init")
	}
	id, ok := w.ids[name]
	if !ok {
		return errors.Errorf("vcd: unknown node %q", name)
	}
	if t != w.lastTime {
		fmt.Fprintf(w.w, "#%v\n", t)
		w.lastTime = t
	}
	writeBit(w.w, id, value)
	return w.w.Flush()
}

func writeBit(w io.Writer, id string, v bool) {
	if v {
		fmt.Fprintf(w, "1%s\n", id)
	} else {
		fmt.Fprintf(w, "0%s\n", id)
	}
}
