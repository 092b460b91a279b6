package vcd_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hjwilson4/digisim/vcd"
)

func TestWriterHeaderAndDumpvars(t *testing.T) {
	var buf bytes.Buffer
	w := vcd.New(&buf, "today", "DigiSim test")

	if err := w.Init([]string{"A", "B", "Y"}, []bool{false, false, false}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"$timescale 1ns $end",
		"$scope module circuit $end",
		"$var wire 1 s1 A $end",
		"$var wire 1 s2 B $end",
		"$var wire 1 s3 Y $end",
		"$upscope $end",
		"$enddefinitions $end",
		"$dumpvars",
		"0s1",
		"0s2",
		"0s3",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriterTransitionsWriteTimeMarkers(t *testing.T) {
	var buf bytes.Buffer
	w := vcd.New(&buf, "today", "DigiSim test")
	if err := w.Init([]string{"X", "Y"}, []bool{false, false}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := w.Transition(2, "X", true); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if err := w.Transition(5, "Y", true); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "#2\n1s1") {
		t.Fatalf("expected '#2' followed by '1s1', got:\n%s", out)
	}
	if !strings.Contains(out, "#5\n1s2") {
		t.Fatalf("expected '#5' followed by '1s2', got:\n%s", out)
	}
}

func TestWriterRejectsTransitionBeforeInit(t *testing.T) {
	var buf bytes.Buffer
	w := vcd.New(&buf, "today", "DigiSim test")
	if err := w.Transition(0, "A", true); err == nil {
		t.Fatalf("Transition before Init should fail")
	}
}

func TestWriterRejectsUnknownNode(t *testing.T) {
	var buf bytes.Buffer
	w := vcd.New(&buf, "today", "DigiSim test")
	if err := w.Init([]string{"A"}, []bool{false}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := w.Transition(0, "Z", true); err == nil {
		t.Fatalf("Transition on unknown node should fail")
	}
}
