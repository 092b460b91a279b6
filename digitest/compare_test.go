package digitest_test

import (
	"testing"

	"github.com/hjwilson4/digisim/digitest"
)

// TestCompareCircuitsNandBuiltOr mirrors the teacher's ComparePart test:
// an OR built entirely out of NAND gates must behave identically to a
// native OR gate under every input combination.
func TestCompareCircuitsNandBuiltOr(t *testing.T) {
	nativeOr := []byte("Y .OR 1 1 A B\n")
	nandOr := []byte(
		"notA .NAND 1 1 A A\n" +
			"notB .NAND 1 1 B B\n" +
			"Y .NAND 1 1 notA notB\n",
	)
	digitest.CompareCircuits(t, nativeOr, nandOr, 8)
}

func TestNetlistBuilderBytes(t *testing.T) {
	var nb digitest.NetlistBuilder
	nb.Comment("a two-input AND").Gate("Y", "AND", 1, 1, "A", "B")
	text := string(nb.Bytes())
	if text != "# a two-input AND\nY .AND 1 1 A B\n" {
		t.Fatalf("Bytes() = %q, unexpected", text)
	}
}
