package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hjwilson4/digisim"
	"github.com/hjwilson4/digisim/faultgen"
	"github.com/hjwilson4/digisim/internal/netlist"
	"github.com/hjwilson4/digisim/vcd"
)

func main() {
	in := bufio.NewScanner(os.Stdin)
	logger := log.New(os.Stderr, "", 0)

	netlistPath := prompt(in, "Netlist file: ")
	netlistBytes, err := os.ReadFile(netlistPath)
	if err != nil {
		logger.Fatalf("reading netlist: %v", err)
	}

	if askYesNo(in, "Run Timing Simulation? [y/n] ") {
		stimPath := prompt(in, "Stimulus file: ")
		if err := runSimulation(netlistBytes, stimPath, digisim.ModeTiming, "TimingSimOutput.vcd", logger); err != nil {
			logger.Fatalf("timing simulation: %v", err)
		}
	} else if askYesNo(in, "Run Functional Simulation? [y/n] ") {
		stimPath := prompt(in, "Stimulus file: ")
		if err := runSimulation(netlistBytes, stimPath, digisim.ModeFunctional, "FunctionalSimOutput.vcd", logger); err != nil {
			logger.Fatalf("functional simulation: %v", err)
		}
	} else if askYesNo(in, "Run Fault Vector Generation? [y/n] ") {
		coverage := promptFloat(in, "Target coverage (0-100): ") / 100
		if err := runFaultGen(netlistBytes, coverage, logger); err != nil {
			logger.Fatalf("fault vector generation: %v", err)
		}
	}
}

func prompt(in *bufio.Scanner, msg string) string {
	fmt.Print(msg)
	in.Scan()
	return strings.TrimSpace(in.Text())
}

func askYesNo(in *bufio.Scanner, msg string) bool {
	ans := strings.ToLower(prompt(in, msg))
	return ans == "y" || ans == "yes"
}

func promptFloat(in *bufio.Scanner, msg string) float64 {
	raw := prompt(in, msg)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func runSimulation(netlistBytes []byte, stimPath string, mode digisim.Mode, vcdPath string, logger *log.Logger) error {
	c := digisim.NewCircuit(digisim.StderrDiagnostics{Logger: logger})
	if err := c.Load(strings.NewReader(string(netlistBytes))); err != nil {
		return err
	}

	stimBytes, err := os.ReadFile(stimPath)
	if err != nil {
		return err
	}
	stimulus, err := netlist.ReadStimulus(strings.NewReader(string(stimBytes)))
	if err != nil {
		return err
	}

	out, err := os.Create(vcdPath)
	if err != nil {
		return err
	}
	defer out.Close()

	w := vcd.New(out, time.Now().Format(time.RFC1123), "DigiSim")
	return c.Run(mode, stimulus, w)
}

func runFaultGen(netlistBytes []byte, coverage float64, logger *log.Logger) error {
	gen, err := faultgen.New(netlistBytes, digisim.StderrDiagnostics{Logger: logger}, time.Now().UnixNano())
	if err != nil {
		return err
	}
	vectors, genErr := gen.Generate(coverage)

	out, err := os.Create("FaultVectors.txt")
	if err != nil {
		return err
	}
	defer out.Close()

	total := gen.TotalFaults()
	if writeErr := faultgen.WriteVectors(out, vectors, total); writeErr != nil {
		return writeErr
	}
	if genErr != nil {
		logger.Printf("%v", genErr)
	}
	return nil
}
