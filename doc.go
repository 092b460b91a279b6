/*
Package digisim implements a gate-level digital logic simulator.

It provides a discrete-event engine for combinational networks of AND,
OR, XOR, NAND, NOR and XNOR gates plus clocked D flip-flops: a Circuit
parses a netlist, classifies its input and output nodes, and drives an
EventQueue either as a timing simulation (honoring per-gate rise/fall
delay and flip-flop setup/hold checks) or a functional, zero-delay
simulation. Sibling packages build on top of the engine: vcd writes the
resulting waveform, faultgen synthesizes stuck-at fault vectors by
running many Circuits side by side, and internal/netlist and
internal/lex handle netlist and stimulus file parsing.
*/
package digisim
