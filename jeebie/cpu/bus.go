package cpu

import "github.com/valerio/go-jeebie/jeebie/addr"

// Bus is everything the CPU needs from the rest of the machine. Every Read
// and Write on this interface represents one memory access and advances the
// shared clock by one M-cycle (4 T-cycles) as a side effect — the CPU never
// advances time any other way than through these calls or through Tick,
// which is used to pad purely-internal M-cycles (e.g. ALU-only steps of a
// 16-bit INC/DEC, or the branch-not-taken vs. branch-taken delta).
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Tick(tCycles int)

	// RequestInterrupt sets the corresponding bit in IF.
	RequestInterrupt(interrupt addr.Interrupt)
	// PendingInterrupts returns IE & IF & 0x1F.
	PendingInterrupts() uint8
	// ClearInterrupt clears the given interrupt's bit in IF.
	ClearInterrupt(interrupt addr.Interrupt)
}
