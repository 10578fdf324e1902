package video

import "github.com/valerio/go-jeebie/jeebie/addr"

// Bus is the minimal surface the PPU needs from the rest of the machine.
// Peek/Poke are raw, non-ticking accesses — the PPU reads VRAM/OAM and its
// own control registers directly, bypassing the CPU-facing bus entirely, so
// these must never advance the shared clock themselves.
type Bus interface {
	Peek(address uint16) uint8
	Poke(address uint16, value uint8)
	RequestInterrupt(interrupt addr.Interrupt)
}
