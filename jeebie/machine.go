package jeebie

import "github.com/valerio/go-jeebie/jeebie/addr"

// dmaDurationCycles is how many T-cycles a full 160-byte OAM transfer takes:
// one M-cycle (4 T-cycles) per byte.
const dmaDurationCycles = 160 * 4

// oamDMA tracks an in-flight OAM DMA transfer. The real hardware copies one
// byte per M-cycle from sourceHigh<<8 into FE00-FE9F, and locks out the CPU
// from touching anything but HRAM/IE while it runs.
type oamDMA struct {
	active   bool
	source   uint16
	progress int // bytes copied so far, 0..160
	cycleAcc int // T-cycles banked toward the next byte
}

func (d *oamDMA) start(sourceHigh byte) {
	d.active = true
	d.source = uint16(sourceHigh) << 8
	d.progress = 0
	d.cycleAcc = 0
}

func isHRAMOrIE(address uint16) bool {
	return address == addr.IE || (address >= 0xFF80 && address <= 0xFFFE)
}

// Read implements cpu.Bus. Every call represents one memory access and
// advances the shared clock by one M-cycle.
func (d *DMG) Read(address uint16) uint8 {
	var value uint8
	if d.dma.active && !isHRAMOrIE(address) {
		value = 0xFF
	} else {
		value = d.mem.Read(address)
	}
	d.advance(4)
	return value
}

// Write implements cpu.Bus.
func (d *DMG) Write(address uint16, value uint8) {
	if address == addr.DMA {
		d.dma.start(value)
		d.advance(4)
		return
	}
	d.mem.Write(address, value)
	d.advance(4)
}

// Tick implements cpu.Bus, padding purely-internal M-cycles that don't touch
// the bus (e.g. the extra cycle of a 16-bit INC/DEC).
func (d *DMG) Tick(tCycles int) {
	d.advance(tCycles)
}

// advance is the single place that drives every subsystem sharing the
// machine's clock, in the fixed order the hardware requires: OAM-DMA byte
// copy, then input sampling and the timer (both via MMU.Tick), then the
// PPU, then the APU's frame sequencer and channels.
func (d *DMG) advance(tCycles int) {
	d.stepDMA(tCycles)
	d.mem.Tick(tCycles)
	d.gpu.Tick(tCycles)
	d.mem.APU.Tick(tCycles)
}

func (d *DMG) stepDMA(tCycles int) {
	if !d.dma.active {
		return
	}

	d.dma.cycleAcc += tCycles
	for d.dma.cycleAcc >= 4 && d.dma.progress < 160 {
		d.dma.cycleAcc -= 4
		b := d.mem.Peek(d.dma.source + uint16(d.dma.progress))
		d.mem.Poke(0xFE00+uint16(d.dma.progress), b)
		d.dma.progress++
	}

	if d.dma.progress >= 160 {
		d.dma.active = false
	}
}

// RequestInterrupt implements cpu.Bus and video.Bus.
func (d *DMG) RequestInterrupt(interrupt addr.Interrupt) {
	d.mem.RequestInterrupt(interrupt)
}

// PendingInterrupts implements cpu.Bus.
func (d *DMG) PendingInterrupts() uint8 {
	return d.mem.Read(addr.IE) & d.mem.Read(addr.IF) & 0x1F
}

// ClearInterrupt implements cpu.Bus.
func (d *DMG) ClearInterrupt(interrupt addr.Interrupt) {
	flags := d.mem.Read(addr.IF)
	d.mem.Write(addr.IF, flags&^uint8(interrupt))
}

// Peek implements video.Bus: raw, non-ticking read for the PPU.
func (d *DMG) Peek(address uint16) uint8 {
	return d.mem.Peek(address)
}

// Poke implements video.Bus: raw, non-ticking write for the PPU.
func (d *DMG) Poke(address uint16, value uint8) {
	d.mem.Poke(address, value)
}
