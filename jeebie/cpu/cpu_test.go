package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-jeebie/jeebie/addr"
)

// fakeBus is a flat 64KB memory Bus used to drive the decoder in isolation,
// grounded on the same "give the CPU a minimal memory" approach the
// decoder/instruction tests use elsewhere in this repo.
type fakeBus struct {
	mem   [0x10000]uint8
	ticks int
	ifReg uint8
	ieReg uint8
}

func newFakeBus() *fakeBus { return &fakeBus{} }

func (b *fakeBus) Read(address uint16) uint8 {
	b.ticks += 4
	switch address {
	case addr.IF:
		return b.ifReg
	case addr.IE:
		return b.ieReg
	}
	return b.mem[address]
}

func (b *fakeBus) Write(address uint16, value uint8) {
	b.ticks += 4
	switch address {
	case addr.IF:
		b.ifReg = value
	case addr.IE:
		b.ieReg = value
	default:
		b.mem[address] = value
	}
}

func (b *fakeBus) Tick(tCycles int) { b.ticks += tCycles }

func (b *fakeBus) RequestInterrupt(i addr.Interrupt) { b.ifReg |= uint8(i) }
func (b *fakeBus) PendingInterrupts() uint8           { return b.ieReg & b.ifReg & 0x1F }
func (b *fakeBus) ClearInterrupt(i addr.Interrupt)    { b.ifReg &^= uint8(i) }

func newTestCPU() (*CPU, *fakeBus) {
	bus := newFakeBus()
	c := New(bus)
	c.pc = 0xC000
	return c, bus
}

func TestDecoderSmokeTest(t *testing.T) {
	// Runs every defined base opcode and every CB opcode at least once and
	// asserts none of them panic, satisfying the decoder smoke-test
	// scenario: a full sweep over the opcode space must terminate cleanly.
	for op := 0; op < 256; op++ {
		c, bus := newTestCPU()
		bus.mem[0xC000] = uint8(op)
		bus.mem[0xC001] = 0x00
		bus.mem[0xC002] = 0x00
		assert.NotPanics(t, func() {
			c.Step()
		}, "opcode 0x%02X panicked", op)
	}

	for op := 0; op < 256; op++ {
		c, bus := newTestCPU()
		bus.mem[0xC000] = 0xCB
		bus.mem[0xC001] = uint8(op)
		assert.NotPanics(t, func() {
			c.Step()
		}, "CB opcode 0x%02X panicked", op)
	}
}

func TestNOPTiming(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0xC000] = 0x00
	cycles := c.Step()
	assert.Equal(t, 4, cycles)
	assert.Equal(t, 4, bus.ticks)
	assert.Equal(t, uint16(0xC001), c.pc)
}

func TestJRBackwardLoop(t *testing.T) {
	// JR -2 spins on its own address forever; after N steps PC must still
	// sit at the same instruction and the tick count must be an exact
	// multiple of 12 T-cycles (3 M-cycles per taken JR).
	c, bus := newTestCPU()
	bus.mem[0xC000] = 0x18 // JR
	bus.mem[0xC001] = 0xFE // -2

	for i := 0; i < 100; i++ {
		cycles := c.Step()
		assert.Equal(t, 12, cycles)
		assert.Equal(t, uint16(0xC000), c.pc)
	}
	assert.Equal(t, 1200, bus.ticks)
}

func TestIncDecFlags(t *testing.T) {
	c, _ := newTestCPU()
	c.a = 0xFF
	c.inc(&c.a)
	assert.Equal(t, uint8(0x00), c.a)
	assert.True(t, c.isSetFlag(flagZ))
	assert.True(t, c.isSetFlag(flagH))
	assert.False(t, c.isSetFlag(flagN))

	c.a = 0x00
	c.dec(&c.a)
	assert.Equal(t, uint8(0xFF), c.a)
	assert.False(t, c.isSetFlag(flagZ))
	assert.True(t, c.isSetFlag(flagH))
	assert.True(t, c.isSetFlag(flagN))
}

func TestPushPopAFRoundTrip(t *testing.T) {
	c, _ := newTestCPU()
	c.setAF(0x12F0)
	c.sp = 0xFFFE
	c.pushStack(c.getAF())
	c.setAF(0x0000)
	c.setAF(c.popStack())
	assert.Equal(t, uint16(0x12F0), c.getAF())
}

func TestDoubleSwapIsIdempotent(t *testing.T) {
	c, _ := newTestCPU()
	c.a = 0xA5
	c.swap(&c.a)
	c.swap(&c.a)
	assert.Equal(t, uint8(0xA5), c.a)
}

func TestDAAAfterDecimalAdd(t *testing.T) {
	c, _ := newTestCPU()
	// 0x15 + 0x27 = 0x3C raw, but as BCD that's 15 + 27 = 42 = 0x42.
	c.a = 0x15
	c.addToA(0x27, false)
	assert.Equal(t, uint8(0x3C), c.a)
	c.daa()
	assert.Equal(t, uint8(0x42), c.a)
	assert.False(t, c.isSetFlag(flagC))
}

func TestEIDelaysInterruptByOneInstruction(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0xC000] = 0xFB // EI
	bus.mem[0xC001] = 0x00 // NOP
	bus.ieReg = uint8(addr.VBlankInterrupt)
	bus.ifReg = uint8(addr.VBlankInterrupt)

	c.Step() // EI: ime becomes pending, not yet active
	assert.False(t, c.ime)
	assert.True(t, c.imePending)

	c.Step() // the NOP right after EI still executes before any vector jump
	assert.True(t, c.ime)
	assert.Equal(t, uint16(0xC002), c.pc)

	c.Step() // now IME is active: this fetch instead services the interrupt
	assert.Equal(t, uint16(0x0040), c.pc)
	assert.False(t, c.ime)
}

func TestHaltWakesOnPendingInterruptEvenWithIMEClear(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0xC000] = 0x76 // HALT
	c.ime = false

	c.Step()
	assert.True(t, c.halted)

	bus.ieReg = uint8(addr.TimerInterrupt)
	bus.ifReg = uint8(addr.TimerInterrupt)
	c.Step()
	assert.False(t, c.halted)
}
