package cpu

import "github.com/valerio/go-jeebie/jeebie/addr"

// CPU holds Sharp LR35902 register state and decodes/executes one
// instruction at a time against a Bus. It owns no memory of its own; every
// timing-relevant access happens through the Bus, which is the sole path
// through which the shared clock advances.
type CPU struct {
	bus Bus

	a, f          uint8
	b, c          uint8
	d, e          uint8
	h, l          uint8
	sp, pc        uint16
	ime           bool
	imePending    bool
	halted        bool
	haltBug       bool
	stopped       bool
	currentOpcode uint8
}

// New returns a CPU wired to the given Bus, in the post-power-up state a
// DMG sets its registers to when no boot ROM is run.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.setAF(0x01B0)
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100
	return c
}

// PC returns the program counter, exposed for debug tooling.
func (c *CPU) PC() uint16 { return c.pc }

// SP returns the stack pointer, exposed for debug tooling.
func (c *CPU) SP() uint16 { return c.sp }

// IsHalted reports whether the CPU is in the low-power HALT state.
func (c *CPU) IsHalted() bool { return c.halted }

// InterruptsEnabled reports the current IME state, for debug tooling.
func (c *CPU) InterruptsEnabled() bool { return c.ime }

// AF, BC, DE, HL expose the register pairs for debug tooling.
func (c *CPU) AF() uint16 { return c.getAF() }
func (c *CPU) BC() uint16 { return c.getBC() }
func (c *CPU) DE() uint16 { return c.getDE() }
func (c *CPU) HL() uint16 { return c.getHL() }

// Registers returns a snapshot of the 8-bit registers for debug tooling.
func (c *CPU) Registers() (a, f, b, cc, d, e, h, l uint8) {
	return c.a, c.f, c.b, c.c, c.d, c.e, c.h, c.l
}

// Step executes exactly one instruction (or, while halted, one
// no-op cycle) and returns the number of T-cycles it consumed. Interrupt
// servicing happens first, since a pending, enabled interrupt takes
// priority over fetching the next opcode.
func (c *CPU) Step() int {
	if serviced := c.serviceInterrupt(); serviced {
		return 20
	}

	if c.halted {
		if c.bus.PendingInterrupts() != 0 {
			c.halted = false
		} else {
			c.bus.Tick(4)
			return 4
		}
	}

	if c.imePending {
		c.ime = true
		c.imePending = false
	}

	opcode := c.fetch()
	if c.haltBug {
		// HALT with IME=0 and a pending interrupt fails to advance PC for
		// the opcode that follows it; the byte is fetched again next step.
		c.pc--
		c.haltBug = false
	}

	return c.execute(opcode)
}

func (c *CPU) fetch() uint8 {
	c.currentOpcode = c.bus.Read(c.pc)
	c.pc++
	return c.currentOpcode
}

func (c *CPU) readImmediate() uint8 {
	v := c.bus.Read(c.pc)
	c.pc++
	return v
}

func (c *CPU) readImmediateWord() uint16 {
	lo := c.readImmediate()
	hi := c.readImmediate()
	return (uint16(hi) << 8) | uint16(lo)
}

func (c *CPU) readSignedImmediate() int8 {
	return int8(c.readImmediate())
}

// serviceInterrupt checks IE&IF for the highest-priority pending interrupt
// and, if IME is set, pushes PC and jumps to the handler. Even with IME
// cleared, a pending interrupt still wakes the CPU from HALT (handled in
// Step), so this only returns true (consuming 5 M-cycles/20 T-cycles) when
// IME was set and a vector was taken.
func (c *CPU) serviceInterrupt() bool {
	pending := c.bus.PendingInterrupts()
	if pending == 0 {
		return false
	}

	if !c.ime {
		return false
	}

	interrupts := []addr.Interrupt{
		addr.VBlankInterrupt,
		addr.LCDSTATInterrupt,
		addr.TimerInterrupt,
		addr.SerialInterrupt,
		addr.JoypadInterrupt,
	}
	vectors := map[addr.Interrupt]uint16{
		addr.VBlankInterrupt:  0x0040,
		addr.LCDSTATInterrupt: 0x0048,
		addr.TimerInterrupt:   0x0050,
		addr.SerialInterrupt:  0x0058,
		addr.JoypadInterrupt:  0x0060,
	}

	for _, i := range interrupts {
		if pending&uint8(i) == 0 {
			continue
		}

		c.ime = false
		c.bus.ClearInterrupt(i)
		c.bus.Tick(8)
		c.pushStack(c.pc)
		c.pc = vectors[i]
		c.bus.Tick(4)
		return true
	}

	return false
}
