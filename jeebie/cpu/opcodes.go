package cpu

import "github.com/valerio/go-jeebie/jeebie/bit"

type opcodeFunc func(*CPU) int

// baseOpcodes covers every opcode outside the regular 0x40-0xBF grid
// (handled by ldRR/aluAR in decode.go) and the CB prefix (cb.go).
var baseOpcodes = map[uint8]opcodeFunc{
	0x00: opNOP,
	0x01: func(c *CPU) int { c.setBC(c.readImmediateWord()); return 12 },
	0x02: func(c *CPU) int { c.bus.Write(c.getBC(), c.a); return 8 },
	0x03: func(c *CPU) int { c.bus.Tick(4); c.setBC(c.getBC() + 1); return 8 },
	0x04: func(c *CPU) int { c.inc(&c.b); return 4 },
	0x05: func(c *CPU) int { c.dec(&c.b); return 4 },
	0x06: func(c *CPU) int { c.b = c.readImmediate(); return 8 },
	0x07: func(c *CPU) int { c.rlc(&c.a); c.resetFlag(flagZ); return 4 },
	0x08: opLdNNSP,
	0x09: func(c *CPU) int { c.addToHL(c.getBC()); c.bus.Tick(4); return 8 },
	0x0A: func(c *CPU) int { c.a = c.bus.Read(c.getBC()); return 8 },
	0x0B: func(c *CPU) int { c.bus.Tick(4); c.setBC(c.getBC() - 1); return 8 },
	0x0C: func(c *CPU) int { c.inc(&c.c); return 4 },
	0x0D: func(c *CPU) int { c.dec(&c.c); return 4 },
	0x0E: func(c *CPU) int { c.c = c.readImmediate(); return 8 },
	0x0F: func(c *CPU) int { c.rrc(&c.a); c.resetFlag(flagZ); return 4 },

	0x10: func(c *CPU) int { c.readImmediate(); c.stopped = true; return 4 },
	0x11: func(c *CPU) int { c.setDE(c.readImmediateWord()); return 12 },
	0x12: func(c *CPU) int { c.bus.Write(c.getDE(), c.a); return 8 },
	0x13: func(c *CPU) int { c.bus.Tick(4); c.setDE(c.getDE() + 1); return 8 },
	0x14: func(c *CPU) int { c.inc(&c.d); return 4 },
	0x15: func(c *CPU) int { c.dec(&c.d); return 4 },
	0x16: func(c *CPU) int { c.d = c.readImmediate(); return 8 },
	0x17: func(c *CPU) int { c.rl(&c.a); c.resetFlag(flagZ); return 4 },
	0x18: opJR,
	0x19: func(c *CPU) int { c.addToHL(c.getDE()); c.bus.Tick(4); return 8 },
	0x1A: func(c *CPU) int { c.a = c.bus.Read(c.getDE()); return 8 },
	0x1B: func(c *CPU) int { c.bus.Tick(4); c.setDE(c.getDE() - 1); return 8 },
	0x1C: func(c *CPU) int { c.inc(&c.e); return 4 },
	0x1D: func(c *CPU) int { c.dec(&c.e); return 4 },
	0x1E: func(c *CPU) int { c.e = c.readImmediate(); return 8 },
	0x1F: func(c *CPU) int { c.rr(&c.a); c.resetFlag(flagZ); return 4 },

	0x20: opJRCond(func(c *CPU) bool { return !c.isSetFlag(flagZ) }),
	0x21: func(c *CPU) int { c.setHL(c.readImmediateWord()); return 12 },
	0x22: func(c *CPU) int { c.bus.Write(c.getHL(), c.a); c.setHL(c.getHL() + 1); return 8 },
	0x23: func(c *CPU) int { c.bus.Tick(4); c.setHL(c.getHL() + 1); return 8 },
	0x24: func(c *CPU) int { c.inc(&c.h); return 4 },
	0x25: func(c *CPU) int { c.dec(&c.h); return 4 },
	0x26: func(c *CPU) int { c.h = c.readImmediate(); return 8 },
	0x27: func(c *CPU) int { c.daa(); return 4 },
	0x28: opJRCond(func(c *CPU) bool { return c.isSetFlag(flagZ) }),
	0x29: func(c *CPU) int { c.addToHL(c.getHL()); c.bus.Tick(4); return 8 },
	0x2A: func(c *CPU) int { c.a = c.bus.Read(c.getHL()); c.setHL(c.getHL() + 1); return 8 },
	0x2B: func(c *CPU) int { c.bus.Tick(4); c.setHL(c.getHL() - 1); return 8 },
	0x2C: func(c *CPU) int { c.inc(&c.l); return 4 },
	0x2D: func(c *CPU) int { c.dec(&c.l); return 4 },
	0x2E: func(c *CPU) int { c.l = c.readImmediate(); return 8 },
	0x2F: func(c *CPU) int { c.a = ^c.a; c.setFlag(flagN); c.setFlag(flagH); return 4 },

	0x30: opJRCond(func(c *CPU) bool { return !c.isSetFlag(flagC) }),
	0x31: func(c *CPU) int { c.sp = c.readImmediateWord(); return 12 },
	0x32: func(c *CPU) int { c.bus.Write(c.getHL(), c.a); c.setHL(c.getHL() - 1); return 8 },
	0x33: func(c *CPU) int { c.bus.Tick(4); c.sp++; return 8 },
	0x34: opIncHL,
	0x35: opDecHL,
	0x36: func(c *CPU) int { c.bus.Write(c.getHL(), c.readImmediate()); return 12 },
	0x37: func(c *CPU) int { c.setFlag(flagC); c.resetFlag(flagN); c.resetFlag(flagH); return 4 },
	0x38: opJRCond(func(c *CPU) bool { return c.isSetFlag(flagC) }),
	0x39: func(c *CPU) int { c.addToHL(c.sp); c.bus.Tick(4); return 8 },
	0x3A: func(c *CPU) int { c.a = c.bus.Read(c.getHL()); c.setHL(c.getHL() - 1); return 8 },
	0x3B: func(c *CPU) int { c.bus.Tick(4); c.sp--; return 8 },
	0x3C: func(c *CPU) int { c.inc(&c.a); return 4 },
	0x3D: func(c *CPU) int { c.dec(&c.a); return 4 },
	0x3E: func(c *CPU) int { c.a = c.readImmediate(); return 8 },
	0x3F: func(c *CPU) int {
		carry := c.isSetFlag(flagC)
		c.setFlagToCondition(flagC, !carry)
		c.resetFlag(flagN)
		c.resetFlag(flagH)
		return 4
	},

	0xC0: opRetCond(func(c *CPU) bool { return !c.isSetFlag(flagZ) }),
	0xC1: func(c *CPU) int { c.setBC(c.popStack()); return 12 },
	0xC2: opJPCond(func(c *CPU) bool { return !c.isSetFlag(flagZ) }),
	0xC3: opJP,
	0xC4: opCallCond(func(c *CPU) bool { return !c.isSetFlag(flagZ) }),
	0xC5: func(c *CPU) int { c.bus.Tick(4); c.pushStack(c.getBC()); return 16 },
	0xC6: func(c *CPU) int { c.addToA(c.readImmediate(), false); return 8 },
	0xC7: opRST(0x00),
	0xC8: opRetCond(func(c *CPU) bool { return c.isSetFlag(flagZ) }),
	0xC9: opRET,
	0xCA: opJPCond(func(c *CPU) bool { return c.isSetFlag(flagZ) }),
	0xCC: opCallCond(func(c *CPU) bool { return c.isSetFlag(flagZ) }),
	0xCD: opCALL,
	0xCE: func(c *CPU) int { c.addToA(c.readImmediate(), true); return 8 },
	0xCF: opRST(0x08),

	0xD0: opRetCond(func(c *CPU) bool { return !c.isSetFlag(flagC) }),
	0xD1: func(c *CPU) int { c.setDE(c.popStack()); return 12 },
	0xD2: opJPCond(func(c *CPU) bool { return !c.isSetFlag(flagC) }),
	0xD4: opCallCond(func(c *CPU) bool { return !c.isSetFlag(flagC) }),
	0xD5: func(c *CPU) int { c.bus.Tick(4); c.pushStack(c.getDE()); return 16 },
	0xD6: func(c *CPU) int { c.sub(c.readImmediate(), false); return 8 },
	0xD7: opRST(0x10),
	0xD8: opRetCond(func(c *CPU) bool { return c.isSetFlag(flagC) }),
	0xD9: func(c *CPU) int { c.pc = c.popStack(); c.bus.Tick(4); c.ime = true; return 16 },
	0xDA: opJPCond(func(c *CPU) bool { return c.isSetFlag(flagC) }),
	0xDC: opCallCond(func(c *CPU) bool { return c.isSetFlag(flagC) }),
	0xDE: func(c *CPU) int { c.sub(c.readImmediate(), true); return 8 },
	0xDF: opRST(0x18),

	0xE0: func(c *CPU) int { c.bus.Write(0xFF00+uint16(c.readImmediate()), c.a); return 12 },
	0xE1: func(c *CPU) int { c.setHL(c.popStack()); return 12 },
	0xE2: func(c *CPU) int { c.bus.Write(0xFF00+uint16(c.c), c.a); return 8 },
	0xE5: func(c *CPU) int { c.bus.Tick(4); c.pushStack(c.getHL()); return 16 },
	0xE6: func(c *CPU) int { c.and(c.readImmediate()); return 8 },
	0xE7: opRST(0x20),
	0xE8: func(c *CPU) int {
		e := c.readSignedImmediate()
		c.sp = c.addSPSigned(e)
		c.bus.Tick(8)
		return 16
	},
	0xE9: func(c *CPU) int { c.pc = c.getHL(); return 4 },
	0xEA: func(c *CPU) int { c.bus.Write(c.readImmediateWord(), c.a); return 16 },
	0xEE: func(c *CPU) int { c.xor(c.readImmediate()); return 8 },
	0xEF: opRST(0x28),

	0xF0: func(c *CPU) int { c.a = c.bus.Read(0xFF00 + uint16(c.readImmediate())); return 12 },
	0xF1: func(c *CPU) int { c.setAF(c.popStack()); return 12 },
	0xF2: func(c *CPU) int { c.a = c.bus.Read(0xFF00 + uint16(c.c)); return 8 },
	0xF3: func(c *CPU) int { c.ime = false; c.imePending = false; return 4 },
	0xF5: func(c *CPU) int { c.bus.Tick(4); c.pushStack(c.getAF()); return 16 },
	0xF6: func(c *CPU) int { c.or(c.readImmediate()); return 8 },
	0xF7: opRST(0x30),
	0xF8: func(c *CPU) int {
		e := c.readSignedImmediate()
		c.setHL(c.addSPSigned(e))
		c.bus.Tick(4)
		return 12
	},
	0xF9: func(c *CPU) int { c.bus.Tick(4); c.sp = c.getHL(); return 8 },
	0xFA: func(c *CPU) int { c.a = c.bus.Read(c.readImmediateWord()); return 16 },
	0xFB: func(c *CPU) int { c.imePending = true; return 4 },
	0xFE: func(c *CPU) int { c.cp(c.readImmediate()); return 8 },
	0xFF: opRST(0x38),
}

func opNOP(c *CPU) int { return 4 }

func opLdNNSP(c *CPU) int {
	addr := c.readImmediateWord()
	c.bus.Write(addr, bit.Low(c.sp))
	c.bus.Write(addr+1, bit.High(c.sp))
	return 20
}

func opIncHL(c *CPU) int {
	v := c.bus.Read(c.getHL())
	c.inc(&v)
	c.bus.Write(c.getHL(), v)
	return 12
}

func opDecHL(c *CPU) int {
	v := c.bus.Read(c.getHL())
	c.dec(&v)
	c.bus.Write(c.getHL(), v)
	return 12
}

func opJR(c *CPU) int {
	e := c.readSignedImmediate()
	c.bus.Tick(4)
	c.pc = uint16(int32(c.pc) + int32(e))
	return 12
}

func opJRCond(cond func(*CPU) bool) opcodeFunc {
	return func(c *CPU) int {
		e := c.readSignedImmediate()
		if cond(c) {
			c.bus.Tick(4)
			c.pc = uint16(int32(c.pc) + int32(e))
			return 12
		}
		return 8
	}
}

func opJP(c *CPU) int {
	target := c.readImmediateWord()
	c.bus.Tick(4)
	c.pc = target
	return 16
}

func opJPCond(cond func(*CPU) bool) opcodeFunc {
	return func(c *CPU) int {
		target := c.readImmediateWord()
		if cond(c) {
			c.bus.Tick(4)
			c.pc = target
			return 16
		}
		return 12
	}
}

func opCALL(c *CPU) int {
	target := c.readImmediateWord()
	c.bus.Tick(4)
	c.pushStack(c.pc)
	c.pc = target
	return 24
}

func opCallCond(cond func(*CPU) bool) opcodeFunc {
	return func(c *CPU) int {
		target := c.readImmediateWord()
		if cond(c) {
			c.bus.Tick(4)
			c.pushStack(c.pc)
			c.pc = target
			return 24
		}
		return 12
	}
}

func opRET(c *CPU) int {
	c.pc = c.popStack()
	c.bus.Tick(4)
	return 16
}

func opRetCond(cond func(*CPU) bool) opcodeFunc {
	return func(c *CPU) int {
		c.bus.Tick(4)
		if cond(c) {
			c.pc = c.popStack()
			c.bus.Tick(4)
			return 20
		}
		return 8
	}
}

func opRST(target uint16) opcodeFunc {
	return func(c *CPU) int {
		c.bus.Tick(4)
		c.pushStack(c.pc)
		c.pc = target
		return 16
	}
}
