package cpu

// executeCB decodes the 256 CB-prefixed opcodes. They are entirely regular:
// bits 7-6 select the operation group, bits 5-3 select a bit index (for
// BIT/RES/SET) or a rotate/shift variant, and bits 2-0 select the operand
// via the same reg8 encoding the base 0x40-0xBF block uses.
func (c *CPU) executeCB(opcode uint8) int {
	group := opcode >> 6
	sub := (opcode >> 3) & 0x07
	reg := opcode & 0x07

	cycles := 8
	if reg == 6 {
		cycles = 16
	}

	switch group {
	case 0: // rotate/shift block
		v := c.reg8Get(reg)
		switch sub {
		case 0:
			c.rlc(&v)
		case 1:
			c.rrc(&v)
		case 2:
			c.rl(&v)
		case 3:
			c.rr(&v)
		case 4:
			c.sla(&v)
		case 5:
			c.sra(&v)
		case 6:
			c.swap(&v)
		case 7:
			c.srl(&v)
		}
		c.reg8Set(reg, v)
	case 1: // BIT
		v := c.reg8Get(reg)
		c.bitTest(sub, v)
		if reg == 6 {
			cycles = 12
		}
	case 2: // RES
		v := c.reg8Get(reg)
		c.res(sub, &v)
		c.reg8Set(reg, v)
	case 3: // SET
		v := c.reg8Get(reg)
		c.set(sub, &v)
		c.reg8Set(reg, v)
	}

	return cycles
}
