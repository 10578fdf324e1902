package cpu

import "github.com/valerio/go-jeebie/jeebie/bit"

func (c *CPU) pushStack(r uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(r))
	c.sp--
	c.bus.Write(c.sp, bit.Low(r))
}

func (c *CPU) popStack() uint16 {
	lo := c.bus.Read(c.sp)
	c.sp++
	hi := c.bus.Read(c.sp)
	c.sp++

	return bit.Combine(hi, lo)
}

func (c *CPU) inc(r *uint8) {
	*r++
	v := *r

	c.setFlagToCondition(flagZ, v == 0)
	c.setFlagToCondition(flagH, v&0x0F == 0x00)
	c.resetFlag(flagN)
}

func (c *CPU) dec(r *uint8) {
	*r--
	v := *r

	c.setFlagToCondition(flagZ, v == 0)
	c.setFlagToCondition(flagH, v&0x0F == 0x0F)
	c.setFlag(flagN)
}

// rlc rotates left, bit 7 into carry and into bit 0.
func (c *CPU) rlc(r *uint8) {
	v := *r
	carry := v>>7 == 1

	v = (v << 1) | (v >> 7)
	*r = v

	c.setFlagToCondition(flagC, carry)
	c.setFlagToCondition(flagZ, v == 0)
	c.resetFlag(flagN)
	c.resetFlag(flagH)
}

// rl rotates left through carry.
func (c *CPU) rl(r *uint8) {
	v := *r
	oldCarry := c.flagToBit(flagC)
	newCarry := v>>7 == 1

	v = (v << 1) | oldCarry
	*r = v

	c.setFlagToCondition(flagC, newCarry)
	c.setFlagToCondition(flagZ, v == 0)
	c.resetFlag(flagN)
	c.resetFlag(flagH)
}

// rrc rotates right, bit 0 into carry and into bit 7.
func (c *CPU) rrc(r *uint8) {
	v := *r
	carry := v&1 == 1

	v = (v >> 1) | (v << 7)
	*r = v

	c.setFlagToCondition(flagC, carry)
	c.setFlagToCondition(flagZ, v == 0)
	c.resetFlag(flagN)
	c.resetFlag(flagH)
}

// rr rotates right through carry.
func (c *CPU) rr(r *uint8) {
	v := *r
	oldCarry := c.flagToBit(flagC)
	newCarry := v&1 == 1

	v = (v >> 1) | (oldCarry << 7)
	*r = v

	c.setFlagToCondition(flagC, newCarry)
	c.setFlagToCondition(flagZ, v == 0)
	c.resetFlag(flagN)
	c.resetFlag(flagH)
}

func (c *CPU) sla(r *uint8) {
	v := *r
	carry := v>>7 == 1
	v <<= 1
	*r = v

	c.setFlagToCondition(flagC, carry)
	c.setFlagToCondition(flagZ, v == 0)
	c.resetFlag(flagN)
	c.resetFlag(flagH)
}

func (c *CPU) sra(r *uint8) {
	v := *r
	carry := v&1 == 1
	v = (v >> 1) | (v & 0x80)
	*r = v

	c.setFlagToCondition(flagC, carry)
	c.setFlagToCondition(flagZ, v == 0)
	c.resetFlag(flagN)
	c.resetFlag(flagH)
}

func (c *CPU) srl(r *uint8) {
	v := *r
	carry := v&1 == 1
	v >>= 1
	*r = v

	c.setFlagToCondition(flagC, carry)
	c.setFlagToCondition(flagZ, v == 0)
	c.resetFlag(flagN)
	c.resetFlag(flagH)
}

func (c *CPU) swap(r *uint8) {
	v := *r
	v = (v << 4) | (v >> 4)
	*r = v

	c.setFlagToCondition(flagZ, v == 0)
	c.resetFlag(flagN)
	c.resetFlag(flagH)
	c.resetFlag(flagC)
}

func (c *CPU) bitTest(index uint8, v uint8) {
	c.setFlagToCondition(flagZ, v&(1<<index) == 0)
	c.resetFlag(flagN)
	c.setFlag(flagH)
}

func (c *CPU) res(index uint8, r *uint8) {
	*r = bit.Clear(index, *r)
}

func (c *CPU) set(index uint8, r *uint8) {
	*r = bit.Set(index, *r)
}

// addToA adds value (+carry, for ADC) to A and sets all flags.
func (c *CPU) addToA(value uint8, withCarry bool) {
	a := c.a
	carryIn := uint8(0)
	if withCarry {
		carryIn = c.flagToBit(flagC)
	}
	result := uint16(a) + uint16(value) + uint16(carryIn)
	halfCarry := (a&0xF)+(value&0xF)+carryIn > 0xF

	c.a = uint8(result)

	c.setFlagToCondition(flagZ, c.a == 0)
	c.resetFlag(flagN)
	c.setFlagToCondition(flagH, halfCarry)
	c.setFlagToCondition(flagC, result > 0xFF)
}

// addToHL adds a 16-bit register pair to HL, leaving Z untouched.
func (c *CPU) addToHL(value uint16) {
	hl := c.getHL()
	result := uint32(hl) + uint32(value)
	halfCarry := (hl&0xFFF)+(value&0xFFF) > 0xFFF

	c.setHL(uint16(result))

	c.resetFlag(flagN)
	c.setFlagToCondition(flagH, halfCarry)
	c.setFlagToCondition(flagC, result > 0xFFFF)
}

// addSPSigned implements ADD SP, e / the shared part of LD HL, SP+e: both set
// flags from the low-byte addition of SP and a signed immediate, and never
// set Z or N.
func (c *CPU) addSPSigned(e int8) uint16 {
	sp := c.sp
	value := uint16(int32(e))
	result := sp + value

	halfCarry := (sp&0xF)+(value&0xF) > 0xF
	carry := (sp&0xFF)+(value&0xFF) > 0xFF

	c.resetFlag(flagZ)
	c.resetFlag(flagN)
	c.setFlagToCondition(flagH, halfCarry)
	c.setFlagToCondition(flagC, carry)

	return result
}

// sub subtracts value (+carry, for SBC) from A and sets all flags.
func (c *CPU) sub(value uint8, withCarry bool) {
	a := c.a
	carryIn := uint8(0)
	if withCarry {
		carryIn = c.flagToBit(flagC)
	}
	result := int16(a) - int16(value) - int16(carryIn)
	halfCarry := int16(a&0xF)-int16(value&0xF)-int16(carryIn) < 0

	c.a = uint8(result)

	c.setFlagToCondition(flagZ, c.a == 0)
	c.setFlag(flagN)
	c.setFlagToCondition(flagH, halfCarry)
	c.setFlagToCondition(flagC, result < 0)
}

func (c *CPU) and(value uint8) {
	c.a &= value
	c.setFlagToCondition(flagZ, c.a == 0)
	c.resetFlag(flagN)
	c.setFlag(flagH)
	c.resetFlag(flagC)
}

func (c *CPU) or(value uint8) {
	c.a |= value
	c.setFlagToCondition(flagZ, c.a == 0)
	c.resetFlag(flagN)
	c.resetFlag(flagH)
	c.resetFlag(flagC)
}

func (c *CPU) xor(value uint8) {
	c.a ^= value
	c.setFlagToCondition(flagZ, c.a == 0)
	c.resetFlag(flagN)
	c.resetFlag(flagH)
	c.resetFlag(flagC)
}

// cp compares value against A, i.e. runs sub without storing the result.
func (c *CPU) cp(value uint8) {
	a := c.a
	c.sub(value, false)
	c.a = a
}

// daa adjusts A into packed BCD after an ADD/ADC/SUB/SBC, following the
// standard Sharp LR35902 correction table driven off the N and H/C flags
// left behind by the preceding instruction.
func (c *CPU) daa() {
	a := c.a
	adjust := uint8(0)
	carry := c.isSetFlag(flagC)

	if c.isSetFlag(flagN) {
		if c.isSetFlag(flagH) {
			adjust |= 0x06
		}
		if carry {
			adjust |= 0x60
		}
		a -= adjust
	} else {
		if c.isSetFlag(flagH) || a&0x0F > 0x09 {
			adjust |= 0x06
		}
		if carry || a > 0x99 {
			adjust |= 0x60
			carry = true
		}
		a += adjust
	}

	c.a = a
	c.setFlagToCondition(flagZ, a == 0)
	c.resetFlag(flagH)
	c.setFlagToCondition(flagC, carry)
}
