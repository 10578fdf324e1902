package cpu

import "github.com/valerio/go-jeebie/jeebie/bit"

// Flag is one of the 4 flags held in the low byte of AF.
type Flag = uint8

const (
	flagZ Flag = 0x80
	flagN Flag = 0x40
	flagH Flag = 0x20
	flagC Flag = 0x10
)

func (c *CPU) setFlag(f Flag) {
	c.f |= f
}

func (c *CPU) resetFlag(f Flag) {
	c.f &^= f
}

func (c *CPU) setFlagToCondition(f Flag, condition bool) {
	if condition {
		c.setFlag(f)
	} else {
		c.resetFlag(f)
	}
}

func (c *CPU) isSetFlag(f Flag) bool {
	return c.f&f != 0
}

func (c *CPU) flagToBit(f Flag) uint8 {
	if c.isSetFlag(f) {
		return 1
	}
	return 0
}

func (c *CPU) getAF() uint16 {
	return bit.Combine(c.a, c.f&0xF0)
}

func (c *CPU) setAF(v uint16) {
	c.a = bit.High(v)
	c.f = bit.Low(v) & 0xF0
}

func (c *CPU) getBC() uint16 { return bit.Combine(c.b, c.c) }
func (c *CPU) setBC(v uint16) {
	c.b = bit.High(v)
	c.c = bit.Low(v)
}

func (c *CPU) getDE() uint16 { return bit.Combine(c.d, c.e) }
func (c *CPU) setDE(v uint16) {
	c.d = bit.High(v)
	c.e = bit.Low(v)
}

func (c *CPU) getHL() uint16 { return bit.Combine(c.h, c.l) }
func (c *CPU) setHL(v uint16) {
	c.h = bit.High(v)
	c.l = bit.Low(v)
}
