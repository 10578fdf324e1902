package memory

import (
	"fmt"
	"log/slog"
)

const titleLength = 16

const (
	entryPointAddress       = 0x100
	logoAddress             = 0x104
	titleAddress            = 0x134
	manufacturerCodeAddress = 0x13F
	cgbFlagAddress          = 0x143
	newLicenseCodeAddress   = 0x144
	sgbFlagAddress          = 0x146
	cartridgeTypeAddress    = 0x147
	romSizeAddress          = 0x148
	ramSizeAddress          = 0x149
	destinationCodeAddress  = 0x14A
	oldLicenseCodeAddress   = 0x14B
	versionNumberAddress    = 0x14C
	headerChecksumAddress   = 0x14D
	globalChecksumAddress   = 0x14E
)

// MBCKind names the bank-controller family a cartridge header selects.
type MBCKind uint8

const (
	KindNone MBCKind = iota
	KindMBC1
	KindMBC2
	KindMBC3
	KindMBC5
)

func (k MBCKind) String() string {
	return [...]string{"None", "MBC1", "MBC2", "MBC3", "MBC5"}[k]
}

// Cartridge holds the parsed ROM header plus the raw image; it derives the
// bank-controller kind and battery/RTC/rumble flags from the 0x147
// cartridge-type byte, per the standard header layout.
type Cartridge struct {
	data           []byte
	title          string
	headerChecksum uint16
	globalChecksum uint16
	version        uint8
	cartType       uint8
	romSize        uint8
	ramSize        uint8

	mbcKind      MBCKind
	hasBattery   bool
	hasRTC       bool
	hasRumble    bool
	ramBankCount uint8
	supportsGBC  bool
	supportsSGB  bool
}

// NewCartridge creates an empty cartridge, useful only for debugging/tests.
func NewCartridge() *Cartridge {
	return &Cartridge{
		data:    make([]byte, 0x10000),
		mbcKind: KindNone,
	}
}

// NewCartridgeWithData parses a ROM image's header and returns the
// resulting Cartridge. It never fails on a short/malformed header — the
// header of a truncated image is read as if zero-padded to 0x150 bytes (the
// ROM data itself keeps the image's own length), and a checksum mismatch is only logged, matching the "never let an invalid
// guest ROM crash the host" rule.
func NewCartridgeWithData(bytes []byte) *Cartridge {
	padded := bytes
	if len(padded) < 0x150 {
		padded = make([]byte, 0x150)
		copy(padded, bytes)
	}

	cart := &Cartridge{
		data:           make([]byte, len(bytes)),
		title:          cleanGameboyTitle(padded[titleAddress : titleAddress+titleLength]),
		headerChecksum: uint16(padded[headerChecksumAddress]),
		globalChecksum: (uint16(padded[globalChecksumAddress]) << 8) | uint16(padded[globalChecksumAddress+1]),
		version:        padded[versionNumberAddress],
		cartType:       padded[cartridgeTypeAddress],
		romSize:        padded[romSizeAddress],
		ramSize:        padded[ramSizeAddress],
		supportsGBC:    padded[cgbFlagAddress]&0x80 != 0,
		supportsSGB:    padded[sgbFlagAddress] == 0x03,
	}

	copy(cart.data, bytes)
	cart.classify()

	if got := cart.computeHeaderChecksum(padded); got != cart.headerChecksum {
		slog.Warn("cartridge header checksum mismatch", "title", cart.title, "computed", fmt.Sprintf("0x%02X", got), "stored", fmt.Sprintf("0x%02X", cart.headerChecksum))
	}

	return cart
}

// classify derives the bank-controller family and feature flags from the
// cartridge-type byte, per the standard ROM header table.
func (c *Cartridge) classify() {
	switch c.cartType {
	case 0x00:
		c.mbcKind = KindNone
	case 0x01, 0x02, 0x03:
		c.mbcKind = KindMBC1
		c.hasBattery = c.cartType == 0x03
	case 0x05, 0x06:
		c.mbcKind = KindMBC2
		c.hasBattery = c.cartType == 0x06
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		c.mbcKind = KindMBC3
		c.hasRTC = c.cartType == 0x0F || c.cartType == 0x10
		c.hasBattery = c.cartType == 0x0F || c.cartType == 0x10 || c.cartType == 0x13
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		c.mbcKind = KindMBC5
		c.hasRumble = c.cartType >= 0x1C
		c.hasBattery = c.cartType == 0x1B || c.cartType == 0x1E
	default:
		slog.Warn("unrecognized cartridge type, defaulting to no MBC", "cartType", fmt.Sprintf("0x%02X", c.cartType))
		c.mbcKind = KindNone
	}

	switch {
	case c.mbcKind == KindMBC2:
		c.ramBankCount = 1 // the MBC2's built-in RAM, handled specially
	case c.ramSize == 0x00:
		c.ramBankCount = 0
	case c.ramSize == 0x02:
		c.ramBankCount = 1
	case c.ramSize == 0x03:
		c.ramBankCount = 4
	case c.ramSize == 0x04:
		c.ramBankCount = 16
	case c.ramSize == 0x05:
		c.ramBankCount = 8
	default:
		c.ramBankCount = 0
	}
}

func (c *Cartridge) computeHeaderChecksum(padded []byte) uint16 {
	var sum uint8
	for i := uint16(0x134); i <= 0x14C; i++ {
		sum = sum - padded[i] - 1
	}
	return uint16(sum)
}

// NewMBC builds the bank controller this cartridge's header selects.
func (c *Cartridge) NewMBC() MBC {
	switch c.mbcKind {
	case KindMBC1:
		return NewMBC1(c.data, c.hasBattery, c.ramBankCount)
	case KindMBC2:
		return NewMBC2(c.data)
	case KindMBC3:
		return NewMBC3(c.data, c.hasRTC, c.ramBankCount)
	case KindMBC5:
		return NewMBC5(c.data, c.hasRumble, c.ramBankCount)
	default:
		return NewNoMBC(c.data)
	}
}

func (c *Cartridge) Title() string          { return c.title }
func (c *Cartridge) HasBattery() bool       { return c.hasBattery }
func (c *Cartridge) HasRTC() bool           { return c.hasRTC }
func (c *Cartridge) MBCKind() MBCKind       { return c.mbcKind }
func (c *Cartridge) SupportsColor() bool    { return c.supportsGBC }
func (c *Cartridge) SupportsSuperMode() bool { return c.supportsSGB }

// ReadByte reads a byte at the specified address. Does not check bounds, so the caller must make sure the
// address is valid for the cartridge.
func (c Cartridge) ReadByte(addr uint16) uint8 {
	return c.data[addr]
}
