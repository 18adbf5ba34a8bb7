package tfa

import "fmt"

// Bitfield addresses a sub-range of a 16-bit register using the packed encoding of
// the vendor register tables: bits 0-3 hold the width minus one, bits 4-7 the shift
// and bits 8-15 the register address.
type Bitfield uint16

// NewBitfield packs a register address, a bit offset (0-15) and a width in bits (1-16).
func NewBitfield(reg uint8, shift, width uint) Bitfield {
	return Bitfield(uint16(reg)<<8 | uint16(shift&0xf)<<4 | uint16((width-1)&0xf))
}

// Register returns the register the field lives in.
func (bf Bitfield) Register() uint8 {
	return uint8(bf >> 8)
}

// Shift returns the bit offset of the field.
func (bf Bitfield) Shift() uint {
	return uint(bf&0xf0) >> 4
}

// Width returns the field width in bits.
func (bf Bitfield) Width() uint {
	return uint(bf&0xf) + 1
}

// Mask returns the unshifted field mask.
func (bf Bitfield) Mask() uint16 {
	return uint16((uint32(1) << (uint32(bf&0xf) + 1)) - 1)
}

func (bf Bitfield) String() string {
	if name, ok := bitfieldNames[bf]; ok {
		return name
	}

	return fmt.Sprintf("0x%04x", uint16(bf))
}

// extract returns the field value held in a full register value.
func (bf Bitfield) extract(reg uint16) uint16 {
	return (reg >> bf.Shift()) & bf.Mask()
}

// insert returns reg with the field replaced by value, truncated to the field mask.
func (bf Bitfield) insert(reg, value uint16) uint16 {
	shifted := uint32(bf.Mask()) << bf.Shift()

	return uint16(uint32(reg)&^shifted | (uint32(value&bf.Mask()) << bf.Shift()))
}

// GetBitfield reads the field's register and returns the field value.
// Register read errors are returned unchanged.
func (d *Device) GetBitfield(bf Bitfield) (uint16, error) {
	v, err := d.GetRegister(bf.Register())
	if err != nil {
		return 0, err
	}

	return bf.extract(v), nil
}

// SetBitfield performs a read-modify-write of the field's register. The value is
// truncated to the field width and the other bits of the register are preserved.
// It returns the number of bytes written to the control channel.
func (d *Device) SetBitfield(bf Bitfield, value uint16) (int, error) {
	old, err := d.GetRegister(bf.Register())
	if err != nil {
		return 0, err
	}

	return d.SetRegister(bf.Register(), bf.insert(old, value))
}
