package tfa

import (
	"encoding/binary"
	"io"
	"os"
)

// GetRegister selects reg with a one byte write and reads its big-endian 16-bit value.
// Failures are returned as *IOError.
func (d *Device) GetRegister(reg uint8) (uint16, error) {
	if d == nil || d.control == nil {
		return 0, &IOError{Op: "get", Reg: reg, Err: os.ErrClosed}
	}

	if _, err := d.control.Write([]byte{reg}); err != nil {
		return 0, &IOError{Op: "get", Reg: reg, Err: err}
	}

	var buf [2]byte

	n, err := d.control.Read(buf[:])
	if err != nil && n < len(buf) {
		return 0, &IOError{Op: "get", Reg: reg, Err: err}
	}

	if n < len(buf) {
		return 0, &IOError{Op: "get", Reg: reg, Err: io.ErrUnexpectedEOF}
	}

	value := binary.BigEndian.Uint16(buf[:])

	if d.tracer != nil {
		d.tracer.RegisterRead(reg, value)
	}

	return value, nil
}

// SetRegister writes the three byte frame [reg, value>>8, value&0xff] and returns the
// number of bytes written.
func (d *Device) SetRegister(reg uint8, value uint16) (int, error) {
	if d == nil || d.control == nil {
		return 0, &IOError{Op: "set", Reg: reg, Err: os.ErrClosed}
	}

	if d.tracer != nil {
		d.tracer.RegisterWrite(reg, value)
	}

	frame := []byte{reg, byte(value >> 8), byte(value)}

	n, err := d.control.Write(frame)
	if err != nil {
		return n, &IOError{Op: "set", Reg: reg, Err: err}
	}

	return n, nil
}
