package tfa

import (
	"fmt"
	"slices"
	"strings"
)

// TFA9888 bitfields used by the bring-up sequence.
const (
	TFA98XX_BF_POWERDOWN      Bitfield = 0x0000
	TFA98XX_BF_RESET          Bitfield = 0x0010
	TFA98XX_BF_ENBL_COOLFLUX  Bitfield = 0x0020
	TFA98XX_BF_ENBL_AMPLIFIER Bitfield = 0x0030
	TFA98XX_BF_ENBL_BOOST     Bitfield = 0x0040
	TFA98XX_BF_ENBL_BOD       Bitfield = 0x0160

	TFA98XX_BF_FLAG_LOST_CLK Bitfield = 0x1070

	TFA98XX_BF_TDM_NBCK         Bitfield = 0x2043
	TFA98XX_BF_TDM_SAMPLE_SIZE  Bitfield = 0x2224
	TFA98XX_BF_TDM_SOURCE5_IO   Bitfield = 0x2681
	TFA98XX_BF_TDM_SOURCE6_IO   Bitfield = 0x26a1
	TFA98XX_BF_TDM_SOURCE7_IO   Bitfield = 0x26c1
	TFA98XX_BF_TDM_SOURCE8_IO   Bitfield = 0x26e1
	TFA98XX_BF_TDM_SOURCE5_SLOT Bitfield = 0x2881
	TFA98XX_BF_TDM_SOURCE6_SLOT Bitfield = 0x28a1
	TFA98XX_BF_TDM_SOURCE7_SLOT Bitfield = 0x28c1
	TFA98XX_BF_TDM_SOURCE8_SLOT Bitfield = 0x28e1

	TFA98XX_BF_ENBL_POWERSWITCH Bitfield = 0x5040
	TFA98XX_BF_ENBL_PDM_SS      Bitfield = 0x5050

	TFA98XX_BF_BOOST_VOLT Bitfield = 0x7002

	TFA98XX_BF_CF_RST_DSP Bitfield = 0x9000
	TFA98XX_BF_CF_DMEM    Bitfield = 0x9011
	TFA98XX_BF_CF_MADD    Bitfield = 0x910f

	TFA98XX_BF_EXT_TEMP     Bitfield = 0xb108
	TFA98XX_BF_EXT_TEMP_SEL Bitfield = 0xb190

	// Source of the second unlock key. The field width is unconfirmed: some TFA2
	// parts document MTPDATAB as 16 bits (0xf50f), and a field that is too narrow
	// yields a wrong key without any error.
	TFA98XX_BF_MTPDATAB Bitfield = 0xf507
)

// Registers written directly during startup.
const (
	regSysControl  uint8 = 0x00
	regUnlockKey1  uint8 = 0x0f
	regCFMemAddr   uint8 = 0x91
	regUnlockKey2  uint8 = 0xa0
	unlockKey1     uint16 = 0x5a6b
	unlockKey2Mask uint16 = 0x5a
)

const bitfieldPrefix = "TFA98XX_BF_"

var bitfieldNames = map[Bitfield]string{
	TFA98XX_BF_POWERDOWN:        "POWERDOWN",
	TFA98XX_BF_RESET:            "RESET",
	TFA98XX_BF_ENBL_COOLFLUX:    "ENBL_COOLFLUX",
	TFA98XX_BF_ENBL_AMPLIFIER:   "ENBL_AMPLIFIER",
	TFA98XX_BF_ENBL_BOOST:       "ENBL_BOOST",
	TFA98XX_BF_ENBL_BOD:         "ENBL_BOD",
	TFA98XX_BF_FLAG_LOST_CLK:    "FLAG_LOST_CLK",
	TFA98XX_BF_TDM_NBCK:         "TDM_NBCK",
	TFA98XX_BF_TDM_SAMPLE_SIZE:  "TDM_SAMPLE_SIZE",
	TFA98XX_BF_TDM_SOURCE5_IO:   "TDM_SOURCE5_IO",
	TFA98XX_BF_TDM_SOURCE6_IO:   "TDM_SOURCE6_IO",
	TFA98XX_BF_TDM_SOURCE7_IO:   "TDM_SOURCE7_IO",
	TFA98XX_BF_TDM_SOURCE8_IO:   "TDM_SOURCE8_IO",
	TFA98XX_BF_TDM_SOURCE5_SLOT: "TDM_SOURCE5_SLOT",
	TFA98XX_BF_TDM_SOURCE6_SLOT: "TDM_SOURCE6_SLOT",
	TFA98XX_BF_TDM_SOURCE7_SLOT: "TDM_SOURCE7_SLOT",
	TFA98XX_BF_TDM_SOURCE8_SLOT: "TDM_SOURCE8_SLOT",
	TFA98XX_BF_ENBL_POWERSWITCH: "ENBL_POWERSWITCH",
	TFA98XX_BF_ENBL_PDM_SS:      "ENBL_PDM_SS",
	TFA98XX_BF_BOOST_VOLT:       "BOOST_VOLT",
	TFA98XX_BF_CF_RST_DSP:       "CF_RST_DSP",
	TFA98XX_BF_CF_DMEM:          "CF_DMEM",
	TFA98XX_BF_CF_MADD:          "CF_MADD",
	TFA98XX_BF_EXT_TEMP:         "EXT_TEMP",
	TFA98XX_BF_EXT_TEMP_SEL:     "EXT_TEMP_SEL",
	TFA98XX_BF_MTPDATAB:         "MTPDATAB",
}

// Bitfields returns the known bitfields ordered by register, then by bit offset.
func Bitfields() []Bitfield {
	bfs := make([]Bitfield, 0, len(bitfieldNames))
	for bf := range bitfieldNames {
		bfs = append(bfs, bf)
	}

	slices.Sort(bfs)

	return bfs
}

// Registers returns the registers holding at least one known bitfield, in ascending order.
func Registers() []uint8 {
	var regs []uint8
	for _, bf := range Bitfields() {
		if n := len(regs); n == 0 || regs[n-1] != bf.Register() {
			regs = append(regs, bf.Register())
		}
	}

	return regs
}

// BitfieldByName looks up a bitfield by name, with or without the TFA98XX_BF_ prefix.
// The match is case-insensitive.
func BitfieldByName(name string) (Bitfield, bool) {
	name = strings.TrimPrefix(strings.ToUpper(name), bitfieldPrefix)
	for bf, n := range bitfieldNames {
		if n == name {
			return bf, true
		}
	}

	return 0, false
}

// Describe decodes value into the known bitfields of reg, e.g. "POWERDOWN=0 RESET=1".
// It returns an empty string for registers without known fields.
func Describe(reg uint8, value uint16) string {
	var sb strings.Builder
	for _, bf := range Bitfields() {
		if bf.Register() != reg {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}

		fmt.Fprintf(&sb, "%s=%d", bitfieldNames[bf], bf.extract(value))
	}

	return sb.String()
}
