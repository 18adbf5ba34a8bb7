package tfa_test

import (
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gen2brain/tfa"
)

func TestBitfieldEncoding(t *testing.T) {
	tests := []struct {
		bf     tfa.Bitfield
		reg    uint8
		shift  uint
		width  uint
		mask   uint16
		name   string
		packed tfa.Bitfield
	}{
		{tfa.TFA98XX_BF_POWERDOWN, 0x00, 0, 1, 0x1, "POWERDOWN", tfa.NewBitfield(0x00, 0, 1)},
		{tfa.TFA98XX_BF_FLAG_LOST_CLK, 0x10, 7, 1, 0x1, "FLAG_LOST_CLK", tfa.NewBitfield(0x10, 7, 1)},
		{tfa.TFA98XX_BF_TDM_SAMPLE_SIZE, 0x22, 2, 5, 0x1f, "TDM_SAMPLE_SIZE", tfa.NewBitfield(0x22, 2, 5)},
		{tfa.TFA98XX_BF_CF_DMEM, 0x90, 1, 2, 0x3, "CF_DMEM", tfa.NewBitfield(0x90, 1, 2)},
		{tfa.TFA98XX_BF_EXT_TEMP, 0xb1, 0, 9, 0x1ff, "EXT_TEMP", tfa.NewBitfield(0xb1, 0, 9)},
		{tfa.TFA98XX_BF_CF_MADD, 0x91, 0, 16, 0xffff, "CF_MADD", tfa.NewBitfield(0x91, 0, 16)},
		{tfa.TFA98XX_BF_MTPDATAB, 0xf5, 0, 8, 0xff, "MTPDATAB", tfa.NewBitfield(0xf5, 0, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.reg, tt.bf.Register())
			assert.Equal(t, tt.shift, tt.bf.Shift())
			assert.Equal(t, tt.width, tt.bf.Width())
			assert.Equal(t, tt.mask, tt.bf.Mask())
			assert.Equal(t, tt.name, tt.bf.String())
			assert.Equal(t, tt.bf, tt.packed)
		})
	}

	assert.Equal(t, "0x3333", tfa.Bitfield(0x3333).String())
}

func TestBitfieldRoundTrip(t *testing.T) {
	for _, initial := range []uint16{0x0000, 0xffff, 0xa5c3} {
		for width := uint(1); width <= 16; width++ {
			for shift := uint(0); shift+width <= 16; shift++ {
				bf := tfa.NewBitfield(0x42, shift, width)

				t.Run(fmt.Sprintf("%04x/w%d/s%d", initial, width, shift), func(t *testing.T) {
					r := newRig(t)
					r.chip.regs[0x42] = initial

					// 0x5555 overflows every field narrower than 16 bits.
					value := uint16(0x5555)
					_, err := r.dev.SetBitfield(bf, value)
					require.NoError(t, err)

					got, err := r.dev.GetBitfield(bf)
					require.NoError(t, err)
					assert.Equal(t, value&bf.Mask(), got)

					outside := ^(uint16(bf.Mask()) << shift)
					assert.Equal(t, initial&outside, r.chip.regs[0x42]&outside, "bits outside the field must be preserved")
				})
			}
		}
	}
}

func TestSetBitfieldReadFailure(t *testing.T) {
	r := newRig(t)
	r.chip.readErr = syscall.EIO

	_, err := r.dev.SetBitfield(tfa.TFA98XX_BF_POWERDOWN, 1)
	assert.ErrorIs(t, err, syscall.EIO)

	_, err = r.dev.GetBitfield(tfa.TFA98XX_BF_POWERDOWN)
	assert.ErrorIs(t, err, syscall.EIO)

	assert.Equal(t, [][]byte{{0x00}, {0x00}}, r.chip.writes, "only register selects, no register write")
}

func TestBitfieldByName(t *testing.T) {
	bf, ok := tfa.BitfieldByName("TFA98XX_BF_CF_DMEM")
	require.True(t, ok)
	assert.Equal(t, tfa.TFA98XX_BF_CF_DMEM, bf)

	bf, ok = tfa.BitfieldByName("ext_temp_sel")
	require.True(t, ok)
	assert.Equal(t, tfa.TFA98XX_BF_EXT_TEMP_SEL, bf)

	_, ok = tfa.BitfieldByName("NO_SUCH_FIELD")
	assert.False(t, ok)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "CF_RST_DSP=1 CF_DMEM=2", tfa.Describe(0x90, 0x0005))
	assert.Equal(t, "EXT_TEMP=25 EXT_TEMP_SEL=1", tfa.Describe(0xb1, 0x0219))
	assert.Equal(t, "POWERDOWN=1 RESET=1 ENBL_COOLFLUX=0 ENBL_AMPLIFIER=0 ENBL_BOOST=0", tfa.Describe(0x00, 0x0003))
	assert.Equal(t, "POWERDOWN=1 RESET=0 ENBL_COOLFLUX=0 ENBL_AMPLIFIER=0 ENBL_BOOST=1", tfa.Describe(0x00, 0x0011))
	assert.Equal(t, "", tfa.Describe(0x42, 0xffff))

	regs := tfa.Registers()
	assert.Contains(t, regs, uint8(0x00))
	assert.Contains(t, regs, uint8(0xf5))
	assert.IsIncreasing(t, regs)
}
