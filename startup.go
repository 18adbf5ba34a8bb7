package tfa

type registerValue struct {
	reg   uint8
	value uint16
}

type bitfieldValue struct {
	bf    Bitfield
	value uint16
}

// Analog and digital defaults written after the key unlock.
var basicRegisters = []registerValue{
	{0x00, 0x164d},
	{0x01, 0x828b},
	{0x02, 0x1dc8},
	{0x0e, 0x0080},
	{0x20, 0x089e},
	{0x22, 0x543c},
	{0x23, 0x0006},
	{0x24, 0x0014},
	{0x25, 0x000a},
	{0x26, 0x0100},
	{0x28, 0x1000},
	{0x51, 0x0000},
	{0x52, 0xfafe},
	{0x70, 0x3ee4},
	{0x71, 0x1074},
	{0x83, 0x0014},
}

// TDM slot layout of the MI2S input.
var tdmBitfields = []bitfieldValue{
	{TFA98XX_BF_TDM_SAMPLE_SIZE, 15},
	{TFA98XX_BF_TDM_NBCK, 2},
	{TFA98XX_BF_TDM_SOURCE6_IO, 0},
	{TFA98XX_BF_TDM_SOURCE5_IO, 0},
	{TFA98XX_BF_TDM_SOURCE5_SLOT, 1},
	{TFA98XX_BF_TDM_SOURCE7_SLOT, 1},
	{TFA98XX_BF_TDM_SOURCE8_SLOT, 0},
}

// Power switch and boost converter setup. Boost is configured, then left off.
var boostBitfields = []bitfieldValue{
	{TFA98XX_BF_ENBL_POWERSWITCH, 1},
	{TFA98XX_BF_ENBL_PDM_SS, 0},
	{TFA98XX_BF_ENBL_BOOST, 1},
	{TFA98XX_BF_BOOST_VOLT, 6},
	{TFA98XX_BF_ENBL_BOD, 1},
	{TFA98XX_BF_EXT_TEMP, 25},
	{TFA98XX_BF_EXT_TEMP_SEL, 1},
	{TFA98XX_BF_ENBL_BOOST, 0},
}

// Startup runs the one-shot bring-up: reset, key unlock, register defaults, TDM and
// boost setup, power on, DSP patch upload and power off. Every step is best effort;
// failures are logged and the sequence goes on, so the returned error is always nil.
// A nil fw uploads no patches.
func (d *Device) Startup(fw *Firmware) error {
	if fw == nil {
		fw = &Firmware{}
	}

	d.setRegister(regSysControl, 0x0002)
	d.setBitfield(TFA98XX_BF_CF_RST_DSP, 1)

	d.setupKeys()

	for _, r := range basicRegisters {
		d.setRegister(r.reg, r.value)
	}

	d.setBitfields(tdmBitfields)
	d.setBitfields(boostBitfields)

	stream, err := d.PowerOn()
	if err != nil {
		d.logger.Warnw("power on failed, uploading patches anyway", "error", err)
	}

	d.setBitfield(TFA98XX_BF_CF_RST_DSP, 1)
	d.sendPatches(fw.Sets[0], len(fw.Sets[0]))
	d.sendBankedPatches(fw)
	d.setRegister(regCFMemAddr, 0x0200)

	if err := d.PowerOff(stream); err != nil {
		d.logger.Warnw("power off failed", "error", err)
	}

	return nil
}

// setupKeys unlocks the protected registers with a key derived from MTP.
func (d *Device) setupKeys() {
	d.setRegister(regUnlockKey1, unlockKey1)

	mtp, err := d.GetBitfield(TFA98XX_BF_MTPDATAB)
	if err != nil {
		d.logger.Warnw("failed to read MTPDATAB", "error", err)
	}

	d.setRegister(regUnlockKey2, mtp^unlockKey2Mask)
}

func (d *Device) setRegister(reg uint8, value uint16) {
	if _, err := d.SetRegister(reg, value); err != nil {
		d.logger.Warnw("failed to set register", "reg", reg, "value", value, "error", err)
	}
}

func (d *Device) setBitfield(bf Bitfield, value uint16) {
	if _, err := d.SetBitfield(bf, value); err != nil {
		d.logger.Warnw("failed to set bitfield", "field", bf.String(), "value", value, "error", err)
	}
}

func (d *Device) setBitfields(fields []bitfieldValue) {
	for _, f := range fields {
		d.setBitfield(f.bf, f.value)
	}
}
