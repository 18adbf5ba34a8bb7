package tfa

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Mi2sEnable turns on the MI2S mixer switch and opens the amplifier's playback stream
// with the largest period count the device supports. If the stream cannot be opened the
// switch is turned off again.
func (d *Device) Mi2sEnable() (Stream, error) {
	ctl, err := d.mixer.CtlByName(d.config.MixerCtl)
	if err != nil {
		d.logger.Errorw("could not find mixer control", "name", d.config.MixerCtl, "error", err)

		return nil, fmt.Errorf("%w: %s: %w", ErrDeviceNotFound, d.config.MixerCtl, err)
	}

	periods, err := d.pcm.MaxPeriods(d.config.Card, d.config.PCMDevice)
	if err != nil {
		d.logger.Errorw("could not get PCM parameters", "card", d.config.Card, "device", d.config.PCMDevice, "error", err)

		return nil, fmt.Errorf("failed to query PCM parameters: %w", err)
	}

	if err := ctl.SetValue(0, 1); err != nil {
		return nil, fmt.Errorf("failed to enable %s: %w", d.config.MixerCtl, err)
	}

	config := StreamConfig{
		Channels:      d.config.Channels,
		Rate:          d.config.Rate,
		PeriodCount:   periods,
		StopThreshold: math.MaxInt32,
	}

	stream, err := d.pcm.Open(d.config.Card, d.config.PCMDevice, config)
	if err != nil {
		d.logger.Errorw("failed to open PCM device", "card", d.config.Card, "device", d.config.PCMDevice, "error", err)

		if serr := ctl.SetValue(0, 0); serr != nil {
			d.logger.Warnw("failed to disable mixer control", "name", d.config.MixerCtl, "error", serr)
		}

		return nil, fmt.Errorf("failed to open PCM device %d: %w", d.config.PCMDevice, err)
	}

	return stream, nil
}

// Mi2sDisable closes stream, which may be nil, and turns the MI2S mixer switch off.
// A missing control is logged and reported as ErrDeviceNotFound.
func (d *Device) Mi2sDisable(stream Stream) error {
	if stream != nil {
		if err := stream.Close(); err != nil {
			d.logger.Warnw("failed to close PCM stream", "error", err)
		}
	}

	ctl, err := d.mixer.CtlByName(d.config.MixerCtl)
	if err != nil {
		d.logger.Errorw("could not find mixer control", "name", d.config.MixerCtl, "error", err)

		return fmt.Errorf("%w: %s: %w", ErrDeviceNotFound, d.config.MixerCtl, err)
	}

	if err := ctl.SetValue(0, 0); err != nil {
		return fmt.Errorf("failed to disable %s: %w", d.config.MixerCtl, err)
	}

	return nil
}

// PowerOn enables MI2S, clears powerdown and waits for the chip to lock on the bit
// clock. It polls FLAG_LOST_CLK up to Config.PowerRetries times, sleeping
// Config.PollInterval after each miss; a failed read counts as a miss. When the clock
// never shows up MI2S is disabled again and ErrNoClock is returned.
//
// The returned stream is nil when MI2S could not be enabled; powering up still
// proceeds in that case.
func (d *Device) PowerOn() (Stream, error) {
	stream, err := d.Mi2sEnable()
	if err != nil {
		d.logger.Warnw("powering on without an MI2S stream", "error", err)
	}

	if _, err := d.SetBitfield(TFA98XX_BF_POWERDOWN, 0); err != nil {
		d.logger.Warnw("failed to clear powerdown", "error", err)
	}

	for retry := 0; retry < d.config.PowerRetries; retry++ {
		lost, err := d.GetBitfield(TFA98XX_BF_FLAG_LOST_CLK)
		if err == nil && lost == 0 {
			d.logger.Debugw("amplifier powered on", "polls", retry+1)

			return stream, nil
		}

		time.Sleep(d.config.PollInterval)
	}

	d.logger.Errorw("failed to power on the amplifier (no clocks)", "polls", d.config.PowerRetries)

	if err := d.Mi2sDisable(stream); err != nil {
		d.logger.Warnw("failed to disable MI2S", "error", err)
	}

	return nil, ErrNoClock
}

// PowerOff sets powerdown and disables MI2S, closing stream.
func (d *Device) PowerOff(stream Stream) error {
	_, perr := d.SetBitfield(TFA98XX_BF_POWERDOWN, 1)
	if perr != nil {
		d.logger.Warnw("failed to set powerdown", "error", perr)
	}

	return errors.Join(perr, d.Mi2sDisable(stream))
}
