// Package tfa drives the TFA9888 smart amplifier found on msm8996 phones: register and
// bitfield access over the /dev/tfa9888 control node, MI2S stream gating through the
// ALSA mixer, power sequencing and the one-shot startup that uploads the DSP patches.
//
// A Device is not safe for concurrent use.
package tfa

import (
	"errors"
	"fmt"
	"io"

	"github.com/edaniels/golog"
)

// Device is an open amplifier: the platform mixer plus the control channel of the chip.
type Device struct {
	config  Config
	mixer   Mixer
	control io.ReadWriteCloser
	pcm     PCM
	logger  golog.Logger
	tracer  Tracer
}

// Open acquires the mixer of config.Card, then the control node at config.ControlPath.
// If either fails, everything acquired so far is released and the returned error wraps
// ErrResourceUnavailable. A nil config means DefaultConfig().
func Open(config *Config, opts ...Option) (*Device, error) {
	if config == nil {
		config = DefaultConfig()
	}

	o := options{
		openMixer:   openALSAMixer,
		openControl: openControlNode,
		pcm:         alsaPCM{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = golog.Global().Named("tfa")
	}

	mixer, err := o.openMixer(config.Card)
	if err != nil {
		o.logger.Errorw("failed to open mixer", "card", config.Card, "error", err)

		return nil, fmt.Errorf("%w: mixer of card %d: %w", ErrResourceUnavailable, config.Card, err)
	}

	control, err := o.openControl(config.ControlPath)
	if err != nil {
		o.logger.Errorw("failed to open control node", "path", config.ControlPath, "error", err)
		_ = mixer.Close()

		return nil, fmt.Errorf("%w: %s: %w", ErrResourceUnavailable, config.ControlPath, err)
	}

	return &Device{
		config:  *config,
		mixer:   mixer,
		control: control,
		pcm:     o.pcm,
		logger:  o.logger,
		tracer:  o.tracer,
	}, nil
}

// Close releases the mixer and the control channel.
func (d *Device) Close() error {
	if d == nil {
		return nil
	}

	var errs []error
	if d.mixer != nil {
		errs = append(errs, d.mixer.Close())
		d.mixer = nil
	}

	if d.control != nil {
		errs = append(errs, d.control.Close())
		d.control = nil
	}

	return errors.Join(errs...)
}

// Config returns the configuration the device was opened with.
func (d *Device) Config() Config {
	return d.config
}

// Logger returns the device logger.
func (d *Device) Logger() golog.Logger {
	return d.logger
}
