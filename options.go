package tfa

import (
	"io"

	"github.com/edaniels/golog"
)

// MixerCtl is a single mixer control of the platform sound card.
type MixerCtl interface {
	SetValue(id uint, value int) error
}

// Mixer is an open platform mixer.
type Mixer interface {
	CtlByName(name string) (MixerCtl, error)
	Close() error
}

// Stream is an open playback stream on the amplifier's PCM device.
type Stream interface {
	// Write writes interleaved samples and returns the number of frames written.
	Write(data any) (int, error)
	Close() error
}

// StreamConfig describes the playback stream opened by Mi2sEnable. Samples are always S16_LE.
type StreamConfig struct {
	Channels      uint32
	Rate          uint32
	PeriodSize    uint32
	PeriodCount   uint32
	StopThreshold uint32
}

// PCM opens playback streams on the platform.
type PCM interface {
	// MaxPeriods returns the largest period count the playback device supports.
	MaxPeriods(card, device uint) (uint32, error)
	Open(card, device uint, config StreamConfig) (Stream, error)
}

// MixerOpener opens the mixer of a sound card.
type MixerOpener func(card uint) (Mixer, error)

// ControlOpener opens the amplifier's control channel.
type ControlOpener func(path string) (io.ReadWriteCloser, error)

type options struct {
	openMixer   MixerOpener
	openControl ControlOpener
	pcm         PCM
	logger      golog.Logger
	tracer      Tracer
}

// Option configures a Device at Open.
type Option func(*options)

// WithMixerOpener replaces the ALSA mixer.
func WithMixerOpener(fn MixerOpener) Option {
	return func(o *options) {
		o.openMixer = fn
	}
}

// WithControlOpener replaces the opener of the control node.
func WithControlOpener(fn ControlOpener) Option {
	return func(o *options) {
		o.openControl = fn
	}
}

// WithPCM replaces the ALSA PCM backend.
func WithPCM(pcm PCM) Option {
	return func(o *options) {
		o.pcm = pcm
	}
}

// WithLogger sets the logger. The default is the global golog logger named "tfa".
func WithLogger(logger golog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracer reports every register access and patch write to t.
func WithTracer(t Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}
