// Package alsa is the small slice of the Linux ALSA kernel interface the amplifier
// needs: mixer controls looked up by name, PCM capability queries, and plain
// read/write playback streams. It talks to /dev/snd directly through ioctls, in the
// manner of tinyalsa, and does not support the alsa-lib plugin layer.
package alsa

import (
	"errors"
)

// ErrCtlNotFound is returned when a mixer control name does not exist on the card.
var ErrCtlNotFound = errors.New("control not found")

// PcmFormat defines the sample format for a PCM stream.
// These values correspond to the SNDRV_PCM_FORMAT_* constants in the ALSA kernel headers.
type PcmFormat int32

const (
	SNDRV_PCM_FORMAT_S8      PcmFormat = 0
	SNDRV_PCM_FORMAT_U8      PcmFormat = 1
	SNDRV_PCM_FORMAT_S16_LE  PcmFormat = 2
	SNDRV_PCM_FORMAT_S16_BE  PcmFormat = 3
	SNDRV_PCM_FORMAT_S24_LE  PcmFormat = 6
	SNDRV_PCM_FORMAT_S32_LE  PcmFormat = 10
	SNDRV_PCM_FORMAT_S24_3LE PcmFormat = 32
)

// PcmFlag defines flags for opening a PCM stream.
type PcmFlag uint32

const (
	// PCM_OUT specifies a playback stream.
	PCM_OUT PcmFlag = 0
	// PCM_IN specifies a capture stream.
	PCM_IN PcmFlag = 0x10000000
)

// PcmParam identifies a hardware parameter for a PCM device.
// These values correspond to the SNDRV_PCM_HW_PARAM_* constants.
type PcmParam int

const (
	SNDRV_PCM_HW_PARAM_ACCESS      PcmParam = 0
	SNDRV_PCM_HW_PARAM_FORMAT      PcmParam = 1
	SNDRV_PCM_HW_PARAM_SUBFORMAT   PcmParam = 2
	SNDRV_PCM_HW_PARAM_SAMPLE_BITS PcmParam = 8
	SNDRV_PCM_HW_PARAM_FRAME_BITS  PcmParam = 9
	SNDRV_PCM_HW_PARAM_CHANNELS    PcmParam = 10
	SNDRV_PCM_HW_PARAM_RATE        PcmParam = 11
	SNDRV_PCM_HW_PARAM_PERIOD_TIME PcmParam = 12
	SNDRV_PCM_HW_PARAM_PERIOD_SIZE PcmParam = 13
	SNDRV_PCM_HW_PARAM_PERIODS     PcmParam = 15
	SNDRV_PCM_HW_PARAM_BUFFER_SIZE PcmParam = 17
	SNDRV_PCM_HW_PARAM_TICK_TIME   PcmParam = 19
)

const (
	sndrvPcmAccessRwInterleaved = 3
	sndrvPcmIntervalInteger     = 1 << 2
	sndrvMaskMax                = 256
)

// MixerCtlType defines the value type of a mixer control.
type MixerCtlType int32

const (
	SNDRV_CTL_ELEM_TYPE_NONE       MixerCtlType = 0
	SNDRV_CTL_ELEM_TYPE_BOOLEAN    MixerCtlType = 1
	SNDRV_CTL_ELEM_TYPE_INTEGER    MixerCtlType = 2
	SNDRV_CTL_ELEM_TYPE_ENUMERATED MixerCtlType = 3
	SNDRV_CTL_ELEM_TYPE_BYTES      MixerCtlType = 4
	SNDRV_CTL_ELEM_TYPE_IEC958     MixerCtlType = 5
	SNDRV_CTL_ELEM_TYPE_INTEGER64  MixerCtlType = 6
	SNDRV_CTL_ELEM_TYPE_UNKNOWN    MixerCtlType = -1
)

// FormatToBits returns the storage width of one sample in bits, 0 for unknown formats.
func FormatToBits(f PcmFormat) uint32 {
	switch f {
	case SNDRV_PCM_FORMAT_S32_LE, SNDRV_PCM_FORMAT_S24_LE:
		return 32
	case SNDRV_PCM_FORMAT_S24_3LE:
		return 24
	case SNDRV_PCM_FORMAT_S16_LE, SNDRV_PCM_FORMAT_S16_BE:
		return 16
	case SNDRV_PCM_FORMAT_S8, SNDRV_PCM_FORMAT_U8:
		return 8
	default:
		return 0
	}
}

// streamSuffix returns the /dev/snd node suffix for the stream direction.
func streamSuffix(flags PcmFlag) byte {
	if flags&PCM_IN != 0 {
		return 'c'
	}

	return 'p'
}
