//go:build linux && (amd64 || arm64)

package alsa

// sndPcmUframesT is an unsigned long in the ALSA headers.
type sndPcmUframesT = uint64

// clong is the C `long` type on 64-bit systems.
type clong = int64

// sndPcmSwParams contains software parameters for a PCM device.
// Padding after SleepMin aligns the following 64-bit fields.
type sndPcmSwParams struct {
	TstampMode       uint32
	PeriodStep       uint32
	SleepMin         uint32
	_                [4]byte
	AvailMin         sndPcmUframesT
	XferAlign        sndPcmUframesT
	StartThreshold   sndPcmUframesT
	StopThreshold    sndPcmUframesT
	SilenceThreshold sndPcmUframesT
	SilenceSize      sndPcmUframesT
	Boundary         sndPcmUframesT
	Reserved         [64]byte
}

// sndCtlElemValue holds the value of a control element.
type sndCtlElemValue struct {
	Id sndCtlElemId
	// `unsigned int indirect:1` plus padding to the 8-byte aligned union.
	_ [8]byte
	// long value[128]
	Value    [1024]byte
	Reserved [128]byte
}
