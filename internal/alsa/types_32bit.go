//go:build linux && (386 || arm)

package alsa

// sndPcmUframesT is an unsigned long in the ALSA headers.
type sndPcmUframesT = uint32

// clong is the C `long` type on 32-bit systems.
type clong = int32

// sndPcmSwParams contains software parameters for a PCM device.
type sndPcmSwParams struct {
	TstampMode       uint32
	PeriodStep       uint32
	SleepMin         uint32
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
	// `unsigned int indirect:1`; the union that follows is only 4-byte aligned here.
	_ [4]byte
	// long long value[64]
	Value    [512]byte
	Reserved [128]byte
}
