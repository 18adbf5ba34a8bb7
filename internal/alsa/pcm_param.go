package alsa

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// PcmParams holds the refined hardware capability ranges of a PCM device.
type PcmParams struct {
	params *sndPcmHwParams
}

// PcmParamsGet asks the kernel to refine a full-range parameter set for the given
// PCM device (SNDRV_PCM_IOCTL_HW_REFINE), which narrows every range to what the
// hardware supports without committing a configuration.
func PcmParamsGet(card, device uint, flags PcmFlag) (*PcmParams, error) {
	path := fmt.Sprintf("/dev/snd/pcmC%dD%d%c", card, device, streamSuffix(flags))

	// Non-blocking open so a busy device does not stall the query.
	file, err := os.OpenFile(path, os.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open PCM device %s for query: %w", path, err)
	}
	defer file.Close()

	hwParams := &sndPcmHwParams{}
	paramInit(hwParams)

	if err := ioctl(file.Fd(), SNDRV_PCM_IOCTL_HW_REFINE, uintptr(unsafe.Pointer(hwParams))); err != nil {
		return nil, fmt.Errorf("ioctl HW_REFINE failed: %w", err)
	}

	return &PcmParams{params: hwParams}, nil
}

// RangeMin returns the minimum value for an interval parameter.
func (pp *PcmParams) RangeMin(param PcmParam) (uint32, error) {
	iv, err := pp.interval(param)
	if err != nil {
		return 0, err
	}

	return iv.MinVal, nil
}

// RangeMax returns the maximum value for an interval parameter.
func (pp *PcmParams) RangeMax(param PcmParam) (uint32, error) {
	iv, err := pp.interval(param)
	if err != nil {
		return 0, err
	}

	return iv.MaxVal, nil
}

func (pp *PcmParams) interval(param PcmParam) (*sndInterval, error) {
	if pp == nil || pp.params == nil {
		return nil, fmt.Errorf("params not initialized")
	}

	if param < SNDRV_PCM_HW_PARAM_SAMPLE_BITS || param > SNDRV_PCM_HW_PARAM_TICK_TIME {
		return nil, fmt.Errorf("parameter %d is not an interval type", param)
	}

	return &pp.params.Intervals[param-SNDRV_PCM_HW_PARAM_SAMPLE_BITS], nil
}

// paramInit opens every mask and interval to its full range.
func paramInit(p *sndPcmHwParams) {
	for n := range p.Masks {
		for i := range p.Masks[n].Bits {
			p.Masks[n].Bits[i] = ^uint32(0)
		}
	}

	for n := range p.Mres {
		for i := range p.Mres[n].Bits {
			p.Mres[n].Bits[i] = ^uint32(0)
		}
	}

	for n := range p.Intervals {
		p.Intervals[n] = sndInterval{MaxVal: ^uint32(0)}
	}

	for n := range p.Ires {
		p.Ires[n] = sndInterval{MaxVal: ^uint32(0)}
	}

	p.Rmask = ^uint32(0)
	p.Info = ^uint32(0)
}

func paramSetMask(p *sndPcmHwParams, param PcmParam, bit uint32) {
	if param < SNDRV_PCM_HW_PARAM_ACCESS || param > SNDRV_PCM_HW_PARAM_SUBFORMAT {
		return
	}

	mask := &p.Masks[param-SNDRV_PCM_HW_PARAM_ACCESS]
	mask.Bits = [8]uint32{}

	if bit >= sndrvMaskMax {
		return
	}

	mask.Bits[bit>>5] |= 1 << (bit & 31)
}

func paramSetInt(p *sndPcmHwParams, param PcmParam, val uint32) {
	if param < SNDRV_PCM_HW_PARAM_SAMPLE_BITS || param > SNDRV_PCM_HW_PARAM_TICK_TIME {
		return
	}

	p.Intervals[param-SNDRV_PCM_HW_PARAM_SAMPLE_BITS] = sndInterval{
		MinVal: val,
		MaxVal: val,
		Flags:  sndrvPcmIntervalInteger,
	}
}

func paramSetMin(p *sndPcmHwParams, param PcmParam, val uint32) {
	if param < SNDRV_PCM_HW_PARAM_SAMPLE_BITS || param > SNDRV_PCM_HW_PARAM_TICK_TIME {
		return
	}

	p.Intervals[param-SNDRV_PCM_HW_PARAM_SAMPLE_BITS].MinVal = val
}

// paramGetInt reads back a parameter the driver has narrowed to a single value.
func paramGetInt(p *sndPcmHwParams, param PcmParam) uint32 {
	if param < SNDRV_PCM_HW_PARAM_SAMPLE_BITS || param > SNDRV_PCM_HW_PARAM_TICK_TIME {
		return 0
	}

	return p.Intervals[param-SNDRV_PCM_HW_PARAM_SAMPLE_BITS].MinVal
}
