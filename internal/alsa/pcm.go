package alsa

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Config encapsulates the hardware and software parameters of a PCM stream.
// Zero PeriodSize lets the driver choose; zero thresholds take tinyalsa's defaults.
type Config struct {
	Channels       uint32
	Rate           uint32
	PeriodSize     uint32
	PeriodCount    uint32
	Format         PcmFormat
	StartThreshold uint32
	StopThreshold  uint32
	AvailMin       uint32
}

// PCM represents an open ALSA PCM device handle using read/write transfers.
type PCM struct {
	file       *os.File
	config     Config
	flags      PcmFlag
	bufferSize uint32 // In frames
	prepared   bool
	xruns      int
}

// PcmOpen opens /dev/snd/pcmC<card>D<device>{p,c} in blocking mode and applies config.
func PcmOpen(card, device uint, flags PcmFlag, config *Config) (*PCM, error) {
	if config == nil {
		return nil, fmt.Errorf("PCM config is required")
	}

	path := fmt.Sprintf("/dev/snd/pcmC%dD%d%c", card, device, streamSuffix(flags))

	// Open non-blocking so a device held by someone else fails fast, then switch
	// to blocking I/O.
	file, err := os.OpenFile(path, os.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open PCM device %s: %w", path, err)
	}

	fl, err := unix.FcntlInt(file.Fd(), unix.F_GETFL, 0)
	if err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("fcntl F_GETFL for %s failed: %w", path, err)
	}

	if _, err = unix.FcntlInt(file.Fd(), unix.F_SETFL, fl&^unix.O_NONBLOCK); err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("failed to set blocking mode on %s: %w", path, err)
	}

	pcm := &PCM{
		file:  file,
		flags: flags,
	}

	if err := pcm.setConfig(config); err != nil {
		_ = pcm.Close()

		return nil, fmt.Errorf("failed to set PCM config: %w", err)
	}

	return pcm, nil
}

// IsReady checks if the PCM handle is valid.
func (p *PCM) IsReady() bool {
	return p != nil && p.file != nil
}

// Close drops any pending frames and closes the device.
func (p *PCM) Close() error {
	if !p.IsReady() {
		return nil
	}

	if p.prepared {
		_ = ioctl(p.file.Fd(), SNDRV_PCM_IOCTL_DROP, 0)
	}

	err := p.file.Close()
	p.file = nil
	p.bufferSize = 0
	p.prepared = false

	return err
}

// Config returns a copy of the configuration as refined by the driver.
func (p *PCM) Config() Config {
	return p.config
}

// BufferSize returns the PCM's total buffer size in frames.
func (p *PCM) BufferSize() uint32 {
	return p.bufferSize
}

// Xruns returns the number of underruns recovered during Write.
func (p *PCM) Xruns() int {
	return p.xruns
}

// FrameSize returns the size of a single frame in bytes.
func (p *PCM) FrameSize() uint32 {
	return p.config.Channels * (FormatToBits(p.config.Format) / 8)
}

func (p *PCM) setConfig(config *Config) error {
	p.config = *config

	hw := &sndPcmHwParams{}
	paramInit(hw)

	paramSetMask(hw, SNDRV_PCM_HW_PARAM_FORMAT, uint32(config.Format))
	paramSetMask(hw, SNDRV_PCM_HW_PARAM_ACCESS, sndrvPcmAccessRwInterleaved)
	if config.PeriodSize != 0 {
		paramSetMin(hw, SNDRV_PCM_HW_PARAM_PERIOD_SIZE, config.PeriodSize)
	}
	paramSetInt(hw, SNDRV_PCM_HW_PARAM_CHANNELS, config.Channels)
	paramSetInt(hw, SNDRV_PCM_HW_PARAM_PERIODS, config.PeriodCount)
	paramSetInt(hw, SNDRV_PCM_HW_PARAM_RATE, config.Rate)

	if err := ioctl(p.file.Fd(), SNDRV_PCM_IOCTL_HW_PARAMS, uintptr(unsafe.Pointer(hw))); err != nil {
		return fmt.Errorf("ioctl HW_PARAMS failed: %w", err)
	}

	p.config.PeriodSize = paramGetInt(hw, SNDRV_PCM_HW_PARAM_PERIOD_SIZE)
	p.config.PeriodCount = paramGetInt(hw, SNDRV_PCM_HW_PARAM_PERIODS)
	p.config.Channels = paramGetInt(hw, SNDRV_PCM_HW_PARAM_CHANNELS)
	p.config.Rate = paramGetInt(hw, SNDRV_PCM_HW_PARAM_RATE)
	p.bufferSize = p.config.PeriodSize * p.config.PeriodCount

	if p.config.Channels == 0 || p.config.Rate == 0 || p.config.PeriodSize == 0 || p.config.PeriodCount == 0 {
		return fmt.Errorf("driver finalized invalid PCM configuration (Channels=%d, Rate=%d, PeriodSize=%d, PeriodCount=%d)",
			p.config.Channels, p.config.Rate, p.config.PeriodSize, p.config.PeriodCount)
	}

	sw := &sndPcmSwParams{}
	sw.TstampMode = 1 // SNDRV_PCM_TSTAMP_ENABLE
	sw.PeriodStep = 1

	if p.config.AvailMin == 0 {
		p.config.AvailMin = p.config.PeriodSize
	}
	sw.AvailMin = sndPcmUframesT(p.config.AvailMin)

	if p.config.StartThreshold == 0 {
		if p.flags&PCM_IN != 0 {
			p.config.StartThreshold = 1
		} else {
			p.config.StartThreshold = p.bufferSize / 2
		}
	}
	sw.StartThreshold = sndPcmUframesT(p.config.StartThreshold)

	if p.config.StopThreshold == 0 {
		if p.flags&PCM_IN != 0 {
			p.config.StopThreshold = p.bufferSize * 10
		} else {
			p.config.StopThreshold = p.bufferSize
		}
	}
	sw.StopThreshold = sndPcmUframesT(p.config.StopThreshold)

	sw.XferAlign = sndPcmUframesT(p.config.PeriodSize / 2) // Needed for old kernels

	if err := ioctl(p.file.Fd(), SNDRV_PCM_IOCTL_SW_PARAMS, uintptr(unsafe.Pointer(sw))); err != nil {
		return fmt.Errorf("ioctl SW_PARAMS failed: %w", err)
	}

	return nil
}

// Prepare readies the PCM device for I/O operations.
func (p *PCM) Prepare() error {
	if !p.IsReady() {
		return fmt.Errorf("PCM handle is not valid")
	}

	if err := ioctl(p.file.Fd(), SNDRV_PCM_IOCTL_PREPARE, 0); err != nil {
		return fmt.Errorf("ioctl PREPARE failed: %w", err)
	}

	p.prepared = true

	return nil
}

// Write writes interleaved samples to a playback stream. data must be a slice of
// a fixed-size numeric type matching the stream format (e.g. []int16 for S16_LE).
// It returns the number of frames written. An underrun is counted, the stream is
// prepared again and the write continues.
func (p *PCM) Write(data any) (int, error) {
	if !p.IsReady() {
		return 0, fmt.Errorf("PCM handle is not valid")
	}

	if p.flags&PCM_IN != 0 {
		return 0, fmt.Errorf("cannot write to a capture device")
	}

	ptr, byteLen, err := sliceData(data)
	if err != nil {
		return 0, fmt.Errorf("invalid data type for Write: %w", err)
	}

	frameSize := p.FrameSize()
	if frameSize == 0 {
		return 0, fmt.Errorf("unsupported PCM format %d", p.config.Format)
	}

	frames := byteLen / frameSize
	if frames == 0 {
		return 0, fmt.Errorf("data holds less than one frame")
	}

	defer runtime.KeepAlive(data)

	if !p.prepared {
		if err := p.Prepare(); err != nil {
			return 0, err
		}
	}

	written := uint32(0)
	for written < frames {
		xfer := sndXferi{
			Frames: sndPcmUframesT(frames - written),
			Buf:    uintptr(ptr) + uintptr(written*frameSize),
		}

		err := ioctl(p.file.Fd(), SNDRV_PCM_IOCTL_WRITEI_FRAMES, uintptr(unsafe.Pointer(&xfer)))
		if xfer.Result > 0 {
			written += uint32(xfer.Result)
		}

		if err != nil {
			if errors.Is(err, unix.EPIPE) || errors.Is(err, unix.ESTRPIPE) {
				p.xruns++
				if perr := p.Prepare(); perr != nil {
					return int(written), fmt.Errorf("recovery failed: %w", perr)
				}

				continue
			}

			return int(written), fmt.Errorf("ioctl WRITEI_FRAMES failed: %w", err)
		}
	}

	return int(written), nil
}

// sliceData validates that data is a slice of a supported numeric type and
// returns its backing pointer and length in bytes.
func sliceData(data any) (unsafe.Pointer, uint32, error) {
	if data == nil {
		return nil, 0, errors.New("data cannot be nil")
	}

	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice {
		return nil, 0, fmt.Errorf("expected a slice, got %T", data)
	}

	switch rv.Type().Elem().Kind() {
	case reflect.Int8, reflect.Uint8,
		reflect.Int16, reflect.Uint16,
		reflect.Int32, reflect.Uint32,
		reflect.Float32, reflect.Float64:
	default:
		return nil, 0, fmt.Errorf("unsupported slice element type: %s", rv.Type().Elem().Kind())
	}

	if rv.Len() == 0 {
		return nil, 0, nil
	}

	return rv.UnsafePointer(), uint32(rv.Len()) * uint32(rv.Type().Elem().Size()), nil
}
