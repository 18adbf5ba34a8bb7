package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-audio/wav"

	"github.com/gen2brain/tfa"
	"github.com/gen2brain/tfa/internal/alsa"
)

// chunkFrames is the number of frames decoded and written per stream write.
const chunkFrames = 1024

// xrunCounter is implemented by ALSA playback streams.
type xrunCounter interface {
	Xruns() int
}

// xruns returns the underruns recovered by stream, if it counts them.
func xruns(stream tfa.Stream) (int, bool) {
	c, ok := stream.(xrunCounter)
	if !ok {
		return 0, false
	}

	return c.Xruns(), true
}

func parseRegister(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid register %q: %w", s, err)
	}

	return uint8(v), nil
}

func parseValue(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", s, err)
	}

	return uint16(v), nil
}

func parseBitfield(s string) (tfa.Bitfield, error) {
	if bf, ok := tfa.BitfieldByName(s); ok {
		return bf, nil
	}

	// Raw packed descriptors, e.g. 0x9011.
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("unknown bitfield %q", s)
	}

	return tfa.Bitfield(v), nil
}

func runStartup(e *env, _ []string) error {
	fw, err := tfa.LoadFirmware(e.config.Firmware)
	if err != nil {
		return err
	}

	for i, set := range fw.Sets {
		e.logger.Infow("patch table", "table", i+1, "patches", len(set))
	}

	if err := e.dev.Startup(fw); err != nil {
		return err
	}

	fmt.Println("Startup sequence finished.")

	return nil
}

func runGet(e *env, args []string) error {
	reg, err := parseRegister(args[0])
	if err != nil {
		return err
	}

	v, err := e.dev.GetRegister(reg)
	if err != nil {
		return err
	}

	fmt.Printf("0x%02x = 0x%04x  %s\n", reg, v, tfa.Describe(reg, v))

	return nil
}

func runSet(e *env, args []string) error {
	reg, err := parseRegister(args[0])
	if err != nil {
		return err
	}

	v, err := parseValue(args[1])
	if err != nil {
		return err
	}

	_, err = e.dev.SetRegister(reg, v)

	return err
}

func runGetBitfield(e *env, args []string) error {
	bf, err := parseBitfield(args[0])
	if err != nil {
		return err
	}

	v, err := e.dev.GetBitfield(bf)
	if err != nil {
		return err
	}

	fmt.Printf("%s = %d (0x%x)\n", bf, v, v)

	return nil
}

func runSetBitfield(e *env, args []string) error {
	bf, err := parseBitfield(args[0])
	if err != nil {
		return err
	}

	v, err := parseValue(args[1])
	if err != nil {
		return err
	}

	if v > bf.Mask() {
		return fmt.Errorf("value %d does not fit %s (%d bits)", v, bf, bf.Width())
	}

	_, err = e.dev.SetBitfield(bf, v)

	return err
}

func runDump(e *env, _ []string) error {
	for _, reg := range tfa.Registers() {
		v, err := e.dev.GetRegister(reg)
		if err != nil {
			fmt.Printf("0x%02x = error: %v\n", reg, err)

			continue
		}

		fmt.Printf("0x%02x = 0x%04x  %s\n", reg, v, tfa.Describe(reg, v))
	}

	return nil
}

func runPowerCycle(e *env, _ []string) error {
	stream, err := e.dev.PowerOn()
	if err != nil {
		return err
	}

	fmt.Printf("Clock locked, MI2S stream open: %t\n", stream != nil)

	return e.dev.PowerOff(stream)
}

func runPlay(e *env, args []string) (err error) {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return errors.New("invalid WAV file")
	}

	if dec.SampleRate != e.config.Rate {
		return fmt.Errorf("WAV file is %d Hz, the amplifier stream runs at %d Hz", dec.SampleRate, e.config.Rate)
	}

	stream, err := e.dev.PowerOn()
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, e.dev.PowerOff(stream))
	}()

	if stream == nil {
		return errors.New("MI2S stream is not available")
	}

	fmt.Printf("Playing %s: %d channels, %d Hz, %d bit\n", args[0], dec.NumChans, dec.SampleRate, dec.BitDepth)

	frames, err := streamWAV(dec, chunkFrames, int(e.config.Channels), func(samples []int16) error {
		_, err := stream.Write(samples)

		return err
	})

	fmt.Printf("%d frames played.\n", frames)

	if n, ok := xruns(stream); ok && n > 0 {
		e.logger.Warnw("playback underruns recovered", "xruns", n)
	}

	return err
}

func runCards(e *env) error {
	cards, err := alsa.Cards()
	if err != nil {
		return err
	}

	found := false
	for _, c := range cards {
		fmt.Print(c)

		if c.ID == e.config.Card {
			if d, ok := c.Device(e.config.PCMDevice); ok && d.Playback {
				found = true
			}
		}
	}

	if !found {
		return fmt.Errorf("amplifier playback device hw:%d,%d not found", e.config.Card, e.config.PCMDevice)
	}

	fmt.Printf("Amplifier playback device: hw:%d,%d\n", e.config.Card, e.config.PCMDevice)

	return nil
}
