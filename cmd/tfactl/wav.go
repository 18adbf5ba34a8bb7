package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// streamWAV decodes dec in chunks of chunkFrames frames, converts each chunk to S16
// with dstChans channels and passes it to write. It returns the number of frames written.
func streamWAV(dec *wav.Decoder, chunkFrames, dstChans int, write func([]int16) error) (int, error) {
	if dstChans <= 0 {
		return 0, fmt.Errorf("invalid output channel count %d", dstChans)
	}

	srcChans := int(dec.NumChans)
	if srcChans == 0 {
		return 0, errors.New("WAV file has no channels")
	}

	switch dec.BitDepth {
	case 16, 24, 32:
	default:
		return 0, fmt.Errorf("unsupported bit depth %d", dec.BitDepth)
	}

	if dec.WavAudioFormat != 1 {
		return 0, fmt.Errorf("unsupported WAV format %d, only integer PCM is played", dec.WavAudioFormat)
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: srcChans,
			SampleRate:  int(dec.SampleRate),
		},
		Data: make([]int, chunkFrames*srcChans),
	}

	frames := 0
	for {
		n, err := dec.PCMBuffer(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return frames, fmt.Errorf("failed to decode WAV: %w", err)
		}

		if n == 0 {
			return frames, nil
		}

		out := convert(buf.Data[:n], int(dec.BitDepth), srcChans, dstChans)
		if err := write(out); err != nil {
			return frames, err
		}

		frames += len(out) / dstChans
	}
}

// convert averages the interleaved samples of every frame into one value, scales it to
// 16 bits and repeats it on dstChans channels. Trailing samples of an incomplete frame
// are dropped.
func convert(samples []int, bitDepth, srcChans, dstChans int) []int16 {
	frames := len(samples) / srcChans
	out := make([]int16, 0, frames*dstChans)

	for f := 0; f < frames; f++ {
		sum := 0
		for _, s := range samples[f*srcChans : (f+1)*srcChans] {
			sum += s
		}

		v := (sum / srcChans) >> (bitDepth - 16)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}

		for c := 0; c < dstChans; c++ {
			out = append(out, int16(v))
		}
	}

	return out
}
