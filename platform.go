package tfa

import (
	"io"
	"os"

	"github.com/gen2brain/tfa/internal/alsa"
)

type alsaMixer struct {
	*alsa.Mixer
}

func openALSAMixer(card uint) (Mixer, error) {
	m, err := alsa.MixerOpen(card)
	if err != nil {
		return nil, err
	}

	return alsaMixer{m}, nil
}

func (m alsaMixer) CtlByName(name string) (MixerCtl, error) {
	ctl, err := m.Mixer.CtlByName(name)
	if err != nil {
		return nil, err
	}

	return ctl, nil
}

type alsaPCM struct{}

func (alsaPCM) MaxPeriods(card, device uint) (uint32, error) {
	params, err := alsa.PcmParamsGet(card, device, alsa.PCM_OUT)
	if err != nil {
		return 0, err
	}

	return params.RangeMax(alsa.SNDRV_PCM_HW_PARAM_PERIODS)
}

func (alsaPCM) Open(card, device uint, config StreamConfig) (Stream, error) {
	pcm, err := alsa.PcmOpen(card, device, alsa.PCM_OUT, &alsa.Config{
		Channels:      config.Channels,
		Rate:          config.Rate,
		PeriodSize:    config.PeriodSize,
		PeriodCount:   config.PeriodCount,
		Format:        alsa.SNDRV_PCM_FORMAT_S16_LE,
		StopThreshold: config.StopThreshold,
	})
	if err != nil {
		return nil, err
	}

	return pcm, nil
}

func openControlNode(path string) (io.ReadWriteCloser, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	return file, nil
}
