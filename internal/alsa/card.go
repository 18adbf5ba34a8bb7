package alsa

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const (
	procCards = "/proc/asound/cards"
	procPCM   = "/proc/asound/pcm"
)

var (
	cardLine = regexp.MustCompile(`^\s*(\d+)\s+\[\s*([^]]*?)\s*\]:\s*(.*)`)
	pcmLine  = regexp.MustCompile(`^(\d+)-(\d+): (.*?) :`)
)

// PcmDevice is one PCM device of a sound card.
type PcmDevice struct {
	ID       uint
	Name     string
	Playback bool
	Capture  bool
}

// Card is a sound card listed in /proc/asound.
type Card struct {
	ID          uint
	Name        string
	Description string
	Devices     []PcmDevice
}

// Device returns the PCM device with the given number.
func (c Card) Device(id uint) (PcmDevice, bool) {
	for _, d := range c.Devices {
		if d.ID == id {
			return d, true
		}
	}

	return PcmDevice{}, false
}

func (c Card) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "card %d: %s (%s)\n", c.ID, c.Name, c.Description)
	for _, d := range c.Devices {
		var dirs []string
		if d.Playback {
			dirs = append(dirs, "playback")
		}

		if d.Capture {
			dirs = append(dirs, "capture")
		}

		fmt.Fprintf(&sb, "  device %d: %s [%s]\n", d.ID, d.Name, strings.Join(dirs, ", "))
	}

	return sb.String()
}

// Cards lists the sound cards and their PCM devices from /proc/asound, ordered by card number.
func Cards() ([]Card, error) {
	cards, err := os.ReadFile(procCards)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", procCards, err)
	}

	// /proc/asound/pcm is absent when no PCM device is registered.
	pcms, err := os.ReadFile(procPCM)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("could not read %s: %w", procPCM, err)
	}

	return parseCards(string(cards), string(pcms)), nil
}

func parseCards(cards, pcms string) []Card {
	var result []Card

	for _, line := range strings.Split(cards, "\n") {
		m := cardLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		id, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			continue
		}

		result = append(result, Card{ID: uint(id), Name: m[2], Description: strings.TrimSpace(m[3])})
	}

	// Lines look like "00-47: QUAT_MI2S_RX_HOSTLESS (*) :  : playback 1".
	for _, line := range strings.Split(pcms, "\n") {
		m := pcmLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		cardID, _ := strconv.ParseUint(m[1], 10, 32)
		devID, _ := strconv.ParseUint(m[2], 10, 32)

		i := slices.IndexFunc(result, func(c Card) bool { return c.ID == uint(cardID) })
		if i < 0 {
			continue
		}

		result[i].Devices = append(result[i].Devices, PcmDevice{
			ID:       uint(devID),
			Name:     strings.TrimSpace(m[3]),
			Playback: strings.Contains(line, "playback"),
			Capture:  strings.Contains(line, "capture"),
		})
	}

	slices.SortFunc(result, func(a, b Card) int { return int(a.ID) - int(b.ID) })

	return result
}
