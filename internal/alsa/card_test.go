package alsa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCards = ` 1 [Dummy          ]: Dummy - Dummy
                      Dummy 1
 0 [msm8996tashapmi]: msm8996-tasha-p - msm8996-tasha-pmi8996-snd-card
                      msm8996-tasha-pmi8996-snd-card
`

const testPCM = `00-00: MultiMedia1 (*) :  : playback 1 : capture 1
00-47: QUAT_MI2S_RX_HOSTLESS (*) :  : playback 1
01-00: Dummy PCM : Dummy PCM : playback 8 : capture 8
07-00: Orphan : Orphan : playback 1
`

func TestParseCards(t *testing.T) {
	cards := parseCards(testCards, testPCM)
	require.Len(t, cards, 2)

	assert.Equal(t, uint(0), cards[0].ID)
	assert.Equal(t, "msm8996tashapmi", cards[0].Name)
	assert.Equal(t, "msm8996-tasha-p - msm8996-tasha-pmi8996-snd-card", cards[0].Description)

	amp, ok := cards[0].Device(47)
	require.True(t, ok)
	assert.Equal(t, "QUAT_MI2S_RX_HOSTLESS (*)", amp.Name)
	assert.True(t, amp.Playback)
	assert.False(t, amp.Capture)

	mm, ok := cards[0].Device(0)
	require.True(t, ok)
	assert.True(t, mm.Playback && mm.Capture)

	_, ok = cards[0].Device(5)
	assert.False(t, ok)

	assert.Equal(t, "Dummy", cards[1].Name)
	assert.Len(t, cards[1].Devices, 1)
	assert.Contains(t, cards[1].String(), "device 0: Dummy PCM [playback, capture]")
}

func TestParseCardsEmpty(t *testing.T) {
	assert.Empty(t, parseCards("--- no soundcards ---\n", ""))
}
