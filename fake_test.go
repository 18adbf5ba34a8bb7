package tfa_test

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/edaniels/golog"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gen2brain/tfa"
)

const lostClkReg = 0x10

// eventLog is shared by the fake chip, mixer and PCM so tests can check the global order.
type eventLog struct {
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

// fakeChip emulates the control node: a one byte write selects a register, a three
// byte write sets one, anything else is a patch.
type fakeChip struct {
	log      *eventLog
	regs     map[uint8]uint16
	selected uint8
	writes   [][]byte

	// lostClk is the number of FLAG_LOST_CLK reads that still report a lost clock.
	lostClk  int
	clkPolls int

	readErr   error
	writeErr  error
	shortRead bool
	patchErr  error
	closed    bool
}

func newFakeChip(log *eventLog) *fakeChip {
	return &fakeChip{log: log, regs: make(map[uint8]uint16)}
}

func (c *fakeChip) Write(p []byte) (int, error) {
	c.writes = append(c.writes, append([]byte(nil), p...))

	if c.writeErr != nil {
		return 0, c.writeErr
	}

	switch len(p) {
	case 1:
		c.selected = p[0]
	case 3:
		c.regs[p[0]] = binary.BigEndian.Uint16(p[1:])
		c.log.add("set %02x=%04x", p[0], c.regs[p[0]])
	default:
		if c.patchErr != nil {
			return 0, c.patchErr
		}

		c.log.add("patch %x", p)
	}

	return len(p), nil
}

func (c *fakeChip) Read(p []byte) (int, error) {
	if c.readErr != nil {
		return 0, c.readErr
	}

	v := c.regs[c.selected]
	if c.selected == lostClkReg {
		c.clkPolls++
		if c.lostClk > 0 {
			c.lostClk--
			v |= 1 << 7
		}
	}

	if c.shortRead {
		p[0] = byte(v >> 8)

		return 1, nil
	}

	binary.BigEndian.PutUint16(p, v)

	return 2, nil
}

func (c *fakeChip) Close() error {
	c.closed = true

	return nil
}

type fakeCtl struct {
	name string
	log  *eventLog
	val  int
}

func (c *fakeCtl) SetValue(id uint, value int) error {
	c.val = value
	c.log.add("mixer %s=%d", c.name, value)

	return nil
}

type fakeMixer struct {
	ctls   map[string]*fakeCtl
	closed bool
}

func (m *fakeMixer) CtlByName(name string) (tfa.MixerCtl, error) {
	ctl, ok := m.ctls[name]
	if !ok {
		return nil, fmt.Errorf("control %q not found", name)
	}

	return ctl, nil
}

func (m *fakeMixer) Close() error {
	m.closed = true

	return nil
}

type fakeStream struct {
	log    *eventLog
	closed bool
}

func (s *fakeStream) Write(data any) (int, error) {
	return 0, errors.New("not implemented")
}

func (s *fakeStream) Close() error {
	s.closed = true
	s.log.add("pcm close")

	return nil
}

type fakePCM struct {
	log        *eventLog
	maxPeriods uint32
	paramsErr  error
	openErr    error
	opened     []tfa.StreamConfig
	streams    []*fakeStream
}

func (p *fakePCM) MaxPeriods(card, device uint) (uint32, error) {
	if p.paramsErr != nil {
		return 0, p.paramsErr
	}

	return p.maxPeriods, nil
}

func (p *fakePCM) Open(card, device uint, config tfa.StreamConfig) (tfa.Stream, error) {
	if p.openErr != nil {
		return nil, p.openErr
	}

	p.opened = append(p.opened, config)
	p.log.add("pcm open card=%d device=%d periods=%d", card, device, config.PeriodCount)

	s := &fakeStream{log: p.log}
	p.streams = append(p.streams, s)

	return s, nil
}

// rig is a Device wired to fakes.
type rig struct {
	dev    *tfa.Device
	log    *eventLog
	chip   *fakeChip
	mixer  *fakeMixer
	ctl    *fakeCtl
	pcm    *fakePCM
	logs   *observer.ObservedLogs
	config *tfa.Config
}

func testConfig() *tfa.Config {
	config := tfa.DefaultConfig()
	config.PollInterval = 0

	return config
}

func newRig(t *testing.T, opts ...tfa.Option) *rig {
	t.Helper()

	r := &rig{log: &eventLog{}, config: testConfig()}
	r.chip = newFakeChip(r.log)
	r.ctl = &fakeCtl{name: r.config.MixerCtl, log: r.log}
	r.mixer = &fakeMixer{ctls: map[string]*fakeCtl{r.ctl.name: r.ctl}}
	r.pcm = &fakePCM{log: r.log, maxPeriods: 8}

	var logger golog.Logger
	logger, r.logs = golog.NewObservedTestLogger(t)

	base := []tfa.Option{
		tfa.WithMixerOpener(func(card uint) (tfa.Mixer, error) { return r.mixer, nil }),
		tfa.WithControlOpener(func(path string) (io.ReadWriteCloser, error) { return r.chip, nil }),
		tfa.WithPCM(r.pcm),
		tfa.WithLogger(logger),
	}

	dev, err := tfa.Open(r.config, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dev.Close() })

	r.dev = dev

	return r
}

// recordingTracer keeps every traced transfer.
type recordingTracer struct {
	reads, writes []string
	patches       []int
}

func (t *recordingTracer) RegisterRead(reg uint8, value uint16) {
	t.reads = append(t.reads, fmt.Sprintf("%02x=%04x", reg, value))
}

func (t *recordingTracer) RegisterWrite(reg uint8, value uint16) {
	t.writes = append(t.writes, fmt.Sprintf("%02x=%04x", reg, value))
}

func (t *recordingTracer) PatchWrite(index int, data []byte, n int, err error) {
	t.patches = append(t.patches, index)
}
