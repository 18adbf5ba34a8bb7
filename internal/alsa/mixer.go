package alsa

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"
)

// MixerCtl represents an individual mixer control handle.
type MixerCtl struct {
	mixer *Mixer
	info  sndCtlElemInfo
}

// Mixer represents an open ALSA mixer device handle.
type Mixer struct {
	file     *os.File
	cardInfo sndCtlCardInfo
	ctls     []*MixerCtl
	ctlMap   map[string][]*MixerCtl
}

// MixerOpen opens the control device of a sound card (/dev/snd/controlC<card>) and
// enumerates its controls.
func MixerOpen(card uint) (*Mixer, error) {
	path := fmt.Sprintf("/dev/snd/controlC%d", card)

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open mixer device %s: %w", path, err)
	}

	mixer := &Mixer{
		file:   file,
		ctlMap: make(map[string][]*MixerCtl),
	}

	if err := ioctl(mixer.file.Fd(), SNDRV_CTL_IOCTL_CARD_INFO, uintptr(unsafe.Pointer(&mixer.cardInfo))); err != nil {
		_ = mixer.Close()

		return nil, fmt.Errorf("ioctl CARD_INFO failed: %w", err)
	}

	if err := mixer.enumerate(); err != nil {
		_ = mixer.Close()

		return nil, fmt.Errorf("failed to enumerate controls: %w", err)
	}

	return mixer, nil
}

// Close closes the mixer device handle.
func (m *Mixer) Close() error {
	if m == nil || m.file == nil {
		return nil
	}

	err := m.file.Close()
	m.file = nil

	return err
}

// Name returns the name of the sound card.
func (m *Mixer) Name() string {
	if m == nil {
		return ""
	}

	return cString(m.cardInfo.Name[:])
}

// NumCtls returns the total number of controls found on the mixer.
func (m *Mixer) NumCtls() int {
	if m == nil {
		return 0
	}

	return len(m.ctls)
}

// Ctls returns the enumerated controls in kernel order.
func (m *Mixer) Ctls() []*MixerCtl {
	if m == nil {
		return nil
	}

	return m.ctls
}

// CtlByName returns the first control with exactly the given name.
// A missing control yields an error wrapping ErrCtlNotFound.
func (m *Mixer) CtlByName(name string) (*MixerCtl, error) {
	if m == nil {
		return nil, fmt.Errorf("mixer is nil")
	}

	ctls := m.ctlMap[name]
	if len(ctls) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCtlNotFound, name)
	}

	return ctls[0], nil
}

func (m *Mixer) enumerate() error {
	list := &sndCtlElemList{}

	// First call only reports the number of controls.
	if err := ioctl(m.file.Fd(), SNDRV_CTL_IOCTL_ELEM_LIST, uintptr(unsafe.Pointer(list))); err != nil {
		return fmt.Errorf("ioctl ELEM_LIST (get count) failed: %w", err)
	}

	if list.Count == 0 {
		return nil
	}

	ids := make([]sndCtlElemId, list.Count)
	list.Space = list.Count
	list.Pids = uintptr(unsafe.Pointer(&ids[0]))

	if err := ioctl(m.file.Fd(), SNDRV_CTL_IOCTL_ELEM_LIST, uintptr(unsafe.Pointer(list))); err != nil {
		return fmt.Errorf("ioctl ELEM_LIST (get ids) failed: %w", err)
	}

	m.ctls = make([]*MixerCtl, 0, list.Used)
	for i := uint32(0); i < list.Used; i++ {
		ctl := &MixerCtl{mixer: m}
		ctl.info.Id = ids[i]

		if err := ioctl(m.file.Fd(), SNDRV_CTL_IOCTL_ELEM_INFO, uintptr(unsafe.Pointer(&ctl.info))); err != nil {
			// Controls whose info cannot be read are not addressable anyway.
			continue
		}

		name := ctl.Name()
		m.ctls = append(m.ctls, ctl)
		m.ctlMap[name] = append(m.ctlMap[name], ctl)
	}

	return nil
}

// Name returns the control's name.
func (c *MixerCtl) Name() string {
	if c == nil {
		return ""
	}

	return cString(c.info.Id.Name[:])
}

// ID returns the control's numeric id, or the maximum uint32 for a nil control.
func (c *MixerCtl) ID() uint32 {
	if c == nil {
		return ^uint32(0)
	}

	return c.info.Id.Numid
}

// Type returns the value type of the control.
func (c *MixerCtl) Type() MixerCtlType {
	if c == nil {
		return SNDRV_CTL_ELEM_TYPE_UNKNOWN
	}

	return MixerCtlType(c.info.Typ)
}

// NumValues returns the number of values (channels) the control holds.
func (c *MixerCtl) NumValues() uint32 {
	if c == nil {
		return 0
	}

	return c.info.Count
}

// Value reads the value at index id of a boolean, integer, integer64, enumerated
// or bytes control.
func (c *MixerCtl) Value(id uint) (int, error) {
	ev, err := c.read(id)
	if err != nil {
		return 0, err
	}

	off, size := c.slot(id)
	b := ev.Value[off : off+size]

	switch size {
	case 1:
		return int(b[0]), nil
	case 4:
		return int(int32(binary.NativeEndian.Uint32(b))), nil
	default:
		return int(int64(binary.NativeEndian.Uint64(b))), nil
	}
}

// SetValue writes value at index id, keeping the other indices of the control
// unchanged.
func (c *MixerCtl) SetValue(id uint, value int) error {
	ev, err := c.read(id)
	if err != nil {
		return err
	}

	off, size := c.slot(id)
	b := ev.Value[off : off+size]

	switch size {
	case 1:
		b[0] = byte(value)
	case 4:
		binary.NativeEndian.PutUint32(b, uint32(int32(value)))
	default:
		binary.NativeEndian.PutUint64(b, uint64(int64(value)))
	}

	if err := ioctl(c.mixer.file.Fd(), SNDRV_CTL_IOCTL_ELEM_WRITE, uintptr(unsafe.Pointer(ev))); err != nil {
		return fmt.Errorf("ioctl ELEM_WRITE for %q failed: %w", c.Name(), err)
	}

	return nil
}

// read validates id and fetches the current value block of the control.
func (c *MixerCtl) read(id uint) (*sndCtlElemValue, error) {
	if c == nil || c.mixer == nil || c.mixer.file == nil {
		return nil, fmt.Errorf("mixer control is not valid")
	}

	if id >= uint(c.info.Count) {
		return nil, fmt.Errorf("value index %d out of range for %q (count %d)", id, c.Name(), c.info.Count)
	}

	switch c.Type() {
	case SNDRV_CTL_ELEM_TYPE_BOOLEAN, SNDRV_CTL_ELEM_TYPE_INTEGER, SNDRV_CTL_ELEM_TYPE_INTEGER64,
		SNDRV_CTL_ELEM_TYPE_ENUMERATED, SNDRV_CTL_ELEM_TYPE_BYTES:
	default:
		return nil, fmt.Errorf("control %q has unsupported type %d", c.Name(), c.Type())
	}

	ev := &sndCtlElemValue{Id: c.info.Id}
	if err := ioctl(c.mixer.file.Fd(), SNDRV_CTL_IOCTL_ELEM_READ, uintptr(unsafe.Pointer(ev))); err != nil {
		return nil, fmt.Errorf("ioctl ELEM_READ for %q failed: %w", c.Name(), err)
	}

	return ev, nil
}

// slot returns the byte offset and width of value index id inside the value union.
func (c *MixerCtl) slot(id uint) (off, size uint) {
	switch c.Type() {
	case SNDRV_CTL_ELEM_TYPE_BYTES:
		size = 1
	case SNDRV_CTL_ELEM_TYPE_ENUMERATED:
		size = 4
	case SNDRV_CTL_ELEM_TYPE_INTEGER64:
		size = 8
	default:
		size = uint(unsafe.Sizeof(clong(0)))
	}

	return id * size, size
}

// cString converts a C-style null-terminated byte array to a Go string.
func cString(b []byte) string {
	i := bytes.IndexByte(b, 0)
	if i == -1 {
		return string(b)
	}

	return string(b[:i])
}
