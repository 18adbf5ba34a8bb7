package alsa

// sndMask is a bitmask for hardware parameters.
type sndMask struct {
	Bits [8]uint32
}

// sndInterval represents a range of values for a hardware parameter.
type sndInterval struct {
	MinVal uint32
	MaxVal uint32
	Flags  uint32
}

// sndPcmHwParams contains hardware parameters for a PCM device.
type sndPcmHwParams struct {
	Flags     uint32
	Masks     [3]sndMask
	Mres      [5]sndMask // reserved
	Intervals [12]sndInterval
	Ires      [9]sndInterval // reserved
	Rmask     uint32
	Cmask     uint32
	Info      uint32
	Msbits    uint32
	RateNum   uint32
	RateDen   uint32
	FifoSize  sndPcmUframesT
	Reserved  [64]byte
}

// sndXferi is for interleaved read/write operations.
// int and uintptr follow the kernel's ssize_t and void* on every word size.
type sndXferi struct {
	Result int
	Buf    uintptr
	Frames sndPcmUframesT
}

// sndCtlCardInfo contains general information about a sound card.
type sndCtlCardInfo struct {
	Card       int32
	Pad        int32
	Id         [16]byte
	Driver     [16]byte
	Name       [32]byte
	Longname   [80]byte
	Reserved_  [16]byte
	Mixername  [80]byte
	Components [128]byte
}

// sndCtlElemId identifies a single control element.
type sndCtlElemId struct {
	Numid     uint32
	Iface     int32
	Device    uint32
	Subdevice uint32
	Name      [44]byte
	Index     uint32
}

// sndCtlElemInfo contains metadata about a control element.
type sndCtlElemInfo struct {
	Id     sndCtlElemId
	Typ    int32
	Access uint32
	Count  uint32
	Owner  int32
	// C union, sized to its largest member.
	Value    [128]byte
	Reserved [64]byte
}

// sndCtlElemList is used to enumerate control elements.
type sndCtlElemList struct {
	Offset   uint32
	Space    uint32
	Used     uint32
	Count    uint32
	Pids     uintptr // *sndCtlElemId
	Reserved [50]byte
}
