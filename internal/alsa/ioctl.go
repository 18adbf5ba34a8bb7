package alsa

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl performs a generic ioctl syscall.
func ioctl(fd uintptr, req uintptr, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, arg)
	if errno != 0 {
		return errno
	}

	return nil
}

const (
	iocNone  = 0
	iocWrite = 1
	iocRead  = 2

	iocNrbits    = 8
	iocTypebits  = 8
	iocSizebits  = 14
	iocNrshift   = 0
	iocTypeshift = iocNrshift + iocNrbits
	iocSizeshift = iocTypeshift + iocTypebits
	iocDirshift  = iocSizeshift + iocSizebits
)

// ioc builds an ioctl request code the way the kernel's _IOC macro does.
func ioc(dir, typ, nr, size uintptr) uintptr {
	return (dir << iocDirshift) | (typ << iocTypeshift) | (nr << iocNrshift) | (size << iocSizeshift)
}

var (
	// PCM IOCTLs ('A')
	SNDRV_PCM_IOCTL_HW_REFINE     = ioc(iocRead|iocWrite, 'A', 0x10, unsafe.Sizeof(sndPcmHwParams{}))
	SNDRV_PCM_IOCTL_HW_PARAMS     = ioc(iocRead|iocWrite, 'A', 0x11, unsafe.Sizeof(sndPcmHwParams{}))
	SNDRV_PCM_IOCTL_HW_FREE       = ioc(iocNone, 'A', 0x12, 0)
	SNDRV_PCM_IOCTL_SW_PARAMS     = ioc(iocRead|iocWrite, 'A', 0x13, unsafe.Sizeof(sndPcmSwParams{}))
	SNDRV_PCM_IOCTL_PREPARE       = ioc(iocNone, 'A', 0x40, 0)
	SNDRV_PCM_IOCTL_DROP          = ioc(iocNone, 'A', 0x43, 0)
	SNDRV_PCM_IOCTL_WRITEI_FRAMES = ioc(iocWrite, 'A', 0x50, unsafe.Sizeof(sndXferi{}))

	// Control IOCTLs ('U')
	SNDRV_CTL_IOCTL_CARD_INFO  = ioc(iocRead, 'U', 0x01, unsafe.Sizeof(sndCtlCardInfo{}))
	SNDRV_CTL_IOCTL_ELEM_LIST  = ioc(iocRead|iocWrite, 'U', 0x10, unsafe.Sizeof(sndCtlElemList{}))
	SNDRV_CTL_IOCTL_ELEM_INFO  = ioc(iocRead|iocWrite, 'U', 0x11, unsafe.Sizeof(sndCtlElemInfo{}))
	SNDRV_CTL_IOCTL_ELEM_READ  = ioc(iocRead|iocWrite, 'U', 0x12, unsafe.Sizeof(sndCtlElemValue{}))
	SNDRV_CTL_IOCTL_ELEM_WRITE = ioc(iocRead|iocWrite, 'U', 0x13, unsafe.Sizeof(sndCtlElemValue{}))
)
