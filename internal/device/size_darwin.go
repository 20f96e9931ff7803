//go:build darwin

package device

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// DKIOCGETBLOCKSIZE and DKIOCGETBLOCKCOUNT, ported from earentir-mkfat's
// devsize_unix.go where they are used as the macOS/BSD fallback when
// seek-to-end and BLKGETSIZE64 are both unavailable (raw disk nodes).
const (
	dkiocGetBlockSize  = 0x40046418
	dkiocGetBlockCount = 0x40086419
)

func blockDeviceSizeDarwin(fd uintptr) (int64, error) {
	var blockSize uint32
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, dkiocGetBlockSize, uintptr(unsafe.Pointer(&blockSize))); errno != 0 {
		return 0, errno
	}
	var blockCount uint64
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, dkiocGetBlockCount, uintptr(unsafe.Pointer(&blockCount))); errno != 0 {
		return 0, errno
	}
	return int64(blockSize) * int64(blockCount), nil
}
