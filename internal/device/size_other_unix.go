//go:build !windows && !darwin

package device

import "fmt"

// blockDeviceSizeDarwin has no equivalent outside Darwin; on Linux and
// other Unix targets blockDeviceSizeLinux already covers raw block
// devices, so this stub only fires if BLKGETSIZE64 itself failed.
func blockDeviceSizeDarwin(fd uintptr) (int64, error) {
	return 0, fmt.Errorf("cannot determine device size for fd %d", fd)
}
