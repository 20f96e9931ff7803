//go:build darwin

package mount

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// DarwinChecker uses getfsstat(2), ported from earentir-mkfat's
// device_darwin.go (findDarwinDeviceForMount / listMountedDarwin), which
// already walks exactly this table to answer "what's mounted where" for
// the teacher's own device-safety checks.
type DarwinChecker struct{}

func NewDarwinChecker() *DarwinChecker { return &DarwinChecker{} }

func (DarwinChecker) IsMounted(path string) (bool, string, error) {
	n, err := unix.Getfsstat(nil, unix.MNT_NOWAIT)
	if err != nil || n <= 0 {
		return false, "", err
	}
	buf := make([]unix.Statfs_t, n)
	if _, err := unix.Getfsstat(buf, unix.MNT_NOWAIT); err != nil {
		return false, "", err
	}
	target := filepath.Clean(path)
	for _, st := range buf {
		from := cString(st.Mntfromname[:])
		if filepath.Clean(from) == target {
			return true, cString(st.Mntonname[:]), nil
		}
	}
	return false, "", nil
}

func cString(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}
