//go:build !windows

package device

import "os"

// openDeviceFile is the non-Windows path: a plain OS open, no volume
// locking concept applies to /dev block device nodes the way it does on
// Windows (see file_windows.go).
func openDeviceFile(path string, flag int, writable bool) (*os.File, func() error, error) {
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, nil, err
	}
	return f, nil, nil
}
