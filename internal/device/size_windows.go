//go:build windows

package device

import (
	"io"
	"os"
)

// deviceSizeBytes on Windows only supports regular image files, matching
// earentir-mkfat's devsize_windows.go: raw \\.\PhysicalDriveN probing is
// not implemented, the same limitation the teacher documents.
func deviceSizeBytes(f *os.File) (int64, error) {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return size, nil
}
