//go:build windows

package device

import (
	"fmt"
	"os"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

// FSCTL_LOCK_VOLUME/FSCTL_DISMOUNT_VOLUME/FSCTL_UNLOCK_VOLUME and
// IOCTL_STORAGE_GET_DEVICE_NUMBER, ported from earentir-mkfat's
// device_windows.go, where they back prepareWindowsDevice/openWindowsDevice
// for raw-device formatting. Adapted here to protect a resize instead: a
// filesystem cannot safely be resized while its volume is mounted, so a
// writable open locks and dismounts it first, then hands back an os.File
// wired to the already-open handle.
const (
	fsctlLockVolume      = 0x90018
	fsctlDismountVolume  = 0x90020
	fsctlUnlockVolume    = 0x9001c
	fileFlagWriteThrough = 0x80000000
)

// openDeviceFile opens path for sector I/O. A writable open of a
// drive-letter path (\\.\A:) is locked and dismounted first so the resize
// engine gets exclusive access to the raw volume; the returned release
// closure unlocks it. Read-only opens and non-drive-letter paths (already
// a \\.\PhysicalDriveN path, or a plain image file) skip locking entirely.
func openDeviceFile(path string, flag int, writable bool) (*os.File, func() error, error) {
	if !writable || !isDriveLetterPath(path) {
		f, err := os.OpenFile(path, flag, 0)
		if err != nil {
			return nil, nil, err
		}
		return f, nil, nil
	}

	volHandle, err := lockAndDismountVolume(path)
	if err != nil {
		return nil, nil, err
	}

	handle, err := windows.CreateFile(
		windows.StringToUTF16Ptr(path),
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0, // exclusive access
		nil,
		windows.OPEN_EXISTING,
		fileFlagWriteThrough,
		0,
	)
	if err != nil {
		unlockVolume(volHandle)
		return nil, nil, fmt.Errorf("cannot open device %s: %w (ensure you are running as administrator and no programs have the drive open)", path, err)
	}

	f := os.NewFile(uintptr(handle), path)
	if f == nil {
		windows.CloseHandle(handle)
		unlockVolume(volHandle)
		return nil, nil, fmt.Errorf("cannot create file from handle for %s", path)
	}

	release := func() error {
		unlockVolume(volHandle)
		return nil
	}
	return f, release, nil
}

func isDriveLetterPath(p string) bool {
	if len(p) < 6 || !strings.HasPrefix(p, `\\.\`) || p[5] != ':' {
		return false
	}
	letter := p[4:5]
	return letter >= "A" && letter <= "Z"
}

// lockAndDismountVolume opens, locks, and dismounts the volume at a
// drive-letter path so the raw device underneath can be written safely.
// Grounded on device_windows.go::prepareWindowsDevice.
func lockAndDismountVolume(path string) (windows.Handle, error) {
	volHandle, err := windows.CreateFile(
		windows.StringToUTF16Ptr(path),
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return 0, fmt.Errorf("cannot open volume %s (may need admin privileges): %w", path, err)
	}

	k32 := windows.NewLazySystemDLL("kernel32.dll")
	deviceIoControl := k32.NewProc("DeviceIoControl")

	var bytesReturned uint32
	if r1, _, lastErr := deviceIoControl.Call(uintptr(volHandle), fsctlLockVolume, 0, 0, 0, 0, uintptr(unsafe.Pointer(&bytesReturned)), 0); r1 == 0 {
		windows.CloseHandle(volHandle)
		if lastErr == windows.ERROR_NOT_SUPPORTED {
			return 0, nil
		}
		return 0, fmt.Errorf("cannot lock volume %s (volume may be in use - close all programs accessing it): %w", path, lastErr)
	}

	if r1, _, lastErr := deviceIoControl.Call(uintptr(volHandle), fsctlDismountVolume, 0, 0, 0, 0, uintptr(unsafe.Pointer(&bytesReturned)), 0); r1 == 0 {
		deviceIoControl.Call(uintptr(volHandle), fsctlUnlockVolume, 0, 0, 0, 0, uintptr(unsafe.Pointer(&bytesReturned)), 0)
		windows.CloseHandle(volHandle)
		if lastErr != windows.ERROR_NOT_SUPPORTED && lastErr != windows.ERROR_NOT_LOCKED {
			return 0, fmt.Errorf("cannot dismount volume %s: %w", path, lastErr)
		}
		return 0, nil
	}

	return volHandle, nil
}

func unlockVolume(h windows.Handle) {
	if h == 0 {
		return
	}
	k32 := windows.NewLazySystemDLL("kernel32.dll")
	deviceIoControl := k32.NewProc("DeviceIoControl")
	var bytesReturned uint32
	deviceIoControl.Call(uintptr(h), fsctlUnlockVolume, 0, 0, 0, 0, uintptr(unsafe.Pointer(&bytesReturned)), 0)
	windows.CloseHandle(h)
}
