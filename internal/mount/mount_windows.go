//go:build windows

package mount

// WindowsChecker is a stub: earentir-mkfat's own listMountedWindows
// (device_windows_stub.go) returns nil on non-Windows builds and the real
// Windows implementation never enumerates raw-device mounts either. It
// always reports not-mounted; a writable open of a drive-letter path
// instead locks and dismounts the volume (openDeviceFile in
// internal/device/file_windows.go), and fails if the volume cannot be
// locked.
type WindowsChecker struct{}

func NewWindowsChecker() *WindowsChecker { return &WindowsChecker{} }

func (WindowsChecker) IsMounted(string) (bool, string, error) { return false, "", nil }
