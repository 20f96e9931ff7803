//go:build linux

package mount

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMountsFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "mounts")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestProcMountsCheckerFindsMountedDevice(t *testing.T) {
	path := writeMountsFile(t, "/dev/sda1 / ext4 rw 0 0\n/dev/fakeloop0 /mnt/usb vfat rw 0 0\n")
	c := &ProcMountsChecker{MountsPath: path}

	mounted, at, err := c.IsMounted("/dev/fakeloop0")
	if err != nil {
		t.Fatalf("IsMounted: %v", err)
	}
	if !mounted {
		t.Fatal("IsMounted = false, want true for a device listed in /proc/mounts")
	}
	if at != "/mnt/usb" {
		t.Errorf("mount point = %q, want /mnt/usb", at)
	}
}

func TestProcMountsCheckerMissesUnmountedDevice(t *testing.T) {
	path := writeMountsFile(t, "/dev/sda1 / ext4 rw 0 0\n")
	c := &ProcMountsChecker{MountsPath: path}

	mounted, _, err := c.IsMounted("/dev/fakeloop0")
	if err != nil {
		t.Fatalf("IsMounted: %v", err)
	}
	if mounted {
		t.Error("IsMounted = true for a device absent from /proc/mounts")
	}
}

func TestProcMountsCheckerMissingFile(t *testing.T) {
	c := &ProcMountsChecker{MountsPath: filepath.Join(t.TempDir(), "does-not-exist")}
	if _, _, err := c.IsMounted("/dev/whatever"); err == nil {
		t.Fatal("IsMounted succeeded reading a nonexistent mounts file")
	}
}
