package fat32_test

import (
	"testing"

	"github.com/oetiker/fat32expander/internal/device"
	"github.com/oetiker/fat32expander/internal/fat32"
	"github.com/oetiker/fat32expander/internal/fat32err"
	"github.com/oetiker/fat32expander/internal/fat32test"
	"github.com/oetiker/fat32expander/internal/mount"
)

// offSignature mirrors the unexported offset of the same name in
// internal/fat32/bootsector.go; duplicated here because this file lives
// in the external fat32_test package to avoid an import cycle through
// fat32test (which itself imports fat32).
const offSignature = 0x1FE

// minimalImage builds the smallest fixture that clears the FAT32 65525-
// cluster floor, for tests that only care about pass/fail of a single
// check.
func minimalImage(t *testing.T) *device.MemDevice {
	t.Helper()
	dev, err := fat32test.Build(fat32test.Options{TotalSectors: 70000}, nil)
	if err != nil {
		t.Fatalf("fat32test.Build: %v", err)
	}
	return dev
}

func TestLoadSucceedsOnFreshImage(t *testing.T) {
	dev := minimalImage(t)
	defer dev.Close()

	v, err := fat32.Load(dev, fat32.LoadOptions{SkipMountCheck: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.Boot.DataClusters() < 65525 {
		t.Errorf("DataClusters() = %d, want >= 65525", v.Boot.DataClusters())
	}
	if !v.Info.SignaturesValid() {
		t.Error("FSInfo signatures invalid on a freshly built image")
	}
}

func TestLoadRejectsMounted(t *testing.T) {
	dev := minimalImage(t)
	defer dev.Close()

	mounter := stubMounter{mounted: true, at: "/mnt/test"}
	_, err := fat32.Load(dev, fat32.LoadOptions{Mounter: mounter, DevicePath: "/dev/whatever"})
	assertKindIs(t, err, "mounted")
}

func TestLoadRejectsBadSignature(t *testing.T) {
	dev := minimalImage(t)
	defer dev.Close()

	raw, err := dev.ReadBytesAt(0, 512)
	if err != nil {
		t.Fatalf("ReadBytesAt: %v", err)
	}
	raw[offSignature] = 0x00
	raw[offSignature+1] = 0x01 // neither 0xAA55 nor the invalidated 0x0000
	if err := dev.WriteSectors(0, raw); err != nil {
		t.Fatalf("WriteSectors: %v", err)
	}

	_, err = fat32.Load(dev, fat32.LoadOptions{SkipMountCheck: true})
	if err == nil {
		t.Fatal("Load succeeded on a corrupted boot signature")
	}
}

func TestLoadRejectsBackupMismatch(t *testing.T) {
	dev := minimalImage(t)
	defer dev.Close()

	backup, err := dev.ReadBytesAt(uint64(backupBootSectorOffsetForTest(dev))*uint64(dev.SectorSize()), int(dev.SectorSize()))
	if err != nil {
		t.Fatalf("ReadBytesAt: %v", err)
	}
	backup[13] ^= 0xFF // corrupt sectors_per_cluster in the backup only
	if err := dev.WriteSectors(6, backup); err != nil {
		t.Fatalf("WriteSectors: %v", err)
	}

	_, err = fat32.Load(dev, fat32.LoadOptions{SkipMountCheck: true})
	if err == nil {
		t.Fatal("Load succeeded with a corrupted backup boot sector")
	}
}

// backupBootSectorOffsetForTest hardcodes sector 6, matching
// fat32test.Build's fixed layout, to avoid re-deriving it from the boot
// sector the test is deliberately about to corrupt.
func backupBootSectorOffsetForTest(_ *device.MemDevice) uint64 { return 6 }

func TestLoadRejectsBadFSInfo(t *testing.T) {
	dev := minimalImage(t)
	defer dev.Close()

	fsinfo := make([]byte, dev.SectorSize())
	if err := dev.WriteSectors(1, fsinfo); err != nil {
		t.Fatalf("WriteSectors: %v", err)
	}

	_, err := fat32.Load(dev, fat32.LoadOptions{SkipMountCheck: true})
	assertKindIs(t, err, "bad_fsinfo")
}

func TestLoadForRecoveryToleratesInvalidatedSignature(t *testing.T) {
	dev := minimalImage(t)
	defer dev.Close()

	raw, err := dev.ReadBytesAt(0, int(dev.SectorSize()))
	if err != nil {
		t.Fatalf("ReadBytesAt: %v", err)
	}
	raw[offSignature] = 0x00
	raw[offSignature+1] = 0x00
	if err := dev.WriteSectors(0, raw); err != nil {
		t.Fatalf("WriteSectors: %v", err)
	}

	if _, err := fat32.LoadForRecovery(dev); err != nil {
		t.Fatalf("LoadForRecovery rejected an invalidated-signature image: %v", err)
	}
}

type stubMounter struct {
	mounted bool
	at      string
	err     error
}

func (s stubMounter) IsMounted(string) (bool, string, error) { return s.mounted, s.at, s.err }

var _ mount.Checker = stubMounter{}

func assertKindIs(t *testing.T, err error, wantKind string) {
	t.Helper()
	if err == nil {
		t.Fatalf("got nil error, want kind %s", wantKind)
	}
	kind, ok := fat32err.Of(err)
	if !ok {
		t.Fatalf("error has no fat32err.Kind: %v", err)
	}
	if kind.String() != wantKind {
		t.Fatalf("error kind = %s, want %s (err: %v)", kind.String(), wantKind, err)
	}
}
