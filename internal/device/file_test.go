package device

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestFileDeviceReadWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	if err := os.WriteFile(path, make([]byte, 16*512), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	dev, err := OpenFileDevice(path, true)
	if err != nil {
		t.Fatalf("OpenFileDevice: %v", err)
	}
	defer dev.Close()

	if got := dev.SectorSize(); got != defaultSectorSize {
		t.Errorf("SectorSize() = %d, want %d", got, defaultSectorSize)
	}

	payload := bytes.Repeat([]byte{0x42}, 512)
	if err := dev.WriteSectors(3, payload); err != nil {
		t.Fatalf("WriteSectors: %v", err)
	}
	if err := dev.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	got, err := dev.ReadSectors(3, 1)
	if err != nil {
		t.Fatalf("ReadSectors: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("ReadSectors did not return what WriteSectors wrote")
	}

	lenSectors, err := dev.LengthSectors()
	if err != nil {
		t.Fatalf("LengthSectors: %v", err)
	}
	if lenSectors != 16 {
		t.Errorf("LengthSectors() = %d, want 16", lenSectors)
	}

	raw, err := dev.ReadBytesAt(3*512+10, 5)
	if err != nil {
		t.Fatalf("ReadBytesAt: %v", err)
	}
	if !bytes.Equal(raw, bytes.Repeat([]byte{0x42}, 5)) {
		t.Error("ReadBytesAt did not see the sector payload at a sub-sector offset")
	}
}

func TestFileDeviceRejectsUnalignedWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	if err := os.WriteFile(path, make([]byte, 4*512), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	dev, err := OpenFileDevice(path, true)
	if err != nil {
		t.Fatalf("OpenFileDevice: %v", err)
	}
	defer dev.Close()

	if err := dev.WriteSectors(0, make([]byte, 100)); err == nil {
		t.Fatal("WriteSectors accepted a buffer that isn't a multiple of the sector size")
	}
}

func TestFileDeviceReadOnlyRejectsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	if err := os.WriteFile(path, make([]byte, 4*512), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	dev, err := OpenFileDevice(path, false)
	if err != nil {
		t.Fatalf("OpenFileDevice: %v", err)
	}
	defer dev.Close()

	if err := dev.WriteSectors(0, make([]byte, 512)); err == nil {
		t.Fatal("WriteSectors succeeded on a read-only-opened FileDevice")
	}
}
