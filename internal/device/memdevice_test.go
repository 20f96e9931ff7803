package device

import (
	"bytes"
	"testing"
)

func TestMemDeviceReadWriteAndSnapshot(t *testing.T) {
	dev, err := NewMemDevice(8 * 512)
	if err != nil {
		t.Fatalf("NewMemDevice: %v", err)
	}
	defer dev.Close()

	payload := bytes.Repeat([]byte{0x7E}, 512)
	if err := dev.WriteSectors(2, payload); err != nil {
		t.Fatalf("WriteSectors: %v", err)
	}

	got, err := dev.ReadSectors(2, 1)
	if err != nil {
		t.Fatalf("ReadSectors: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("ReadSectors did not return what WriteSectors wrote")
	}

	snap, err := dev.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap) != 8*512 {
		t.Errorf("Snapshot length = %d, want %d", len(snap), 8*512)
	}
	if !bytes.Equal(snap[2*512:3*512], payload) {
		t.Error("Snapshot does not reflect a prior WriteSectors call")
	}
}

func TestNewMemDeviceFromBytesSeedsContent(t *testing.T) {
	seed := bytes.Repeat([]byte{0x11}, 4*512)
	dev, err := NewMemDeviceFromBytes(seed)
	if err != nil {
		t.Fatalf("NewMemDeviceFromBytes: %v", err)
	}
	defer dev.Close()

	got, err := dev.ReadSectors(0, 4)
	if err != nil {
		t.Fatalf("ReadSectors: %v", err)
	}
	if !bytes.Equal(got, seed) {
		t.Error("NewMemDeviceFromBytes did not seed the device with the given bytes")
	}
}

func TestMemDeviceLengthSectors(t *testing.T) {
	dev, err := NewMemDevice(20 * 512)
	if err != nil {
		t.Fatalf("NewMemDevice: %v", err)
	}
	defer dev.Close()

	n, err := dev.LengthSectors()
	if err != nil {
		t.Fatalf("LengthSectors: %v", err)
	}
	if n != 20 {
		t.Errorf("LengthSectors() = %d, want 20", n)
	}
}
