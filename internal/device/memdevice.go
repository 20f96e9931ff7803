package device

import (
	"io"

	"github.com/spf13/afero"

	"github.com/oetiker/fat32expander/internal/fat32err"
)

// MemDevice is an afero.MemMapFs-backed Device, the same role
// afero.NewMemMapFs() plays as the in-memory filesystem backend in
// aligator-GoFAT's fs_test.go — here wrapping a single in-memory file
// instead of a directory tree, sized and sector-addressed like FileDevice.
// Sync is a no-op (nothing to flush to real storage) but satisfies the
// same interface so resize engine code never branches on which Device it
// holds.
type MemDevice struct {
	fs         afero.Fs
	f          afero.File
	sectorSize uint32
	length     int64
}

// NewMemDevice creates a zero-filled in-memory device of the given size in
// bytes.
func NewMemDevice(sizeBytes int64) (*MemDevice, error) {
	fs := afero.NewMemMapFs()
	f, err := fs.Create("disk.img")
	if err != nil {
		return nil, fat32err.Wrap(fat32err.Io, err, "creating in-memory device")
	}
	if err := f.Truncate(sizeBytes); err != nil {
		return nil, fat32err.Wrap(fat32err.Io, err, "sizing in-memory device")
	}
	return &MemDevice{fs: fs, f: f, sectorSize: defaultSectorSize, length: sizeBytes}, nil
}

// NewMemDeviceFromBytes seeds an in-memory device with existing content,
// used by tests that construct a synthetic FAT32 image up front.
func NewMemDeviceFromBytes(data []byte) (*MemDevice, error) {
	d, err := NewMemDevice(int64(len(data)))
	if err != nil {
		return nil, err
	}
	if err := d.WriteSectorsRaw(0, data); err != nil {
		return nil, err
	}
	return d, nil
}

// WriteSectorsRaw bypasses the sector-size multiple check, used only by
// test setup to lay down an image before the device's sector size is
// bootstrapped from the boot sector.
func (d *MemDevice) WriteSectorsRaw(byteOffset int64, data []byte) error {
	if _, err := d.f.WriteAt(data, byteOffset); err != nil {
		return fat32err.Wrap(fat32err.Io, err, "seeding in-memory device")
	}
	return nil
}

func (d *MemDevice) SectorSize() uint32     { return d.sectorSize }
func (d *MemDevice) SetSectorSize(n uint32) { d.sectorSize = n }

func (d *MemDevice) LengthSectors() (uint64, error) {
	return uint64(d.length) / uint64(d.sectorSize), nil
}

func (d *MemDevice) ReadSectors(start uint64, count uint32) ([]byte, error) {
	buf := make([]byte, uint64(count)*uint64(d.sectorSize))
	off := int64(start) * int64(d.sectorSize)
	if _, err := io.ReadFull(io.NewSectionReader(d.f, off, int64(len(buf))), buf); err != nil {
		return nil, fat32err.AtSector(fat32err.Io, start, "reading sectors")
	}
	return buf, nil
}

func (d *MemDevice) WriteSectors(start uint64, data []byte) error {
	if uint32(len(data))%d.sectorSize != 0 {
		return fat32err.AtSector(fat32err.Io, start, "write buffer is not a multiple of the sector size")
	}
	off := int64(start) * int64(d.sectorSize)
	if _, err := d.f.WriteAt(data, off); err != nil {
		return fat32err.AtSector(fat32err.Io, start, "writing sectors")
	}
	return nil
}

func (d *MemDevice) ReadBytesAt(byteOffset uint64, size int) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(io.NewSectionReader(d.f, int64(byteOffset), int64(size)), buf); err != nil {
		return nil, fat32err.Wrap(fat32err.Io, err, "reading raw bytes")
	}
	return buf, nil
}

// Sync is a no-op: afero's MemMapFs holds everything in memory already.
func (d *MemDevice) Sync() error { return nil }

func (d *MemDevice) Close() error {
	return d.f.Close()
}

// Snapshot returns a full copy of the device's current bytes, used by
// tests checking P6 (dry-run leaves every byte unchanged) and P2
// (payload-preserved) via whole-device hashing.
func (d *MemDevice) Snapshot() ([]byte, error) {
	buf := make([]byte, d.length)
	if _, err := io.ReadFull(io.NewSectionReader(d.f, 0, d.length), buf); err != nil {
		return nil, fat32err.Wrap(fat32err.Io, err, "snapshotting in-memory device")
	}
	return buf, nil
}
