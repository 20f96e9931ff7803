package device

import (
	"io"
	"os"

	"github.com/oetiker/fat32expander/internal/fat32err"
)

const defaultSectorSize = 512

// FileDevice is the production Device: an open *os.File (regular image
// file or raw block device node) addressed with ReadAt/WriteAt, mirroring
// original_source/src/device.rs's Device (read_exact_at/write_all_at over
// a std::fs::File). Go's os.File.ReadAt/WriteAt already guarantee the
// full-buffer semantics Rust gets from FileExt, so no retry loop is needed.
type FileDevice struct {
	f          *os.File
	sectorSize uint32
	path       string
	release    func() error
}

// OpenFileDevice opens path for sector I/O. writable selects O_RDWR vs
// O_RDONLY, matching Device::open vs Device::open_readonly. On Windows, a
// writable open of a drive-letter path additionally locks and dismounts
// the volume first (openDeviceFile in file_windows.go), grounded on
// earentir-mkfat's device_windows.go::prepareWindowsDevice/
// openWindowsDevice; on every other platform it is a plain os.OpenFile.
func OpenFileDevice(path string, writable bool) (*FileDevice, error) {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR
	}
	f, release, err := openDeviceFile(path, flag, writable)
	if err != nil {
		return nil, fat32err.Wrap(fat32err.Io, err, "opening device "+path)
	}
	return &FileDevice{f: f, sectorSize: defaultSectorSize, path: path, release: release}, nil
}

func (d *FileDevice) SectorSize() uint32      { return d.sectorSize }
func (d *FileDevice) SetSectorSize(n uint32)  { d.sectorSize = n }
func (d *FileDevice) Path() string            { return d.path }

func (d *FileDevice) LengthSectors() (uint64, error) {
	sz, err := deviceSizeBytes(d.f)
	if err != nil {
		return 0, fat32err.Wrap(fat32err.Io, err, "determining device length")
	}
	return uint64(sz) / uint64(d.sectorSize), nil
}

func (d *FileDevice) ReadSectors(start uint64, count uint32) ([]byte, error) {
	buf := make([]byte, uint64(count)*uint64(d.sectorSize))
	off := int64(start) * int64(d.sectorSize)
	if _, err := io.ReadFull(io.NewSectionReader(d.f, off, int64(len(buf))), buf); err != nil {
		return nil, fat32err.AtSector(fat32err.Io, start, "reading sectors")
	}
	return buf, nil
}

func (d *FileDevice) WriteSectors(start uint64, data []byte) error {
	if uint32(len(data))%d.sectorSize != 0 {
		return fat32err.AtSector(fat32err.Io, start, "write buffer is not a multiple of the sector size")
	}
	off := int64(start) * int64(d.sectorSize)
	if _, err := d.f.WriteAt(data, off); err != nil {
		return fat32err.AtSector(fat32err.Io, start, "writing sectors")
	}
	return nil
}

func (d *FileDevice) ReadBytesAt(byteOffset uint64, size int) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(io.NewSectionReader(d.f, int64(byteOffset), int64(size)), buf); err != nil {
		return nil, fat32err.Wrap(fat32err.Io, err, "reading raw bytes")
	}
	return buf, nil
}

func (d *FileDevice) Sync() error {
	if err := d.f.Sync(); err != nil {
		return fat32err.Wrap(fat32err.Io, err, "syncing device")
	}
	return nil
}

func (d *FileDevice) Close() error {
	err := d.f.Close()
	if d.release != nil {
		if relErr := d.release(); relErr != nil && err == nil {
			err = relErr
		}
	}
	return err
}
