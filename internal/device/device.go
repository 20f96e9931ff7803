// Package device defines the sector-addressed block device contract the
// resize engine runs against, grounded on original_source/src/device.rs's
// Device wrapper: open, length, sector-aligned read/write, sync, plus the
// raw-byte-offset escape hatch the loader needs before the sector size is
// known.
package device

// Device is the collaborator contract spec.md §6 names: open/length/
// read/write/sync over sector-aligned ranges. Implementations never return
// partial reads or writes; short I/O is reported as an error.
type Device interface {
	// SectorSize returns the device's current notion of bytes per sector.
	// It starts at a default (512) until SetSectorSize is called once the
	// boot sector's bytes_per_sector field has been read.
	SectorSize() uint32

	// SetSectorSize updates the device's sector size, used once by the
	// loader after parsing the boot sector's BPB.
	SetSectorSize(n uint32)

	// LengthSectors reports the device's total addressable length, in
	// units of the current sector size.
	LengthSectors() (uint64, error)

	// ReadSectors reads count sectors starting at sector start.
	ReadSectors(start uint64, count uint32) ([]byte, error)

	// WriteSectors writes data starting at sector start. len(data) must be
	// a multiple of SectorSize().
	WriteSectors(start uint64, data []byte) error

	// ReadBytesAt reads size raw bytes at a byte offset, used only to
	// bootstrap sector size from the boot sector before it is known.
	ReadBytesAt(byteOffset uint64, size int) ([]byte, error)

	// Sync is a durability barrier: it must not return until every prior
	// write is durable on the underlying storage.
	Sync() error

	// Close releases the underlying handle.
	Close() error
}
