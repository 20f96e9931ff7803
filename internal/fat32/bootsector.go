package fat32

import (
	"encoding/binary"

	"github.com/oetiker/fat32expander/internal/device"
	"github.com/oetiker/fat32expander/internal/fat32err"
)

// Byte offsets into the boot sector, per spec.md's BPB table.
const (
	offBytesPerSector    = 0x0B
	offSectorsPerCluster = 0x0D
	offReservedSectors   = 0x0E
	offNumFATs           = 0x10
	offTotalSectors16    = 0x13
	offMediaType         = 0x15
	offTotalSectors32    = 0x20
	offFATSize32         = 0x24
	offExtFlags          = 0x28
	offFSVersion         = 0x2A
	offRootCluster       = 0x2C
	offFSInfoSector      = 0x30
	offBackupBootSector  = 0x32
	offDriveNumber       = 0x40
	offBootSig           = 0x42
	offVolumeID          = 0x43
	offVolumeLabel       = 0x47
	offFSType            = 0x52
	offSignature         = 0x1FE

	minBootSectorSize = 512

	// BootSignatureValid is the normal boot-sector trailing signature.
	BootSignatureValid = 0xAA55
	// BootSignatureInvalidated marks the critical window where the
	// filesystem must be rejected by any other FAT driver.
	BootSignatureInvalidated = 0x0000
)

// BootSector is the 512-byte (or larger, for 4096-B-sector geometries)
// buffer at sector 0, accessed only through typed offset methods — never
// indexed directly by callers.
type BootSector struct {
	raw []byte
}

// NewBootSector wraps raw bytes (len(raw) must be >= 512) as a BootSector.
func NewBootSector(raw []byte) (*BootSector, error) {
	if len(raw) < minBootSectorSize {
		return nil, fat32err.New(fat32err.BadGeometry, "boot sector buffer shorter than 512 bytes")
	}
	return &BootSector{raw: raw}, nil
}

// Bytes returns the underlying buffer.
func (b *BootSector) Bytes() []byte { return b.raw }

func (b *BootSector) u16(off int) uint16 { return binary.LittleEndian.Uint16(b.raw[off : off+2]) }
func (b *BootSector) u32(off int) uint32 { return binary.LittleEndian.Uint32(b.raw[off : off+4]) }
func (b *BootSector) putU16(off int, v uint16) { binary.LittleEndian.PutUint16(b.raw[off:off+2], v) }
func (b *BootSector) putU32(off int, v uint32) { binary.LittleEndian.PutUint32(b.raw[off:off+4], v) }

func (b *BootSector) BytesPerSector() uint16    { return b.u16(offBytesPerSector) }
func (b *BootSector) SectorsPerCluster() uint8  { return b.raw[offSectorsPerCluster] }
func (b *BootSector) ReservedSectors() uint16   { return b.u16(offReservedSectors) }
func (b *BootSector) NumFATs() uint8            { return b.raw[offNumFATs] }
func (b *BootSector) TotalSectors16() uint16    { return b.u16(offTotalSectors16) }
func (b *BootSector) MediaType() byte           { return b.raw[offMediaType] }
func (b *BootSector) TotalSectors32() uint32    { return b.u32(offTotalSectors32) }
func (b *BootSector) FATSize32() uint32         { return b.u32(offFATSize32) }
func (b *BootSector) RootCluster() uint32       { return b.u32(offRootCluster) }
func (b *BootSector) FSInfoSector() uint16      { return b.u16(offFSInfoSector) }
func (b *BootSector) BackupBootSector() uint16  { return b.u16(offBackupBootSector) }
func (b *BootSector) VolumeID() uint32          { return b.u32(offVolumeID) }

func (b *BootSector) SetTotalSectors32(v uint32) { b.putU32(offTotalSectors32, v) }
func (b *BootSector) SetFATSize32(v uint32)      { b.putU32(offFATSize32, v) }

// Signature returns the raw trailing signature word.
func (b *BootSector) Signature() uint16 { return b.u16(offSignature) }

// IsSignatureValid reports whether the signature is 0xAA55.
func (b *BootSector) IsSignatureValid() bool { return b.Signature() == BootSignatureValid }

// IsSignatureInvalidated reports whether the signature has been zeroed for
// the critical window described in spec.md §4.5 step 6.
func (b *BootSector) IsSignatureInvalidated() bool { return b.Signature() == BootSignatureInvalidated }

// InvalidateSignature zeroes the trailing signature bytes, entering the
// danger zone. Callers must write and sync immediately after calling this.
func (b *BootSector) InvalidateSignature() { b.putU16(offSignature, BootSignatureInvalidated) }

// RestoreSignature writes back the normal 0xAA55 trailing signature.
func (b *BootSector) RestoreSignature() { b.putU16(offSignature, BootSignatureValid) }

// TotalSectors returns the authoritative sector count: total_sectors_32,
// the only field FAT32 ever populates (total_sectors_16 must be 0).
func (b *BootSector) TotalSectors() uint64 { return uint64(b.TotalSectors32()) }

// FirstDataSector computes fds = rsvd + nfats*fsz.
func (b *BootSector) FirstDataSector() uint64 {
	return uint64(b.ReservedSectors()) + uint64(b.NumFATs())*uint64(b.FATSize32())
}

// DataClusters computes the number of data clusters this geometry
// currently supports.
func (b *BootSector) DataClusters() uint64 {
	total := b.TotalSectors()
	fds := b.FirstDataSector()
	if total <= fds {
		return 0
	}
	return (total - fds) / uint64(b.SectorsPerCluster())
}

// ClusterToSector maps a cluster index to its first physical sector.
func (b *BootSector) ClusterToSector(c ClusterID) SectorNum {
	return c.Sector(SectorNum(b.FirstDataSector()), b.SectorsPerCluster())
}

// BytesPerCluster is bps*spc.
func (b *BootSector) BytesPerCluster() uint32 {
	return uint32(b.BytesPerSector()) * uint32(b.SectorsPerCluster())
}

// Clone returns a deep copy of the boot sector buffer.
func (b *BootSector) Clone() *BootSector {
	cp := make([]byte, len(b.raw))
	copy(cp, b.raw)
	return &BootSector{raw: cp}
}

// ReadBootSector reads sector 0 and bootstraps the device's sector size
// from its bytes_per_sector field. Only bytes_per_sector is checked; the
// trailing signature is not, so a mid-resize (0x0000) boot sector is
// returned as-is. Load performs the signature check. Used by the info
// subcommand.
func ReadBootSector(dev device.Device) (*BootSector, error) {
	return readBootSector(dev, false)
}

// ReadBootSectorForRecovery reads sector 0 exactly as ReadBootSector does,
// bootstrapping the device's sector size from the bytes_per_sector field
// and not checking the trailing signature. The resize executor uses it to
// inspect a possibly mid-resize filesystem.
func ReadBootSectorForRecovery(dev device.Device) (*BootSector, error) {
	return readBootSector(dev, true)
}

func readBootSector(dev device.Device, allowInvalidated bool) (*BootSector, error) {
	// bytes_per_sector can be at most 4096; read that much up front so we
	// can parse the BPB fields before the device's notion of sector size
	// is known at all.
	probe, err := dev.ReadBytesAt(0, 4096)
	if err != nil {
		return nil, fat32err.Wrap(fat32err.Io, err, "reading boot sector probe")
	}
	boot, err := NewBootSector(probe)
	if err != nil {
		return nil, err
	}
	bps := boot.BytesPerSector()
	if err := validSectorSize(bps); err != nil {
		return nil, err
	}
	dev.SetSectorSize(uint32(bps))
	return NewBootSector(probe[:bps])
}

func validSectorSize(bps uint16) error {
	switch bps {
	case 512, 1024, 2048, 4096:
		return nil
	default:
		return fat32err.AtField(fat32err.BadGeometry, "bytes_per_sector", "not one of 512/1024/2048/4096")
	}
}

// WriteBootSector writes the primary boot sector (sector 0).
func WriteBootSector(dev device.Device, b *BootSector) error {
	if err := dev.WriteSectors(0, b.raw); err != nil {
		return fat32err.Wrap(fat32err.Io, err, "writing boot sector")
	}
	return nil
}

// ReadBackupBootSector reads the backup boot sector at the sector number
// the primary names.
func ReadBackupBootSector(dev device.Device, backupSector uint16) (*BootSector, error) {
	data, err := dev.ReadSectors(uint64(backupSector), 1)
	if err != nil {
		return nil, fat32err.AtSector(fat32err.Io, uint64(backupSector), "reading backup boot sector")
	}
	return NewBootSector(data)
}

// WriteBackupBootSector writes b to the backup boot sector location.
func WriteBackupBootSector(dev device.Device, b *BootSector, backupSector uint16) error {
	if err := dev.WriteSectors(uint64(backupSector), b.raw); err != nil {
		return fat32err.AtSector(fat32err.Io, uint64(backupSector), "writing backup boot sector")
	}
	return nil
}

// BootSectorsMatch compares primary and backup byte-for-byte, except that
// a primary with an invalidated signature is allowed to differ from the
// backup only in the signature word (I4's carve-out).
func BootSectorsMatch(primary, backup *BootSector) bool {
	if len(primary.raw) != len(backup.raw) {
		return false
	}
	if primary.IsSignatureValid() {
		for i := range primary.raw {
			if i == offSignature || i == offSignature+1 {
				continue
			}
			if primary.raw[i] != backup.raw[i] {
				return false
			}
		}
		return backup.IsSignatureValid()
	}
	for i := range primary.raw {
		if i == offSignature || i == offSignature+1 {
			continue
		}
		if primary.raw[i] != backup.raw[i] {
			return false
		}
	}
	return true
}
