package fat32

import (
	"encoding/binary"

	"github.com/oetiker/fat32expander/internal/device"
	"github.com/oetiker/fat32expander/internal/fat32err"
)

// Byte offsets and signature constants for the FSInfo sector, ported from
// original_source/src/fat32/structs.rs's FSInfo impl.
const (
	offLeadSig   = 0x000
	offStrucSig  = 0x1E4
	offFreeCount = 0x1E8
	offNextFree  = 0x1EC
	offTrailSig  = 0x1FC

	// LeadSig is FSInfo's first signature word.
	LeadSig uint32 = 0x41615252
	// StrucSig is FSInfo's structure signature.
	StrucSig uint32 = 0x61417272
	// TrailSig is FSInfo's trailing signature.
	TrailSig uint32 = 0xAA550000
	// UnknownFree marks FreeCount/NextFree as not authoritative; the
	// resize engine leaves a FreeCount of this value unchanged.
	UnknownFree uint32 = 0xFFFFFFFF
)

// FSInfo is the 512-byte (or larger, matching the device's sector size)
// buffer at fs_info_sector, following the same byte-buffer-plus-accessor
// pattern as BootSector.
type FSInfo struct {
	raw []byte
}

// NewFSInfo wraps raw bytes (len(raw) must be >= 512) as an FSInfo.
func NewFSInfo(raw []byte) (*FSInfo, error) {
	if len(raw) < minBootSectorSize {
		return nil, fat32err.New(fat32err.BadFsInfo, "FSInfo buffer shorter than 512 bytes")
	}
	return &FSInfo{raw: raw}, nil
}

// Bytes returns the underlying buffer.
func (f *FSInfo) Bytes() []byte { return f.raw }

func (f *FSInfo) u32(off int) uint32         { return binary.LittleEndian.Uint32(f.raw[off : off+4]) }
func (f *FSInfo) putU32(off int, v uint32)   { binary.LittleEndian.PutUint32(f.raw[off:off+4], v) }

func (f *FSInfo) LeadSig() uint32   { return f.u32(offLeadSig) }
func (f *FSInfo) StrucSig() uint32  { return f.u32(offStrucSig) }
func (f *FSInfo) FreeCount() uint32 { return f.u32(offFreeCount) }
func (f *FSInfo) NextFree() uint32  { return f.u32(offNextFree) }
func (f *FSInfo) TrailSig() uint32  { return f.u32(offTrailSig) }

func (f *FSInfo) SetFreeCount(v uint32) { f.putU32(offFreeCount, v) }
func (f *FSInfo) SetNextFree(v uint32)  { f.putU32(offNextFree, v) }

// SignaturesValid reports whether all three FSInfo signatures hold,
// grounded on original_source/src/fat32/validation.rs::validate_fsinfo.
func (f *FSInfo) SignaturesValid() bool {
	return f.LeadSig() == LeadSig && f.StrucSig() == StrucSig && f.TrailSig() == TrailSig
}

// ReadFSInfo reads the FSInfo sector at the location the boot sector names.
func ReadFSInfo(dev device.Device, fsInfoSector uint16) (*FSInfo, error) {
	data, err := dev.ReadSectors(uint64(fsInfoSector), 1)
	if err != nil {
		return nil, fat32err.AtSector(fat32err.Io, uint64(fsInfoSector), "reading FSInfo sector")
	}
	return NewFSInfo(data)
}

// WriteFSInfo writes f back to the FSInfo sector location.
func WriteFSInfo(dev device.Device, f *FSInfo, fsInfoSector uint16) error {
	if err := dev.WriteSectors(uint64(fsInfoSector), f.raw); err != nil {
		return fat32err.AtSector(fat32err.Io, uint64(fsInfoSector), "writing FSInfo sector")
	}
	return nil
}
