package resize

import (
	"github.com/oetiker/fat32expander/internal/device"
	"github.com/oetiker/fat32expander/internal/fat32"
	"github.com/oetiker/fat32expander/internal/fat32err"
)

// Extend runs the FAT Extender (spec.md §4.4): zero-fills FAT #1's new
// tail sectors, then mirrors the whole enlarged FAT #1 byte-for-byte onto
// every additional FAT copy, preserving invariant I2. Grounded on
// original_source/src/resize/executor.rs's init_new_fat_sectors +
// sync_fat_copies. A no-op when the plan didn't grow the FAT.
func Extend(dev device.Device, boot *fat32.BootSector, plan *Plan) error {
	if !plan.FATGrew {
		return nil
	}

	bps := int(boot.BytesPerSector())
	fat1Start := uint64(boot.ReservedSectors())

	zero := make([]byte, bps)
	for sectorOffset := plan.OldFATSize; sectorOffset < plan.NewFATSize; sectorOffset++ {
		sector := fat1Start + uint64(sectorOffset)
		if err := dev.WriteSectors(sector, zero); err != nil {
			return fat32err.AtSector(fat32err.Io, sector, "zero-filling new FAT sector")
		}
	}
	if err := dev.Sync(); err != nil {
		return fat32err.Wrap(fat32err.Io, err, "sync after zero-filling new FAT sectors")
	}

	for fatNum := uint32(1); fatNum < uint32(boot.NumFATs()); fatNum++ {
		destStart := fat1Start + uint64(fatNum)*uint64(plan.NewFATSize)
		data, err := dev.ReadSectors(fat1Start, plan.NewFATSize)
		if err != nil {
			return fat32err.AtSector(fat32err.Io, fat1Start, "reading enlarged FAT #1 to mirror")
		}
		if err := dev.WriteSectors(destStart, data); err != nil {
			return fat32err.AtSector(fat32err.Io, destStart, "mirroring FAT #1 onto additional FAT copy")
		}
	}
	if err := dev.Sync(); err != nil {
		return fat32err.Wrap(fat32err.Io, err, "sync after mirroring FAT copies")
	}

	return nil
}
