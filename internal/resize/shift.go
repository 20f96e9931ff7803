package resize

import (
	"github.com/oetiker/fat32expander/internal/device"
	"github.com/oetiker/fat32expander/internal/fat32"
	"github.com/oetiker/fat32expander/internal/fat32err"
	"github.com/oetiker/fat32expander/internal/progress"
)

// ShiftResult reports what the Shifter actually moved.
type ShiftResult struct {
	ClustersMoved int
	BytesMoved    uint64
}

// Shift runs the Shifter (spec.md §4.3): copies every in-use cluster of
// the old filesystem, from the highest cluster down to cluster 2, from its
// old physical sector to its new one. Grounded on
// original_source/src/resize/relocator.rs's plan_relocation +
// execute_relocation, generalized with the dry-run flag spec.md requires
// and a progress.Reporter in place of relocator.rs's eprintln! calls.
//
// fat is FAT #1, read once by the caller and never re-read mid-shift: the
// shifter only consults it to skip clusters already known free, and
// cluster numbers never change, so a stale in-memory copy cannot cause it
// to skip a cluster it must copy.
func Shift(dev device.Device, boot *fat32.BootSector, fat *fat32.Table, plan *Plan, dryRun bool, rep progress.Reporter) (ShiftResult, error) {
	var result ShiftResult
	if !plan.FATGrew {
		return result, nil
	}

	spc := uint32(boot.SectorsPerCluster())
	oldFDS := fat32.SectorNum(plan.OldFDS)
	newFDS := fat32.SectorNum(plan.NewFDS)

	// Descending cluster-index order: start at the highest in-use
	// cluster of the old filesystem, walk down to the first affected
	// cluster. A low-to-high copy could overwrite sectors that are
	// still the read source for a cluster not yet moved.
	highest := plan.FirstAffectedCluster + plan.OldDataClusters - 1
	total := int(highest) - int(plan.FirstAffectedCluster) + 1
	if total < 0 {
		total = 0
	}
	rep.Phase(progress.PhaseShift, total)

	for c := fat32.ClusterID(highest); c >= fat32.ClusterID(plan.FirstAffectedCluster); c-- {
		if int(c) < int(fat.Len()) {
			entry := fat.Entry(c)
			if fat32.EntryIsFree(entry) {
				rep.Step(progress.PhaseShift, 1, "cluster "+itoa(uint32(c))+" free, skipped")
				continue
			}
		}

		src := c.Sector(oldFDS, uint8(spc))
		dst := c.Sector(newFDS, uint8(spc))

		data, err := dev.ReadSectors(uint64(src), spc)
		if err != nil {
			return result, fat32err.AtSector(fat32err.Io, uint64(src), "reading cluster during data shift")
		}

		if !dryRun {
			if err := dev.WriteSectors(uint64(dst), data); err != nil {
				return result, fat32err.AtSector(fat32err.Io, uint64(dst), "writing cluster during data shift")
			}
		}

		result.ClustersMoved++
		result.BytesMoved += uint64(len(data))
		rep.Step(progress.PhaseShift, 1, "moved cluster "+itoa(uint32(c)))

		if !dryRun && result.ClustersMoved%1024 == 0 {
			if err := dev.Sync(); err != nil {
				return result, fat32err.Wrap(fat32err.Io, err, "periodic sync during data shift")
			}
		}
	}

	if !dryRun {
		if err := dev.Sync(); err != nil {
			return result, fat32err.Wrap(fat32err.Io, err, "sync after data shift")
		}
	}

	return result, nil
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
