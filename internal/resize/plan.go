// Package resize implements the growth pipeline spec.md §4 describes:
// Planner, Shifter, FAT Extender, checkpoint-backed recovery orchestrator,
// and Finalizer, wired together by Run (executor.go).
package resize

import (
	"github.com/oetiker/fat32expander/internal/fat32"
	"github.com/oetiker/fat32expander/internal/fat32err"
)

// Plan is spec.md §3's in-memory Plan descriptor: everything the Shifter,
// FAT Extender and Finalizer need, computed once by Compute and never
// recomputed mid-pipeline (the checkpoint's sanity gate exists precisely
// so a resumed run recomputes it fresh and compares).
type Plan struct {
	OldFDS       uint64
	NewFDS       uint64
	ShiftSectors uint64
	FATGrew      bool

	OldTotalSectors uint32
	NewTotalSectors uint32
	OldFATSize      uint32
	NewFATSize      uint32

	OldDataClusters uint32
	NewDataClusters uint32

	FirstAffectedCluster uint32
	LastAffectedCluster  uint32
}

// Compute runs the Planner (spec.md §4.2), grounded on
// original_source/src/resize/calculator.rs::calculate_new_size plus
// calculate_fat_size's fatgen103 algorithm.
func Compute(boot *fat32.BootSector, deviceSectors uint64) (*Plan, error) {
	oldTotal := uint64(boot.TotalSectors32())
	oldFATSize := boot.FATSize32()
	oldDataClusters := uint32(boot.DataClusters())

	spc := uint64(boot.SectorsPerCluster())
	rsvd := uint64(boot.ReservedSectors())
	nfats := uint64(boot.NumFATs())
	bps := uint64(boot.BytesPerSector())

	// Step 1: truncate to a multiple of spc, never exceed D.
	newTotal := deviceSectors - (deviceSectors % spc)

	// Step 2.
	if newTotal <= oldTotal {
		return nil, fat32err.New(fat32err.AlreadyMaxSize, "device is not larger than the current filesystem")
	}
	if newTotal > uint64(^uint32(0)) {
		return nil, fat32err.New(fat32err.TooLarge, "new total sector count exceeds the 32-bit FAT32 field")
	}

	// Step 3: start from fatgen103's FATSz estimate, raised to
	// old_fat_size if lower (old_fat_size is always a lower bound since
	// total sectors only grows), then grow new_fat_size one sector at a
	// time until the FAT is large enough to index every cluster the new
	// geometry can hold.
	newFATSize, newDataClusters, err := solveFATSize(newTotal, rsvd, nfats, spc, bps, oldFATSize)
	if err != nil {
		return nil, err
	}

	newFDS := rsvd + nfats*uint64(newFATSize)
	oldFDS := rsvd + nfats*uint64(oldFATSize)
	shiftSectors := newFDS - oldFDS
	fatGrew := newFATSize > oldFATSize

	var firstAffected, lastAffected uint32
	if fatGrew {
		affectedClusters := ceilDiv(shiftSectors, spc)
		firstAffected = uint32(fat32.FirstDataCluster)
		lastAffected = firstAffected + uint32(affectedClusters) - 1
		maxAffected := firstAffected + oldDataClusters - 1
		if lastAffected > maxAffected {
			lastAffected = maxAffected
		}
	}

	// Step 6: FAT32 max cluster ceiling.
	if newDataClusters > fat32.MaxDataClusters {
		return nil, fat32err.New(fat32err.TooLarge, "new data cluster count exceeds the FAT32 maximum")
	}

	return &Plan{
		OldFDS:               oldFDS,
		NewFDS:               newFDS,
		ShiftSectors:         shiftSectors,
		FATGrew:              fatGrew,
		OldTotalSectors:      uint32(oldTotal),
		NewTotalSectors:      uint32(newTotal),
		OldFATSize:           oldFATSize,
		NewFATSize:           newFATSize,
		OldDataClusters:      oldDataClusters,
		NewDataClusters:      newDataClusters,
		FirstAffectedCluster: firstAffected,
		LastAffectedCluster:  lastAffected,
	}, nil
}

// solveFATSize implements the fatgen103 FATSz algorithm (TmpVal1/TmpVal2),
// ported from calculate_fat_size in calculator.rs, then walks forward by
// one sector at a time the way spec.md §4.2 step 3 directs, to guarantee
// the result actually indexes every cluster the final geometry holds (the
// closed-form formula already satisfies this in every real geometry; the
// walk is the belt-and-braces spec.md asks for and costs at most a few
// iterations).
func solveFATSize(totalSectors, rsvd, nfats, spc, bps uint64, floor uint32) (uint32, uint32, error) {
	fatSize := fatgen103FATSize(totalSectors, rsvd, nfats, spc, bps)
	if fatSize < uint64(floor) {
		fatSize = uint64(floor)
	}

	for {
		fds := rsvd + nfats*fatSize
		if fds >= totalSectors {
			return 0, 0, fat32err.New(fat32err.TooLarge, "reserved and FAT regions leave no room for data clusters")
		}
		dataClusters := (totalSectors - fds) / spc
		entriesPerSector := bps / 4
		minFATSize := ceilDiv(dataClusters+2, entriesPerSector)
		if fatSize >= minFATSize {
			if fatSize > uint64(^uint32(0)) || dataClusters > uint64(^uint32(0)) {
				return 0, 0, fat32err.New(fat32err.TooLarge, "FAT size or cluster count exceeds 32 bits")
			}
			return uint32(fatSize), uint32(dataClusters), nil
		}
		fatSize++
	}
}

// fatgen103FATSize is the Microsoft FAT specification's closed-form
// estimate: TmpVal1 = total - reserved; TmpVal2 = entries_per_sector*spc +
// num_fats/2; FATSz = ceil(TmpVal1 / TmpVal2).
func fatgen103FATSize(totalSectors, rsvd, nfats, spc, bps uint64) uint64 {
	tmpVal1 := totalSectors - rsvd
	entriesPerSector := bps / 4
	tmpVal2 := entriesPerSector*spc + nfats/2
	if tmpVal2 == 0 {
		return 1
	}
	return ceilDiv(tmpVal1, tmpVal2)
}

func ceilDiv(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}
