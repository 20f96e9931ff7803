package resize

import (
	"github.com/oetiker/fat32expander/internal/device"
	"github.com/oetiker/fat32expander/internal/fat32"
)

// Finalize runs the Finalizer (spec.md §4.6): writes the updated primary
// and backup boot sectors with the restored 0xAA55 signature, bumps
// FSInfo's free-cluster count, and zeroes the checkpoint sector. Grounded
// on the tail of original_source/src/resize/executor.rs::resize_fat32
// (the "=== PHASE 2: Metadata update ===" block).
func Finalize(dev device.Device, boot *fat32.BootSector, info *fat32.FSInfo, backupSector uint16, plan *Plan) error {
	boot.SetTotalSectors32(plan.NewTotalSectors)
	boot.SetFATSize32(plan.NewFATSize)
	boot.RestoreSignature()

	if err := fat32.WriteBootSector(dev, boot); err != nil {
		return err
	}
	if err := dev.Sync(); err != nil {
		return err
	}

	if err := fat32.WriteBackupBootSector(dev, boot, backupSector); err != nil {
		return err
	}
	if err := dev.Sync(); err != nil {
		return err
	}

	oldFree := info.FreeCount()
	additional := plan.NewDataClusters - plan.OldDataClusters
	newFree := oldFree
	if oldFree != fat32.UnknownFree {
		newFree = oldFree + additional
		if newFree > fat32.MaxDataClusters {
			newFree = fat32.MaxDataClusters
		}
	}
	info.SetFreeCount(newFree)
	if err := fat32.WriteFSInfo(dev, info, boot.FSInfoSector()); err != nil {
		return err
	}
	if err := dev.Sync(); err != nil {
		return err
	}

	if err := clearCheckpoint(dev); err != nil {
		return err
	}

	return nil
}
