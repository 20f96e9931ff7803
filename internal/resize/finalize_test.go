package resize

import (
	"testing"

	"github.com/oetiker/fat32expander/internal/fat32"
	"github.com/oetiker/fat32expander/internal/fat32test"
)

func TestFinalizeRestoresSignatureAndClearsCheckpoint(t *testing.T) {
	base, err := fat32test.Build(fat32test.Options{TotalSectors: 70000}, nil)
	if err != nil {
		t.Fatalf("fat32test.Build: %v", err)
	}
	dev := growDevice(t, base, 2_000_000)
	base.Close()
	defer dev.Close()

	boot, err := fat32.ReadBootSectorForRecovery(dev)
	if err != nil {
		t.Fatalf("ReadBootSectorForRecovery: %v", err)
	}
	deviceSectors, err := dev.LengthSectors()
	if err != nil {
		t.Fatalf("LengthSectors: %v", err)
	}
	plan, err := Compute(boot, deviceSectors)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	info, err := fat32.ReadFSInfo(dev, boot.FSInfoSector())
	if err != nil {
		t.Fatalf("ReadFSInfo: %v", err)
	}
	oldFree := info.FreeCount()

	boot.InvalidateSignature()
	if err := writeCheckpoint(dev, &Checkpoint{Phase: PhaseFatWritten, OldTotalSectors: plan.OldTotalSectors, NewTotalSectors: plan.NewTotalSectors, OldFATSize: plan.OldFATSize, NewFATSize: plan.NewFATSize}); err != nil {
		t.Fatalf("writeCheckpoint: %v", err)
	}

	if err := Finalize(dev, boot, info, boot.BackupBootSector(), plan); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	fresh, err := fat32.ReadBootSector(dev)
	if err != nil {
		t.Fatalf("ReadBootSector: %v", err)
	}
	if !fresh.IsSignatureValid() {
		t.Error("boot signature not restored by Finalize")
	}
	if fresh.TotalSectors32() != plan.NewTotalSectors {
		t.Errorf("TotalSectors32() = %d, want %d", fresh.TotalSectors32(), plan.NewTotalSectors)
	}
	if fresh.FATSize32() != plan.NewFATSize {
		t.Errorf("FATSize32() = %d, want %d", fresh.FATSize32(), plan.NewFATSize)
	}

	backup, err := fat32.ReadBackupBootSector(dev, fresh.BackupBootSector())
	if err != nil {
		t.Fatalf("ReadBackupBootSector: %v", err)
	}
	if !fat32.BootSectorsMatch(fresh, backup) {
		t.Error("primary and backup boot sectors disagree after Finalize")
	}

	freshInfo, err := fat32.ReadFSInfo(dev, fresh.FSInfoSector())
	if err != nil {
		t.Fatalf("ReadFSInfo after Finalize: %v", err)
	}
	if oldFree != fat32.UnknownFree {
		wantFree := oldFree + (plan.NewDataClusters - plan.OldDataClusters)
		if freshInfo.FreeCount() != wantFree {
			t.Errorf("FreeCount() = %d, want %d", freshInfo.FreeCount(), wantFree)
		}
	}

	ckpt, err := readCheckpoint(dev)
	if err != nil {
		t.Fatalf("readCheckpoint: %v", err)
	}
	if ckpt != nil {
		t.Error("checkpoint still present after Finalize")
	}
}
