package resize

import (
	"bytes"
	"testing"

	"github.com/oetiker/fat32expander/internal/fat32"
	"github.com/oetiker/fat32expander/internal/fat32test"
)

func TestExtendZeroFillsAndMirrorsFATCopies(t *testing.T) {
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
	if !plan.FATGrew {
		t.Fatal("fixture plan did not grow the FAT; test assumptions are stale")
	}

	if err := Extend(dev, boot, plan); err != nil {
		t.Fatalf("Extend: %v", err)
	}

	fat1Start := uint64(boot.ReservedSectors())
	fat1, err := fat32.ReadTable(dev, fat1Start, plan.NewFATSize)
	if err != nil {
		t.Fatalf("ReadTable FAT1: %v", err)
	}
	for fatNum := uint32(1); fatNum < uint32(boot.NumFATs()); fatNum++ {
		start := fat1Start + uint64(fatNum)*uint64(plan.NewFATSize)
		mirror, err := fat32.ReadTable(dev, start, plan.NewFATSize)
		if err != nil {
			t.Fatalf("ReadTable FAT copy %d: %v", fatNum, err)
		}
		if !bytes.Equal(fat1.Bytes(), mirror.Bytes()) {
			t.Errorf("FAT copy %d does not mirror FAT #1 after Extend", fatNum)
		}
	}
}

func TestExtendIsNoOpWhenFATDidNotGrow(t *testing.T) {
	base, err := fat32test.Build(fat32test.Options{TotalSectors: 70000}, nil)
	if err != nil {
		t.Fatalf("fat32test.Build: %v", err)
	}
	boot, err := fat32.ReadBootSectorForRecovery(base)
	if err != nil {
		t.Fatalf("ReadBootSectorForRecovery: %v", err)
	}
	spc := uint64(boot.SectorsPerCluster())
	dev := growDevice(t, base, spc)
	base.Close()
	defer dev.Close()

	deviceSectors, err := dev.LengthSectors()
	if err != nil {
		t.Fatalf("LengthSectors: %v", err)
	}
	plan, err := Compute(boot, deviceSectors)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if plan.FATGrew {
		t.Fatal("fixture plan grew the FAT; test assumptions are stale")
	}

	before, err := dev.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if err := Extend(dev, boot, plan); err != nil {
		t.Fatalf("Extend: %v", err)
	}
	after, err := dev.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Error("Extend modified the device when plan.FATGrew was false")
	}
}
