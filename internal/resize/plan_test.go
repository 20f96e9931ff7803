package resize

import (
	"testing"

	"github.com/oetiker/fat32expander/internal/fat32"
	"github.com/oetiker/fat32expander/internal/fat32err"
	"github.com/oetiker/fat32expander/internal/fat32test"
)

func bootFromFixture(t *testing.T, totalSectors uint32) *fat32.BootSector {
	t.Helper()
	dev, err := fat32test.Build(fat32test.Options{TotalSectors: totalSectors}, nil)
	if err != nil {
		t.Fatalf("fat32test.Build: %v", err)
	}
	defer dev.Close()
	boot, err := fat32.ReadBootSectorForRecovery(dev)
	if err != nil {
		t.Fatalf("ReadBootSectorForRecovery: %v", err)
	}
	return boot
}

// TestComputeAlreadyMaxSize covers B1: device length equal to old total
// sectors.
func TestComputeAlreadyMaxSize(t *testing.T) {
	boot := bootFromFixture(t, 70000)
	_, err := Compute(boot, uint64(boot.TotalSectors32()))
	if kind, ok := fat32err.Of(err); !ok || kind != fat32err.AlreadyMaxSize {
		t.Fatalf("Compute error = %v, want AlreadyMaxSize", err)
	}
}

// TestComputeGrowthRequiresMoreFAT covers B3 in spirit: growing the device
// enough to need a larger FAT moves the plan into fat_grew territory with
// a positive shift.
func TestComputeGrowthRequiresMoreFAT(t *testing.T) {
	boot := bootFromFixture(t, 70000)
	oldFATSize := boot.FATSize32()
	oldDataClusters := boot.DataClusters()

	plan, err := Compute(boot, uint64(boot.TotalSectors32())+2_000_000)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !plan.FATGrew {
		t.Fatal("FATGrew = false after adding 2,000,000 sectors, want true")
	}
	if plan.NewFATSize <= oldFATSize {
		t.Errorf("NewFATSize = %d, want > old FAT size %d", plan.NewFATSize, oldFATSize)
	}
	if plan.ShiftSectors == 0 {
		t.Error("ShiftSectors = 0 on a FAT-growing plan, want > 0")
	}
	if plan.NewDataClusters <= uint32(oldDataClusters) {
		t.Errorf("NewDataClusters = %d, want > old data clusters %d", plan.NewDataClusters, oldDataClusters)
	}
	if plan.FirstAffectedCluster != uint32(fat32.FirstDataCluster) {
		t.Errorf("FirstAffectedCluster = %d, want %d", plan.FirstAffectedCluster, fat32.FirstDataCluster)
	}
	if plan.LastAffectedCluster < plan.FirstAffectedCluster {
		t.Errorf("LastAffectedCluster %d < FirstAffectedCluster %d", plan.LastAffectedCluster, plan.FirstAffectedCluster)
	}
}

// TestComputeGrowthWithoutFATGrowth covers B2: a small grow that doesn't
// cross a FAT-sector boundary leaves fat_grew false and shift_sectors 0.
func TestComputeGrowthWithoutFATGrowth(t *testing.T) {
	boot := bootFromFixture(t, 70000)
	spc := uint64(boot.SectorsPerCluster())

	plan, err := Compute(boot, uint64(boot.TotalSectors32())+spc)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if plan.FATGrew {
		t.Fatal("FATGrew = true after a one-cluster grow, want false")
	}
	if plan.ShiftSectors != 0 {
		t.Errorf("ShiftSectors = %d, want 0 when the FAT didn't grow", plan.ShiftSectors)
	}
}

func TestComputeRejectsHugeDevice(t *testing.T) {
	boot := bootFromFixture(t, 70000)
	_, err := Compute(boot, uint64(^uint32(0))+1000)
	if kind, ok := fat32err.Of(err); !ok || kind != fat32err.TooLarge {
		t.Fatalf("Compute error = %v, want TooLarge", err)
	}
}
