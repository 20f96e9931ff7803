package fat32

import (
	"github.com/oetiker/fat32expander/internal/device"
	"github.com/oetiker/fat32expander/internal/fat32err"
	"github.com/oetiker/fat32expander/internal/mount"
)

// Validated is the Loader & Validator's output: everything spec.md §4.1
// reads off disk before the Planner runs.
type Validated struct {
	Boot   *BootSector
	Backup *BootSector
	Info   *FSInfo
}

// LoadOptions controls which of the 7 ordered checks run, so the recovery
// path (which must tolerate an invalidated signature) and the info/resize
// paths (which must not) share one implementation.
type LoadOptions struct {
	// AllowInvalidatedSignature permits boot_signature == 0x0000, the
	// marker spec.md §4.5 step 6 leaves during the danger window.
	AllowInvalidatedSignature bool
	// SkipMountCheck omits check 7; set by LoadForRecovery, which must not
	// refuse to inspect a mounted filesystem it is trying to repair.
	SkipMountCheck bool
	// Mounter is the external collaborator for check 7. Required unless
	// SkipMountCheck is set.
	Mounter mount.Checker
	// DevicePath is what Mounter.IsMounted compares against.
	DevicePath string
}

// Load runs the Loader & Validator's 7 ordered checks from spec.md §4.1,
// each fatal on failure. Grounded on
// original_source/src/fat32/validation.rs::validate_boot_sector_impl,
// generalized with the external mount-check collaborator spec.md adds.
func Load(dev device.Device, opts LoadOptions) (*Validated, error) {
	boot, err := readBootSector(dev, opts.AllowInvalidatedSignature)
	if err != nil {
		return nil, err
	}

	// Check 1: signature. readBootSector only validates bytes_per_sector,
	// so the signature is checked here.
	if !boot.IsSignatureValid() {
		if !(opts.AllowInvalidatedSignature && boot.IsSignatureInvalidated()) {
			return nil, fat32err.AtField(fat32err.BadSignature, "boot_signature",
				"boot signature is neither 0xAA55 nor a permitted invalidated 0x0000")
		}
	}

	// Check 2: BPB geometry sanity.
	if err := validateGeometry(boot); err != nil {
		return nil, err
	}

	// Check 3: FAT32 definitional floor.
	if boot.DataClusters() < 65525 {
		return nil, fat32err.New(fat32err.NotFat32, "data cluster count below the FAT32 floor of 65525; this is a FAT12/16 volume")
	}

	// Check 4: root cluster sane and within the data region.
	if boot.RootCluster() < uint32(FirstDataCluster) {
		return nil, fat32err.AtField(fat32err.BadGeometry, "root_cluster", "root cluster is below 2")
	}
	if ClusterID(boot.RootCluster()).Index() >= uint32(boot.DataClusters()) {
		return nil, fat32err.AtField(fat32err.BadGeometry, "root_cluster", "root cluster lies outside the data region")
	}

	// Check 5: backup boot sector agreement.
	backup, err := ReadBackupBootSector(dev, boot.BackupBootSector())
	if err != nil {
		return nil, err
	}
	if !BootSectorsMatch(boot, backup) {
		return nil, fat32err.New(fat32err.BackupMismatch, "backup boot sector does not match the primary")
	}

	// Check 6: FSInfo signatures.
	info, err := ReadFSInfo(dev, boot.FSInfoSector())
	if err != nil {
		return nil, err
	}
	if !info.SignaturesValid() {
		return nil, fat32err.New(fat32err.BadFsInfo, "FSInfo sector signatures are invalid")
	}

	// Check 7: external mount-detection collaborator.
	if !opts.SkipMountCheck {
		if opts.Mounter == nil {
			return nil, fat32err.New(fat32err.Mounted, "mount checker not provided")
		}
		mounted, at, err := opts.Mounter.IsMounted(opts.DevicePath)
		if err != nil {
			return nil, fat32err.Wrap(fat32err.Io, err, "checking mount table")
		}
		if mounted {
			return nil, fat32err.AtField(fat32err.Mounted, "device_path", "device is mounted at "+at)
		}
	}

	return &Validated{Boot: boot, Backup: backup, Info: info}, nil
}

func validateGeometry(boot *BootSector) error {
	if err := validSectorSize(boot.BytesPerSector()); err != nil {
		return err
	}

	spc := boot.SectorsPerCluster()
	if spc == 0 || spc > 128 || spc&(spc-1) != 0 {
		return fat32err.AtField(fat32err.BadGeometry, "sectors_per_cluster", "must be a power of two in 1..128")
	}

	if boot.NumFATs() < 1 {
		return fat32err.AtField(fat32err.BadGeometry, "num_fats", "must be at least 1")
	}

	if boot.ReservedSectors() < 1 {
		return fat32err.AtField(fat32err.BadGeometry, "reserved_sectors", "must be at least 1")
	}

	if boot.TotalSectors16() != 0 {
		return fat32err.AtField(fat32err.NotFat32, "total_sectors_16", "non-zero; this is a FAT12/16 volume")
	}

	minTotal := uint64(boot.ReservedSectors()) +
		uint64(boot.NumFATs())*uint64(boot.FATSize32()) +
		uint64(spc)
	if uint64(boot.TotalSectors32()) < minTotal {
		return fat32err.AtField(fat32err.BadGeometry, "total_sectors_32", "too small for the declared reserved/FAT/cluster geometry")
	}

	return nil
}

// LoadForRecovery is Load with the recovery-path options spec.md §4.5's
// resume dispatch table needs: tolerate an invalidated signature, and
// never refuse a mounted device (the caller is trying to finish repairing
// it, not start a second concurrent resize).
func LoadForRecovery(dev device.Device) (*Validated, error) {
	return Load(dev, LoadOptions{AllowInvalidatedSignature: true, SkipMountCheck: true})
}
