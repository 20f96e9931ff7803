package resize

import (
	"github.com/google/uuid"

	"github.com/oetiker/fat32expander/internal/device"
	"github.com/oetiker/fat32expander/internal/fat32"
	"github.com/oetiker/fat32expander/internal/fat32err"
	"github.com/oetiker/fat32expander/internal/mount"
	"github.com/oetiker/fat32expander/internal/progress"
)

// Options configures a resize run.
type Options struct {
	DevicePath string
	DryRun     bool
	Verbose    bool
	Mounter    mount.Checker
	Reporter   progress.Reporter
}

// Result reports what a resize run did, grounded on
// original_source/src/resize/executor.rs's ResizeResult.
type Result struct {
	RunID             string
	OldSizeBytes      uint64
	NewSizeBytes      uint64
	FATGrew           bool
	ClustersRelocated int
	Plan              *Plan
	Operations        []string
}

// Run executes the full checkpoint-protected resize pipeline (spec.md
// §4.5): on a fresh filesystem it runs the normal 10-step sequence; on a
// filesystem carrying a checkpoint it dispatches through the resume
// table instead. Grounded on
// original_source/src/resize/executor.rs::resize_fat32.
func Run(dev device.Device, opts Options) (*Result, error) {
	rep := opts.Reporter
	if rep == nil {
		rep = progress.NoopReporter{}
	}
	runID := uuid.NewString()
	var ops []string
	ops = append(ops, "run "+runID)

	rep.Phase(progress.PhaseValidate, 0)

	// Step 1 of the recovery orchestrator: read the boot sector
	// tolerating an invalidated signature, then look for a checkpoint
	// before anything else.
	boot, err := fat32.ReadBootSectorForRecovery(dev)
	if err != nil {
		rep.Done(err)
		return nil, err
	}
	ops = append(ops, "read boot sector")

	var ckpt *Checkpoint
	if !opts.DryRun {
		ckpt, err = checkForIncompleteResize(dev, boot)
		if err != nil {
			rep.Done(err)
			return nil, err
		}
	}

	if ckpt != nil {
		result, err := resumeResize(dev, boot, ckpt, opts, rep, ops, runID)
		rep.Done(err)
		return result, err
	}

	// Step 2: fresh run. Run the full Loader & Validator (boot is
	// already parsed; re-validate it along with backup and FSInfo, plus
	// the mount-detection precondition).
	validated, err := fat32.Load(dev, fat32.LoadOptions{
		Mounter:    opts.Mounter,
		DevicePath: opts.DevicePath,
	})
	if err != nil {
		rep.Done(err)
		return nil, err
	}
	ops = append(ops, "validated filesystem")
	rep.Step(progress.PhaseValidate, 1, "validated boot sector, backup, and FSInfo")

	deviceSectors, err := dev.LengthSectors()
	if err != nil {
		err = fat32err.Wrap(fat32err.Io, err, "reading device length")
		rep.Done(err)
		return nil, err
	}

	rep.Phase(progress.PhasePlan, 1)
	plan, err := Compute(validated.Boot, deviceSectors)
	if err != nil {
		rep.Done(err)
		return nil, err
	}
	ops = append(ops, "computed resize plan")
	rep.Step(progress.PhasePlan, 1, "computed new geometry")

	oldSizeBytes := uint64(plan.OldTotalSectors) * uint64(validated.Boot.BytesPerSector())
	newSizeBytes := uint64(plan.NewTotalSectors) * uint64(validated.Boot.BytesPerSector())

	if !plan.FATGrew {
		// Step 2's shortcut: skip straight to the final boot-sector
		// update, no checkpoint needed since nothing dangerous happens.
		if !opts.DryRun {
			if err := Finalize(dev, validated.Boot, validated.Info, validated.Boot.BackupBootSector(), plan); err != nil {
				rep.Done(err)
				return nil, err
			}
			ops = append(ops, "finalized boot sector (no FAT growth required)")
		} else {
			ops = append(ops, "dry run: would update boot sector only, no FAT growth required")
		}
		result := &Result{RunID: runID, OldSizeBytes: oldSizeBytes, NewSizeBytes: newSizeBytes, Plan: plan, Operations: ops}
		rep.Done(nil)
		return result, nil
	}

	fat, err := fat32.ReadTable(dev, uint64(validated.Boot.ReservedSectors()), plan.OldFATSize)
	if err != nil {
		rep.Done(err)
		return nil, err
	}
	ops = append(ops, "read FAT table")

	if opts.DryRun {
		shiftResult, err := Shift(dev, validated.Boot, fat, plan, true, rep)
		if err != nil {
			rep.Done(err)
			return nil, err
		}
		ops = append(ops, "dry run: would shift data and extend FAT tables, no changes made")
		result := &Result{
			RunID:             runID,
			OldSizeBytes:      oldSizeBytes,
			NewSizeBytes:      newSizeBytes,
			FATGrew:           true,
			ClustersRelocated: shiftResult.ClustersMoved,
			Plan:              plan,
			Operations:        ops,
		}
		rep.Done(nil)
		return result, nil
	}

	// Step 3: checkpoint phase Started.
	ckpt = &Checkpoint{
		Phase:           PhaseStarted,
		OldTotalSectors: plan.OldTotalSectors,
		NewTotalSectors: plan.NewTotalSectors,
		OldFATSize:      plan.OldFATSize,
		NewFATSize:      plan.NewFATSize,
	}
	if err := writeCheckpoint(dev, ckpt); err != nil {
		rep.Done(err)
		return nil, err
	}
	ops = append(ops, "wrote checkpoint (phase: started)")
	maybeCrashAt("after_checkpoint_start")

	// Step 4: Shifter.
	shiftResult, err := Shift(dev, validated.Boot, fat, plan, false, rep)
	if err != nil {
		rep.Done(err)
		return nil, err
	}
	ops = append(ops, "shifted data forward")
	maybeCrashAt("after_data_shift")

	// Step 5: checkpoint phase DataCopied.
	ckpt.Phase = PhaseDataCopied
	if err := writeCheckpoint(dev, ckpt); err != nil {
		rep.Done(err)
		return nil, err
	}
	ops = append(ops, "updated checkpoint (phase: data_copied)")
	maybeCrashAt("after_checkpoint_data_copied")

	// Step 6: enter the danger zone.
	validated.Boot.InvalidateSignature()
	if err := fat32.WriteBootSector(dev, validated.Boot); err != nil {
		rep.Done(err)
		return nil, err
	}
	if err := dev.Sync(); err != nil {
		err = fat32err.Wrap(fat32err.Io, err, "sync after boot sector invalidation")
		rep.Done(err)
		return nil, err
	}
	ops = append(ops, "invalidated boot sector (danger zone)")
	maybeCrashAt("after_boot_invalidate")

	// Step 7: FAT Extender.
	rep.Phase(progress.PhaseExtend, 1)
	if err := Extend(dev, validated.Boot, plan); err != nil {
		rep.Done(err)
		return nil, err
	}
	ops = append(ops, "extended FAT tables")
	rep.Step(progress.PhaseExtend, 1, "zero-filled and mirrored FAT copies")
	maybeCrashAt("after_fat_write")

	// Step 8: checkpoint phase FatWritten.
	ckpt.Phase = PhaseFatWritten
	if err := writeCheckpoint(dev, ckpt); err != nil {
		rep.Done(err)
		return nil, err
	}
	ops = append(ops, "updated checkpoint (phase: fat_written)")
	maybeCrashAt("after_checkpoint_fat_written")

	// Step 9: Finalizer.
	rep.Phase(progress.PhaseFinalize, 1)
	if err := Finalize(dev, validated.Boot, validated.Info, validated.Boot.BackupBootSector(), plan); err != nil {
		rep.Done(err)
		return nil, err
	}
	ops = append(ops, "finalized boot sector, backup boot sector, and FSInfo")
	rep.Step(progress.PhaseFinalize, 1, "restored signature and cleared checkpoint")
	// Step 10 (checkpoint erase) happens inside Finalize.

	result := &Result{
		RunID:             runID,
		OldSizeBytes:      oldSizeBytes,
		NewSizeBytes:      newSizeBytes,
		FATGrew:           true,
		ClustersRelocated: shiftResult.ClustersMoved,
		Plan:              plan,
		Operations:        ops,
	}
	rep.Done(nil)
	return result, nil
}

// checkForIncompleteResize implements the first branch of spec.md §4.5's
// resume table: if the boot signature is invalidated, a valid checkpoint
// must exist or the filesystem is in an unrecoverable state; otherwise a
// checkpoint may or may not be present (a crash between steps 2 and 3
// leaves none). Grounded on
// original_source/src/resize/executor.rs::check_for_incomplete_resize.
//
// A checkpoint whose CRC or phase byte is corrupt counts as no checkpoint.
func checkForIncompleteResize(dev device.Device, boot *fat32.BootSector) (*Checkpoint, error) {
	ckpt, err := readCheckpoint(dev)
	if err != nil {
		if kind, ok := fat32err.Of(err); !ok || kind != fat32err.CheckpointMismatch {
			return nil, err
		}
		ckpt = nil
	}
	if !boot.IsSignatureValid() && ckpt == nil {
		return nil, fat32err.New(fat32err.UnrecoverableState, "boot sector signature is invalidated but no valid checkpoint was found")
	}
	return ckpt, nil
}

type resumeAction struct {
	doShift, doDangerEntry, doExtend, doFinalize bool
}

// resumeActionFor is spec.md §4.5's resume table, minus the two rows Run
// handles before calling this (fresh run, and the fatal "no checkpoint or
// bad CRC while invalidated" case already raised by
// checkForIncompleteResize).
func resumeActionFor(sigValid bool, phase ResizePhase) (resumeAction, error) {
	switch {
	case sigValid && phase == PhaseStarted:
		return resumeAction{doShift: true, doDangerEntry: true, doExtend: true, doFinalize: true}, nil
	case sigValid && phase == PhaseDataCopied:
		return resumeAction{doDangerEntry: true, doExtend: true, doFinalize: true}, nil
	case !sigValid && phase == PhaseDataCopied:
		return resumeAction{doExtend: true, doFinalize: true}, nil
	case !sigValid && phase == PhaseFatWritten:
		return resumeAction{doFinalize: true}, nil
	case sigValid && phase == PhaseFatWritten:
		// Inconsistent (boot sector shouldn't be valid again before
		// Finalize restores it), but spec.md §4.5's table says treat it
		// as step 9 pending rather than fail.
		return resumeAction{doFinalize: true}, nil
	default:
		return resumeAction{}, fat32err.New(fat32err.UnrecoverableState,
			"boot signature and checkpoint phase combination has no defined recovery action")
	}
}

func resumeResize(dev device.Device, boot *fat32.BootSector, ckpt *Checkpoint, opts Options, rep progress.Reporter, ops []string, runID string) (*Result, error) {
	deviceSectors, err := dev.LengthSectors()
	if err != nil {
		return nil, fat32err.Wrap(fat32err.Io, err, "reading device length on resume")
	}

	plan, err := Compute(boot, deviceSectors)
	if err != nil {
		return nil, err
	}

	if plan.OldTotalSectors != ckpt.OldTotalSectors || plan.NewTotalSectors != ckpt.NewTotalSectors ||
		plan.OldFATSize != ckpt.OldFATSize || plan.NewFATSize != ckpt.NewFATSize {
		return nil, fat32err.New(fat32err.CheckpointMismatch, "checkpoint geometry does not match what the planner computes now")
	}
	plan.FATGrew = true

	sigValid := boot.IsSignatureValid()
	action, err := resumeActionFor(sigValid, ckpt.Phase)
	if err != nil {
		return nil, err
	}
	ops = append(ops, "resuming interrupted resize from phase "+ckpt.Phase.String())

	fat, err := fat32.ReadTable(dev, uint64(boot.ReservedSectors()), plan.OldFATSize)
	if err != nil {
		return nil, err
	}

	clustersRelocated := 0

	if action.doShift {
		shiftResult, err := Shift(dev, boot, fat, plan, false, rep)
		if err != nil {
			return nil, err
		}
		clustersRelocated = shiftResult.ClustersMoved
		ops = append(ops, "re-ran data shift (idempotent)")
		maybeCrashAt("after_data_shift")

		ckpt.Phase = PhaseDataCopied
		if err := writeCheckpoint(dev, ckpt); err != nil {
			return nil, err
		}
		ops = append(ops, "updated checkpoint (phase: data_copied)")
		maybeCrashAt("after_checkpoint_data_copied")
	} else {
		clustersRelocated = countInUseInRange(fat, plan)
	}

	if action.doDangerEntry {
		boot.InvalidateSignature()
		if err := fat32.WriteBootSector(dev, boot); err != nil {
			return nil, err
		}
		if err := dev.Sync(); err != nil {
			return nil, fat32err.Wrap(fat32err.Io, err, "sync after boot sector invalidation")
		}
		ops = append(ops, "invalidated boot sector (danger zone)")
		maybeCrashAt("after_boot_invalidate")
	}

	if action.doExtend {
		if err := Extend(dev, boot, plan); err != nil {
			return nil, err
		}
		ops = append(ops, "extended FAT tables")
		maybeCrashAt("after_fat_write")

		ckpt.Phase = PhaseFatWritten
		if err := writeCheckpoint(dev, ckpt); err != nil {
			return nil, err
		}
		ops = append(ops, "updated checkpoint (phase: fat_written)")
		maybeCrashAt("after_checkpoint_fat_written")
	}

	if action.doFinalize {
		info, err := fat32.ReadFSInfo(dev, boot.FSInfoSector())
		if err != nil {
			return nil, err
		}
		if err := Finalize(dev, boot, info, boot.BackupBootSector(), plan); err != nil {
			return nil, err
		}
		ops = append(ops, "finalized boot sector, backup boot sector, and FSInfo")
	}

	return &Result{
		RunID:             runID,
		OldSizeBytes:      uint64(plan.OldTotalSectors) * uint64(boot.BytesPerSector()),
		NewSizeBytes:      uint64(plan.NewTotalSectors) * uint64(boot.BytesPerSector()),
		FATGrew:           true,
		ClustersRelocated: clustersRelocated,
		Plan:              plan,
		Operations:        ops,
	}, nil
}

// countInUseInRange reports how many clusters in [first, first+old_data_clusters-1]
// carry a non-free FAT entry, used only to report a meaningful
// ClustersRelocated count on a resume path that skips re-running the
// shifter because a prior run already finished it.
func countInUseInRange(fat *fat32.Table, plan *Plan) int {
	highest := plan.FirstAffectedCluster + plan.OldDataClusters - 1
	count := 0
	for c := plan.FirstAffectedCluster; c <= highest; c++ {
		if int(c) >= fat.Len() {
			break
		}
		if !fat32.EntryIsFree(fat.Entry(fat32.ClusterID(c))) {
			count++
		}
	}
	return count
}

// Info reads a FAT32 filesystem's geometry without modifying it, for the
// info subcommand. Grounded on
// original_source/src/resize/executor.rs::get_fs_info.
func Info(dev device.Device, devicePath string) (*InfoReport, error) {
	boot, err := fat32.ReadBootSector(dev)
	if err != nil {
		return nil, err
	}

	backup, err := fat32.ReadBackupBootSector(dev, boot.BackupBootSector())
	if err != nil {
		return nil, err
	}
	backupMatches := fat32.BootSectorsMatch(boot, backup)

	info, err := fat32.ReadFSInfo(dev, boot.FSInfoSector())
	if err != nil {
		return nil, err
	}

	deviceSectors, err := dev.LengthSectors()
	if err != nil {
		return nil, fat32err.Wrap(fat32err.Io, err, "reading device length")
	}

	currentSectors := uint64(boot.TotalSectors32())
	canGrow := deviceSectors > currentSectors
	var maxNewSizeBytes uint64
	if canGrow {
		maxNewSizeBytes = deviceSectors * uint64(boot.BytesPerSector())
	}

	return &InfoReport{
		DevicePath:          devicePath,
		BytesPerSector:      boot.BytesPerSector(),
		SectorsPerCluster:   boot.SectorsPerCluster(),
		ReservedSectors:     boot.ReservedSectors(),
		NumFATs:             boot.NumFATs(),
		FATSizeSectors:      boot.FATSize32(),
		TotalSectors:        boot.TotalSectors32(),
		DataClusters:        uint32(boot.DataClusters()),
		RootCluster:         boot.RootCluster(),
		FSInfoSector:        boot.FSInfoSector(),
		BackupBootSector:    boot.BackupBootSector(),
		FreeClusters:        info.FreeCount(),
		BackupMatches:       backupMatches,
		DeviceSectors:       deviceSectors,
		CanGrow:             canGrow,
		CurrentSizeBytes:    currentSectors * uint64(boot.BytesPerSector()),
		MaxNewSizeBytes:     maxNewSizeBytes,
		MaxNewSizeBytesKnown: canGrow,
	}, nil
}
