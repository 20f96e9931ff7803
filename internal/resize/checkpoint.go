package resize

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/oetiker/fat32expander/internal/device"
	"github.com/oetiker/fat32expander/internal/fat32err"
)

// ResizePhase is the closed set of completed-phase markers spec.md §4.5's
// state machine names. "Done" has no value of its own: it is represented
// by the absence of a checkpoint.
type ResizePhase uint8

const (
	PhaseStarted    ResizePhase = 0
	PhaseDataCopied ResizePhase = 1
	PhaseFatWritten ResizePhase = 2
)

func (p ResizePhase) String() string {
	switch p {
	case PhaseStarted:
		return "started"
	case PhaseDataCopied:
		return "data_copied"
	case PhaseFatWritten:
		return "fat_written"
	default:
		return "unknown"
	}
}

// checkpointMagic is spec.md §3's "FA32CHKP" constant, 0xFA32_4348_4B50
// read as a little-endian 8-byte field (the high two bytes are always
// zero since the constant itself only occupies 48 bits; stored as an
// 8-byte field to match the table's declared size).
const checkpointMagic uint64 = 0xFA3243484B50

// Layout offsets for spec.md §3's checkpoint record.
const (
	ckOffMagic           = 0
	ckOffPhase           = 8
	ckOffOldTotalSectors = 16
	ckOffNewTotalSectors = 20
	ckOffOldFATSize      = 24
	ckOffNewFATSize      = 28
	ckOffCRC             = 60
	ckCRCDataLen         = 60
	ckMinSize            = 64
)

// Checkpoint is spec.md §3's checkpoint record.
type Checkpoint struct {
	Phase           ResizePhase
	OldTotalSectors uint32
	NewTotalSectors uint32
	OldFATSize      uint32
	NewFATSize      uint32
}

// encode serializes the checkpoint into a sectorSize-byte buffer (zero
// padded past the 64 bytes the record actually occupies).
func (c *Checkpoint) encode(sectorSize int) []byte {
	buf := make([]byte, sectorSize)
	binary.LittleEndian.PutUint64(buf[ckOffMagic:], checkpointMagic)
	buf[ckOffPhase] = byte(c.Phase)
	binary.LittleEndian.PutUint32(buf[ckOffOldTotalSectors:], c.OldTotalSectors)
	binary.LittleEndian.PutUint32(buf[ckOffNewTotalSectors:], c.NewTotalSectors)
	binary.LittleEndian.PutUint32(buf[ckOffOldFATSize:], c.OldFATSize)
	binary.LittleEndian.PutUint32(buf[ckOffNewFATSize:], c.NewFATSize)
	crc := crc32.ChecksumIEEE(buf[:ckCRCDataLen])
	binary.LittleEndian.PutUint32(buf[ckOffCRC:], crc)
	return buf
}

// decodeCheckpoint parses a checkpoint from a sector buffer. It returns
// (nil, nil) when the magic is absent (no checkpoint, the normal "Done"
// state), and a CheckpointMismatch error when the magic is present but the
// CRC or phase byte is invalid (corruption, distinct from "none").
func decodeCheckpoint(data []byte) (*Checkpoint, error) {
	if len(data) < ckMinSize {
		return nil, nil
	}
	if binary.LittleEndian.Uint64(data[ckOffMagic:]) != checkpointMagic {
		return nil, nil
	}

	storedCRC := binary.LittleEndian.Uint32(data[ckOffCRC:])
	computedCRC := crc32.ChecksumIEEE(data[:ckCRCDataLen])
	if storedCRC != computedCRC {
		return nil, fat32err.New(fat32err.CheckpointMismatch, "checkpoint CRC does not match its contents")
	}

	phase := ResizePhase(data[ckOffPhase])
	if phase != PhaseStarted && phase != PhaseDataCopied && phase != PhaseFatWritten {
		return nil, fat32err.New(fat32err.CheckpointMismatch, "checkpoint phase byte is out of range")
	}

	return &Checkpoint{
		Phase:           phase,
		OldTotalSectors: binary.LittleEndian.Uint32(data[ckOffOldTotalSectors:]),
		NewTotalSectors: binary.LittleEndian.Uint32(data[ckOffNewTotalSectors:]),
		OldFATSize:      binary.LittleEndian.Uint32(data[ckOffOldFATSize:]),
		NewFATSize:      binary.LittleEndian.Uint32(data[ckOffNewFATSize:]),
	}, nil
}

// readCheckpoint reads the checkpoint from the last sector of the device,
// grounded on executor.rs::read_checkpoint.
func readCheckpoint(dev device.Device) (*Checkpoint, error) {
	lengthSectors, err := dev.LengthSectors()
	if err != nil {
		return nil, fat32err.Wrap(fat32err.Io, err, "reading device length for checkpoint lookup")
	}
	if lengthSectors == 0 {
		return nil, nil
	}
	last := lengthSectors - 1
	data, err := dev.ReadSectors(last, 1)
	if err != nil {
		return nil, fat32err.AtSector(fat32err.Io, last, "reading checkpoint sector")
	}
	return decodeCheckpoint(data)
}

// writeCheckpoint writes ck to the last sector of the device and syncs,
// per spec.md §4.5's "Barrier" requirement on every checkpoint write.
func writeCheckpoint(dev device.Device, ck *Checkpoint) error {
	lengthSectors, err := dev.LengthSectors()
	if err != nil {
		return fat32err.Wrap(fat32err.Io, err, "reading device length for checkpoint write")
	}
	last := lengthSectors - 1
	data := ck.encode(int(dev.SectorSize()))
	if err := dev.WriteSectors(last, data); err != nil {
		return fat32err.AtSector(fat32err.Io, last, "writing checkpoint sector")
	}
	return dev.Sync()
}

// clearCheckpoint zeroes the checkpoint sector (spec.md §4.6 step 5 /
// §4.5 step 10) and syncs.
func clearCheckpoint(dev device.Device) error {
	lengthSectors, err := dev.LengthSectors()
	if err != nil {
		return fat32err.Wrap(fat32err.Io, err, "reading device length for checkpoint clear")
	}
	last := lengthSectors - 1
	zero := make([]byte, dev.SectorSize())
	if err := dev.WriteSectors(last, zero); err != nil {
		return fat32err.AtSector(fat32err.Io, last, "clearing checkpoint sector")
	}
	return dev.Sync()
}
