package resize

import (
	"fmt"
	"strings"

	"github.com/oetiker/fat32expander/internal/fat32"
)

// InfoReport is the info subcommand's output, grounded on
// original_source/src/resize/executor.rs::FSInfoReport and its Display
// impl.
type InfoReport struct {
	DevicePath           string
	BytesPerSector       uint16
	SectorsPerCluster    uint8
	ReservedSectors      uint16
	NumFATs              uint8
	FATSizeSectors       uint32
	TotalSectors         uint32
	DataClusters         uint32
	RootCluster          uint32
	FSInfoSector         uint16
	BackupBootSector     uint16
	FreeClusters         uint32
	BackupMatches        bool
	DeviceSectors        uint64
	CanGrow              bool
	CurrentSizeBytes     uint64
	MaxNewSizeBytes      uint64
	MaxNewSizeBytesKnown bool
}

// String renders the report the way the teacher's CLI prints its own
// emulate-mode summaries: a plain, section-headed text block suitable for
// both a terminal and a log file.
func (r *InfoReport) String() string {
	var b strings.Builder
	fmt.Fprintln(&b, "FAT32 Filesystem Information")
	fmt.Fprintln(&b, "============================")
	fmt.Fprintf(&b, "Device: %s\n\n", r.DevicePath)

	fmt.Fprintln(&b, "Geometry:")
	fmt.Fprintf(&b, "  Bytes per sector: %d\n", r.BytesPerSector)
	fmt.Fprintf(&b, "  Sectors per cluster: %d\n", r.SectorsPerCluster)
	fmt.Fprintf(&b, "  Bytes per cluster: %d\n\n", uint32(r.BytesPerSector)*uint32(r.SectorsPerCluster))

	fmt.Fprintln(&b, "Layout:")
	fmt.Fprintf(&b, "  Reserved sectors: %d\n", r.ReservedSectors)
	fmt.Fprintf(&b, "  Number of FATs: %d\n", r.NumFATs)
	fmt.Fprintf(&b, "  FAT size (sectors): %d\n", r.FATSizeSectors)
	fmt.Fprintf(&b, "  Total sectors: %d\n", r.TotalSectors)
	fmt.Fprintf(&b, "  Data clusters: %d\n\n", r.DataClusters)

	fmt.Fprintln(&b, "Special sectors:")
	fmt.Fprintf(&b, "  Root directory cluster: %d\n", r.RootCluster)
	fmt.Fprintf(&b, "  FSInfo sector: %d\n", r.FSInfoSector)
	fmt.Fprintf(&b, "  Backup boot sector: %d\n", r.BackupBootSector)
	fmt.Fprintf(&b, "  Backup matches primary: %s\n\n", yesNo(r.BackupMatches))

	fmt.Fprintln(&b, "Usage:")
	if r.FreeClusters == fat32.UnknownFree {
		fmt.Fprintln(&b, "  Free clusters: unknown")
	} else {
		freeBytes := uint64(r.FreeClusters) * uint64(r.BytesPerSector) * uint64(r.SectorsPerCluster)
		fmt.Fprintf(&b, "  Free clusters: %d (%d bytes)\n", r.FreeClusters, freeBytes)
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "Size:")
	fmt.Fprintf(&b, "  Current size: %d bytes (%.2f MB)\n", r.CurrentSizeBytes, float64(r.CurrentSizeBytes)/(1024*1024))
	fmt.Fprintf(&b, "  Device sectors: %d\n", r.DeviceSectors)
	fmt.Fprintf(&b, "  Can grow: %s\n", yesNo(r.CanGrow))
	if r.MaxNewSizeBytesKnown {
		fmt.Fprintf(&b, "  Max new size: %d bytes (%.2f MB)\n", r.MaxNewSizeBytes, float64(r.MaxNewSizeBytes)/(1024*1024))
	}

	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
