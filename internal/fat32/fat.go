package fat32

import (
	"encoding/binary"

	"github.com/oetiker/fat32expander/internal/device"
	"github.com/oetiker/fat32expander/internal/fat32err"
)

// FAT entry constants, ported from original_source/src/fat32/structs.rs's
// fat_entry module.
const (
	EntryFree           uint32 = 0x00000000
	EntryEndOfChainMin  uint32 = 0x0FFFFFF8
	EntryEndOfChain     uint32 = 0x0FFFFFFF
	EntryBadCluster     uint32 = 0x0FFFFFF7
	EntryClusterMask    uint32 = 0x0FFFFFFF

	// MaxDataClusters is the FAT32 definitional ceiling (spec.md §4.2
	// step 6): new_data_clusters must never exceed this.
	MaxDataClusters uint32 = 0x0FFFFFF5
)

// EntryIsFree reports whether a raw FAT entry marks its cluster free.
func EntryIsFree(entry uint32) bool { return entry&EntryClusterMask == EntryFree }

// EntryIsEndOfChain reports whether entry is any end-of-chain marker.
func EntryIsEndOfChain(entry uint32) bool { return entry&EntryClusterMask >= EntryEndOfChainMin }

// EntryIsBad reports whether entry marks a bad cluster.
func EntryIsBad(entry uint32) bool { return entry&EntryClusterMask == EntryBadCluster }

// EntryIsChain reports whether entry points onward to another cluster.
func EntryIsChain(entry uint32) bool {
	masked := entry & EntryClusterMask
	return masked >= 2 && masked < EntryBadCluster
}

// EntryNextCluster returns the cluster entry points to, if any.
func EntryNextCluster(entry uint32) (ClusterID, bool) {
	if !EntryIsChain(entry) {
		return 0, false
	}
	return ClusterID(entry & EntryClusterMask), true
}

// Table is an in-memory copy of one FAT's sectors, addressed by cluster
// number. Each entry is 4 bytes (FAT32 only); upper 4 bits of every entry
// are reserved and must be preserved across rewrites per spec.md's byte-
// mirror requirement, so Table never masks on read or write — only the
// helpers above mask when interpreting an entry's meaning.
type Table struct {
	raw []byte
}

// ReadTable reads count sectors of one FAT starting at startSector.
func ReadTable(dev device.Device, startSector uint64, count uint32) (*Table, error) {
	data, err := dev.ReadSectors(startSector, count)
	if err != nil {
		return nil, fat32err.AtSector(fat32err.Io, startSector, "reading FAT table")
	}
	return &Table{raw: data}, nil
}

// WriteTable writes t back starting at startSector.
func WriteTable(dev device.Device, t *Table, startSector uint64) error {
	if err := dev.WriteSectors(startSector, t.raw); err != nil {
		return fat32err.AtSector(fat32err.Io, startSector, "writing FAT table")
	}
	return nil
}

// Entry returns the raw 32-bit entry for cluster c.
func (t *Table) Entry(c ClusterID) uint32 {
	off := int(c) * 4
	return binary.LittleEndian.Uint32(t.raw[off : off+4])
}

// SetEntry writes the raw 32-bit entry for cluster c.
func (t *Table) SetEntry(c ClusterID, v uint32) {
	off := int(c) * 4
	binary.LittleEndian.PutUint32(t.raw[off:off+4], v)
}

// Bytes returns the underlying buffer.
func (t *Table) Bytes() []byte { return t.raw }

// Len returns the number of 4-byte entries this table holds.
func (t *Table) Len() int { return len(t.raw) / 4 }
