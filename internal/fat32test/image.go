// Package fat32test builds synthetic FAT32 disk images in memory, the
// same role earentir-mkfat/main.go's buildBootSector32/buildFSInfo/
// initFAT32 play for a fresh format — generalized here to also lay down a
// populated root directory, since the resize engine under test must move
// real file data, not just empty metadata.
package fat32test

import (
	"encoding/binary"
	"fmt"

	"github.com/oetiker/fat32expander/internal/device"
	"github.com/oetiker/fat32expander/internal/fat32"
)

// Boot sector byte offsets, matching internal/fat32/bootsector.go exactly.
const (
	offBytesPerSector    = 0x0B
	offSectorsPerCluster = 0x0D
	offReservedSectors   = 0x0E
	offNumFATs           = 0x10
	offMediaType         = 0x15
	offTotalSectors32    = 0x20
	offFATSize32         = 0x24
	offRootCluster       = 0x2C
	offFSInfoSector      = 0x30
	offBackupBootSector  = 0x32
	offSignature         = 0x1FE
)

const (
	reservedSectors  = 32
	fsInfoSector     = 1
	backupBootSector = 6
	rootCluster      = uint32(fat32.FirstDataCluster)
)

// Options configures a synthetic image's geometry. Zero values take the
// defaults a freshly formatted small FAT32 volume would use.
type Options struct {
	TotalSectors      uint32
	BytesPerSector    uint16
	SectorsPerCluster uint8
	NumFATs           uint8
}

func (o *Options) setDefaults() {
	if o.BytesPerSector == 0 {
		o.BytesPerSector = 512
	}
	if o.SectorsPerCluster == 0 {
		o.SectorsPerCluster = 1
	}
	if o.NumFATs == 0 {
		o.NumFATs = 2
	}
}

// File is a flat root-directory entry. Names must already be valid 8.3
// short names (e.g. "HELLO.TXT"); fat32expand's core algorithm never
// follows directory entries, so the test builder never needs long-name
// handling either — see spec.md §9's "cyclic references avoided" note.
type File struct {
	Name string
	Data []byte
}

type placedFile struct {
	file         File
	firstCluster uint32
	numClusters  uint32
}

// Build lays out a complete FAT32 image honoring opts and files, and
// returns it as a device.MemDevice ready for fat32.Load/resize.Run.
func Build(opts Options, files []File) (*device.MemDevice, error) {
	opts.setDefaults()
	bps := uint32(opts.BytesPerSector)
	spc := uint32(opts.SectorsPerCluster)
	nfats := uint32(opts.NumFATs)
	bytesPerCluster := bps * spc

	next := rootCluster + 1 // cluster 2 is the root directory itself
	placed := make([]placedFile, 0, len(files))
	for _, f := range files {
		n := (uint32(len(f.Data)) + bytesPerCluster - 1) / bytesPerCluster
		if n == 0 {
			n = 1
		}
		placed = append(placed, placedFile{file: f, firstCluster: next, numClusters: n})
		next += n
	}
	highestCluster := next - 1

	fatSize, err := solveFATSize(opts.TotalSectors, reservedSectors, nfats, spc, bps, highestCluster)
	if err != nil {
		return nil, err
	}

	total := uint64(opts.TotalSectors) * uint64(bps)
	buf := make([]byte, total)

	firstDataSector := uint32(reservedSectors) + nfats*fatSize

	boot := make([]byte, bps)
	writeBootSector(boot, opts, fatSize)
	copy(buf[0:], boot)
	copy(buf[uint64(backupBootSector)*uint64(bps):], boot)

	info := make([]byte, bps)
	binary.LittleEndian.PutUint32(info[0x000:], fat32.LeadSig)
	binary.LittleEndian.PutUint32(info[0x1E4:], fat32.StrucSig)
	binary.LittleEndian.PutUint32(info[0x1E8:], fat32.UnknownFree)
	binary.LittleEndian.PutUint32(info[0x1EC:], fat32.UnknownFree)
	binary.LittleEndian.PutUint32(info[0x1FC:], fat32.TrailSig)
	copy(buf[uint64(fsInfoSector)*uint64(bps):], info)

	fatBytes := make([]byte, uint64(fatSize)*uint64(bps))
	setEntry := func(c uint32, v uint32) { binary.LittleEndian.PutUint32(fatBytes[c*4:], v) }
	setEntry(0, 0x0FFFFF00|uint32(mediaTypeFixed))
	setEntry(1, fat32.EntryEndOfChain)
	setEntry(rootCluster, fat32.EntryEndOfChain)
	for _, pf := range placed {
		for i := uint32(0); i < pf.numClusters; i++ {
			c := pf.firstCluster + i
			if i == pf.numClusters-1 {
				setEntry(c, fat32.EntryEndOfChain)
			} else {
				setEntry(c, c+1)
			}
		}
	}
	fat1Off := uint64(reservedSectors) * uint64(bps)
	copy(buf[fat1Off:], fatBytes)
	for i := uint32(1); i < nfats; i++ {
		off := fat1Off + uint64(i)*uint64(fatSize)*uint64(bps)
		copy(buf[off:], fatBytes)
	}

	clusterOffset := func(c uint32) uint64 {
		return (uint64(firstDataSector) + uint64(c-rootCluster)*uint64(spc)) * uint64(bps)
	}

	rootOff := clusterOffset(rootCluster)
	for i, pf := range placed {
		entry, err := buildDirEntry(pf.file.Name, pf.firstCluster, uint32(len(pf.file.Data)))
		if err != nil {
			return nil, err
		}
		copy(buf[rootOff+uint64(i)*32:], entry)
	}

	for _, pf := range placed {
		off := clusterOffset(pf.firstCluster)
		copy(buf[off:], pf.file.Data)
	}

	return device.NewMemDeviceFromBytes(buf)
}

const mediaTypeFixed = 0xF8

func writeBootSector(sec []byte, opts Options, fatSize uint32) {
	binary.LittleEndian.PutUint16(sec[offBytesPerSector:], opts.BytesPerSector)
	sec[offSectorsPerCluster] = opts.SectorsPerCluster
	binary.LittleEndian.PutUint16(sec[offReservedSectors:], reservedSectors)
	sec[offNumFATs] = opts.NumFATs
	sec[offMediaType] = mediaTypeFixed
	binary.LittleEndian.PutUint32(sec[offTotalSectors32:], opts.TotalSectors)
	binary.LittleEndian.PutUint32(sec[offFATSize32:], fatSize)
	binary.LittleEndian.PutUint32(sec[offRootCluster:], rootCluster)
	binary.LittleEndian.PutUint16(sec[offFSInfoSector:], fsInfoSector)
	binary.LittleEndian.PutUint16(sec[offBackupBootSector:], backupBootSector)
	binary.LittleEndian.PutUint16(sec[offSignature:], fat32.BootSignatureValid)
}

// solveFATSize finds the FAT size that is both large enough to index every
// data cluster it leaves room for (the fatgen103 fixed point, same
// direction resize.Plan.Compute's solveFATSize walks) and then checks the
// resulting capacity actually covers the files being placed.
func solveFATSize(totalSectors, reserved, nfats, spc, bps, highestCluster uint32) (uint32, error) {
	if totalSectors <= reserved {
		return 0, fmt.Errorf("fat32test: total sectors too small for reserved area")
	}
	entriesPerSector := bps / 4
	tmpVal1 := totalSectors - reserved
	tmpVal2 := entriesPerSector*spc + nfats/2
	fatSize := (tmpVal1 + tmpVal2 - 1) / tmpVal2
	if fatSize == 0 {
		fatSize = 1
	}

	var dataClusters uint32
	for {
		dataSectors := totalSectors - reserved - nfats*fatSize
		dataClusters = dataSectors / spc
		minFATSize := (dataClusters + 2 + entriesPerSector - 1) / entriesPerSector
		if fatSize >= minFATSize {
			break
		}
		fatSize++
		if fatSize > totalSectors {
			return 0, fmt.Errorf("fat32test: could not converge on a FAT size for %d total sectors", totalSectors)
		}
	}

	if dataClusters < 65525 {
		return 0, fmt.Errorf("fat32test: geometry yields only %d data clusters, below the FAT32 floor of 65525; use more total sectors or a smaller cluster size", dataClusters)
	}
	if rootCluster+dataClusters-1 < highestCluster {
		return 0, fmt.Errorf("fat32test: geometry has room for %d data clusters, not enough for the requested files; use more total sectors", dataClusters)
	}
	return fatSize, nil
}

// buildDirEntry writes one 32-byte FAT32 directory entry for a flat
// 8.3-named file.
func buildDirEntry(name string, firstCluster, size uint32) ([]byte, error) {
	short, err := shortName(name)
	if err != nil {
		return nil, err
	}
	e := make([]byte, 32)
	copy(e[0:11], short)
	e[11] = 0x20 // ATTR_ARCHIVE
	binary.LittleEndian.PutUint16(e[20:], uint16(firstCluster>>16))
	binary.LittleEndian.PutUint16(e[26:], uint16(firstCluster&0xFFFF))
	binary.LittleEndian.PutUint32(e[28:], size)
	return e, nil
}

// shortName renders "NAME.EXT" as the padded 11-byte 8.3 form.
func shortName(name string) ([]byte, error) {
	base, ext := name, ""
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			base, ext = name[:i], name[i+1:]
			break
		}
	}
	if len(base) > 8 || len(ext) > 3 {
		return nil, fmt.Errorf("fat32test: %q is not a valid 8.3 short name", name)
	}
	out := make([]byte, 11)
	for i := range out {
		out[i] = ' '
	}
	copy(out[0:8], base)
	copy(out[8:11], ext)
	return out, nil
}
