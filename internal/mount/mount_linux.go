//go:build linux

package mount

import (
	"bufio"
	"os"
	"path/filepath"
)

// ProcMountsChecker scans /proc/mounts, grounded one-for-one on
// original_source/src/system.rs::check_not_mounted: resolve the candidate
// path and every mount entry's source device to their canonical form, and
// compare.
type ProcMountsChecker struct {
	// MountsPath overrides /proc/mounts, used by tests.
	MountsPath string
}

func NewProcMountsChecker() *ProcMountsChecker {
	return &ProcMountsChecker{MountsPath: "/proc/mounts"}
}

func (c *ProcMountsChecker) IsMounted(path string) (bool, string, error) {
	resolved := resolvePath(path)

	f, err := os.Open(c.MountsPath)
	if err != nil {
		return false, "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := splitFields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		device, mountPoint := fields[0], fields[1]
		if resolvePath(device) == resolved {
			return true, mountPoint, nil
		}
	}
	return false, "", sc.Err()
}

func resolvePath(p string) string {
	if canon, err := filepath.EvalSymlinks(p); err == nil {
		return canon
	}
	return p
}

func splitFields(line string) []string {
	var fields []string
	start := -1
	for i, r := range line {
		if r == ' ' || r == '\t' {
			if start >= 0 {
				fields = append(fields, line[start:i])
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, line[start:])
	}
	return fields
}
