//go:build !windows

package mount

import "golang.org/x/sys/unix"

// IsPrivileged reports whether the process holds root/admin rights,
// grounded on original_source/src/system.rs::check_root (libc::geteuid()
// == 0). main.rs uses this as a warning gate in front of non-dry-run
// resizes, bypassable with --force; cmd/fat32expand does the same.
func IsPrivileged() bool {
	return unix.Geteuid() == 0
}
