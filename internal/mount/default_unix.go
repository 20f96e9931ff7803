//go:build linux

package mount

// NewDefaultChecker returns the platform's mount checker, a dispatch point
// cmd/fat32expand calls instead of constructing a platform type directly.
func NewDefaultChecker() Checker { return NewProcMountsChecker() }
