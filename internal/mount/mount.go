// Package mount provides the mount-detection predicate spec.md §6 names as
// an external collaborator, plus the root-privilege advisory
// original_source/src/system.rs carries (check_root, supplemented into
// this repository per SPEC_FULL.md §7).
package mount

// Checker reports whether a device path is currently mounted, mirroring
// original_source/src/system.rs::check_not_mounted's /proc/mounts scan but
// as an injectable interface (grounded on aligator-GoFAT's pattern of
// injecting afero.Fs instead of calling os directly) so the loader is
// testable without a real mount table.
type Checker interface {
	IsMounted(path string) (bool, string, error)
}

// NoopChecker always reports not-mounted, used by engine unit tests that
// exercise the validator without touching /proc/mounts.
type NoopChecker struct{}

func (NoopChecker) IsMounted(string) (bool, string, error) { return false, "", nil }
