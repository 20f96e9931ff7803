//go:build !faultinjection

package resize

// maybeCrashAt is a no-op in production builds. Grounded on
// original_source/src/resize/executor.rs's #[cfg(not(feature =
// "fault-injection"))] twin of maybe_crash_at.
func maybeCrashAt(point string) {}
