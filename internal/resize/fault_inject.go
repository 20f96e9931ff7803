//go:build faultinjection

package resize

import (
	"fmt"
	"os"
)

// maybeCrashAt exits the process immediately, like SIGKILL, when
// FAT32_CRASH_AT names the given injection point. Only compiled into
// test/fault-injection builds (go build -tags faultinjection), mirroring
// original_source/src/resize/executor.rs's #[cfg(feature =
// "fault-injection")] maybe_crash_at. Each point leaves the device in a
// state that one resume row of spec.md §4.5's recovery table handles.
//
// The six named points match spec.md §6's documented environment
// variable: after_checkpoint_start, after_data_shift,
// after_checkpoint_data_copied, after_boot_invalidate, after_fat_write,
// after_checkpoint_fat_written.
func maybeCrashAt(point string) {
	if os.Getenv("FAT32_CRASH_AT") == point {
		fmt.Fprintf(os.Stderr, "FAULT INJECTION: simulating crash at %q\n", point)
		os.Exit(137)
	}
}
