package main

import (
	"fmt"

	"github.com/oetiker/fat32expander/internal/fat32err"
)

// usageError marks a command-line misuse (wrong argument count, mutually
// exclusive flags) as distinct from an error surfaced by the resize
// engine itself, so exitCodeFor can map it to exit code 2 rather than 1.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// Exit codes per spec.md §6.
const (
	exitOK                 = 0
	exitGeneric            = 1
	exitUsage              = 2
	exitAlreadyMaxSize     = 3
	exitMounted            = 4
	exitCorrupt            = 5
	exitUnrecoverableState = 6
)

// exitCodeFor maps a resize/info error to the exit code spec.md §6 names,
// dispatching on fat32err.Kind the way the rest of the codebase dispatches
// on Kind rather than ad-hoc string matching.
func exitCodeFor(err error) int {
	if err == nil {
		return exitOK
	}
	if _, ok := err.(*usageError); ok {
		return exitUsage
	}
	kind, ok := fat32err.Of(err)
	if !ok {
		return exitGeneric
	}
	switch kind.Taxonomy() {
	case fat32err.AlreadyMaxSize:
		return exitAlreadyMaxSize
	case fat32err.Mounted:
		return exitMounted
	case fat32err.NotFat32, fat32err.BackupMismatch, fat32err.BadFsInfo:
		return exitCorrupt
	case fat32err.UnrecoverableState, fat32err.CheckpointMismatch:
		return exitUnrecoverableState
	default:
		return exitGeneric
	}
}
