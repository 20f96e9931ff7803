// Package fat32err defines the error taxonomy used across the resize
// engine: a closed set of Kind values plus a context-carrying Error type,
// comparable with errors.Is/errors.As the way the rest of the codebase
// expects.
package fat32err

import (
	"errors"
	"fmt"
)

// Kind identifies the class of failure. The nine values spec.md §7 names
// are NotFat32, BackupMismatch, BadFsInfo, Mounted, AlreadyMaxSize,
// TooLarge, Io, CheckpointMismatch and UnrecoverableState. BadSignature and
// BadGeometry are finer subdivisions of NotFat32 that the per-check
// parenthetical kind names in spec.md §4.1 call out separately; Taxonomy
// collapses them back for callers that only care about the coarse set.
type Kind int

const (
	NotFat32 Kind = iota
	BadSignature
	BadGeometry
	BackupMismatch
	BadFsInfo
	Mounted
	AlreadyMaxSize
	TooLarge
	Io
	CheckpointMismatch
	UnrecoverableState
)

func (k Kind) String() string {
	switch k {
	case NotFat32:
		return "not_fat32"
	case BadSignature:
		return "bad_signature"
	case BadGeometry:
		return "bad_geometry"
	case BackupMismatch:
		return "backup_mismatch"
	case BadFsInfo:
		return "bad_fsinfo"
	case Mounted:
		return "mounted"
	case AlreadyMaxSize:
		return "already_max_size"
	case TooLarge:
		return "too_large"
	case Io:
		return "io"
	case CheckpointMismatch:
		return "checkpoint_mismatch"
	case UnrecoverableState:
		return "unrecoverable_state"
	default:
		return "unknown"
	}
}

// Taxonomy collapses the fine-grained boot-sector validation kinds into the
// coarse NotFat32 kind spec.md §7's table uses.
func (k Kind) Taxonomy() Kind {
	switch k {
	case BadSignature, BadGeometry:
		return NotFat32
	default:
		return k
	}
}

// Error carries a Kind plus whatever disk-level context is available:
// the sector involved (-1 if none), the BPB/FSInfo field name (empty if
// none), and the wrapped cause.
type Error struct {
	Kind   Kind
	Sector int64
	Field  string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	var b []byte
	b = append(b, e.Kind.String()...)
	b = append(b, ':', ' ')
	b = append(b, e.Msg...)
	if e.Field != "" {
		b = append(b, fmt.Sprintf(" (field=%s)", e.Field)...)
	}
	if e.Sector >= 0 {
		b = append(b, fmt.Sprintf(" (sector=%d)", e.Sector)...)
	}
	if e.Err != nil {
		b = append(b, ": "...)
		b = append(b, e.Err.Error()...)
	}
	return string(b)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, fat32err.New(kind, "")) match on Kind alone,
// ignoring message and context.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds a context-free Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Sector: -1, Msg: msg}
}

// Wrap attaches kind and message to an underlying cause (typically an I/O
// error from the device layer).
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Sector: -1, Msg: msg, Err: err}
}

// AtSector is New with sector context attached.
func AtSector(kind Kind, sector uint64, msg string) *Error {
	return &Error{Kind: kind, Sector: int64(sector), Msg: msg}
}

// AtField is New with BPB/FSInfo field context attached.
func AtField(kind Kind, field, msg string) *Error {
	return &Error{Kind: kind, Sector: -1, Field: field, Msg: msg}
}

// Of reports the Kind of err if it (or something it wraps) is an *Error,
// and whether one was found at all.
func Of(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err's Kind (collapsed through Taxonomy) matches kind.
func Is(err error, kind Kind) bool {
	k, ok := Of(err)
	if !ok {
		return false
	}
	return k.Taxonomy() == kind.Taxonomy()
}
