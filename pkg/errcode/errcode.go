// Package errcode defines the error kinds surfaced by configuration tree handlers.
package errcode

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Kind classifies an error returned to the configurator
type Kind int

const (
	// None is the kind of a nil error
	None Kind = iota
	// NotFound means the key or node is absent
	NotFound
	// Invalid means the input was rejected by a parser
	Invalid
	// PermissionDenied means an attempt to modify a read-only attribute
	PermissionDenied
	// NotSupported means the kernel does not support the operation
	NotSupported
	// Overflow means a native size exceeded a fixed ceiling
	Overflow
	// Range means a value does not fit the target field or mask
	Range
	// AlreadyExists means an attempt to add an existing key
	AlreadyExists
	// InProgress means an operation was issued out of sequence
	InProgress
	// SmallBuffer means a formatted value exceeds the output bound
	SmallBuffer
	// NoMemory means the object cache is exhausted
	NoMemory
	// NameTooLong means an attribute name or value exceeds its bound
	NameTooLong
	// LocallyAdded means deleting an object which was added but not committed
	LocallyAdded
	// OSError means the kernel returned an errno, see Errno()
	OSError
)

var kindNames = map[Kind]string{
	None:             "none",
	NotFound:         "not-found",
	Invalid:          "invalid",
	PermissionDenied: "permission-denied",
	NotSupported:     "operation-not-supported",
	Overflow:         "overflow",
	Range:            "range",
	AlreadyExists:    "already-exists",
	InProgress:       "in-progress",
	SmallBuffer:      "small-buffer",
	NoMemory:         "no-memory",
	NameTooLong:      "name-too-long",
	LocallyAdded:     "locally-added",
	OSError:          "os-error",
}

// String returns the printable name of the kind
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is an error carrying a Kind and, for OSError, the errno
type Error struct {
	Kind  Kind
	Errno unix.Errno
	msg   string
}

// Error implements error interface
func (e *Error) Error() string {
	if e.Kind == OSError && e.Errno != 0 {
		return fmt.Sprintf("%s: %s", e.msg, e.Errno.Error())
	}
	return fmt.Sprintf("%s: %s", e.msg, e.Kind)
}

// Unwrap allows errors.Is(err, unix.EXXX) on os errors
func (e *Error) Unwrap() error {
	if e.Errno != 0 {
		return e.Errno
	}
	return nil
}

// New creates a new error of the given kind
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// FromErrno converts an error returned by the native layer. An errno is
// kept verbatim, EOPNOTSUPP becomes NotSupported. Other errors are wrapped
// with the message.
func FromErrno(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	var errno unix.Errno
	if errors.As(err, &errno) {
		kind := OSError
		if errno == unix.EOPNOTSUPP {
			kind = NotSupported
		}
		return &Error{Kind: kind, Errno: errno, msg: fmt.Sprintf(format, args...)}
	}
	return errors.Wrapf(err, format, args...)
}

// KindOf returns the kind of err. Errors which carry no kind are OSError.
func KindOf(err error) Kind {
	if err == nil {
		return None
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var errno unix.Errno
	if errors.As(err, &errno) && errno == unix.EOPNOTSUPP {
		return NotSupported
	}
	return OSError
}

// Is returns true if err is of the given kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Errno returns the errno carried by err, or 0
func Errno(err error) unix.Errno {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return 0
}
