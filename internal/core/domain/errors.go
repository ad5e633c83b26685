package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is against these to classify a failure.
var (
	ErrConfig     = errors.New("configuration error")
	ErrFileAccess = errors.New("file access error")
	ErrParse      = errors.New("parse error")
	ErrNetwork    = errors.New("network error")
	ErrNotFound   = errors.New("not found")
	ErrChannel    = errors.New("channel error")
)

// Error is a classified failure carrying the operation and path involved
type Error struct {
	// Kind is one of the Err* sentinels.
	Kind error
	// Op describes what was being attempted.
	Op string
	// Path is the file or URL involved, if any.
	Path string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Kind.Error() + ": " + e.Op
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying error to errors.Is/As
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewConfigError creates an error for unreadable or malformed settings
func NewConfigError(op, path string, err error) error {
	return &Error{Kind: ErrConfig, Op: op, Path: path, Err: err}
}

// NewFileAccessError creates an error for registry, plugin or startup script I/O failures
func NewFileAccessError(op, path string, err error) error {
	return &Error{Kind: ErrFileAccess, Op: op, Path: path, Err: err}
}

// NewParseError creates an error for malformed persisted content
func NewParseError(op, path string, err error) error {
	return &Error{Kind: ErrParse, Op: op, Path: path, Err: err}
}

// NewNetworkError creates an error for plugin download failures
func NewNetworkError(op, url string, err error) error {
	return &Error{Kind: ErrNetwork, Op: op, Path: url, Err: err}
}

// NewNotFoundError creates an error for a plugin that does not exist
func NewNotFoundError(op, name string) error {
	return &Error{Kind: ErrNotFound, Op: op, Path: name}
}

// NewChannelError creates an error for an internal queue send that failed
func NewChannelError(op string, err error) error {
	return &Error{Kind: ErrChannel, Op: op, Err: err}
}
