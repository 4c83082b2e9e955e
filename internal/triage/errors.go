package triage

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by a Session command matches exactly
// one of these with errors.Is.
var (
	ErrIO                = errors.New("i/o failure")
	ErrBackupMissing     = errors.New("no crop to undo")
	ErrNothingToUndo     = errors.New("nothing to undo")
	ErrMissingSourceFile = errors.New("file not found")
	ErrUnreadableImage   = errors.New("unreadable image")
	ErrQueueComplete     = errors.New("no images left to sort")
	ErrStaleCrop         = errors.New("crop request does not match the current image")
	ErrNavigation        = errors.New("invalid folder")
)

// Error describes a failed command.
type Error struct {
	Kind error
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func failure(kind error, op, path string, err error) error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}
