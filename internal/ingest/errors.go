package ingest

import (
	"errors"
	"fmt"
)

// ErrNoHeader is wrapped by ParseError when no header row survives recovery.
var ErrNoHeader = errors.New("CSV headers could not be detected")

// ParseError indicates the input could not be turned into a table. The
// dataset a caller holds must be left untouched when it is returned.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "parse failed"
	}
	if e.Reason == "" {
		return fmt.Sprintf("parse failed: %v", e.Err)
	}
	if e.Err == nil {
		return fmt.Sprintf("parse failed: %s", e.Reason)
	}
	return fmt.Sprintf("parse failed: %s: %v", e.Reason, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReadError indicates the underlying file could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	if e == nil {
		return "read failed"
	}
	if e.Path != "" {
		return fmt.Sprintf("read %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("read failed: %v", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
