// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package core

import (
	"errors"
	"fmt"
)

// ErrAlreadyScheduled is returned when a factory reset has already
// been scheduled and not yet consumed or cancelled
var ErrAlreadyScheduled = errors.New("a factory reset is already scheduled")

// ErrNothingScheduled is returned by a cancel when no reset is pending
var ErrNothingScheduled = errors.New("no factory reset is scheduled")

// ValidationError reports a partition that cannot safely take part in
// a reset: missing, ambiguous, or structurally not a root filesystem
type ValidationError struct {
	Label  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("partition `%s` failed validation: %s", e.Label, e.Reason)
}

// RestoreIOError aborts a restore operation. The path (or device
// offset) identifies where the copy failed; the reset intent is left
// in place so the next boot retries rather than running on a
// half-restored disk
type RestoreIOError struct {
	Path   string
	Offset int64
	Err    error
}

func (e *RestoreIOError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("restore failed at `%s` offset %d: %v", e.Path, e.Offset, e.Err)
	}
	return fmt.Sprintf("restore failed at `%s`: %v", e.Path, e.Err)
}

func (e *RestoreIOError) Unwrap() error { return e.Err }

// ConfigCorruptError means the saved boot configuration is missing or
// unreadable, so the system cannot prove what normal looked like.
// Deliberately distinct from ValidationError and always fatal
type ConfigCorruptError struct {
	Path string
	Err  error
}

func (e *ConfigCorruptError) Error() string {
	return fmt.Sprintf("saved boot configuration `%s` is missing or corrupt: %v", e.Path, e.Err)
}

func (e *ConfigCorruptError) Unwrap() error { return e.Err }
