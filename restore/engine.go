// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

// Package restore copies the backup store back onto the active store.
// Two engines satisfy the same contract: TreeSync mirrors mounted
// filesystems and can run on the live system, BlockCopy duplicates
// raw partitions and must run from the recovery partition. Which one
// is used is decided by deployment configuration, not at runtime.
package restore

// Engine performs one restore pass from source to destination. The
// operation is all-or-nothing: any I/O error aborts the pass and is
// reported as a core.RestoreIOError; the engine never retries on its
// own, since partial data now exists on the destination and the retry
// decision belongs to whoever scheduled the reset
type Engine interface {
	Restore(source, destination string, exclude []string) error
}

// LiveTrees are paths never mirrored between root filesystems:
// process, kernel and device trees, temporary and mount-point
// directories. They exist on the destination but their contents are
// regenerated at boot
var LiveTrees = []string{
	"/proc",
	"/sys",
	"/dev",
	"/run",
	"/tmp",
	"/mnt",
	"/media",
	"/boot",
	"/lost+found",
}
