// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package reset

import (
	"github.com/codesheff/build-pi-boot-disk/audit"
	"github.com/codesheff/build-pi-boot-disk/core"
)

// Options control how a reset is scheduled
type Options struct {
	// BackupRoot is the mounted backup partition, checked for the
	// minimum structure of a root filesystem before anything commits
	BackupRoot string

	// RecoveryLabel, when set, points the next boot at the recovery
	// partition: the block-copy path. When empty the reset stays
	// in-band and the boot configuration is left alone
	RecoveryLabel string
}

// Schedule records the intent to factory reset on next boot. It does
// not perform the restore. Preconditions: the backup partition is
// structurally valid and no reset is already scheduled — the flag
// file acts as the mutual-exclusion token, so there is never a second
// writer of the boot configuration
func Schedule(p Paths, opts Options) error {
	if Status(p) == Scheduled {
		return core.ErrAlreadyScheduled
	}

	if err := core.ValidateRoot(opts.BackupRoot); err != nil {
		audit.Printf("Backup partition rejected: %v", err)
		return err
	}

	if len(opts.RecoveryLabel) > 0 {
		if err := saveBootConfig(p); err != nil {
			return err
		}
		if err := pointAtRecovery(p, opts.RecoveryLabel); err != nil {
			// roll the saved copy back so cancel is not needed
			_ = RestoreBootConfig(p)
			return err
		}
		audit.Printf("Next boot directed at recovery partition `%s`", opts.RecoveryLabel)
	}

	// The flag file is the commit point
	if err := createIntent(p); err != nil {
		if len(opts.RecoveryLabel) > 0 {
			_ = RestoreBootConfig(p)
		}
		return err
	}

	audit.Println("Factory reset scheduled for next boot")
	return nil
}

// Cancel revokes a scheduled reset before it executes, restoring the
// boot configuration byte-identically when the schedule rewrote it
func Cancel(p Paths) error {
	if Status(p) != Scheduled {
		return core.ErrNothingScheduled
	}

	if HasSavedBootConfig(p) {
		if err := RestoreBootConfig(p); err != nil {
			return err
		}
		audit.Println("Boot configuration restored")
	}

	if err := ClearIntent(p); err != nil {
		return err
	}

	audit.Println("Factory reset cancelled")
	return nil
}
