// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package dispatch

import (
	"time"

	"github.com/codesheff/build-pi-boot-disk/audit"
	"github.com/codesheff/build-pi-boot-disk/core"
	"github.com/codesheff/build-pi-boot-disk/reset"
	"github.com/codesheff/build-pi-boot-disk/restore"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// Recovery restores the active partition from the recovery
// environment, where neither filesystem is mounted and the raw blocks
// can be overwritten safely. It runs unconditionally: its only job is
// to restore and hand back, since the scheduler already pointed the
// boot configuration here
type Recovery struct {
	Paths     reset.Paths
	ActiveDev string // raw active partition, unmounted
	BackupDev string // raw backup partition, unmounted
	Engine    restore.Engine

	// BootImage, when set, re-images the boot partition at BootDev
	// from a compressed baseline image instead of restoring the
	// saved boot configuration. The image already selects the active
	// partition, so the saved copy and the reset flag go with it
	BootImage string
	BootDev   string

	// UnmountBoot releases the mounted boot partition before BootDev
	// is written raw. Nil when the caller never mounted it
	UnmountBoot func() error

	// MountsFile overrides /proc/self/mounts in tests
	MountsFile string

	// Reboot restarts the machine into the restored system after a
	// successful run. Disabled in tests
	Reboot bool
}

// Run performs the block restore, puts the original boot
// configuration back and reboots into the restored active partition.
// Any failure keeps the reset intent and the recovery boot
// configuration in place: the system stays in recovery rather than
// guessing its way back to a normal boot
func (r *Recovery) Run() error {
	op := uuid.New().String()
	start := time.Now()
	audit.Printf("[%s] Recovery restore starting: `%s` -> `%s`", op, r.BackupDev, r.ActiveDev)

	if err := r.refuseMounted(); err != nil {
		audit.Printf("[%s] Recovery restore refused: %v", op, err)
		return err
	}

	if err := r.Engine.Restore(r.BackupDev, r.ActiveDev, nil); err != nil {
		audit.Printf("[%s] Recovery restore FAILED after %v: %v", op, time.Since(start).Round(time.Millisecond), err)
		return err
	}

	if len(r.BootImage) > 0 {
		audit.Printf("[%s] Re-image boot partition `%s` from `%s`", op, r.BootDev, r.BootImage)
		if err := r.restoreBootImage(); err != nil {
			audit.Printf("[%s] Cannot re-image boot partition: %v", op, err)
			return err
		}
	} else if err := reset.RestoreBootConfig(r.Paths); err != nil {
		audit.Printf("[%s] Cannot restore boot configuration: %v", op, err)
		return err
	}

	if err := reset.ClearIntent(r.Paths); err != nil {
		audit.Printf("[%s] Cannot clear reset intent: %v", op, err)
		return err
	}

	audit.Printf("[%s] Recovery restore complete in %v", op, time.Since(start).Round(time.Millisecond))

	unix.Sync()
	if r.Reboot {
		return unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART)
	}
	return nil
}

// refuseMounted fails closed when either raw copy endpoint is still
// in the mount table. Writing a mounted filesystem raw corrupts it
func (r *Recovery) refuseMounted() error {
	for _, device := range []string{r.ActiveDev, r.BackupDev} {
		mounted, err := core.IsMounted(device, r.MountsFile)
		if err != nil {
			return err
		}
		if mounted {
			return &core.ValidationError{Label: device, Reason: "partition is mounted, raw restore refused"}
		}
	}
	return nil
}

func (r *Recovery) restoreBootImage() error {
	if r.UnmountBoot != nil {
		if err := r.UnmountBoot(); err != nil {
			return err
		}
	}
	return restore.UnzipToDevice(r.BootImage, r.BootDev)
}
