// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

// Package baseline populates the backup partition from the pristine
// active system, typically on first boot of freshly provisioned
// media. Once taken, the baseline is the restore source for every
// factory reset until the media is re-provisioned
package baseline

import (
	"path/filepath"

	"github.com/codesheff/build-pi-boot-disk/audit"
	"github.com/codesheff/build-pi-boot-disk/config"
	"github.com/codesheff/build-pi-boot-disk/core"
	"github.com/codesheff/build-pi-boot-disk/restore"
)

// BootImageName is the compressed raw image of the system-boot
// partition, stored on the backup partition so it survives a restore
const BootImageName = "system-boot.img.gz"

// CheckAndRun takes the baseline unless the backup partition already
// holds a structurally valid root filesystem
func CheckAndRun() error {
	backup, err := core.ResolveRole(core.RoleBackup, config.Store.Labels.Backup)
	if err != nil {
		return err
	}

	if err := core.MountReadOnly(backup.Device, core.BackupPath); err != nil {
		return err
	}
	valid := core.ValidateRoot(core.BackupPath) == nil
	if err := core.Unmount(core.BackupPath); err != nil {
		return err
	}

	if valid {
		audit.Println("Backup partition already holds a baseline")
		return nil
	}
	return Run()
}

// Run formats the backup partition, mirrors the active root onto it
// and stores a raw image of the system-boot partition alongside
func Run() error {
	audit.Println("Taking a baseline of the active system")

	active, err := core.ResolveRole(core.RoleActive, config.Store.Labels.Active)
	if err != nil {
		return err
	}
	backup, err := core.ResolveRole(core.RoleBackup, config.Store.Labels.Backup)
	if err != nil {
		return err
	}
	boot, err := core.ResolveRole(core.RoleBoot, config.Store.Labels.Boot)
	if err != nil {
		return err
	}

	// The backup must be a same-size replica for the block-copy
	// restore strategy to be available later
	activeSize, err := core.DeviceSize(active.Device)
	if err != nil {
		return err
	}
	backupSize, err := core.DeviceSize(backup.Device)
	if err != nil {
		return err
	}
	if activeSize != backupSize {
		return &core.ValidationError{
			Label:  backup.Label,
			Reason: "backup partition is not the same size as the active partition",
		}
	}

	audit.Println("Format the backup partition:", backup.Device)
	if err := core.FormatDisk(backup.Device, "ext4", backup.Label); err != nil {
		return err
	}

	if err := core.Mount(backup.Device, core.BackupPath); err != nil {
		return err
	}
	defer func() {
		_ = core.Unmount(core.BackupPath)
	}()

	audit.Println("Mirror the active system onto the backup partition")
	engine := restore.NewTreeSync()
	if err := engine.Restore("/", core.BackupPath, restore.LiveTrees); err != nil {
		return err
	}

	audit.Println("Image the system-boot partition")
	imagePath := filepath.Join(core.BackupPath, BootImageName)
	if err := restore.ReadAndGzipToFile(boot.Device, imagePath); err != nil {
		return err
	}

	audit.Println("Baseline complete")
	return nil
}
