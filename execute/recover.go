// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package execute

import (
	"os"
	"path/filepath"

	"github.com/codesheff/build-pi-boot-disk/audit"
	"github.com/codesheff/build-pi-boot-disk/baseline"
	"github.com/codesheff/build-pi-boot-disk/config"
	"github.com/codesheff/build-pi-boot-disk/core"
	"github.com/codesheff/build-pi-boot-disk/dispatch"
	"github.com/codesheff/build-pi-boot-disk/reset"
	"github.com/codesheff/build-pi-boot-disk/restore"
)

// RecoverCommand defines the execution options for the recovery
// environment dispatcher. It runs from the recovery partition, where
// the active and backup partitions are raw unmounted block ranges
type RecoverCommand struct {
	ConfigPath string `short:"c" long:"config" description:"read configuration from cfg" default:"/etc/factory-reset.yaml"`
	NoReboot   bool   `long:"no-reboot" description:"do not reboot after a successful restore"`
	BootImage  bool   `long:"boot-image" description:"also re-image the boot partition from the baseline image on the backup partition"`
}

// Execute the recover command
func (cmd RecoverCommand) Execute(args []string) error {
	if err := config.Read(cmd.ConfigPath); err != nil {
		return err
	}

	// In the recovery environment nothing is mounted yet; bring up
	// the boot partition so the scheduler state and the audit trail
	// are reachable
	boot, err := core.ResolveRole(core.RoleBoot, config.Store.Labels.Boot)
	if err != nil {
		return err
	}
	if err := core.Mount(boot.Device, core.BootPath); err != nil {
		return err
	}
	defer func() {
		_ = core.Unmount(core.BootPath)
	}()

	audit.SetFile(filepath.Join(core.BootPath, filepath.Base(config.Store.LogFile)))

	active, backup, err := core.ValidatePair(config.Store.Labels.Active, config.Store.Labels.Backup)
	if err != nil {
		return err
	}

	r := &dispatch.Recovery{
		Paths: reset.Paths{
			BootDir:    core.BootPath,
			BootConfig: config.Store.BootConfigFile,
		},
		ActiveDev: active.Device,
		BackupDev: backup.Device,
		Engine:    restore.NewBlockCopy(),
		Reboot:    !cmd.NoReboot,
	}

	if cmd.BootImage {
		image, err := stageBootImage(backup.Device)
		if err != nil {
			return err
		}
		defer func() {
			_ = os.RemoveAll(filepath.Dir(image))
		}()

		r.BootImage = image
		r.BootDev = boot.Device
		r.UnmountBoot = func() error {
			return core.Unmount(core.BootPath)
		}
	}
	return r.Run()
}

// stageBootImage copies the baseline boot image off the backup
// partition into a scratch directory, so the backup partition is
// unmounted again before the raw restore touches it
func stageBootImage(backupDev string) (string, error) {
	if err := core.MountReadOnly(backupDev, core.BackupPath); err != nil {
		return "", err
	}
	defer func() {
		_ = core.Unmount(core.BackupPath)
	}()

	staging, err := os.MkdirTemp("", "factory-reset-boot-")
	if err != nil {
		return "", err
	}

	image := filepath.Join(staging, baseline.BootImageName)
	if err := core.CopyFile(filepath.Join(core.BackupPath, baseline.BootImageName), image); err != nil {
		_ = os.RemoveAll(staging)
		return "", err
	}
	return image, nil
}
