// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package execute

import (
	"os"

	"github.com/codesheff/build-pi-boot-disk/config"
	"github.com/codesheff/build-pi-boot-disk/core"
	"github.com/codesheff/build-pi-boot-disk/dispatch"
	"github.com/codesheff/build-pi-boot-disk/reset"
	"github.com/codesheff/build-pi-boot-disk/restore"
)

// DispatchCommand defines the execution options for the in-band boot
// dispatcher, run as a one-shot task before general services start
type DispatchCommand struct {
	ConfigPath string `short:"c" long:"config" description:"read configuration from cfg" default:"/etc/factory-reset.yaml"`
}

// Execute the dispatch command
func (cmd DispatchCommand) Execute(args []string) error {
	p, err := loadConfig(cmd.ConfigPath)
	if err != nil {
		return err
	}

	// The fast path: nothing scheduled, boot continues untouched
	if reset.Status(p) != reset.Scheduled {
		return nil
	}

	_, backup, err := core.ValidatePair(config.Store.Labels.Active, config.Store.Labels.Backup)
	if err != nil {
		return err
	}

	if err := core.MountReadOnly(backup.Device, core.BackupPath); err != nil {
		return err
	}
	defer func() {
		_ = core.Unmount(core.BackupPath)
	}()

	d := &dispatch.InBand{
		Paths:       p,
		ActiveDir:   "/",
		BackupDir:   core.BackupPath,
		Engine:      restore.NewTreeSync(),
		InstallPath: config.Store.InstallPath,
		Retain:      config.Store.Retain.Data,
		Exclude:     config.Store.Exclude,
	}

	// The running executable may not be at the configured install
	// path; protect it from its own mirror either way
	if exe, err := os.Executable(); err == nil && exe != d.InstallPath {
		d.Exclude = append(d.Exclude, exe)
	}

	// Stage retained data on a tmpfs so it never lives on the
	// partition being rewritten
	if len(d.Retain) > 0 {
		if err := core.MountTempFS(core.TempFSMount, config.Store.Retain.Size); err == nil {
			d.StagingDir = core.TempFSMount
			defer func() {
				_ = core.Unmount(core.TempFSMount)
			}()
		}
	}

	return d.Run()
}
