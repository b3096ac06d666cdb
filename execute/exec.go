// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package execute

import (
	"github.com/codesheff/build-pi-boot-disk/audit"
	"github.com/codesheff/build-pi-boot-disk/config"
	"github.com/codesheff/build-pi-boot-disk/reset"
)

// Command defines the execution options for the application
type Command struct {
	Schedule ScheduleCommand `command:"schedule" description:"Schedule a factory reset for the next boot"`
	Status   StatusCommand   `command:"status" description:"Report whether a factory reset is pending"`
	Cancel   CancelCommand   `command:"cancel" description:"Cancel a pending factory reset"`
	Dispatch DispatchCommand `command:"dispatch" description:"Run a pending factory reset at boot (one-shot)"`
	Recover  RecoverCommand  `command:"recover" description:"Restore the active partition from the recovery environment"`
	Baseline BaselineCommand `command:"baseline" description:"Populate the backup partition from the active system"`
}

// Execution is the implementation of the execution options
var Execution Command

// loadConfig reads the configuration and points the audit trail at
// its configured location
func loadConfig(path string) (reset.Paths, error) {
	if err := config.Read(path); err != nil {
		return reset.Paths{}, err
	}
	audit.SetFile(config.Store.LogFile)

	return reset.Paths{
		BootDir:    config.Store.BootMount,
		BootConfig: config.Store.BootConfigFile,
	}, nil
}
