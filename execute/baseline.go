// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package execute

import (
	"github.com/codesheff/build-pi-boot-disk/baseline"
)

// BaselineCommand defines the execution options for taking the
// initial backup of the pristine active system
type BaselineCommand struct {
	ConfigPath string `short:"c" long:"config" description:"read configuration from cfg" default:"/etc/factory-reset.yaml"`
	Force      bool   `short:"f" long:"force" description:"retake the baseline even if one exists"`
}

// Execute the baseline command
func (cmd BaselineCommand) Execute(args []string) error {
	if _, err := loadConfig(cmd.ConfigPath); err != nil {
		return err
	}

	if cmd.Force {
		return baseline.Run()
	}
	return baseline.CheckAndRun()
}
