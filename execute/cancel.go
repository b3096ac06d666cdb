// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package execute

import (
	"github.com/codesheff/build-pi-boot-disk/reset"
)

// CancelCommand defines the execution options for revoking a
// scheduled reset
type CancelCommand struct {
	ConfigPath string `short:"c" long:"config" description:"read configuration from cfg" default:"/etc/factory-reset.yaml"`
}

// Execute the cancel command
func (cmd CancelCommand) Execute(args []string) error {
	p, err := loadConfig(cmd.ConfigPath)
	if err != nil {
		return err
	}

	return reset.Cancel(p)
}
