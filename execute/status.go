// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package execute

import (
	"fmt"

	"github.com/codesheff/build-pi-boot-disk/reset"
)

// StatusCommand defines the execution options for the status query
type StatusCommand struct {
	ConfigPath string `short:"c" long:"config" description:"read configuration from cfg" default:"/etc/factory-reset.yaml"`
}

// Execute the status command. The state goes to stdout and the exit
// code is always zero; only a config failure is an error
func (cmd StatusCommand) Execute(args []string) error {
	p, err := loadConfig(cmd.ConfigPath)
	if err != nil {
		return err
	}

	fmt.Println(reset.Status(p))
	return nil
}
