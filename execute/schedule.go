// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package execute

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/codesheff/build-pi-boot-disk/config"
	"github.com/codesheff/build-pi-boot-disk/core"
	"github.com/codesheff/build-pi-boot-disk/reset"
)

// ScheduleCommand defines the execution options for scheduling a reset
type ScheduleCommand struct {
	ConfigPath string `short:"c" long:"config" description:"read configuration from cfg" default:"/etc/factory-reset.yaml"`
	Yes        bool   `short:"y" long:"yes" description:"skip the interactive confirmation"`
}

// Execute the schedule command
func (cmd ScheduleCommand) Execute(args []string) error {
	p, err := loadConfig(cmd.ConfigPath)
	if err != nil {
		return err
	}

	// The destructive-operation confirmation is part of the
	// contract: the next boot erases everything on the active
	// partition
	if !cmd.Yes && !confirm() {
		return errors.New("factory reset not confirmed")
	}

	_, backup, err := core.ValidatePair(config.Store.Labels.Active, config.Store.Labels.Backup)
	if err != nil {
		return err
	}

	opts := reset.Options{BackupRoot: core.BackupPath}
	if config.Store.Strategy == config.StrategyBlockCopy {
		// the block-copy strategy needs somewhere else to run from
		if _, err := core.ResolveLabel(config.Store.Labels.Recovery); err != nil {
			return err
		}
		opts.RecoveryLabel = config.Store.Labels.Recovery
	}

	if err := core.MountReadOnly(backup.Device, core.BackupPath); err != nil {
		return err
	}
	defer func() {
		_ = core.Unmount(core.BackupPath)
	}()

	return reset.Schedule(p, opts)
}

func confirm() bool {
	fmt.Println("A factory reset erases all changes on the active partition at next boot.")
	fmt.Print("Type `yes` to continue: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(line) == "yes"
}
