// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

// Package reset schedules, reports and cancels a factory reset. The
// state machine has two states, Idle and Scheduled, persisted as the
// presence of a flag file on the system-boot partition. Every
// transition is an atomic file create or delete, never a partial
// write, so the state survives power loss at any point
package reset

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/codesheff/build-pi-boot-disk/core"
)

// State of the reset scheduler
type State int

const (
	Idle State = iota
	Scheduled
)

func (s State) String() string {
	if s == Scheduled {
		return "scheduled"
	}
	return "idle"
}

const (
	// FlagFile marks a pending factory reset. Its path on the boot
	// partition is a compatibility contract: the boot dispatcher of
	// any generation looks for exactly this name. Existence is the
	// entire payload
	FlagFile = "factory-reset-requested"

	// SavedSuffix names the byte-identical copy of the boot
	// configuration kept while a reset is scheduled
	SavedSuffix = ".factory-saved"
)

// Paths locates the scheduler state on a mounted boot partition
type Paths struct {
	BootDir    string // mount point of the system-boot partition
	BootConfig string // boot configuration file name within BootDir
}

func (p Paths) flagPath() string {
	return filepath.Join(p.BootDir, FlagFile)
}

func (p Paths) configPath() string {
	return filepath.Join(p.BootDir, p.BootConfig)
}

func (p Paths) savedPath() string {
	return p.configPath() + SavedSuffix
}

// Status reports the persisted scheduler state. Non-destructive
func Status(p Paths) State {
	if _, err := os.Stat(p.flagPath()); err == nil {
		return Scheduled
	}
	return Idle
}

// createIntent atomically creates the flag file, failing if it
// already exists. The content is a human-readable timestamp; only the
// file's presence carries meaning
func createIntent(p Paths) error {
	f, err := os.OpenFile(p.flagPath(), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return core.ErrAlreadyScheduled
		}
		return err
	}
	fmt.Fprintf(f, "scheduled %s\n", time.Now().UTC().Format(time.RFC3339))
	return f.Close()
}

// ClearIntent removes the flag file. Called by the boot dispatcher
// only after a fully successful restore
func ClearIntent(p Paths) error {
	err := os.Remove(p.flagPath())
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
