// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

// Package dispatch decides at boot whether a pending factory reset
// runs, and hands off to the restore engine. The in-band dispatcher
// is the canonical path: a one-shot task ordered after filesystems
// are mounted and before general services start. The recovery
// dispatcher runs from the recovery partition and needs no flag
// check, since the scheduler already pointed the boot there
package dispatch

import (
	"os"
	"path/filepath"
	"time"

	"github.com/codesheff/build-pi-boot-disk/audit"
	"github.com/codesheff/build-pi-boot-disk/core"
	"github.com/codesheff/build-pi-boot-disk/reset"
	"github.com/codesheff/build-pi-boot-disk/restore"
	"github.com/google/uuid"
)

// InBand restores the active root filesystem from the mounted backup
// while running on the system being restored. The engine excludes the
// dispatcher's own executable so the copy cannot delete the code
// performing it; the tool is re-installed from the backup afterwards
type InBand struct {
	Paths     reset.Paths
	ActiveDir string // mounted active root, "/" on the live system
	BackupDir string // backup partition, mounted read-only
	Engine    restore.Engine

	// InstallPath is the tool's location relative to the root
	// filesystem, excluded from the mirror and re-provisioned from
	// the backup once the copy completes
	InstallPath string

	// Retain lists paths (relative to the active root) staged aside
	// before the restore and replayed afterwards
	Retain []string

	// StagingDir holds the retained data while the restore runs,
	// typically a tmpfs so nothing retained touches the partitions
	// being rewritten. A temp directory is used when empty
	StagingDir string

	// Exclude extends the default exclusion set
	Exclude []string
}

// Run executes at most one restore operation. With no reset intent
// present it does nothing and the boot continues untouched. On any
// failure the intent is deliberately left in place: the next boot
// retries instead of proceeding on a half-restored disk
func (d *InBand) Run() error {
	if reset.Status(d.Paths) != reset.Scheduled {
		return nil
	}

	op := uuid.New().String()
	start := time.Now()
	audit.Printf("[%s] Factory reset starting: `%s` -> `%s`", op, d.BackupDir, d.ActiveDir)

	if err := d.run(op); err != nil {
		audit.Printf("[%s] Factory reset FAILED after %v: %v", op, time.Since(start).Round(time.Millisecond), err)
		audit.Printf("[%s] Reset intent left in place; next boot will retry", op)
		return err
	}

	if err := reset.ClearIntent(d.Paths); err != nil {
		audit.Printf("[%s] Cannot clear reset intent: %v", op, err)
		return err
	}

	audit.Printf("[%s] Factory reset complete in %v", op, time.Since(start).Round(time.Millisecond))
	return nil
}

func (d *InBand) run(op string) error {
	if err := core.ValidateRoot(d.BackupDir); err != nil {
		return err
	}

	staging, err := d.stageRetained(op)
	if err != nil {
		return err
	}
	if len(staging) > 0 {
		defer os.RemoveAll(staging)
	}

	exclude := append([]string{}, restore.LiveTrees...)
	exclude = append(exclude, d.Exclude...)
	if len(d.InstallPath) > 0 {
		exclude = append(exclude, d.InstallPath)
	}

	if err := d.Engine.Restore(d.BackupDir, d.ActiveDir, exclude); err != nil {
		return err
	}

	if err := d.reinstallTool(op); err != nil {
		return err
	}

	return d.replayRetained(op, staging)
}

// stageRetained copies the configured retain paths out of the active
// root before they are overwritten
func (d *InBand) stageRetained(op string) (string, error) {
	if len(d.Retain) == 0 {
		return "", nil
	}

	staging, err := os.MkdirTemp(d.StagingDir, "factory-reset-retain-")
	if err != nil {
		return "", err
	}

	for _, rel := range d.Retain {
		src := filepath.Join(d.ActiveDir, rel)
		info, err := os.Stat(src)
		if os.IsNotExist(err) {
			audit.Printf("[%s] Retain path not found: %s", op, rel)
			continue
		}
		if err != nil {
			return "", err
		}

		dest := filepath.Join(staging, rel)
		if info.IsDir() {
			err = core.CopyDirectory(src, filepath.Dir(dest))
		} else {
			err = core.CopyFile(src, dest)
		}
		if err != nil {
			return "", err
		}
		audit.Printf("[%s] Retained `%s`", op, rel)
	}

	return staging, nil
}

func (d *InBand) replayRetained(op, staging string) error {
	if len(staging) == 0 {
		return nil
	}

	for _, rel := range d.Retain {
		src := filepath.Join(staging, rel)
		info, err := os.Stat(src)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return err
		}

		dest := filepath.Join(d.ActiveDir, rel)
		if info.IsDir() {
			err = core.CopyDirectory(src, filepath.Dir(dest))
		} else {
			err = core.CopyFile(src, dest)
		}
		if err != nil {
			return err
		}
		audit.Printf("[%s] Restored retained `%s`", op, rel)
	}

	return nil
}

// reinstallTool copies the reset tooling from the backup onto the
// freshly restored active root. The mirror excluded the running
// executable, so whatever was at the install path is the old copy;
// the backup's copy is authoritative
func (d *InBand) reinstallTool(op string) error {
	if len(d.InstallPath) == 0 {
		return nil
	}

	src := filepath.Join(d.BackupDir, d.InstallPath)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		audit.Printf("[%s] No tool to re-install at `%s`", op, src)
		return nil
	}

	dest := filepath.Join(d.ActiveDir, d.InstallPath)
	if err := core.CopyFile(src, dest); err != nil {
		return err
	}
	audit.Printf("[%s] Re-installed reset tooling at `%s`", op, d.InstallPath)
	return nil
}
