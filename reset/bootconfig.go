// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package reset

import (
	"fmt"
	"os"
	"regexp"

	"github.com/codesheff/build-pi-boot-disk/core"
)

var rootParam = regexp.MustCompile(`root=\S+`)

// saveBootConfig keeps a byte-identical copy of the boot
// configuration next to the original, so cancellation and the
// recovery dispatcher can restore it exactly
func saveBootConfig(p Paths) error {
	data, err := os.ReadFile(p.configPath())
	if err != nil {
		return err
	}
	info, err := os.Stat(p.configPath())
	if err != nil {
		return err
	}

	tmp := p.savedPath() + ".tmp"
	if err := os.WriteFile(tmp, data, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmp, p.savedPath())
}

// pointAtRecovery rewrites the root= parameter so the next boot lands
// in the recovery partition. The original must have been saved first
func pointAtRecovery(p Paths, recoveryLabel string) error {
	data, err := os.ReadFile(p.configPath())
	if err != nil {
		return err
	}
	if !rootParam.Match(data) {
		return &core.ConfigCorruptError{
			Path: p.configPath(),
			Err:  fmt.Errorf("no root= parameter found"),
		}
	}
	info, err := os.Stat(p.configPath())
	if err != nil {
		return err
	}

	rewritten := rootParam.ReplaceAll(data, []byte("root=LABEL="+recoveryLabel))

	tmp := p.configPath() + ".tmp"
	if err := os.WriteFile(tmp, rewritten, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmp, p.configPath())
}

// RestoreBootConfig puts the saved boot configuration back,
// byte-identical, and removes the saved copy. A missing or unreadable
// saved copy means the system cannot prove what normal looked like,
// reported as the distinct ConfigCorruptError
func RestoreBootConfig(p Paths) error {
	data, err := os.ReadFile(p.savedPath())
	if err != nil {
		return &core.ConfigCorruptError{Path: p.savedPath(), Err: err}
	}
	info, err := os.Stat(p.savedPath())
	if err != nil {
		return &core.ConfigCorruptError{Path: p.savedPath(), Err: err}
	}

	tmp := p.configPath() + ".tmp"
	if err := os.WriteFile(tmp, data, info.Mode().Perm()); err != nil {
		return err
	}
	if err := os.Rename(tmp, p.configPath()); err != nil {
		return err
	}
	return os.Remove(p.savedPath())
}

// HasSavedBootConfig reports whether a saved copy exists, i.e.
// whether the schedule rewrote the boot configuration
func HasSavedBootConfig(p Paths) bool {
	_, err := os.Stat(p.savedPath())
	return err == nil
}
