// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package core

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// Role describes the function of a partition on the provisioned disk.
// Roles are resolved by filesystem label, never by partition index:
// the index-to-role mapping is allowed to change between disk
// generations but the labels are invariant
type Role int

const (
	RoleBoot Role = iota
	RoleActive
	RoleBackup
	RoleRecovery
)

func (r Role) String() string {
	switch r {
	case RoleBoot:
		return "boot"
	case RoleActive:
		return "active"
	case RoleBackup:
		return "backup"
	case RoleRecovery:
		return "recovery"
	}
	return "unknown"
}

// Partition identifies a role-labelled partition on the disk
type Partition struct {
	Role       Role
	Label      string
	Device     string // e.g. /dev/mmcblk0p2
	Filesystem string // e.g. ext4, vfat
}

// rootDirs is the minimum directory set expected of a root
// filesystem. A backup partition without these is uninitialized or
// mislabelled and must never be used as a restore source
var rootDirs = []string{"etc", "usr", "var"}

// ResolveRole locates the partition carrying a role label
func ResolveRole(role Role, label string) (Partition, error) {
	device, err := ResolveLabel(label)
	if err != nil {
		return Partition{}, err
	}
	return Partition{
		Role:       role,
		Label:      label,
		Device:     device,
		Filesystem: FilesystemKind(device),
	}, nil
}

// ValidatePair checks that the active and backup labels resolve to
// exactly one device each. The structural check of the backup's
// contents needs the filesystem mounted; see ValidateRoot
func ValidatePair(activeLabel, backupLabel string) (active, backup Partition, err error) {
	if activeLabel == backupLabel {
		return active, backup, &ValidationError{Label: activeLabel, Reason: "active and backup labels collide"}
	}
	active, err = ResolveRole(RoleActive, activeLabel)
	if err != nil {
		return active, backup, err
	}
	backup, err = ResolveRole(RoleBackup, backupLabel)
	return active, backup, err
}

// ValidateRoot checks that a mounted filesystem carries the minimum
// directory set of a root filesystem
func ValidateRoot(dir string) error {
	for _, d := range rootDirs {
		info, err := os.Stat(filepath.Join(dir, d))
		if err != nil || !info.IsDir() {
			return &ValidationError{
				Label:  filepath.Base(dir),
				Reason: "not a root filesystem: missing /" + d,
			}
		}
	}
	return nil
}

// IsBlockDevice reports whether the path is an existing block device
func IsBlockDevice(path string) (bool, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return false, err
	}
	return st.Mode&unix.S_IFMT == unix.S_IFBLK, nil
}

// cleanOutput trims whitespace and control characters from command
// output
func cleanOutput(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r < ' ' || r == 0x7f || r == ' '
	})
}
