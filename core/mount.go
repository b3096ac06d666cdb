// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package core

import (
	"fmt"
	"os"
	"strings"

	"github.com/u-root/u-root/pkg/mount"
	"golang.org/x/sys/unix"
)

// Well-known mount points used while a reset is in flight
const (
	BootPath    = "/run/factory-reset/boot"
	BackupPath  = "/run/factory-reset/backup"
	TempFSMount = "/run/factory-reset/retain"
)

// Mount mounts a partition, probing the filesystem type
func Mount(device, target string) error {
	if err := os.MkdirAll(target, 0755); err != nil {
		return err
	}
	_, err := mount.TryMount(device, target, "", 0)
	return err
}

// MountReadOnly mounts a partition read-only. The backup partition is
// only ever mounted this way while a restore is in flight
func MountReadOnly(device, target string) error {
	if err := os.MkdirAll(target, 0755); err != nil {
		return err
	}
	_, err := mount.TryMount(device, target, "", unix.MS_RDONLY)
	return err
}

// MountTempFS mounts a tmpfs for staging retained user data across a
// restore
func MountTempFS(target string, sizeMB int) error {
	if err := os.MkdirAll(target, 0755); err != nil {
		return err
	}
	_, err := mount.Mount("tmpfs", target, "tmpfs", fmt.Sprintf("size=%dm", sizeMB), 0)
	return err
}

// Unmount unmounts a path, ignoring busy errors on a lazy retry
func Unmount(target string) error {
	if err := mount.Unmount(target, false, false); err != nil {
		return mount.Unmount(target, false, true)
	}
	return nil
}

// IsMounted reports whether a block device appears in the mount
// table. An empty mountsFile reads the kernel's view for this
// process. A mounted device must never be the target of a raw write
func IsMounted(device, mountsFile string) (bool, error) {
	if len(mountsFile) == 0 {
		mountsFile = "/proc/self/mounts"
	}
	data, err := os.ReadFile(mountsFile)
	if err != nil {
		return false, err
	}

	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == device {
			return true, nil
		}
	}
	return false, nil
}
