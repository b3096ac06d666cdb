// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package core

import (
	"fmt"
	"os/exec"
	"strings"
)

// ResolveLabel locates the single block device carrying a filesystem
// label. Unlike findfs, blkid lists every match, so an ambiguous
// label (two disks from different generations plugged in at once) is
// detected instead of silently picking one
func ResolveLabel(label string) (string, error) {
	out, err := exec.Command("blkid", "-o", "device", "-t", fmt.Sprintf("LABEL=%s", label)).Output()
	if err != nil {
		return "", &ValidationError{Label: label, Reason: "no partition carries this label"}
	}

	devices := []string{}
	for _, line := range strings.Split(string(out), "\n") {
		if d := cleanOutput(line); len(d) > 0 {
			devices = append(devices, d)
		}
	}

	switch len(devices) {
	case 0:
		return "", &ValidationError{Label: label, Reason: "no partition carries this label"}
	case 1:
		return devices[0], nil
	default:
		return "", &ValidationError{
			Label:  label,
			Reason: fmt.Sprintf("label is ambiguous: %s", strings.Join(devices, ", ")),
		}
	}
}

// FilesystemKind reports the filesystem type on a device, or an
// empty string when it cannot be determined
func FilesystemKind(device string) string {
	out, err := exec.Command("blkid", "-o", "value", "-s", "TYPE", device).Output()
	if err != nil {
		return ""
	}
	return cleanOutput(string(out))
}

// FormatDisk formats a partition as ext4 with the given label
func FormatDisk(device, fstype, label string) error {
	out, err := exec.Command(mkfsCommand(fstype), "-F", "-L", label, device).CombinedOutput()
	if err != nil {
		return fmt.Errorf("formatting `%s` failed: %v: %s", device, err, cleanOutput(string(out)))
	}
	return nil
}

// RefreshPartitionTable asks the kernel to re-read the partition
// table after raw writes to the disk
func RefreshPartitionTable(device string) error {
	out, err := exec.Command("partprobe", device).CombinedOutput()
	if err != nil {
		return fmt.Errorf("partprobe `%s` failed: %v: %s", device, err, cleanOutput(string(out)))
	}
	return nil
}

func mkfsCommand(fstype string) string {
	mkfsCommands := map[string]string{
		"ext2": "mkfs.ext2",
		"ext3": "mkfs.ext3",
		"ext4": "mkfs.ext4",
		"fat":  "mkfs.vfat",
		"vfat": "mkfs.vfat",
	}

	if val, ok := mkfsCommands[fstype]; ok {
		return val
	}
	return "mkfs.ext4"
}
