// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package core

import (
	"path/filepath"
	"regexp"
	"strings"
)

const (
	dev = "/dev"

	// MMCPrefix and NVMePrefix mark device families whose partition
	// suffix is `pN` rather than a bare number
	MMCPrefix  = "mmcblk"
	NVMePrefix = "nvme"
)

var partSuffix = regexp.MustCompile("p[0-9]+$")

func hasPartSeparator(devName string) bool {
	return strings.HasPrefix(devName, MMCPrefix) || strings.HasPrefix(devName, NVMePrefix)
}

// ParentDiskFromPartition derives the whole-disk device from a
// partition device:
//
//	/dev/sda2       -> /dev/sda
//	/dev/mmcblk0p2  -> /dev/mmcblk0
//	/dev/nvme0n1p3  -> /dev/nvme0n1
func ParentDiskFromPartition(path string) string {
	p := filepath.Base(path)

	if hasPartSeparator(p) {
		return filepath.Join(dev, partSuffix.ReplaceAllString(p, ""))
	}
	return filepath.Join(dev, strings.TrimRight(p, "0123456789"))
}
