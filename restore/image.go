// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package restore

import (
	"io"
	"os"

	"github.com/codesheff/build-pi-boot-disk/audit"
	"github.com/codesheff/build-pi-boot-disk/core"
	humanize "github.com/dustin/go-humanize"
	gzip "github.com/klauspost/compress/gzip"
)

// ReadAndGzipToFile backs up a partition's raw bytes to a compressed
// image file. Keeping the exact filesystem image means the boot
// partition can be restored without caring about its format
func ReadAndGzipToFile(device, imagePath string) error {
	in, err := os.Open(device)
	if err != nil {
		return &core.RestoreIOError{Path: device, Err: err}
	}
	defer in.Close()

	out, err := os.OpenFile(imagePath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return &core.RestoreIOError{Path: imagePath, Err: err}
	}
	defer out.Close()

	zw := gzip.NewWriter(out)
	n, err := io.Copy(zw, in)
	if err != nil {
		return &core.RestoreIOError{Path: device, Offset: n, Err: err}
	}
	if err := zw.Close(); err != nil {
		return &core.RestoreIOError{Path: imagePath, Err: err}
	}
	if err := out.Sync(); err != nil {
		return &core.RestoreIOError{Path: imagePath, Err: err}
	}

	audit.Printf("Imaged %s from `%s` to `%s`", humanize.Bytes(uint64(n)), device, imagePath)
	return nil
}

// UnzipToDevice writes a compressed raw image back onto a device and
// asks the kernel to re-read the partition table
func UnzipToDevice(imagePath, device string) error {
	in, err := os.Open(imagePath)
	if err != nil {
		return &core.RestoreIOError{Path: imagePath, Err: err}
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return &core.RestoreIOError{Path: imagePath, Err: err}
	}
	defer zr.Close()

	out, err := os.OpenFile(device, os.O_WRONLY, 0)
	if err != nil {
		return &core.RestoreIOError{Path: device, Err: err}
	}
	defer out.Close()

	n, err := io.Copy(out, zr)
	if err != nil {
		return &core.RestoreIOError{Path: device, Offset: n, Err: err}
	}
	if err := out.Sync(); err != nil {
		return &core.RestoreIOError{Path: device, Offset: n, Err: err}
	}

	audit.Printf("Wrote %s from `%s` to `%s`", humanize.Bytes(uint64(n)), imagePath, device)

	if isBlk, _ := core.IsBlockDevice(device); isBlk {
		return core.RefreshPartitionTable(core.ParentDiskFromPartition(device))
	}
	return nil
}
