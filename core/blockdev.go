// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package core

import (
	"io"
	"os"
)

// DeviceSize returns the size in bytes of a block device or regular
// file. Seeking to the end works for both, which keeps the restore
// engine testable against plain files
func DeviceSize(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return f.Seek(0, io.SeekEnd)
}
