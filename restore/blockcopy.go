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
)

const defaultBufferSize = 4 * 1024 * 1024

// BlockCopy duplicates the backup partition onto the active partition
// byte for byte. Both must be equal-sized raw block ranges and
// neither filesystem may be mounted; the engine therefore only runs
// from the recovery partition
type BlockCopy struct {
	BufferSize int
}

func NewBlockCopy() *BlockCopy {
	return &BlockCopy{BufferSize: defaultBufferSize}
}

// Restore copies source onto destination. The exclude set does not
// apply at block granularity and must be empty
func (b *BlockCopy) Restore(source, destination string, exclude []string) error {
	if len(exclude) > 0 {
		return &core.RestoreIOError{Path: destination, Err: errExcludeUnsupported}
	}

	srcSize, err := core.DeviceSize(source)
	if err != nil {
		return &core.RestoreIOError{Path: source, Err: err}
	}
	dstSize, err := core.DeviceSize(destination)
	if err != nil {
		return &core.RestoreIOError{Path: destination, Err: err}
	}
	if srcSize != dstSize {
		return &core.RestoreIOError{Path: destination, Err: &sizeMismatchError{srcSize, dstSize}}
	}

	in, err := os.Open(source)
	if err != nil {
		return &core.RestoreIOError{Path: source, Err: err}
	}
	defer in.Close()

	out, err := os.OpenFile(destination, os.O_WRONLY, 0)
	if err != nil {
		return &core.RestoreIOError{Path: destination, Err: err}
	}
	defer out.Close()

	size := b.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	buf := make([]byte, size)

	var offset int64
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return &core.RestoreIOError{Path: destination, Offset: offset, Err: werr}
			}
			offset += int64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return &core.RestoreIOError{Path: source, Offset: offset, Err: err}
		}
	}

	if err := out.Sync(); err != nil {
		return &core.RestoreIOError{Path: destination, Offset: offset, Err: err}
	}

	audit.Printf("Copied %s from `%s` to `%s`", humanize.Bytes(uint64(offset)), source, destination)
	return nil
}

var errExcludeUnsupported = errSentinel("block copy cannot exclude paths")

type errSentinel string

func (e errSentinel) Error() string { return string(e) }

type sizeMismatchError struct {
	src, dst int64
}

func (e *sizeMismatchError) Error() string {
	return "source and destination sizes differ: " +
		humanize.Comma(e.src) + " vs " + humanize.Comma(e.dst) + " bytes"
}
