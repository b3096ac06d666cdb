// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package restore_test

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/codesheff/build-pi-boot-disk/core"
	"github.com/codesheff/build-pi-boot-disk/restore"
	check "gopkg.in/check.v1"
)

type blockCopySuite struct{}

var _ = check.Suite(&blockCopySuite{})

// fakePartition writes a pseudo-random blob of the given size and
// returns its path. Regular files stand in for raw partitions
func fakePartition(c *check.C, size int, seed byte) string {
	blob := make([]byte, size)
	for i := range blob {
		blob[i] = byte(i)*7 + seed
	}
	path := filepath.Join(c.MkDir(), "part")
	c.Assert(os.WriteFile(path, blob, 0600), check.IsNil)
	return path
}

func (s *blockCopySuite) TestCopy(c *check.C) {
	src := fakePartition(c, 64*1024, 3)
	dst := fakePartition(c, 64*1024, 9)

	engine := restore.NewBlockCopy()
	engine.BufferSize = 4096
	c.Assert(engine.Restore(src, dst, nil), check.IsNil)

	want, err := os.ReadFile(src)
	c.Assert(err, check.IsNil)
	got, err := os.ReadFile(dst)
	c.Assert(err, check.IsNil)
	c.Check(bytes.Equal(want, got), check.Equals, true)
}

func (s *blockCopySuite) TestSizeMismatchRejected(c *check.C) {
	src := fakePartition(c, 8192, 1)
	dst := fakePartition(c, 4096, 2)

	err := restore.NewBlockCopy().Restore(src, dst, nil)
	c.Assert(err, check.NotNil)
	c.Check(err, check.FitsTypeOf, &core.RestoreIOError{})

	// destination untouched
	got, rerr := os.ReadFile(dst)
	c.Assert(rerr, check.IsNil)
	c.Check(got[0], check.Equals, byte(2))
}

func (s *blockCopySuite) TestExcludeUnsupported(c *check.C) {
	src := fakePartition(c, 4096, 1)
	dst := fakePartition(c, 4096, 2)

	err := restore.NewBlockCopy().Restore(src, dst, []string{"/etc"})
	c.Assert(err, check.NotNil)
}

type imageSuite struct{}

var _ = check.Suite(&imageSuite{})

func (s *imageSuite) TestImageRoundTrip(c *check.C) {
	src := fakePartition(c, 32*1024, 5)
	dst := fakePartition(c, 32*1024, 8)
	img := filepath.Join(c.MkDir(), "boot.img.gz")

	c.Assert(restore.ReadAndGzipToFile(src, img), check.IsNil)
	c.Assert(restore.UnzipToDevice(img, dst), check.IsNil)

	want, err := os.ReadFile(src)
	c.Assert(err, check.IsNil)
	got, err := os.ReadFile(dst)
	c.Assert(err, check.IsNil)
	c.Check(bytes.Equal(want, got), check.Equals, true)
}

func (s *imageSuite) TestMissingImageFails(c *check.C) {
	dst := fakePartition(c, 4096, 1)

	err := restore.UnzipToDevice(filepath.Join(c.MkDir(), "absent.img.gz"), dst)
	c.Assert(err, check.NotNil)
	c.Check(err, check.FitsTypeOf, &core.RestoreIOError{})
}
