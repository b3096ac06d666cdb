// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codesheff/build-pi-boot-disk/core"
	check "gopkg.in/check.v1"
)

func TestCore(t *testing.T) { check.TestingT(t) }

type SuiteTest struct {
	Func   string
	Input  string
	Input2 string
	Output string
}

type coreSuite struct{}

var _ = check.Suite(&coreSuite{})

func (s *coreSuite) TestDevicePaths(c *check.C) {
	tests := []SuiteTest{
		{"ParentDiskFromPartition", "/dev/sda1", "", "/dev/sda"},
		{"ParentDiskFromPartition", "/dev/sdd", "", "/dev/sdd"},
		{"ParentDiskFromPartition", "/dev/mmcblk0p2", "", "/dev/mmcblk0"},
		{"ParentDiskFromPartition", "/dev/mmcblk1", "", "/dev/mmcblk1"},
		{"ParentDiskFromPartition", "/dev/nvme0n1p3", "", "/dev/nvme0n1"},
	}

	for _, t := range tests {
		var s string

		switch t.Func {
		case "ParentDiskFromPartition":
			s = core.ParentDiskFromPartition(t.Input)
		}
		c.Assert(s, check.Equals, t.Output)
	}
}

func (s *coreSuite) TestIsMounted(c *check.C) {
	mounts := filepath.Join(c.MkDir(), "mounts")
	table := "/dev/mmcblk0p2 / ext4 rw,relatime 0 0\n" +
		"/dev/mmcblk0p1 /boot/firmware vfat rw 0 0\n" +
		"tmpfs /run tmpfs rw,nosuid 0 0\n"
	c.Assert(os.WriteFile(mounts, []byte(table), 0644), check.IsNil)

	mounted, err := core.IsMounted("/dev/mmcblk0p2", mounts)
	c.Assert(err, check.IsNil)
	c.Check(mounted, check.Equals, true)

	mounted, err = core.IsMounted("/dev/mmcblk0p3", mounts)
	c.Assert(err, check.IsNil)
	c.Check(mounted, check.Equals, false)

	_, err = core.IsMounted("/dev/mmcblk0p3", filepath.Join(c.MkDir(), "absent"))
	c.Assert(err, check.NotNil)
}

func (s *coreSuite) TestValidateRoot(c *check.C) {
	root := c.MkDir()
	err := core.ValidateRoot(root)
	c.Assert(err, check.NotNil)
	c.Check(err, check.FitsTypeOf, &core.ValidationError{})

	for _, d := range []string{"etc", "usr"} {
		c.Assert(os.Mkdir(filepath.Join(root, d), 0755), check.IsNil)
	}
	// still missing var
	err = core.ValidateRoot(root)
	c.Assert(err, check.NotNil)

	c.Assert(os.Mkdir(filepath.Join(root, "var"), 0755), check.IsNil)
	c.Assert(core.ValidateRoot(root), check.IsNil)
}

func (s *coreSuite) TestValidatePairCollision(c *check.C) {
	_, _, err := core.ValidatePair("writable", "writable")
	c.Assert(err, check.NotNil)
	c.Check(err, check.FitsTypeOf, &core.ValidationError{})
}

func (s *coreSuite) TestRoleString(c *check.C) {
	c.Check(core.RoleActive.String(), check.Equals, "active")
	c.Check(core.RoleBackup.String(), check.Equals, "backup")
	c.Check(core.RoleBoot.String(), check.Equals, "boot")
	c.Check(core.RoleRecovery.String(), check.Equals, "recovery")
}

func (s *coreSuite) TestDeviceSize(c *check.C) {
	f := filepath.Join(c.MkDir(), "blob")
	c.Assert(os.WriteFile(f, make([]byte, 4096), 0644), check.IsNil)

	size, err := core.DeviceSize(f)
	c.Assert(err, check.IsNil)
	c.Check(size, check.Equals, int64(4096))
}

func (s *coreSuite) TestCopyFile(c *check.C) {
	dir := c.MkDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "sub", "dst")
	c.Assert(os.WriteFile(src, []byte("payload"), 0751), check.IsNil)

	c.Assert(core.CopyFile(src, dst), check.IsNil)

	data, err := os.ReadFile(dst)
	c.Assert(err, check.IsNil)
	c.Check(string(data), check.Equals, "payload")

	info, err := os.Stat(dst)
	c.Assert(err, check.IsNil)
	c.Check(info.Mode().Perm(), check.Equals, os.FileMode(0751))

	// overwriting an existing file replaces the inode
	c.Assert(os.WriteFile(src, []byte("updated"), 0751), check.IsNil)
	c.Assert(core.CopyFile(src, dst), check.IsNil)
	data, err = os.ReadFile(dst)
	c.Assert(err, check.IsNil)
	c.Check(string(data), check.Equals, "updated")
}

func (s *coreSuite) TestCopyDirectory(c *check.C) {
	src := c.MkDir()
	target := c.MkDir()

	c.Assert(os.MkdirAll(filepath.Join(src, "nested"), 0755), check.IsNil)
	c.Assert(os.WriteFile(filepath.Join(src, "top.txt"), []byte("a"), 0644), check.IsNil)
	c.Assert(os.WriteFile(filepath.Join(src, "nested", "deep.txt"), []byte("b"), 0644), check.IsNil)
	c.Assert(os.Symlink("top.txt", filepath.Join(src, "link")), check.IsNil)

	c.Assert(core.CopyDirectory(src, target), check.IsNil)

	base := filepath.Base(src)
	data, err := os.ReadFile(filepath.Join(target, base, "nested", "deep.txt"))
	c.Assert(err, check.IsNil)
	c.Check(string(data), check.Equals, "b")

	link, err := os.Readlink(filepath.Join(target, base, "link"))
	c.Assert(err, check.IsNil)
	c.Check(link, check.Equals, "top.txt")
}
