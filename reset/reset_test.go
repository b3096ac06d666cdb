// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package reset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codesheff/build-pi-boot-disk/core"
	"github.com/codesheff/build-pi-boot-disk/reset"
	check "gopkg.in/check.v1"
)

func TestReset(t *testing.T) { check.TestingT(t) }

type resetSuite struct{}

var _ = check.Suite(&resetSuite{})

const cmdline = "console=serial0,115200 root=LABEL=writable rootfstype=ext4 fsck.repair=yes rootwait\n"

// fixture builds a boot partition and a structurally valid backup
// root in temp dirs
func fixture(c *check.C) (reset.Paths, reset.Options) {
	p := reset.Paths{BootDir: c.MkDir(), BootConfig: "cmdline.txt"}
	c.Assert(os.WriteFile(filepath.Join(p.BootDir, p.BootConfig), []byte(cmdline), 0644), check.IsNil)

	backup := c.MkDir()
	for _, d := range []string{"etc", "usr", "var"} {
		c.Assert(os.Mkdir(filepath.Join(backup, d), 0755), check.IsNil)
	}
	return p, reset.Options{BackupRoot: backup}
}

func (s *resetSuite) TestStatusLifecycle(c *check.C) {
	p, opts := fixture(c)

	c.Check(reset.Status(p), check.Equals, reset.Idle)

	c.Assert(reset.Schedule(p, opts), check.IsNil)
	c.Check(reset.Status(p), check.Equals, reset.Scheduled)

	c.Assert(reset.ClearIntent(p), check.IsNil)
	c.Check(reset.Status(p), check.Equals, reset.Idle)
}

func (s *resetSuite) TestScheduleTwice(c *check.C) {
	p, opts := fixture(c)

	c.Assert(reset.Schedule(p, opts), check.IsNil)
	c.Assert(reset.Schedule(p, opts), check.Equals, core.ErrAlreadyScheduled)

	// exactly one intent marker exists
	entries, err := os.ReadDir(p.BootDir)
	c.Assert(err, check.IsNil)
	flags := 0
	for _, e := range entries {
		if e.Name() == reset.FlagFile {
			flags++
		}
	}
	c.Check(flags, check.Equals, 1)
}

func (s *resetSuite) TestScheduleRejectsInvalidBackup(c *check.C) {
	p, opts := fixture(c)
	c.Assert(os.RemoveAll(filepath.Join(opts.BackupRoot, "etc")), check.IsNil)

	err := reset.Schedule(p, opts)
	c.Assert(err, check.NotNil)
	c.Check(err, check.FitsTypeOf, &core.ValidationError{})
	c.Check(reset.Status(p), check.Equals, reset.Idle)
}

func (s *resetSuite) TestScheduleInBandLeavesBootConfig(c *check.C) {
	p, opts := fixture(c)

	c.Assert(reset.Schedule(p, opts), check.IsNil)

	data, err := os.ReadFile(filepath.Join(p.BootDir, p.BootConfig))
	c.Assert(err, check.IsNil)
	c.Check(string(data), check.Equals, cmdline)
	c.Check(reset.HasSavedBootConfig(p), check.Equals, false)
}

func (s *resetSuite) TestScheduleToRecovery(c *check.C) {
	p, opts := fixture(c)
	opts.RecoveryLabel = "recover"

	c.Assert(reset.Schedule(p, opts), check.IsNil)

	// boot configuration points at recovery
	data, err := os.ReadFile(filepath.Join(p.BootDir, p.BootConfig))
	c.Assert(err, check.IsNil)
	c.Check(string(data), check.Equals,
		"console=serial0,115200 root=LABEL=recover rootfstype=ext4 fsck.repair=yes rootwait\n")

	// saved copy is byte-identical to the original
	saved, err := os.ReadFile(filepath.Join(p.BootDir, p.BootConfig+reset.SavedSuffix))
	c.Assert(err, check.IsNil)
	c.Check(string(saved), check.Equals, cmdline)
}

func (s *resetSuite) TestScheduleToRecoveryNoRootParam(c *check.C) {
	p, opts := fixture(c)
	opts.RecoveryLabel = "recover"
	c.Assert(os.WriteFile(filepath.Join(p.BootDir, p.BootConfig), []byte("quiet splash\n"), 0644), check.IsNil)

	err := reset.Schedule(p, opts)
	c.Assert(err, check.NotNil)
	c.Check(err, check.FitsTypeOf, &core.ConfigCorruptError{})
	c.Check(reset.Status(p), check.Equals, reset.Idle)
}

func (s *resetSuite) TestCancelRestoresBootConfig(c *check.C) {
	p, opts := fixture(c)
	opts.RecoveryLabel = "recover"

	c.Assert(reset.Schedule(p, opts), check.IsNil)
	c.Assert(reset.Cancel(p), check.IsNil)

	data, err := os.ReadFile(filepath.Join(p.BootDir, p.BootConfig))
	c.Assert(err, check.IsNil)
	c.Check(string(data), check.Equals, cmdline)
	c.Check(reset.Status(p), check.Equals, reset.Idle)
	c.Check(reset.HasSavedBootConfig(p), check.Equals, false)
}

func (s *resetSuite) TestCancelInBand(c *check.C) {
	p, opts := fixture(c)

	c.Assert(reset.Schedule(p, opts), check.IsNil)
	c.Assert(reset.Cancel(p), check.IsNil)
	c.Check(reset.Status(p), check.Equals, reset.Idle)
}

func (s *resetSuite) TestCancelNothingScheduled(c *check.C) {
	p, _ := fixture(c)

	c.Assert(reset.Cancel(p), check.Equals, core.ErrNothingScheduled)
}

func (s *resetSuite) TestRestoreBootConfigMissingSaved(c *check.C) {
	p, _ := fixture(c)

	err := reset.RestoreBootConfig(p)
	c.Assert(err, check.NotNil)
	c.Check(err, check.FitsTypeOf, &core.ConfigCorruptError{})
}
