// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package audit_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codesheff/build-pi-boot-disk/audit"
	check "gopkg.in/check.v1"
)

func TestAudit(t *testing.T) { check.TestingT(t) }

type auditSuite struct{}

var _ = check.Suite(&auditSuite{})

func (s *auditSuite) TestAppend(c *check.C) {
	p := filepath.Join(c.MkDir(), "trail.log")
	audit.SetFile(p)
	defer audit.SetFile(audit.DefaultLogFile)

	audit.Println("first entry")
	audit.Printf("second entry: %d", 42)

	data, err := os.ReadFile(p)
	c.Assert(err, check.IsNil)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	c.Assert(lines, check.HasLen, 2)
	c.Check(strings.Contains(lines[0], "first entry"), check.Equals, true)
	c.Check(strings.Contains(lines[1], "second entry: 42"), check.Equals, true)
}
