// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package main

import (
	"os"

	"github.com/codesheff/build-pi-boot-disk/execute"
	flags "github.com/jessevdk/go-flags"
)

func main() {
	parser := flags.NewParser(&execute.Execution, flags.Default)

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	os.Exit(0)
}
