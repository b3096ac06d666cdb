// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/codesheff/build-pi-boot-disk/audit"
	yaml "gopkg.in/yaml.v2"
)

// Config defines the configuration parameters
type Config struct {
	LogFile        string `yaml:"logfile"`
	BootMount      string `yaml:"boot-mount"`
	BootConfigFile string `yaml:"bootconfig"`
	Strategy       string `yaml:"strategy"`
	InstallPath    string `yaml:"install-path"`
	Labels         struct {
		Boot     string `yaml:"boot"`
		Active   string `yaml:"active"`
		Backup   string `yaml:"backup"`
		Recovery string `yaml:"recovery"`
	} `yaml:"labels"`
	Retain struct {
		Size int      `yaml:"size"`
		Data []string `yaml:"data"`
	} `yaml:"retain"`
	Exclude []string `yaml:"exclude"`
}

// Restore strategies. TreeSync mirrors the mounted filesystems and is
// the canonical path; BlockCopy needs a recovery partition to run from.
const (
	StrategyTreeSync  = "tree-sync"
	StrategyBlockCopy = "block-copy"
)

// Partition labels are a compatibility contract across disk
// generations. Partitions are always resolved by label, never by
// index on the disk.
const (
	bootPartitionLabel     = "system-boot"
	activePartitionLabel   = "writable"
	backupPartitionLabel   = "restore"
	recoveryPartitionLabel = "recover"
)

const (
	defaultBootMount      = "/boot/firmware"
	defaultBootConfigFile = "cmdline.txt"
	defaultInstallPath    = "/usr/local/bin/pireset"
	defaultRetainSize     = 32
	logFileName           = "factory-reset.log"
)

// Store the stored configuration from the file
var Store Config

// Read parses the yaml config file
func Read(path string) error {
	Store = Config{}

	dat, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading config parameters: %v\n", err)
		return err
	}

	err = yaml.Unmarshal(dat, &Store)
	if err != nil {
		fmt.Printf("Error parsing config parameters: %v\n", err)
		return err
	}

	// Default the missing parameters
	setDefaults()

	return nil
}

func setDefaults() {
	if len(Store.BootMount) == 0 {
		Store.BootMount = defaultBootMount
	}
	if len(Store.BootConfigFile) == 0 {
		Store.BootConfigFile = defaultBootConfigFile
	}
	if len(Store.LogFile) == 0 {
		// Keep the trail on the boot partition so it survives a
		// restore of the writable partition
		Store.LogFile = filepath.Join(Store.BootMount, logFileName)
		audit.Printf("Default the LogFile to `%s`", Store.LogFile)
	}
	if len(Store.Strategy) == 0 {
		Store.Strategy = StrategyTreeSync
	}
	if len(Store.InstallPath) == 0 {
		Store.InstallPath = defaultInstallPath
	}
	if len(Store.Labels.Boot) == 0 {
		Store.Labels.Boot = bootPartitionLabel
	}
	if len(Store.Labels.Active) == 0 {
		Store.Labels.Active = activePartitionLabel
	}
	if len(Store.Labels.Backup) == 0 {
		Store.Labels.Backup = backupPartitionLabel
	}
	if len(Store.Labels.Recovery) == 0 {
		Store.Labels.Recovery = recoveryPartitionLabel
	}
	if Store.Retain.Size <= 0 {
		Store.Retain.Size = defaultRetainSize
	}
}
