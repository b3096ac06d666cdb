// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package audit

import (
	"io"
	"log"
	"os"
	"sync"
)

const (
	// DefaultLogFile is used until the boot partition is available.
	// The trail is retargeted there so it survives a restore of the
	// writable partition.
	DefaultLogFile = "/run/factory-reset.log"
)

var (
	mu   sync.Mutex
	path = DefaultLogFile
)

// SetFile points the audit trail at a different file, typically one
// on the system-boot partition
func SetFile(p string) {
	mu.Lock()
	defer mu.Unlock()
	path = p
}

// File returns the current audit trail location
func File() string {
	mu.Lock()
	defer mu.Unlock()
	return path
}

func logFile() (*os.File, error) {
	return os.OpenFile(File(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

// Printf records a response
func Printf(message string, a ...interface{}) {
	l, err := logFile()
	w := io.Writer(os.Stdout)
	if err == nil {
		defer l.Close()
		w = io.MultiWriter(os.Stdout, l)
	}
	log.New(w, "", log.LstdFlags).Printf(message, a...)
}

// Println records a response
func Println(v ...interface{}) {
	l, err := logFile()
	w := io.Writer(os.Stdout)
	if err == nil {
		defer l.Close()
		w = io.MultiWriter(os.Stdout, l)
	}
	log.New(w, "", log.LstdFlags).Println(v...)
}
