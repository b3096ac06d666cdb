// -*- Mode: Go; indent-tabs-mode: t -*-
// Build Pi Boot Disk
// Copyright 2024 codesheff. All rights reserved.

package core

import (
	"io"
	"os"
	"path/filepath"
)

// CopyFile copies a single file, creating parent directories and
// preserving the file mode. An existing destination is removed first
// so a running executable can be replaced with a fresh inode
func CopyFile(source, target string) error {
	info, err := os.Stat(source)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}

	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// CopyDirectory copies a directory tree into the target directory,
// so CopyDirectory("/a/b", "/c") creates /c/b
func CopyDirectory(source, target string) error {
	base := filepath.Base(source)

	return filepath.Walk(source, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(target, base, rel)

		switch {
		case info.IsDir():
			return os.MkdirAll(dest, info.Mode().Perm())
		case info.Mode()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
				return err
			}
			return os.Symlink(link, dest)
		case info.Mode().IsRegular():
			return CopyFile(path, dest)
		default:
			// sockets, fifos and device nodes are not retained
			return nil
		}
	})
}
