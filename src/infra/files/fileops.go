package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// Mover moves files for the organize executor. It prefers a plain
// rename and falls back to copy-then-delete when source and destination
// live on different filesystems.
type Mover struct{}

// NewMover creates a new Mover.
func NewMover() *Mover {
	return &Mover{}
}

// Move relocates src to dst, creating destination directories as
// needed.
func (m *Mover) Move(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDeviceError(err) {
		return fmt.Errorf("failed to move file: %w", err)
	}

	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("failed to copy across filesystems: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove original after copy: %w", err)
	}
	return nil
}

// RemoveEmptyDirectories walks from dir upward, removing each directory
// that turned out empty, and stops at root or at the first non-empty
// one.
func (m *Mover) RemoveEmptyDirectories(dir, root string) error {
	for {
		// The root itself is never removed, even when empty.
		if dir == root {
			return nil
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return nil
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("failed to read directory %s: %w", dir, err)
		}
		if len(entries) > 0 {
			return nil
		}

		if err := os.Remove(dir); err != nil {
			return fmt.Errorf("failed to remove empty directory %s: %w", dir, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

// isCrossDeviceError checks for EXDEV, which rename returns when source
// and destination are on different filesystems.
func isCrossDeviceError(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

func copyFile(src, dst string) error {
	sourceFileStat, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !sourceFileStat.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, sourceFileStat.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(destination, source); err != nil {
		destination.Close()
		os.Remove(dst)
		return err
	}
	return destination.Close()
}
