// Package fileio reads and writes files through an Open seam over os.OpenFile.
package fileio

import (
	"fmt"
	"io"
	"os"
)

//go:generate ../../../bin/substgen

// File is what Open hands back: *os.File satisfies it.
type File interface {
	io.Reader
	io.Writer
	io.Closer
}

// Open is the seam every function in this package opens files through.
//
//nolint:gochecknoglobals // seam
var Open = func(name string) (File, error) {
	return os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o600) //nolint:gosec // caller picks the path
}

// ReadAll opens name and returns its contents.
func ReadAll(name string) (string, error) {
	file, err := Open(name)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", name, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}

	return string(data), nil
}

// WriteThenRead writes text to a freshly opened name and reads back whatever the file yields
// afterward, without reopening it.
func WriteThenRead(name, text string) (string, error) {
	file, err := Open(name)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", name, err)
	}
	defer file.Close()

	_, err = io.WriteString(file, text)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}

	return string(data), nil
}
