package delivery

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Package writes audioPath into a new zip archive at zipPath as a single
// deflated entry named after the audio file.
func Package(audioPath, zipPath string) (err error) {
	src, err := os.Open(audioPath)
	if err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat audio: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("audio path %q is not a regular file", audioPath)
	}

	if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}
	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close archive: %w", closeErr)
		}
		if err != nil {
			_ = os.Remove(zipPath)
		}
	}()

	archive := zip.NewWriter(out)
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("archive header: %w", err)
	}
	header.Name = filepath.Base(audioPath)
	header.Method = zip.Deflate

	entry, err := archive.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("archive entry: %w", err)
	}
	if _, err := io.Copy(entry, src); err != nil {
		return errors.Join(fmt.Errorf("write archive entry: %w", err), archive.Close())
	}
	if err := archive.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}
