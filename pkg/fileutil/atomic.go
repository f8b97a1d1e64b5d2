// Package fileutil provides file system utilities for rewriting client
// config files: sibling-path derivation, backups, and atomic replacement.
package fileutil

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// DefaultFilePerm is used when the destination does not exist yet.
const DefaultFilePerm os.FileMode = 0o644

// SwapExt replaces the final extension of path's file name with ext.
// A name without an extension (including dotfiles such as ".bashrc") gets
// ext appended. ".claude.json" becomes ".claude.bak"; "mcp.json" becomes
// "mcp.tmp".
func SwapExt(path, ext string) string {
	dir, base := filepath.Split(path)
	stem := base
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		stem = base[:i]
	}
	return dir + stem + "." + strings.TrimPrefix(ext, ".")
}

// BackupPath returns the ".bak" sibling of path.
func BackupPath(path string) string { return SwapExt(path, "bak") }

// TempPath returns the ".tmp" sibling of path.
func TempPath(path string) string { return SwapExt(path, "tmp") }

// AtomicWriter replaces files by writing a staging sibling and renaming it
// over the destination. Readers observe either the old or the new content.
//
// The zero value stages to TempPath(path).
type AtomicWriter struct {
	// Staging derives the staging path from the destination.
	Staging func(path string) string

	// BeforeRename runs after the staging file is complete and before the
	// rename. A non-nil error aborts the write and removes the staging file.
	BeforeRename func(staging string) error
}

// WriteFile writes data to path atomically with the given permissions.
// The caller is responsible for ensuring the parent directory exists.
func (w AtomicWriter) WriteFile(path string, data []byte, perm os.FileMode) (err error) {
	staging := TempPath(path)
	if w.Staging != nil {
		staging = w.Staging(path)
	}

	defer func() {
		if err != nil {
			_ = os.Remove(staging)
		}
	}()

	f, err := os.OpenFile(staging, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Wrap(err, "writing temp file")
	}

	if err := f.Chmod(perm); err != nil {
		f.Close()
		return errors.Wrap(err, "setting file permissions")
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return errors.Wrap(err, "syncing temp file")
	}

	if err := f.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if w.BeforeRename != nil {
		if err := w.BeforeRename(staging); err != nil {
			return err
		}
	}

	if err := os.Rename(staging, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}

	return nil
}

// AtomicWriteFile writes data to path through its ".tmp" sibling.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	return AtomicWriter{}.WriteFile(path, data, perm)
}

// MarshalJSON renders v as 2-space indented JSON with a trailing newline.
// Map keys come out sorted and HTML characters are not escaped, so URLs
// with query strings survive unchanged.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "marshaling JSON")
	}
	return buf.Bytes(), nil
}

// AtomicWriteYAML writes v as YAML to path atomically.
// Appends a trailing newline for POSIX compliance.
func AtomicWriteYAML(path string, v any, perm os.FileMode) (err error) {
	// yaml.Marshal panics on unmarshalable types; recover and return error
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("marshaling YAML: %v", r)
		}
	}()

	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling YAML")
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	return AtomicWriteFile(path, data, perm)
}

// CopyFile copies src to dst, replacing dst and preserving src's mode.
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "opening source file")
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return errors.Wrap(err, "stat source file")
	}
	mode := srcInfo.Mode().Perm()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return errors.Wrap(err, "creating destination file")
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return errors.Wrap(err, "copying file")
	}

	if err := dstFile.Close(); err != nil {
		return errors.Wrap(err, "closing destination file")
	}

	if err := os.Chmod(dst, mode); err != nil {
		return errors.Wrap(err, "setting permissions")
	}
	return nil
}
