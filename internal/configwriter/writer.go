package configwriter

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/logging"
	"github.com/thoreinstein/mcpm/internal/mcp/parser"
	"github.com/thoreinstein/mcpm/internal/paths"
	"github.com/thoreinstein/mcpm/pkg/fileutil"
)

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets the logger used for backup and write records.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithAtomicWriter replaces the file replacement strategy. Tests use its
// BeforeRename hook to interrupt a write.
func WithAtomicWriter(a fileutil.AtomicWriter) Option {
	return func(w *Writer) {
		w.atomic = a
	}
}

// Writer mutates client config files. It assumes a single writer; no
// locking is attempted against other processes.
type Writer struct {
	logger *slog.Logger
	atomic fileutil.AtomicWriter
}

// New creates a Writer.
func New(opts ...Option) *Writer {
	w := &Writer{logger: logging.NewDiscard()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Add inserts or replaces the server name in kind's config file.
func (w *Writer) Add(kind client.Kind, cwd, name string, value map[string]any) error {
	if name == "" {
		return errors.ErrMissingName
	}
	if !kind.Writable() {
		return errors.Newf("%s is read-only", kind.Label())
	}
	path, ok := kind.ConfigPath(cwd)
	if !ok {
		return errors.ErrNoConfigPath
	}
	return w.mutate(path, func(doc map[string]any) error {
		return insert(kind, doc, name, value)
	})
}

// Remove deletes the server name from kind's config file. For the global
// client the name is removed from the root map and from every project.
// Removing a name that is not present returns an error matching
// errors.ErrNotFound and leaves the file untouched.
func (w *Writer) Remove(kind client.Kind, cwd, name string) error {
	if name == "" {
		return errors.ErrMissingName
	}
	if kind == client.ClaudeCodePlugin {
		return errors.New("plugin entries are removed through their source file")
	}
	if !kind.Writable() {
		return errors.Newf("%s is read-only", kind.Label())
	}
	path, ok := kind.ConfigPath(cwd)
	if !ok {
		return errors.ErrNoConfigPath
	}
	return w.mutate(path, func(doc map[string]any) error {
		return remove(kind, doc, name)
	})
}

// RemovePlugin deletes name from a plugin-provided file. The file uses
// the wrapped-or-flat layout.
func (w *Writer) RemovePlugin(name, source string) error {
	if name == "" {
		return errors.ErrMissingName
	}
	if source == "" {
		return errors.New("plugin source path not found")
	}
	return w.mutate(source, func(doc map[string]any) error {
		return remove(client.ClaudeCodePlugin, doc, name)
	})
}

// mutate runs the shared read, backup, apply and replace sequence. apply
// edits the decoded document in memory; nothing is written if it fails.
func (w *Writer) mutate(path string, apply func(map[string]any) error) error {
	dir := filepath.Dir(path)
	if err := paths.EnsureDir(dir, 0); err != nil {
		return errors.Wrapf(err, "creating directory %s", dir)
	}

	doc, err := parser.ReadDocument(path)
	if err != nil {
		return err
	}

	if err := apply(doc); err != nil {
		return err
	}

	data, err := parser.Encode(doc)
	if err != nil {
		return err
	}

	perm := fileutil.DefaultFilePerm
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
		backup := fileutil.BackupPath(path)
		if err := fileutil.CopyFile(path, backup); err != nil {
			return errors.Wrapf(err, "creating backup %s", backup)
		}
		w.logger.Debug("backed up config", "path", path, "backup", backup)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "stat %s", path)
	}

	if err := w.atomic.WriteFile(path, data, perm); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	w.logger.Debug("wrote config", "path", path, "bytes", len(data))
	return nil
}
