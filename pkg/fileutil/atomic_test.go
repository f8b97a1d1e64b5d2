package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAtomicWriteFile(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		perm    os.FileMode
		wantErr bool
	}{
		{
			name:    "successful write",
			data:    []byte("hello world\n"),
			perm:    0644,
			wantErr: false,
		},
		{
			name:    "empty data",
			data:    []byte{},
			perm:    0644,
			wantErr: false,
		},
		{
			name:    "binary data",
			data:    []byte{0x00, 0x01, 0x02, 0xFF},
			perm:    0600,
			wantErr: false,
		},
		{
			name:    "executable permissions",
			data:    []byte("#!/bin/sh\necho hello\n"),
			perm:    0755,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "test-file")

			err := AtomicWriteFile(path, tt.data, tt.perm)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AtomicWriteFile() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				return
			}

			// Verify content
			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("reading file: %v", err)
			}
			if string(got) != string(tt.data) {
				t.Errorf("content = %q, want %q", got, tt.data)
			}

			// Verify permissions
			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("stating file: %v", err)
			}
			// Mask with 0777 to ignore directory bits
			if gotPerm := info.Mode().Perm(); gotPerm != tt.perm {
				t.Errorf("permissions = %o, want %o", gotPerm, tt.perm)
			}
		})
	}
}

func TestAtomicWriteFile_DirectoryNotExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent", "subdir", "file.txt")

	err := AtomicWriteFile(path, []byte("data"), 0600)
	if err == nil {
		t.Error("AtomicWriteFile() expected error for nonexistent directory")
	}
}

func TestAtomicWriteFile_OverwriteExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "existing-file")

	// Create original file
	original := []byte("original content\n")
	if err := os.WriteFile(path, original, 0600); err != nil {
		t.Fatalf("creating original file: %v", err)
	}

	// Overwrite with new content
	newContent := []byte("new content\n")
	if err := AtomicWriteFile(path, newContent, 0600); err != nil {
		t.Fatalf("AtomicWriteFile() error = %v", err)
	}

	// Verify new content
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	if string(got) != string(newContent) {
		t.Errorf("content = %q, want %q", got, newContent)
	}
}

func TestAtomicWriteFile_NoTempFileLeftOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent-dir", "file.txt")

	// This should fail because parent directory doesn't exist
	_ = AtomicWriteFile(path, []byte("data"), 0600)

	// Check that no temp files are left in the temp dir
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading directory: %v", err)
	}

	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".tmp" {
			t.Errorf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestSwapExt(t *testing.T) {
	tests := []struct {
		path string
		ext  string
		want string
	}{
		{"/home/u/.claude.json", "bak", "/home/u/.claude.bak"},
		{"/p/.mcp.json", "tmp", "/p/.mcp.tmp"},
		{"/p/.cursor/mcp.json", "bak", "/p/.cursor/mcp.bak"},
		{"/p/.vscode/mcp.json", ".tmp", "/p/.vscode/mcp.tmp"},
		{"/p/.bashrc", "bak", "/p/.bashrc.bak"},
		{"/p/noext", "tmp", "/p/noext.tmp"},
		{"mcp_config.json", "bak", "mcp_config.bak"},
	}
	for _, tt := range tests {
		if got := SwapExt(tt.path, tt.ext); got != tt.want {
			t.Errorf("SwapExt(%q, %q) = %q, want %q", tt.path, tt.ext, got, tt.want)
		}
	}
}

func TestAtomicWriter_InterruptedBeforeRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp.json")
	original := []byte(`{"mcpServers":{}}` + "\n")
	if err := os.WriteFile(path, original, 0o644); err != nil {
		t.Fatal(err)
	}

	interrupted := errors.New("interrupted")
	var staged string
	w := AtomicWriter{BeforeRename: func(tmp string) error {
		staged = tmp
		if _, err := os.Stat(tmp); err != nil {
			t.Errorf("staging file missing before rename: %v", err)
		}
		return interrupted
	}}

	err := w.WriteFile(path, []byte(`{"mcpServers":{"x":{}}}`), 0o644)
	if !errors.Is(err, interrupted) {
		t.Fatalf("WriteFile() error = %v, want %v", err, interrupted)
	}
	if staged != filepath.Join(dir, "mcp.tmp") {
		t.Errorf("staging path = %q, want mcp.tmp sibling", staged)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(original) {
		t.Errorf("destination changed after interrupted write: %q", got)
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Errorf("staging file left behind: %v", err)
	}
}

func TestAtomicWriter_CustomStaging(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	w := AtomicWriter{Staging: func(p string) string { return p + ".staging" }}

	if err := w.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := os.Stat(path + ".staging"); !os.IsNotExist(err) {
		t.Error("staging file should have been renamed away")
	}
}

func TestMarshalJSON(t *testing.T) {
	v := map[string]any{
		"zeta":  1,
		"alpha": map[string]any{"url": "https://h/x?a=1&b=2"},
	}
	got, err := MarshalJSON(v)
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	want := "{\n  \"alpha\": {\n    \"url\": \"https://h/x?a=1&b=2\"\n  },\n  \"zeta\": 1\n}\n"
	if string(got) != want {
		t.Errorf("MarshalJSON() =\n%s\nwant\n%s", got, want)
	}
}

func TestAtomicWriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	v := map[string]any{"version": 1, "default_clients": []string{"cc-project"}}
	if err := AtomicWriteYAML(path, v, DefaultFilePerm); err != nil {
		t.Fatalf("AtomicWriteYAML() error = %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 || got[len(got)-1] != '\n' {
		t.Errorf("YAML output missing trailing newline: %q", got)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, ".claude.json")
	dst := BackupPath(src)
	if err := os.WriteFile(src, []byte("{\"a\":1}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("stale backup contents"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile() error = %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "{\"a\":1}" {
		t.Errorf("backup content = %q", got)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("backup mode = %o, want 600", mode)
	}
}
