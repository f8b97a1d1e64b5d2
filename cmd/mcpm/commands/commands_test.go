package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/errors"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type sandbox struct {
	home   string
	cwd    string
	cfgDir string
}

// newSandbox points HOME, the working directory and the config directory
// at fresh temp dirs.
func newSandbox(t *testing.T) sandbox {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("HOME is not consulted on windows")
	}
	sb := sandbox{home: t.TempDir(), cwd: t.TempDir(), cfgDir: t.TempDir()}
	t.Setenv("HOME", sb.home)
	t.Setenv("MCPM_CONFIG_DIR", sb.cfgDir)
	t.Setenv("MCPM_DEBUG", "")
	t.Setenv("MCPM_SHOW_SECRETS", "")
	t.Chdir(sb.cwd)
	return sb
}

func (sb sandbox) cursor() string   { return filepath.Join(sb.home, ".cursor", "mcp.json") }
func (sb sandbox) windsurf() string { return filepath.Join(sb.home, ".codeium", "windsurf", "mcp_config.json") }
func (sb sandbox) global() string   { return filepath.Join(sb.home, ".claude.json") }
func (sb sandbox) project() string  { return filepath.Join(sb.cwd, ".mcp.json") }

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var v map[string]any
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

// serverMap returns the mcpServers object of a client file.
func serverMap(t *testing.T, path string) map[string]any {
	t.Helper()
	m, _ := readJSON(t, path)["mcpServers"].(map[string]any)
	return m
}

func wrapped(entries map[string]any) map[string]any {
	return map[string]any{"mcpServers": entries}
}

func stdioEntry(command string, args ...string) map[string]any {
	v := map[string]any{"command": command}
	if len(args) > 0 {
		v["args"] = args
	}
	return v
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	resetCommands(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

// resetCommands restores every flag to its default and drops contexts
// left over from a previous execution.
func resetCommands(c *cobra.Command) {
	c.SetContext(nil)
	c.Flags().VisitAll(resetFlag)
	c.PersistentFlags().VisitAll(resetFlag)
	for _, sub := range c.Commands() {
		resetCommands(sub)
	}
}

func resetFlag(f *pflag.Flag) {
	if sv, ok := f.Value.(pflag.SliceValue); ok {
		_ = sv.Replace(nil)
	} else {
		_ = f.Value.Set(f.DefValue)
	}
	f.Changed = false
}

func requireExitCode(t *testing.T, err error, want int) {
	t.Helper()
	require.Error(t, err)
	var exitErr *errors.ExitError
	require.True(t, errors.As(err, &exitErr), "expected ExitError, got %T: %v", err, err)
	assert.Equal(t, want, exitErr.Code)
}

func TestVersionCommand(t *testing.T) {
	newSandbox(t)

	out, _, err := execute(t, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "mcpm version dev")
	assert.Contains(t, out, "commit: none")
	assert.Contains(t, out, "built:  unknown")
	assert.Contains(t, out, "go:     "+runtime.Version())
}

func TestRoot_QuietAndVerboseConflict(t *testing.T) {
	newSandbox(t)

	_, _, err := execute(t, "-q", "-v", "list")
	requireExitCode(t, err, errors.ExitUser)
	assert.Contains(t, err.Error(), "cannot use --quiet and --verbose together")
}

func TestRoot_DashboardNeedsTerminal(t *testing.T) {
	newSandbox(t)
	if interactive() {
		t.Skip("test is running on a terminal")
	}

	_, _, err := execute(t)
	requireExitCode(t, err, errors.ExitUser)

	var buf bytes.Buffer
	printError(&buf, err)
	assert.Contains(t, buf.String(), "interactive terminal")
	assert.Contains(t, buf.String(), "Run: mcpm list")
}

func TestRoot_LogFile(t *testing.T) {
	sb := newSandbox(t)
	logPath := filepath.Join(sb.cfgDir, "mcpm.log")

	_, _, err := execute(t, "--log-file", logPath, "-vv", "list")
	require.NoError(t, err)

	info, err := os.Stat(logPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.NotNil(t, fileLogger)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", errors.New("boom"), errors.ExitUser},
		{"user error", errors.NewUserError(errors.New("bad"), ""), errors.ExitUser},
		{"system error", errors.NewSystemError(errors.New("io"), ""), errors.ExitSystem},
		{"wrapped exit error", errors.Wrap(errors.NewExitError(nil, errors.ExitSystem), "ctx"), errors.ExitSystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestPrintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain error", errors.New("boom"), "Error: boom\n"},
		{"silent exit", errors.NewExitError(nil, errors.ExitUser), ""},
		{"suggestion only", errors.NewUserError(nil, "use one flag"), "Error: use one flag\n"},
		{"error only", errors.NewUserError(errors.New("bad input"), ""), "Error: bad input\n"},
		{"error and suggestion", errors.NewConfigError(errors.New("bad config")), "Error: bad config\n  Run: mcpm doctor\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printError(&buf, tt.err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestParseKeyValueSlice(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    map[string]string
		wantErr bool
	}{
		{name: "empty", entries: nil, want: nil},
		{name: "pairs", entries: []string{"A=1", "B=two"}, want: map[string]string{"A": "1", "B": "two"}},
		{name: "value with equals", entries: []string{"URL=a=b"}, want: map[string]string{"URL": "a=b"}},
		{name: "empty value", entries: []string{"A="}, want: map[string]string{"A": ""}},
		{name: "key trimmed", entries: []string{" A =1"}, want: map[string]string{"A": "1"}},
		{name: "missing equals", entries: []string{"A"}, wantErr: true},
		{name: "empty key", entries: []string{"=1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseKeyValueSlice(tt.entries, "--env")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "expected KEY=VALUE")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKinds(t *testing.T) {
	kinds, err := parseKinds([]string{"cursor", "CC-Global", "cursor"}, true)
	require.NoError(t, err)
	assert.Equal(t, []client.Kind{client.CursorGlobal, client.ClaudeCodeGlobal}, kinds)

	kinds, err = parseKinds([]string{"plugin"}, false)
	require.NoError(t, err)
	assert.Equal(t, []client.Kind{client.ClaudeCodePlugin}, kinds)

	_, err = parseKinds([]string{"plugin"}, true)
	require.Error(t, err)
	var exitErr *errors.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.NotContains(t, exitErr.Suggestion, "plugin")

	_, err = parseKinds([]string{"emacs", "cursor", "vim"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid client(s): emacs, vim")

	kinds, err = parseKinds(nil, true)
	require.NoError(t, err)
	assert.Empty(t, kinds)
}

func TestTruncateAndPad(t *testing.T) {
	tests := []struct {
		in     string
		width  int
		trunc  string
		padded string
	}{
		{"short", 8, "short", "short   "},
		{"exactly8", 8, "exactly8", "exactly8"},
		{"much-too-long", 8, "much-...", "much-..."},
		{"abcdef", 3, "abc", "abc"},
		{"日本語テキスト", 8, "日本...", "日本... "},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.trunc, truncate(tt.in, tt.width))
			assert.Equal(t, tt.padded, pad(tt.in, tt.width))
		})
	}
}

func TestClients(t *testing.T) {
	sb := newSandbox(t)
	writeJSON(t, sb.cursor(), wrapped(map[string]any{
		"a": stdioEntry("sh"),
		"b": stdioEntry("sh"),
	}))

	out, _, err := execute(t, "clients", "--json")
	require.NoError(t, err)

	var infos []clientInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, len(client.All()))

	byID := make(map[string]clientInfo)
	for _, c := range infos {
		byID[c.ID] = c
	}
	assert.True(t, byID["cursor"].Present)
	assert.Equal(t, 2, byID["cursor"].Servers)
	assert.Equal(t, sb.cursor(), byID["cursor"].Path)
	assert.False(t, byID["windsurf"].Present)
	assert.True(t, byID["windsurf"].Writable)
	assert.False(t, byID["plugin"].Writable)
	assert.Contains(t, byID["plugin"].Path, filepath.Join(".claude", "plugins"))

	out, _, err = execute(t, "clients")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, sb.cursor())
	assert.Contains(t, out, sb.windsurf()+" (missing)")
}

func TestEdit(t *testing.T) {
	sb := newSandbox(t)
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("editor stub needs /bin/sh")
	}

	marker := filepath.Join(sb.cfgDir, "opened")
	script := filepath.Join(sb.cfgDir, "fake-editor")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nprintf '%s' \"$1\" > "+marker+"\n"), 0o755))
	t.Setenv("EDITOR", script)

	writeJSON(t, sb.cursor(), wrapped(map[string]any{"fs": stdioEntry("sh")}))
	writeJSON(t, sb.windsurf(), wrapped(map[string]any{"fs": stdioEntry("sh"), "solo": stdioEntry("sh")}))

	opened := func() string {
		t.Helper()
		data, err := os.ReadFile(marker)
		require.NoError(t, err)
		require.NoError(t, os.Remove(marker))
		return string(data)
	}

	_, _, err := execute(t, "edit", "solo")
	require.NoError(t, err)
	assert.Equal(t, sb.windsurf(), opened())

	// Two clients declare fs; pick the second.
	out, _, err := executeWithInput(t, "2\n", "edit", "fs")
	require.NoError(t, err)
	assert.Contains(t, out, `Multiple servers found for "fs"`)
	assert.Equal(t, sb.windsurf(), opened())

	_, _, err = execute(t, "edit", "fs", "--client", "cursor")
	require.NoError(t, err)
	assert.Equal(t, sb.cursor(), opened())

	_, _, err = execute(t, "edit", "missing")
	requireExitCode(t, err, errors.ExitUser)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestEdit_EditorFails(t *testing.T) {
	sb := newSandbox(t)
	writeJSON(t, sb.cursor(), wrapped(map[string]any{"fs": stdioEntry("sh")}))
	t.Setenv("EDITOR", filepath.Join(sb.cfgDir, "no-such-editor"))

	_, _, err := execute(t, "edit", "fs")
	requireExitCode(t, err, errors.ExitSystem)
	assert.Contains(t, err.Error(), "running editor")
}
