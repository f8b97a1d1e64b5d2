package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpm/internal/errors"
)

func TestDoctor_Clean(t *testing.T) {
	sb := newSandbox(t)
	writeJSON(t, sb.cursor(), wrapped(map[string]any{"fs": stdioEntry("sh")}))

	out, _, err := execute(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "0 warnings, 0 errors")
	assert.NotContains(t, out, "✗")

	out, _, err = execute(t, "doctor", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "[clients] client-files")
	assert.Contains(t, out, "[filesystem] file-permissions")
	assert.Contains(t, out, "[servers] server-entries")
}

func TestDoctor_NothingConfigured(t *testing.T) {
	newSandbox(t)

	out, _, err := execute(t, "doctor")
	requireExitCode(t, err, errors.ExitUser)
	assert.Contains(t, out, "no client config files found")
	assert.Contains(t, out, "hint: add a server with: mcpm add <name> <command>")
}

func TestDoctor_PermissionsAndFix(t *testing.T) {
	sb := newSandbox(t)
	writeJSON(t, sb.cursor(), wrapped(map[string]any{"fs": stdioEntry("sh")}))
	require.NoError(t, os.Chmod(sb.cursor(), 0o666))

	out, _, err := execute(t, "doctor")
	requireExitCode(t, err, errors.ExitUser)
	assert.Contains(t, out, "mode 0666 is world-writable")
	assert.Contains(t, out, "hint: chmod 0644 "+sb.cursor())

	out, _, err = execute(t, "doctor", "--fix")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ fixed "+sb.cursor()+": chmod 0644")
	assert.Contains(t, out, "0 warnings, 0 errors")

	info, err := os.Stat(sb.cursor())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestDoctor_MalformedFileIsError(t *testing.T) {
	sb := newSandbox(t)
	require.NoError(t, os.WriteFile(sb.global(), []byte(`{"mcpServers": {`), 0o644))

	out, _, err := execute(t, "doctor")
	requireExitCode(t, err, errors.ExitSystem)
	assert.Contains(t, out, "[config] config-syntax")
	assert.Contains(t, out, "CC-Global "+sb.global()+":")

	out, _, err = execute(t, "doctor", "--quiet")
	requireExitCode(t, err, errors.ExitSystem)
	assert.Empty(t, out)

	var buf strings.Builder
	printError(&buf, err)
	assert.Empty(t, buf.String())
}

func TestDoctor_JSON(t *testing.T) {
	sb := newSandbox(t)
	writeJSON(t, sb.cursor(), wrapped(map[string]any{
		"fs":     stdioEntry("sh"),
		"ghost":  stdioEntry("mcpm-no-such-binary"),
		"remote": map[string]any{"type": "http", "url": "not a url"},
	}))

	out, _, err := execute(t, "doctor", "--json")
	requireExitCode(t, err, errors.ExitSystem)

	var report struct {
		Results []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
			Issues []struct {
				Server   string `json:"server"`
				Problem  string `json:"problem"`
				Severity string `json:"severity"`
			} `json:"issues"`
		} `json:"results"`
		Summary struct {
			Errors int `json:"errors"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Summary.Errors)

	var found bool
	for _, r := range report.Results {
		if r.Name != "server-entries" {
			continue
		}
		found = true
		assert.Equal(t, "error", r.Status)
		problems := make(map[string]string)
		for _, i := range r.Issues {
			problems[i.Server] = i.Severity + ": " + i.Problem
		}
		assert.Equal(t, "warning: mcpm-no-such-binary is not on PATH", problems["ghost"])
		assert.Equal(t, "error: URL must be absolute http or https", problems["remote"])
		assert.NotContains(t, problems, "fs")
	}
	assert.True(t, found)
}

func TestDoctor_OutputFlagsExclusive(t *testing.T) {
	newSandbox(t)

	_, _, err := execute(t, "doctor", "--json", "--quiet")
	requireExitCode(t, err, errors.ExitUser)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestConfig_InitShowGet(t *testing.T) {
	sb := newSandbox(t)
	path := filepath.Join(sb.cfgDir, "config.yaml")

	out, _, err := execute(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	out, _, err = execute(t, "config")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# defaults (no config file)\n"))
	assert.Contains(t, out, "cc-project")

	out, _, err = execute(t, "config", "init")
	require.NoError(t, err)
	assert.Equal(t, "Wrote "+path+"\n", out)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, _, err = execute(t, "config", "init")
	requireExitCode(t, err, errors.ExitUser)
	assert.Contains(t, err.Error(), "config file already exists at "+path)

	_, _, err = execute(t, "config", "init", "--force")
	require.NoError(t, err)

	out, _, err = execute(t, "config", "show")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# "+path+"\n"))
	assert.Contains(t, out, "log_format: text")

	out, _, err = execute(t, "config", "get", "default_clients")
	require.NoError(t, err)
	assert.Equal(t, "cc-project\n", out)

	out, _, err = execute(t, "config", "get", "log_format")
	require.NoError(t, err)
	assert.Equal(t, "text\n", out)

	out, _, err = execute(t, "config", "get", "nonsense")
	require.NoError(t, err)
	assert.Equal(t, "not set\n", out)
}

func TestConfig_EnvOverride(t *testing.T) {
	newSandbox(t)
	t.Setenv("MCPM_PROBE_CONCURRENCY", "3")

	out, _, err := execute(t, "config", "get", "probe_concurrency")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestConfig_EditMissingFile(t *testing.T) {
	newSandbox(t)

	_, _, err := execute(t, "config", "edit")
	requireExitCode(t, err, errors.ExitUser)

	var exitErr *errors.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, "Run: mcpm config init", exitErr.Suggestion)
}

func TestConfig_InvalidFileBlocksCommands(t *testing.T) {
	sb := newSandbox(t)
	require.NoError(t, os.WriteFile(filepath.Join(sb.cfgDir, "config.yaml"),
		[]byte("version: 1\nlog_format: xml\ndefault_clients: [plugin]\n"), 0o600))

	_, _, err := execute(t, "list")
	requireExitCode(t, err, errors.ExitUser)
	assert.Contains(t, err.Error(), "invalid log format: xml")
	assert.Contains(t, err.Error(), "invalid default client: plugin")

	var exitErr *errors.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, "Run: mcpm doctor", exitErr.Suggestion)

	// Repair paths stay usable.
	_, _, err = execute(t, "doctor", "--quiet")
	requireExitCode(t, err, errors.ExitUser)

	out, _, err := execute(t, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, "config.yaml")

	_, _, err = execute(t, "version")
	require.NoError(t, err)

	_, _, err = execute(t, "config", "show")
	requireExitCode(t, err, errors.ExitUser)
}

func TestConfig_ExplicitPathMustExist(t *testing.T) {
	sb := newSandbox(t)

	_, _, err := execute(t, "--config", filepath.Join(sb.cfgDir, "missing.yaml"), "list")
	requireExitCode(t, err, errors.ExitUser)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestConfig_ProjectLocalFile(t *testing.T) {
	sb := newSandbox(t)
	require.NoError(t, os.WriteFile(filepath.Join(sb.cwd, "config.yaml"),
		[]byte("version: 1\ndefault_clients: [windsurf]\n"), 0o600))

	_, _, err := execute(t, "add", "fs", "sh")
	require.NoError(t, err)
	assert.Contains(t, serverMap(t, sb.windsurf()), "fs")
}

func TestGenDoc(t *testing.T) {
	sb := newSandbox(t)
	dir := filepath.Join(sb.cfgDir, "docs")

	out, _, err := execute(t, "gen-doc", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Documentation generated in "+dir)

	data, err := os.ReadFile(filepath.Join(dir, "mcpm_config_init.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "---\ntitle: \"mcpm config init\"\n"))

	data, err = os.ReadFile(filepath.Join(dir, "mcpm.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "(/docs/cli/mcpm_list/)")

	_, _, err = execute(t, "gen-doc")
	requireExitCode(t, err, errors.ExitUser)
}
