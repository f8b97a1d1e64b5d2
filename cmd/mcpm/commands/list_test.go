package commands

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// seedServers writes a small spread of servers across three clients.
func seedServers(t *testing.T, sb sandbox) {
	t.Helper()
	writeJSON(t, sb.cursor(), wrapped(map[string]any{
		"github": map[string]any{
			"command": "npx",
			"args":    []string{"-y", "@modelcontextprotocol/server-github"},
			"env":     map[string]string{"GITHUB_TOKEN": "ghp_secretvalue", "LOG_LEVEL": "debug"},
		},
		"fs": stdioEntry("npx", "-y", "@modelcontextprotocol/server-filesystem"),
	}))
	writeJSON(t, sb.project(), wrapped(map[string]any{
		"remote": map[string]any{
			"type":    "http",
			"url":     "https://mcp.example.com/mcp",
			"headers": map[string]string{"Authorization": "Bearer abcdefgh"},
		},
	}))
	writeJSON(t, sb.windsurf(), wrapped(map[string]any{
		"fs": stdioEntry("npx", "-y", "@modelcontextprotocol/server-filesystem"),
	}))
}

func TestList_Empty(t *testing.T) {
	newSandbox(t)

	out, stderr, err := execute(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "No MCP servers found.\n", out)
	assert.Empty(t, stderr)
}

func TestList_Table(t *testing.T) {
	sb := newSandbox(t)
	seedServers(t, sb)

	out, _, err := execute(t, "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.True(t, strings.HasPrefix(lines[0], "SERVER"))
	assert.Contains(t, lines[0], "CLIENT")
	assert.Contains(t, lines[0], "SOURCE")

	assert.Contains(t, out, sb.cursor())
	assert.Contains(t, out, sb.windsurf())
	assert.Contains(t, out, "http")
	assert.Contains(t, out, "4 server(s) across 3 client(s)")
}

func TestList_Alias(t *testing.T) {
	sb := newSandbox(t)
	seedServers(t, sb)

	out, _, err := execute(t, "ls", "--client", "windsurf")
	require.NoError(t, err)
	assert.Contains(t, out, "1 server(s) across 1 client(s)")
	assert.NotContains(t, out, sb.cursor())
}

func TestList_JSONMasksSecrets(t *testing.T) {
	sb := newSandbox(t)
	seedServers(t, sb)

	out, _, err := execute(t, "list", "--json")
	require.NoError(t, err)

	var doc listOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Servers, 4)
	assert.Equal(t, []string{"cc-project", "cursor", "windsurf"}, doc.ActiveClients)
	assert.Empty(t, doc.Errors)

	byKey := make(map[string]listEntry)
	for _, e := range doc.Servers {
		byKey[e.Client+"/"+e.Name] = e
	}

	gh := byKey["cursor/github"]
	assert.Equal(t, "stdio", gh.Transport)
	assert.Equal(t, "npx", gh.Command)
	assert.Equal(t, "****alue", gh.Env["GITHUB_TOKEN"])
	assert.Equal(t, "debug", gh.Env["LOG_LEVEL"])

	remote := byKey["cc-project/remote"]
	assert.Equal(t, "http", remote.Transport)
	assert.Equal(t, "https://mcp.example.com/mcp", remote.URL)
	assert.Equal(t, "****efgh", remote.Headers["Authorization"])

	assert.NotContains(t, out, "ghp_secretvalue")
	assert.NotContains(t, out, "Bearer abcdefgh")
}

func TestList_ShowSecrets(t *testing.T) {
	sb := newSandbox(t)
	seedServers(t, sb)

	out, _, err := execute(t, "list", "--json", "--show-secrets")
	require.NoError(t, err)
	assert.Contains(t, out, "ghp_secretvalue")
	assert.Contains(t, out, "Bearer abcdefgh")
}

func TestList_ShowSecretsFromEnv(t *testing.T) {
	sb := newSandbox(t)
	seedServers(t, sb)
	t.Setenv("MCPM_SHOW_SECRETS", "true")

	out, _, err := execute(t, "list", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "ghp_secretvalue")
}

func TestList_YAMLAndTOML(t *testing.T) {
	sb := newSandbox(t)
	seedServers(t, sb)

	out, _, err := execute(t, "list", "--format", "yaml")
	require.NoError(t, err)
	var fromYAML listOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))
	assert.Len(t, fromYAML.Servers, 4)
	assert.NotContains(t, out, "ghp_secretvalue")

	out, _, err = execute(t, "list", "--format", "TOML")
	require.NoError(t, err)
	var fromTOML listOutput
	require.NoError(t, toml.Unmarshal([]byte(out), &fromTOML))
	assert.Len(t, fromTOML.Servers, 4)
	assert.Equal(t, []string{"cc-project", "cursor", "windsurf"}, fromTOML.ActiveClients)
}

func TestList_FormatErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"json conflicts with format", []string{"list", "--json", "--format", "yaml"}, "cannot use --json with --format yaml"},
		{"unknown format", []string{"list", "--format", "xml"}, `unknown format "xml"`},
		{"matrix needs table", []string{"list", "--matrix", "--format", "json"}, "--matrix only supports table output"},
		{"unknown client", []string{"list", "--client", "emacs"}, "invalid client(s): emacs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb := newSandbox(t)
			seedServers(t, sb)

			_, _, err := execute(t, tt.args...)
			requireExitCode(t, err, errors.ExitUser)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestList_JSONWithMatchingFormat(t *testing.T) {
	sb := newSandbox(t)
	seedServers(t, sb)

	_, _, err := execute(t, "list", "--json", "--format", "json")
	require.NoError(t, err)
}

func TestList_ParseErrorsGoToStderr(t *testing.T) {
	sb := newSandbox(t)
	writeJSON(t, sb.cursor(), wrapped(map[string]any{"fs": stdioEntry("npx")}))
	require.NoError(t, os.WriteFile(sb.global(), []byte("{not json"), 0o644))

	out, stderr, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, stderr, "warning:")
	assert.Contains(t, stderr, sb.global())
	assert.Contains(t, out, "1 server(s) across 1 client(s)")

	out, _, err = execute(t, "list", "--json")
	require.NoError(t, err)
	var doc listOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Errors, 1)
	assert.True(t, strings.HasPrefix(doc.Errors[0], sb.global()+": "))
}

func TestList_Matrix(t *testing.T) {
	sb := newSandbox(t)
	seedServers(t, sb)

	out, _, err := execute(t, "list", "--matrix")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "CC-Project")
	assert.Contains(t, lines[0], "Cursor")
	assert.Contains(t, lines[0], "Windsurf")

	rows := make(map[string]string)
	for _, l := range lines[1:] {
		name, rest, _ := strings.Cut(l, " ")
		rows[name] = rest
	}
	assert.Equal(t, 2, strings.Count(rows["fs"], "✓"))
	assert.Equal(t, 1, strings.Count(rows["fs"], "·"))
	assert.Equal(t, 1, strings.Count(rows["github"], "✓"))
	assert.Equal(t, 1, strings.Count(rows["remote"], "✓"))
}
