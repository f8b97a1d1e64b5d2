package mcp

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpm/internal/client"
)

func TestTransportKind_String(t *testing.T) {
	tests := []struct {
		kind TransportKind
		want string
	}{
		{TransportStdio, "stdio"},
		{TransportHTTP, "http"},
		{TransportSSE, "sse"},
		{TransportUnknown, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestTransport_Probeable(t *testing.T) {
	assert.True(t, Stdio("npx", nil).Probeable())
	assert.False(t, HTTP("https://x", nil).Probeable())
	assert.False(t, SSE("https://x").Probeable())
	assert.False(t, Unknown().Probeable())
}

func TestServer_JSON(t *testing.T) {
	s := Server{
		Name:       "github",
		Client:     client.CursorProject,
		SourcePath: "/p/.cursor/mcp.json",
		Transport:  Stdio("npx", []string{"-y", "@modelcontextprotocol/server-github"}),
		Env:        map[string]string{"GITHUB_TOKEN": "${GITHUB_TOKEN}"},
		Health:     Healthy("github", "1.0"),
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "cursor-project", got["client"])
	assert.Equal(t, "stdio", got["transport"].(map[string]any)["type"])
	assert.NotContains(t, got, "Health", "health is runtime state and must not be serialized")
}

func TestHealthStatus(t *testing.T) {
	tests := []struct {
		status   HealthStatus
		terminal bool
		str      string
	}{
		{Unchecked(), false, "unchecked"},
		{Checking(), false, "checking"},
		{Healthy("x", "1.0"), true, "healthy (x 1.0)"},
		{TimedOut(), true, "timeout"},
		{Failed("command not found: nope"), true, "error: command not found: nope"},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.Terminal())
			assert.Equal(t, tt.str, tt.status.String())
		})
	}
}

func TestKey_String(t *testing.T) {
	k := Key{Client: client.Windsurf, Name: "memory"}
	assert.Equal(t, "Windsurf/memory", k.String())
}

func newResult() *DiscoveryResult {
	return &DiscoveryResult{
		Servers: []Server{
			{Name: "memory", Client: client.ClaudeCodeGlobal, SourcePath: "/h/.claude.json", Transport: Stdio("npx", nil)},
			{Name: "remote", Client: client.ClaudeCodeGlobal, SourcePath: "/h/.claude.json", Transport: HTTP("https://r", nil)},
			{Name: "memory", Client: client.CursorProject, SourcePath: "/p/.cursor/mcp.json", Transport: Stdio("npx", nil)},
			{Name: "plug", Client: client.ClaudeCodePlugin, SourcePath: "/h/.claude/plugins/a/.mcp.json", Transport: Stdio("plug", nil)},
		},
		ActiveClients: []client.Kind{client.ClaudeCodeGlobal, client.CursorProject, client.ClaudeCodePlugin},
	}
}

func TestDiscoveryResult_ClientsWith(t *testing.T) {
	r := newResult()
	assert.Equal(t, []client.Kind{client.ClaudeCodeGlobal, client.CursorProject}, r.ClientsWith("memory"))
	assert.Empty(t, r.ClientsWith("absent"))
}

func TestDiscoveryResult_ClientsWithout(t *testing.T) {
	r := newResult()
	got := r.ClientsWithout("memory")
	assert.NotContains(t, got, client.ClaudeCodeGlobal)
	assert.NotContains(t, got, client.CursorProject)
	assert.NotContains(t, got, client.ClaudeCodePlugin, "plugin is never a write target")
	assert.Equal(t, []client.Kind{
		client.ClaudeCodeProject, client.CursorGlobal, client.VSCodeProject,
		client.Windsurf, client.ClaudeDesktop,
	}, got)
}

func TestDiscoveryResult_Find(t *testing.T) {
	r := newResult()
	assert.Equal(t, 2, r.Find(client.CursorProject, "memory"))
	assert.Equal(t, -1, r.Find(client.Windsurf, "memory"))
	assert.Equal(t, []int{0, 2}, r.FindByName("memory"))
}

func TestDiscoveryResult_NamesAndMatrix(t *testing.T) {
	r := newResult()
	assert.Equal(t, []string{"memory", "remote", "plug"}, r.Names())
	assert.Equal(t, [][]bool{
		{true, true, false},
		{true, false, false},
		{false, false, true},
	}, r.Matrix())
}

func TestDiscoveryResult_Probeable(t *testing.T) {
	r := newResult()
	assert.Equal(t, []int{0, 2, 3}, r.Probeable())
}

func TestDiscoveryResult_MarkChecking(t *testing.T) {
	r := newResult()
	assert.True(t, r.MarkChecking(0))
	assert.Equal(t, StateChecking, r.Servers[0].Health.State)

	assert.False(t, r.MarkChecking(1), "http servers are not probeable")
	assert.Equal(t, StateUnchecked, r.Servers[1].Health.State)
	assert.False(t, r.MarkChecking(-1))
	assert.False(t, r.MarkChecking(99))
}

func TestDiscoveryResult_Apply(t *testing.T) {
	r := newResult()
	now := time.Now()

	ok := r.Apply(HealthResult{Index: 2, Key: r.Servers[2].Key(), Status: Healthy("mem", "0.6"), CheckedAt: now})
	require.True(t, ok)
	assert.Equal(t, Healthy("mem", "0.6"), r.Servers[2].Health)
	assert.Equal(t, now, r.Servers[2].LastChecked)

	// Stale: slot 0 holds a different server than the one probed.
	ok = r.Apply(HealthResult{Index: 0, Key: r.Servers[2].Key(), Status: TimedOut()})
	assert.False(t, ok)
	assert.Equal(t, StateUnchecked, r.Servers[0].Health.State)

	// Out of range after a rescan shrank the list.
	assert.False(t, r.Apply(HealthResult{Index: 10, Status: TimedOut()}))
	assert.False(t, r.Apply(HealthResult{Index: -1, Status: TimedOut()}))
}
