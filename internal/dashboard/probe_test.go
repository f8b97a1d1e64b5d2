//go:build !windows

package dashboard

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

const healthyReply = `{"jsonrpc":"2.0","id":1,"result":{"serverInfo":{"name":"x","version":"1.0"}}}`

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("probe scripts need /bin/sh")
	}
}

func shEntry(script string) map[string]any {
	return map[string]any{"command": "/bin/sh", "args": []string{"-c", script}}
}

// settle feeds queued results to the model until no probe is in flight.
func settle(t *testing.T, m *Model) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for m.checking > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("%d probe(s) still in flight", m.checking)
		}
		time.Sleep(20 * time.Millisecond)
		m.Update(resultsMsg{})
	}
}

func TestModel_CheckSelected(t *testing.T) {
	requireShell(t)
	sb := newSandbox(t)
	writeJSON(t, filepath.Join(sb.cwd, ".mcp.json"), servers(map[string]any{
		"ok": shEntry(`read line; echo '` + healthyReply + `'; cat > /dev/null`),
	}))
	m := newModel(t, sb)

	press(m, "h")
	assert.Equal(t, mcp.StateChecking, m.Result().Servers[0].Health.State)
	assert.Equal(t, 1, m.checking)
	assert.Contains(t, m.View(), "[checking 1]")

	settle(t, m)

	s := m.Result().Servers[0]
	assert.Equal(t, mcp.Healthy("x", "1.0"), s.Health)
	assert.False(t, s.LastChecked.IsZero())
	assert.Zero(t, m.checking)
	assert.Contains(t, m.View(), "healthy (x 1.0)")
}

func TestModel_CheckAll(t *testing.T) {
	requireShell(t)
	sb := newSandbox(t)
	writeJSON(t, filepath.Join(sb.cwd, ".mcp.json"), servers(map[string]any{
		"ok":     shEntry(`read line; echo '` + healthyReply + `'; cat > /dev/null`),
		"broken": shEntry(`exit 0`),
		"remote": map[string]any{"url": "https://example.com/mcp"},
	}))
	m := newModel(t, sb)

	press(m, "H")
	assert.Equal(t, 2, m.checking)

	settle(t, m)

	r := m.Result()
	assert.Equal(t, mcp.Healthy("x", "1.0"), r.Servers[r.Find(client.ClaudeCodeProject, "ok")].Health)
	assert.Equal(t, mcp.Failed("no response from server"), r.Servers[r.Find(client.ClaudeCodeProject, "broken")].Health)
	assert.Equal(t, mcp.StateUnchecked, r.Servers[r.Find(client.ClaudeCodeProject, "remote")].Health.State)
}

func TestModel_StaleResultDropped(t *testing.T) {
	requireShell(t)
	sb := newSandbox(t)
	path := writeJSON(t, filepath.Join(sb.cwd, ".mcp.json"), servers(map[string]any{
		"old": shEntry(`exit 0`),
	}))
	m := newModel(t, sb)

	press(m, "h")
	writeJSON(t, path, servers(map[string]any{"new": shEntry(`exit 0`)}))
	press(m, "r")
	require.Equal(t, "new", m.Result().Servers[0].Name)

	settle(t, m)

	assert.Equal(t, mcp.StateUnchecked, m.Result().Servers[0].Health.State)
	assert.Zero(t, m.checking)
}
