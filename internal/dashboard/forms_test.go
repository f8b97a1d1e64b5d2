package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

func TestChecklist(t *testing.T) {
	c := newChecklist([]string{"a", "b", "c"}, func(i int) bool { return i == 1 })
	assert.Equal(t, []int{1}, c.chosen())

	c.up()
	assert.Equal(t, 0, c.cursor)
	c.down()
	c.down()
	c.down()
	assert.Equal(t, 2, c.cursor)

	c.toggle()
	assert.Equal(t, []int{1, 2}, c.chosen())

	empty := newChecklist(nil, func(int) bool { return true })
	empty.down()
	empty.toggle()
	assert.Empty(t, empty.chosen())
}

func TestAddWizard_Parsing(t *testing.T) {
	w := newAddWizard(nil)
	w.name = "  fs  "
	w.command = " npx "
	w.args = "  -y   @scope/server  /tmp "
	w.env = []string{" KEY = value ", "URL=http://x?a=b"}

	assert.Equal(t, "fs", w.serverName())
	assert.Equal(t, []string{"-y", "@scope/server", "/tmp"}, w.parsedArgs())
	assert.Equal(t, map[string]string{"KEY": "value", "URL": "http://x?a=b"}, w.parsedEnv())

	cmd, args, env := mcp.DecodeServerValue(w.value())
	assert.Equal(t, "npx", cmd)
	assert.Equal(t, w.parsedArgs(), args)
	assert.Equal(t, w.parsedEnv(), env)
}

func TestAddWizard_NoArgsOrEnv(t *testing.T) {
	w := newAddWizard(nil)
	w.command = "server"

	assert.Equal(t, map[string]any{"command": "server"}, w.value())
}

func TestAddWizard_PopRunes(t *testing.T) {
	w := newAddWizard(nil)
	w.push("né")
	w.pop()
	assert.Equal(t, "n", w.name)
	w.pop()
	w.pop()
	assert.Empty(t, w.name)
}

func TestAddWizard_OffersWritableClients(t *testing.T) {
	w := newAddWizard([]client.Kind{client.ClaudeCodeProject, client.ClaudeCodePlugin})

	assert.Equal(t, client.Writable(), w.kinds)
	assert.Equal(t, []client.Kind{client.ClaudeCodeProject}, w.selected())
}

func TestAddWizard_StepLabels(t *testing.T) {
	w := newAddWizard(nil)
	seen := map[string]bool{}
	for step := stepName; step <= stepConfirm; step++ {
		w.step = step
		seen[w.stepLabel()] = true
	}
	assert.Len(t, seen, 6)
}

func TestRemoveForm_CollectsRecordsByName(t *testing.T) {
	r := &mcp.DiscoveryResult{Servers: []mcp.Server{
		{Name: "a", Client: client.ClaudeCodeProject, SourcePath: "/p/.mcp.json"},
		{Name: "b", Client: client.CursorGlobal, SourcePath: "/h/.cursor/mcp.json"},
		{Name: "a", Client: client.ClaudeCodePlugin, SourcePath: "/h/.claude/plugins/x/.mcp.json"},
	}}

	f := newRemoveForm("a", r)

	assert.Len(t, f.records, 2)
	assert.Equal(t, r.Servers[0], f.selected()[0])
	assert.Equal(t, r.Servers[2], f.selected()[1])
	assert.Contains(t, f.list.labels[1], "plugins")
}
