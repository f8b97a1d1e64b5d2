package dashboard

import (
	"slices"
	"strings"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

// mode is the dashboard's modal state.
type mode int

const (
	modeNormal mode = iota
	modeAdd
	modeRemove
	modeSync
)

// checklist is a cursor over labelled toggles.
type checklist struct {
	labels []string
	on     []bool
	cursor int
}

func newChecklist(labels []string, on func(i int) bool) checklist {
	c := checklist{labels: labels, on: make([]bool, len(labels))}
	for i := range labels {
		c.on[i] = on(i)
	}
	return c
}

func (c *checklist) up() {
	if c.cursor > 0 {
		c.cursor--
	}
}

func (c *checklist) down() {
	if c.cursor+1 < len(c.labels) {
		c.cursor++
	}
}

func (c *checklist) toggle() {
	if c.cursor < len(c.on) {
		c.on[c.cursor] = !c.on[c.cursor]
	}
}

// chosen returns the indexes of every toggled-on item, in order.
func (c *checklist) chosen() []int {
	var out []int
	for i, on := range c.on {
		if on {
			out = append(out, i)
		}
	}
	return out
}

type addStep int

const (
	stepName addStep = iota
	stepCommand
	stepArgs
	stepEnv
	stepClients
	stepConfirm
)

// addWizard collects a new stdio server one field at a time.
type addWizard struct {
	step     addStep
	name     string
	command  string
	args     string
	envInput string
	env      []string
	kinds    []client.Kind
	clients  checklist
	err      string
}

// newAddWizard offers every writable client, with defaults pre-selected.
func newAddWizard(defaults []client.Kind) *addWizard {
	kinds := client.Writable()
	labels := make([]string, len(kinds))
	for i, k := range kinds {
		labels[i] = k.Label()
	}
	return &addWizard{
		kinds:   kinds,
		clients: newChecklist(labels, func(i int) bool { return slices.Contains(defaults, kinds[i]) }),
	}
}

func (w *addWizard) input() *string {
	switch w.step {
	case stepName:
		return &w.name
	case stepCommand:
		return &w.command
	case stepArgs:
		return &w.args
	case stepEnv:
		return &w.envInput
	default:
		return nil
	}
}

func (w *addWizard) typing() bool { return w.input() != nil }

func (w *addWizard) push(s string) {
	if in := w.input(); in != nil {
		*in += s
		w.err = ""
	}
}

func (w *addWizard) pop() {
	if in := w.input(); in != nil && *in != "" {
		r := []rune(*in)
		*in = string(r[:len(r)-1])
	}
}

// advance validates the current step and moves on. The env step loops,
// collecting one KEY=VALUE per enter, until an empty line is entered.
func (w *addWizard) advance() bool {
	switch w.step {
	case stepName:
		if strings.TrimSpace(w.name) == "" {
			w.err = "Server name cannot be empty"
			return false
		}
		w.step = stepCommand
	case stepCommand:
		if strings.TrimSpace(w.command) == "" {
			w.err = "Command cannot be empty"
			return false
		}
		w.step = stepArgs
	case stepArgs:
		w.step = stepEnv
	case stepEnv:
		if w.envInput == "" {
			w.step = stepClients
			w.clients.cursor = 0
			return true
		}
		if !strings.Contains(w.envInput, "=") {
			w.err = "Format: KEY=VALUE"
			return false
		}
		w.env = append(w.env, w.envInput)
		w.envInput = ""
	case stepClients:
		if len(w.clients.chosen()) == 0 {
			w.err = "Select at least one client"
			return false
		}
		w.step = stepConfirm
	}
	w.err = ""
	return true
}

func (w *addWizard) serverName() string { return strings.TrimSpace(w.name) }

func (w *addWizard) parsedArgs() []string { return strings.Fields(w.args) }

func (w *addWizard) parsedEnv() map[string]string {
	out := make(map[string]string, len(w.env))
	for _, line := range w.env {
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

func (w *addWizard) value() map[string]any {
	return mcp.BuildServerValue(strings.TrimSpace(w.command), w.parsedArgs(), w.parsedEnv())
}

func (w *addWizard) selected() []client.Kind {
	var out []client.Kind
	for _, i := range w.clients.chosen() {
		out = append(out, w.kinds[i])
	}
	return out
}

func (w *addWizard) stepLabel() string {
	switch w.step {
	case stepName:
		return "Server Name"
	case stepCommand:
		return "Command"
	case stepArgs:
		return "Arguments (space-separated)"
	case stepEnv:
		return "Environment Variables (empty line to finish)"
	case stepClients:
		return "Install to Clients"
	default:
		return "Confirm"
	}
}

// removeForm picks which records of one name to delete, then asks y/n.
type removeForm struct {
	name       string
	records    []mcp.Server
	list       checklist
	confirming bool
}

// newRemoveForm offers every deletable record named name, all selected.
func newRemoveForm(name string, r *mcp.DiscoveryResult) *removeForm {
	f := &removeForm{name: name}
	var labels []string
	for _, i := range r.FindByName(name) {
		s := r.Servers[i]
		if !s.Client.Deletable() {
			continue
		}
		f.records = append(f.records, s)
		labels = append(labels, s.Client.Label()+"  "+s.SourcePath)
	}
	f.list = newChecklist(labels, func(int) bool { return true })
	return f
}

func (f *removeForm) selected() []mcp.Server {
	var out []mcp.Server
	for _, i := range f.list.chosen() {
		out = append(out, f.records[i])
	}
	return out
}

// syncForm picks which clients lacking a server should receive a copy.
type syncForm struct {
	src   mcp.Server
	kinds []client.Kind
	list  checklist
}

// newSyncForm offers every writable client missing src's name, all
// selected.
func newSyncForm(src mcp.Server, missing []client.Kind) *syncForm {
	labels := make([]string, len(missing))
	for i, k := range missing {
		labels[i] = k.Label()
	}
	return &syncForm{
		src:   src,
		kinds: missing,
		list:  newChecklist(labels, func(int) bool { return true }),
	}
}

func (f *syncForm) selected() []client.Kind {
	var out []client.Kind
	for _, i := range f.list.chosen() {
		out = append(out, f.kinds[i])
	}
	return out
}
