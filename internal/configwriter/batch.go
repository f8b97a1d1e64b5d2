package configwriter

import (
	"fmt"
	"strings"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

// ClientError attributes a mutation failure to a client.
type ClientError struct {
	Kind client.Kind
	Err  error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind.Label(), e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// BatchResult collects the outcome of one mutation per client.
type BatchResult struct {
	Succeeded []client.Kind
	Failed    []*ClientError
}

// OK reports whether every mutation succeeded.
func (b BatchResult) OK() bool { return len(b.Failed) == 0 }

// Summary renders the batch for a status line: `Added "fs" to 2 clients`
// when everything succeeded, otherwise "Errors: " and each failure.
func (b BatchResult) Summary(verb, name string) string {
	if len(b.Failed) > 0 {
		msgs := make([]string, len(b.Failed))
		for i, e := range b.Failed {
			msgs[i] = e.Error()
		}
		return "Errors: " + strings.Join(msgs, "; ")
	}
	prep := "to"
	if verb == "Removed" {
		prep = "from"
	}
	noun := "clients"
	if len(b.Succeeded) == 1 {
		noun = "client"
	}
	return fmt.Sprintf("%s %q %s %d %s", verb, name, prep, len(b.Succeeded), noun)
}

func (b *BatchResult) record(kind client.Kind, err error) {
	if err != nil {
		b.Failed = append(b.Failed, &ClientError{Kind: kind, Err: err})
		return
	}
	b.Succeeded = append(b.Succeeded, kind)
}

// AddToClients adds the same server value to every kind. A failure in one
// client does not stop the others.
func (w *Writer) AddToClients(kinds []client.Kind, cwd, name string, value map[string]any) BatchResult {
	var b BatchResult
	for _, k := range kinds {
		b.record(k, w.Add(k, cwd, name, value))
	}
	return b
}

// RemoveFromClients removes each discovered record from the file it came
// from. Plugin records go through their source file.
func (w *Writer) RemoveFromClients(cwd string, servers []mcp.Server) BatchResult {
	var b BatchResult
	for _, s := range servers {
		if s.Client == client.ClaudeCodePlugin {
			b.record(s.Client, w.RemovePlugin(s.Name, s.SourcePath))
			continue
		}
		b.record(s.Client, w.Remove(s.Client, cwd, s.Name))
	}
	return b
}

// Sync copies src into every kind that lacks it.
func (w *Writer) Sync(kinds []client.Kind, cwd string, src mcp.Server) BatchResult {
	value, err := mcp.ServerValue(src)
	if err != nil {
		var b BatchResult
		for _, k := range kinds {
			b.record(k, err)
		}
		return b
	}
	return w.AddToClients(kinds, cwd, src.Name, value)
}
