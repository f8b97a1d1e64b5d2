package prompt

import (
	"fmt"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/redact"
)

// PickServer opens a fuzzy finder over servers and returns the index of
// the chosen record. Aborting the finder returns ErrSelectionCancelled.
func PickServer(servers []mcp.Server) (int, error) {
	if len(servers) == 0 {
		return -1, ErrNoServers
	}

	idx, err := fuzzyfinder.Find(
		servers,
		func(i int) string { return pickerLine(servers[i]) },
		fuzzyfinder.WithPromptString("server> "),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return Preview(servers[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return -1, ErrSelectionCancelled
		}
		return -1, errors.Wrap(err, "picking server")
	}
	return idx, nil
}

func pickerLine(s mcp.Server) string {
	return fmt.Sprintf("%s (%s, %s)", s.Name, s.Client.Label(), s.Transport.Kind)
}

// Preview renders a record for the finder's preview pane. Secrets are
// always masked.
func Preview(s mcp.Server) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name:      %s\n", s.Name)
	fmt.Fprintf(&b, "Client:    %s\n", s.Client.Name())
	fmt.Fprintf(&b, "Source:    %s\n", s.SourcePath)
	fmt.Fprintf(&b, "Transport: %s\n", s.Transport.Kind)

	t := s.Transport
	switch t.Kind {
	case mcp.TransportStdio:
		fmt.Fprintf(&b, "Command:   %s\n", t.Command)
		if len(t.Args) > 0 {
			fmt.Fprintf(&b, "Args:      %s\n", strings.Join(redact.Args(t.Args), " "))
		}
	case mcp.TransportHTTP, mcp.TransportSSE:
		fmt.Fprintf(&b, "URL:       %s\n", redact.URL(t.URL))
	}

	if len(s.Env) > 0 {
		b.WriteString("\nEnvironment:\n")
		masked := redact.Map(s.Env)
		for _, k := range mcp.SortedKeys(masked) {
			fmt.Fprintf(&b, "  %s=%s\n", k, masked[k])
		}
	}
	return b.String()
}
