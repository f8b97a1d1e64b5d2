package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/config"
	"github.com/thoreinstein/mcpm/internal/configwriter"
	"github.com/thoreinstein/mcpm/internal/discovery"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/logging"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

// Terminal colours. fatih/color disables them when stdout is not a TTY
// or NO_COLOR is set.
var (
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

// truncate shortens s to maxLen display columns, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}

// pad right-pads s to width display columns, truncating first.
func pad(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}

func workingDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.NewSystemError(errors.Wrap(err, "getting working directory"), "")
	}
	return cwd, nil
}

func loggerFor(cmd *cobra.Command) *slog.Logger {
	return logging.FromContext(cmd.Context())
}

// interactive reports whether both stdin and stdout are terminals.
func interactive() bool {
	return logging.StdoutIsTTY() && logging.IsTTY(os.Stdin)
}

// discover scans every client from the working directory.
func discover(cmd *cobra.Command) (*mcp.DiscoveryResult, string, error) {
	cwd, err := workingDir()
	if err != nil {
		return nil, "", err
	}
	scanner := discovery.New(discovery.WithLogger(loggerFor(cmd)))
	return scanner.Discover(cwd), cwd, nil
}

func newWriter(cmd *cobra.Command) *configwriter.Writer {
	return configwriter.New(configwriter.WithLogger(loggerFor(cmd)))
}

// parseKinds resolves client ids or labels. With writable set, read-only
// kinds are rejected.
func parseKinds(ids []string, writable bool) ([]client.Kind, error) {
	var out []client.Kind
	var invalid []string
	seen := make(map[client.Kind]bool)
	for _, id := range ids {
		k, ok := client.Parse(id)
		if !ok || (writable && !k.Writable()) {
			invalid = append(invalid, id)
			continue
		}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	if len(invalid) > 0 {
		valid := client.IDs()
		if writable {
			valid = valid[:0]
			for _, k := range client.Writable() {
				valid = append(valid, k.ID())
			}
		}
		return nil, errors.NewUserError(
			errors.Newf("invalid client(s): %s", strings.Join(invalid, ", ")),
			"Valid clients: "+strings.Join(valid, ", "),
		)
	}
	return out, nil
}

// defaultClients returns the configured add targets, falling back to the
// project client.
func defaultClients(c *config.Config) []client.Kind {
	if kinds := c.Clients(); len(kinds) > 0 {
		return kinds
	}
	return []client.Kind{client.ClaudeCodeProject}
}

// parseKeyValueSlice parses KEY=VALUE entries into a map.
func parseKeyValueSlice(entries []string, flagName string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	result := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, found := strings.Cut(entry, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, errors.NewUserError(
				errors.Newf("invalid %s format %q: expected KEY=VALUE", flagName, entry), "")
		}
		result[key] = value
	}
	return result, nil
}

// recordsNamed returns the records called name, optionally limited to kinds.
func recordsNamed(r *mcp.DiscoveryResult, name string, kinds []client.Kind) []mcp.Server {
	var out []mcp.Server
	for _, i := range r.FindByName(name) {
		s := r.Servers[i]
		if len(kinds) > 0 && !slices.Contains(kinds, s.Client) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func labels(kinds []client.Kind) string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.Label()
	}
	return strings.Join(out, ", ")
}

func notFound(name string) error {
	return errors.NewUserError(
		errors.Wrapf(errors.ErrNotFound, "server %q", name),
		"Run: mcpm list",
	)
}

// printBatch reports each client's outcome and returns an error when any
// client failed.
func printBatch(w io.Writer, batch configwriter.BatchResult, verb, name string) error {
	for _, k := range batch.Succeeded {
		fmt.Fprintf(w, "  %s: %s\n", k.Label(), green("done"))
	}
	for _, e := range batch.Failed {
		fmt.Fprintf(w, "  %s: %s (%v)\n", e.Kind.Label(), red("failed"), e.Err)
	}
	if batch.OK() {
		fmt.Fprintln(w, batch.Summary(verb, name))
		return nil
	}
	return errors.NewSystemError(
		errors.Newf("%d of %d client(s) failed", len(batch.Failed), len(batch.Failed)+len(batch.Succeeded)),
		"Run: mcpm doctor",
	)
}
