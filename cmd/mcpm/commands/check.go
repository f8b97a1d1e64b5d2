package commands

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/cli/prompt"
	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/health"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

var (
	checkAll     bool
	checkJSON    bool
	checkClients []string
)

func init() {
	checkCmd.Flags().BoolVarP(&checkAll, "all", "a", false,
		"check every stdio server")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false,
		"output results as JSON")
	checkCmd.Flags().StringSliceVarP(&checkClients, "client", "c", nil,
		"only check entries of these client(s) (repeatable)")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [name...]",
	Short: "Check that servers start and answer the MCP handshake",
	Long: `Spawn each named stdio server, send the MCP initialize request and wait
for its answer. Every entry with a matching name is checked, across all
clients. Probes run concurrently; each has a fixed deadline after which
the server process group is killed.

Without a name, an interactive picker is shown on a terminal. Use --all to
check every stdio server.

Remote (http and sse) servers cannot be checked.

Exit codes:
  0 - Every checked server is healthy
  1 - At least one server timed out or failed`,
	Example: `  # Check one server everywhere it is declared
  mcpm check filesystem

  # Check everything
  mcpm check --all

  # Limit probe parallelism via config
  MCPM_PROBE_CONCURRENCY=2 mcpm check --all`,
	RunE: runCheck,
}

// checkEntry is one probe outcome in JSON output.
type checkEntry struct {
	Name      string    `json:"name"`
	Client    string    `json:"client"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	Server    string    `json:"server,omitempty"`
	Version   string    `json:"version,omitempty"`
	Message   string    `json:"message,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	if checkAll && len(args) > 0 {
		return errors.NewUserError(nil, "cannot combine server names with --all")
	}

	kinds, err := parseKinds(checkClients, false)
	if err != nil {
		return err
	}

	result, _, err := discover(cmd)
	if err != nil {
		return err
	}

	targets, err := checkTargets(result, args, kinds, checkAll)
	if err != nil {
		return err
	}

	prober := health.NewProber(
		health.WithLogger(loggerFor(cmd)),
		health.WithConcurrency(settings().ProbeConcurrency),
	)
	results := prober.CheckServers(cmd.Context(), targets)

	w := cmd.OutOrStdout()
	if checkJSON {
		if err := writeStructured(w, formatJSON, checkEntries(targets, results)); err != nil {
			return err
		}
	} else {
		writeCheckTable(w, targets, results)
	}

	for _, r := range results {
		if r.Status.State != mcp.StateHealthy {
			return errors.NewExitError(nil, errors.ExitUser)
		}
	}
	return nil
}

// checkTargets picks the records to probe: every stdio record with --all,
// every record named in args, or one record chosen in the picker.
func checkTargets(result *mcp.DiscoveryResult, names []string, kinds []client.Kind, all bool) ([]mcp.Server, error) {
	var probeable []mcp.Server
	for _, i := range result.Probeable() {
		s := result.Servers[i]
		if len(kinds) == 0 || slices.Contains(kinds, s.Client) {
			probeable = append(probeable, s)
		}
	}

	switch {
	case all:
		if len(probeable) == 0 {
			return nil, errors.NewUserError(errors.New("no stdio servers to check"), "Run: mcpm list")
		}
		return probeable, nil

	case len(names) == 0:
		if !interactive() {
			return nil, errors.NewUserError(
				errors.New("no server name given"),
				"Pass a server name or use --all",
			)
		}
		idx, err := prompt.PickServer(probeable)
		if err != nil {
			return nil, errors.NewUserError(err, "")
		}
		return probeable[idx : idx+1], nil
	}

	var out []mcp.Server
	for _, name := range names {
		records := recordsNamed(result, name, kinds)
		if len(records) == 0 {
			return nil, notFound(name)
		}
		n := 0
		for _, s := range records {
			if s.Transport.Probeable() {
				out = append(out, s)
				n++
			}
		}
		if n == 0 {
			return nil, errors.NewUserError(
				errors.Wrapf(errors.ErrUnsupportedTransport, "server %q", name),
				"Only stdio servers can be checked",
			)
		}
	}
	return out, nil
}

func writeCheckTable(w io.Writer, servers []mcp.Server, results []mcp.HealthResult) {
	fmt.Fprintln(w, bold(pad("SERVER", colServer)+" "+pad("CLIENT", colClient)+" STATUS"))
	for i, r := range results {
		s := servers[i]
		fmt.Fprintf(w, "%s %s %s\n",
			pad(s.Name, colServer),
			pad(s.Client.Label(), colClient),
			healthText(r.Status))
	}

	healthy := 0
	for _, r := range results {
		if r.Status.State == mcp.StateHealthy {
			healthy++
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d of %d healthy\n", healthy, len(results))
}

func healthText(h mcp.HealthStatus) string {
	switch h.State {
	case mcp.StateHealthy:
		return green("✓ " + h.String())
	case mcp.StateTimeout:
		return yellow("⏱ " + h.String())
	case mcp.StateError:
		return red("✗ " + h.String())
	default:
		return gray(h.String())
	}
}

func checkEntries(servers []mcp.Server, results []mcp.HealthResult) []checkEntry {
	out := make([]checkEntry, len(results))
	for i, r := range results {
		s := servers[i]
		out[i] = checkEntry{
			Name:      s.Name,
			Client:    s.Client.ID(),
			Source:    s.SourcePath,
			Status:    r.Status.State.String(),
			Server:    r.Status.ServerName,
			Version:   r.Status.ServerVersion,
			Message:   r.Status.Message,
			CheckedAt: r.CheckedAt,
		}
	}
	return out
}
