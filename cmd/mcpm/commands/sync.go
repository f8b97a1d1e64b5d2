package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

var (
	syncTo   []string
	syncFrom string
)

func init() {
	syncCmd.Flags().StringSliceVarP(&syncTo, "to", "t", nil,
		"client(s) to copy to (default: every writable client lacking the server)")
	syncCmd.Flags().StringVar(&syncFrom, "from", "",
		"client whose entry is copied (default: the first client declaring it)")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync <name>",
	Short: "Copy a server to other clients",
	Long: `Copy a discovered server entry into other clients' config files. Stdio,
http and sse servers can all be copied; entries of unknown shape cannot.

By default the entry is copied into every writable client that does not
declare the name yet. With --to, the named clients are written even if
they already have an entry, which is then replaced.`,
	Example: `  # Copy to every client that lacks it
  mcpm sync filesystem

  # Copy Cursor's entry into the project's .mcp.json and VS Code
  mcpm sync filesystem --from cursor --to cc-project,vscode

  See Also:
    mcpm list --matrix - See which clients have which servers`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	name := args[0]

	result, cwd, err := discover(cmd)
	if err != nil {
		return err
	}

	src, err := syncSource(result, name, syncFrom)
	if err != nil {
		return err
	}

	targets := result.ClientsWithout(name)
	if len(syncTo) > 0 {
		if targets, err = parseKinds(syncTo, true); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	if len(targets) == 0 {
		fmt.Fprintf(w, "Server %q already in all clients\n", name)
		return nil
	}

	fmt.Fprintf(w, "Syncing %q from %s to %s\n", name, src.Client.Label(), labels(targets))
	batch := newWriter(cmd).Sync(targets, cwd, src)
	return printBatch(w, batch, "Synced", name)
}

// syncSource picks the record to copy: the one under from when given,
// otherwise the first in discovery order.
func syncSource(result *mcp.DiscoveryResult, name, from string) (mcp.Server, error) {
	if from == "" {
		idx := result.FindByName(name)
		if len(idx) == 0 {
			return mcp.Server{}, notFound(name)
		}
		return result.Servers[idx[0]], nil
	}

	k, ok := client.Parse(from)
	if !ok {
		return mcp.Server{}, errors.NewUserError(
			errors.Newf("invalid client %q", from),
			"Run: mcpm clients",
		)
	}
	i := result.Find(k, name)
	if i < 0 {
		return mcp.Server{}, errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "server %q in %s", name, k.Label()),
			"Run: mcpm list",
		)
	}
	return result.Servers[i], nil
}
