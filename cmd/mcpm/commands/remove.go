package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/cli/prompt"
	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

var (
	removeClients []string
	removeYes     bool
)

func init() {
	removeCmd.Flags().StringSliceVarP(&removeClients, "client", "c", nil,
		"only remove from these client(s) (repeatable)")
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false,
		"skip the confirmation prompt")
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:     "remove [name]",
	Aliases: []string{"rm"},
	Short:   "Remove an MCP server from its clients",
	Long: `Remove a server entry from every client that declares it, or only from
the clients given with --client. Plugin-provided entries are removed from
the plugin file they were found in.

Removing from the user-level Claude Code config also removes the name
from every per-project server map in that file.

A confirmation prompt is shown unless --yes is given. Without a name, an
interactive picker is shown on a terminal.`,
	Example: `  # Remove everywhere (with confirmation)
  mcpm remove github

  # Remove from Cursor only, no prompt
  mcpm remove github --client cursor --yes

  See Also:
    mcpm add       - Add a server
    mcpm list      - List servers`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	kinds, err := parseKinds(removeClients, false)
	if err != nil {
		return err
	}

	result, cwd, err := discover(cmd)
	if err != nil {
		return err
	}

	var name string
	var records []mcp.Server
	if len(args) == 1 {
		name = args[0]
		records = deletable(recordsNamed(result, name, kinds))
		if len(records) == 0 {
			return notFound(name)
		}
	} else {
		if !interactive() {
			return errors.NewUserError(errors.New("no server name given"), "Usage: mcpm remove <name>")
		}
		candidates := deletable(result.Servers)
		idx, err := prompt.PickServer(candidates)
		if err != nil {
			return errors.NewUserError(err, "")
		}
		name = candidates[idx].Name
		records = candidates[idx : idx+1]
	}

	targets := make([]client.Kind, len(records))
	for i, s := range records {
		targets[i] = s.Client
	}

	w := cmd.OutOrStdout()
	if !removeYes {
		sel := prompt.NewSelectorWithIO(cmd.InOrStdin(), w)
		if !sel.Confirm(fmt.Sprintf("Remove %q from %s?", name, labels(targets))) {
			fmt.Fprintln(w, "removal cancelled")
			return nil
		}
	}

	fmt.Fprintf(w, "Removing %q\n", name)
	batch := newWriter(cmd).RemoveFromClients(cwd, records)
	return printBatch(w, batch, "Removed", name)
}

// deletable keeps the records whose client allows removal.
func deletable(servers []mcp.Server) []mcp.Server {
	var out []mcp.Server
	for _, s := range servers {
		if s.Client.Deletable() {
			out = append(out, s)
		}
	}
	return out
}
