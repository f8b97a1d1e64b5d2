package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/cli/prompt"
	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/editor"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

var editClient string

func init() {
	editCmd.Flags().StringVarP(&editClient, "client", "c", "",
		"open the entry of this client when several declare the name")
	rootCmd.AddCommand(editCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit [name]",
	Short: "Open the config file declaring a server in $EDITOR",
	Long: `Open the config file a server was discovered in.

Uses $EDITOR, then $VISUAL, then nano or vi. When several clients declare
the name you are asked which one to open, unless --client picks it.
Without a name, an interactive picker is shown on a terminal.`,
	Example: `  # Open the file declaring "github"
  mcpm edit github

  # Open Cursor's copy
  mcpm edit github --client cursor

  # Use a specific editor
  EDITOR="code --wait" mcpm edit github`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	var kinds []client.Kind
	if editClient != "" {
		var err error
		if kinds, err = parseKinds([]string{editClient}, false); err != nil {
			return err
		}
	}

	result, _, err := discover(cmd)
	if err != nil {
		return err
	}

	var srv *mcp.Server
	if len(args) == 1 {
		records := recordsNamed(result, args[0], kinds)
		if len(records) == 0 {
			return notFound(args[0])
		}
		srv, err = prompt.NewSelectorWithIO(cmd.InOrStdin(), cmd.OutOrStdout()).SelectServer(args[0], records)
		if err != nil {
			return errors.NewUserError(err, "")
		}
	} else {
		if !interactive() {
			return errors.NewUserError(errors.New("no server name given"), "Usage: mcpm edit <name>")
		}
		idx, err := prompt.PickServer(result.Servers)
		if err != nil {
			return errors.NewUserError(err, "")
		}
		srv = &result.Servers[idx]
	}

	loggerFor(cmd).Debug("opening editor", "server", srv.Name, "path", srv.SourcePath)
	if err := editor.Open(srv.SourcePath); err != nil {
		return errors.NewSystemError(err, "Set $EDITOR to your preferred editor")
	}
	return nil
}
