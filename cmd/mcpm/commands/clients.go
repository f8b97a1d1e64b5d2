package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/discovery"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

var clientsJSON bool

func init() {
	clientsCmd.Flags().BoolVar(&clientsJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(clientsCmd)
}

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Show known clients and their config files",
	Long: `Show every client mcpm knows about, where its config file lives from
the current directory, whether that file exists, and how many servers it
declares.

Read-only clients are discovered but are never written by add or sync.`,
	Example: `  mcpm clients
  mcpm clients --json`,
	Args: cobra.NoArgs,
	RunE: runClients,
}

// clientInfo describes one client in clients output.
type clientInfo struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Present  bool   `json:"present"`
	Writable bool   `json:"writable"`
	Servers  int    `json:"servers"`
}

func runClients(cmd *cobra.Command, _ []string) error {
	result, cwd, err := discover(cmd)
	if err != nil {
		return err
	}

	infos := clientInfos(result, cwd)
	w := cmd.OutOrStdout()
	if clientsJSON {
		return writeStructured(w, formatJSON, infos)
	}
	writeClientsTable(w, infos)
	return nil
}

func clientInfos(result *mcp.DiscoveryResult, cwd string) []clientInfo {
	counts := make(map[client.Kind]int)
	for _, s := range result.Servers {
		counts[s.Client]++
	}

	var out []clientInfo
	for _, k := range client.All() {
		info := clientInfo{
			ID:       k.ID(),
			Label:    k.Label(),
			Name:     k.Name(),
			Writable: k.Writable(),
			Servers:  counts[k],
		}
		if k == client.ClaudeCodePlugin {
			info.Path = filepath.Join(client.PluginRoot(), client.PluginGlob)
			info.Present = len(discovery.PluginFiles()) > 0
		} else if p, ok := k.ConfigPath(cwd); ok {
			info.Path = p
			_, err := os.Stat(p)
			info.Present = err == nil
		}
		out = append(out, info)
	}
	return out
}

func writeClientsTable(w io.Writer, infos []clientInfo) {
	fmt.Fprintln(w, bold(pad("ID", 16)+" "+pad("LABEL", colClient)+" "+pad("MODE", 4)+" "+pad("SERVERS", 7)+" PATH"))
	for _, c := range infos {
		mode := "rw"
		if !c.Writable {
			mode = "ro"
		}
		path := gray(c.Path + " (missing)")
		if c.Present {
			path = c.Path
		}
		fmt.Fprintf(w, "%s %s %s %s %s\n",
			cyan(pad(c.ID, 16)),
			pad(c.Label, colClient),
			pad(mode, 4),
			pad(strconv.Itoa(c.Servers), 7),
			path)
	}
}
