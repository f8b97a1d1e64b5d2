package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/redact"
)

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTOML  = "toml"
)

// Column widths of the list table.
const (
	colServer = 25
	colClient = 12
	colType   = 8
)

var (
	listJSON        bool
	listFormat      string
	listShowSecrets bool
	listMatrix      bool
	listClients     []string
)

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false,
		"output in JSON format (same as --format json)")
	listCmd.Flags().StringVarP(&listFormat, "format", "o", formatTable,
		"output format: table, json, yaml, toml")
	listCmd.Flags().BoolVar(&listShowSecrets, "show-secrets", false,
		"reveal masked secrets in env values, headers, args and URLs")
	listCmd.Flags().BoolVar(&listMatrix, "matrix", false,
		"show which clients declare each server name")
	listCmd.Flags().StringSliceVarP(&listClients, "client", "c", nil,
		"only list servers of these client(s) (repeatable)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List discovered MCP servers",
	Long: `List every MCP server declared by the known clients, one row per
client entry. The same name may appear under several clients.

Environment values, headers, arguments and URL credentials that look like
secrets are masked. Use --show-secrets (or show_secrets in the config file)
to reveal them.

Files that exist but cannot be parsed are reported on stderr; the rest of
the listing is unaffected.`,
	Example: `  # List all servers
  mcpm list

  # Only Cursor's servers, as YAML
  mcpm list --client cursor --format yaml

  # Which clients have which servers
  mcpm list --matrix

  See Also:
    mcpm clients   - Show client config locations
    mcpm check     - Health-check servers`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// listEntry is one server in structured output.
type listEntry struct {
	Name      string            `json:"name" yaml:"name" toml:"name"`
	Client    string            `json:"client" yaml:"client" toml:"client"`
	Source    string            `json:"source" yaml:"source" toml:"source"`
	Transport string            `json:"transport" yaml:"transport" toml:"transport"`
	Command   string            `json:"command,omitempty" yaml:"command,omitempty" toml:"command,omitempty"`
	Args      []string          `json:"args,omitempty" yaml:"args,omitempty" toml:"args,omitempty"`
	URL       string            `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
	Headers   map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" toml:"headers,omitempty"`
	Env       map[string]string `json:"env,omitempty" yaml:"env,omitempty" toml:"env,omitempty"`
}

// listOutput is the document written by the structured formats.
type listOutput struct {
	Servers       []listEntry `json:"servers" yaml:"servers" toml:"servers"`
	ActiveClients []string    `json:"active_clients" yaml:"active_clients" toml:"active_clients"`
	Errors        []string    `json:"errors,omitempty" yaml:"errors,omitempty" toml:"errors,omitempty"`
}

type listOptions struct {
	format      string
	showSecrets bool
	matrix      bool
	kinds       []client.Kind
}

func runList(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(listFormat)
	if listJSON {
		if cmd.Flags().Changed("format") && format != formatJSON {
			return errors.NewUserError(nil, "cannot use --json with --format "+listFormat)
		}
		format = formatJSON
	}

	kinds, err := parseKinds(listClients, false)
	if err != nil {
		return err
	}

	result, _, err := discover(cmd)
	if err != nil {
		return err
	}

	return writeList(cmd.OutOrStdout(), cmd.ErrOrStderr(), result, listOptions{
		format:      format,
		showSecrets: listShowSecrets || settings().ShowSecrets,
		matrix:      listMatrix,
		kinds:       kinds,
	})
}

// writeList renders result to w. Parse errors go to errW.
func writeList(w, errW io.Writer, result *mcp.DiscoveryResult, opts listOptions) error {
	for _, e := range result.Errors {
		fmt.Fprintf(errW, "%s %s\n", yellow("warning:"), e)
	}

	servers := result.Servers
	if len(opts.kinds) > 0 {
		servers = servers[:0:0]
		for _, s := range result.Servers {
			if slices.Contains(opts.kinds, s.Client) {
				servers = append(servers, s)
			}
		}
	}

	if opts.matrix {
		if opts.format != formatTable {
			return errors.NewUserError(nil, "--matrix only supports table output")
		}
		return writeMatrix(w, result)
	}

	switch opts.format {
	case formatTable:
		return writeTable(w, servers)
	case formatJSON, formatYAML, formatTOML:
		return writeStructured(w, opts.format, buildListOutput(result, servers, opts.showSecrets))
	default:
		return errors.NewUserError(
			errors.Newf("unknown format %q", opts.format),
			"Valid formats: table, json, yaml, toml",
		)
	}
}

func buildListOutput(result *mcp.DiscoveryResult, servers []mcp.Server, showSecrets bool) listOutput {
	out := listOutput{
		Servers:       make([]listEntry, 0, len(servers)),
		ActiveClients: make([]string, 0, len(result.ActiveClients)),
		Errors:        result.Errors,
	}
	for _, k := range result.ActiveClients {
		out.ActiveClients = append(out.ActiveClients, k.ID())
	}
	for _, s := range servers {
		out.Servers = append(out.Servers, toListEntry(s, showSecrets))
	}
	return out
}

func toListEntry(s mcp.Server, showSecrets bool) listEntry {
	t := s.Transport
	e := listEntry{
		Name:      s.Name,
		Client:    s.Client.ID(),
		Source:    s.SourcePath,
		Transport: t.Kind.String(),
		Command:   t.Command,
		Args:      t.Args,
		URL:       t.URL,
		Headers:   t.Headers,
		Env:       s.Env,
	}
	if !showSecrets {
		e.Args = redact.Args(e.Args)
		e.URL = redact.URL(e.URL)
		e.Headers = redact.Map(e.Headers)
		e.Env = redact.Map(e.Env)
	}
	return e
}

func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "encoding JSON")
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encoding YAML")
		}
		return errors.Wrap(enc.Close(), "encoding YAML")
	case formatTOML:
		return errors.Wrap(toml.NewEncoder(w).Encode(v), "encoding TOML")
	}
	return errors.Newf("unknown format %q", format)
}

func writeTable(w io.Writer, servers []mcp.Server) error {
	if len(servers) == 0 {
		fmt.Fprintln(w, "No MCP servers found.")
		return nil
	}

	fmt.Fprintln(w, bold(pad("SERVER", colServer)+" "+pad("CLIENT", colClient)+" "+pad("TYPE", colType)+" SOURCE"))

	clients := make(map[client.Kind]bool)
	for _, s := range servers {
		clients[s.Client] = true
		fmt.Fprintf(w, "%s %s %s %s\n",
			green(pad(s.Name, colServer)),
			pad(s.Client.Label(), colClient),
			pad(s.Transport.Kind.String(), colType),
			s.SourcePath)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, gray(fmt.Sprintf("%d server(s) across %d client(s)", len(servers), len(clients))))
	return nil
}

// writeMatrix prints one row per distinct name and one column per active
// client.
func writeMatrix(w io.Writer, result *mcp.DiscoveryResult) error {
	names := result.Names()
	if len(names) == 0 {
		fmt.Fprintln(w, "No MCP servers found.")
		return nil
	}

	var header strings.Builder
	header.WriteString(pad("SERVER", colServer))
	widths := make([]int, len(result.ActiveClients))
	for i, k := range result.ActiveClients {
		widths[i] = len(k.Label()) + 2
		header.WriteString(pad(k.Label(), widths[i]))
	}
	fmt.Fprintln(w, bold(strings.TrimRight(header.String(), " ")))

	for i, row := range result.Matrix() {
		var line strings.Builder
		line.WriteString(green(pad(names[i], colServer)))
		for j, has := range row {
			cell := gray(pad("·", widths[j]))
			if has {
				cell = green(pad("✓", widths[j]))
			}
			line.WriteString(cell)
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
	return nil
}
