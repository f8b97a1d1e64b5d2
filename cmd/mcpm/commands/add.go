package commands

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/mcp/validator"
)

// Sentinel errors for add.
var (
	errAddMissingCommandOrURL = errors.New("either a command or --url is required")
	errAddBothCommandAndURL   = errors.New("cannot specify both a command and --url")
)

// Package-level flag variables for the add command.
var (
	addEnv       []string
	addClients   []string
	addURL       string
	addTransport string
	addHeaders   []string
	addForce     bool
)

func init() {
	addCmd.Flags().StringArrayVarP(&addEnv, "env", "e", nil,
		"environment variable in KEY=VALUE format (repeatable)")
	addCmd.Flags().StringSliceVarP(&addClients, "client", "c", nil,
		"client(s) to write to (default: default_clients from config)")
	addCmd.Flags().StringVar(&addURL, "url", "",
		"remote server endpoint instead of a command")
	addCmd.Flags().StringVar(&addTransport, "transport", "http",
		"transport for --url: http, sse")
	addCmd.Flags().StringArrayVar(&addHeaders, "header", nil,
		"HTTP header for --url in KEY=VALUE format (repeatable)")
	addCmd.Flags().BoolVarP(&addForce, "force", "f", false,
		"overwrite the server where it already exists")

	// Everything after the command belongs to the server, including
	// arguments that look like flags.
	addCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add [flags] <name> [command] [args...]",
	Short: "Add an MCP server to one or more clients",
	Long: `Add a server entry to the config file of each target client. Existing
files are backed up first and replaced atomically; missing files are
created.

Flags must come before the server name: everything after the command is
passed to the server as its arguments.

Without --client, the clients listed in default_clients are used.`,
	Example: `  # Add a stdio server to the default clients
  mcpm add filesystem npx -y @modelcontextprotocol/server-filesystem /tmp

  # With environment and explicit clients
  mcpm add -e GITHUB_TOKEN=ghp_xxx -c cc-global -c cursor github npx -y @modelcontextprotocol/server-github

  # A remote server
  mcpm add --url https://mcp.example.com/mcp --header "Authorization=Bearer xyz" remote

  See Also:
    mcpm sync      - Copy an existing server to more clients
    mcpm remove    - Remove a server`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return errors.NewUserError(errors.ErrMissingName, "")
	}

	srv, err := addServer(name, args[1:])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	issues := validator.New(validator.WithLookPath(exec.LookPath)).Validate(srv)
	if validator.HasErrors(issues) {
		msgs := make([]string, 0, len(issues))
		for _, e := range validator.Errors(issues) {
			msgs = append(msgs, e.Message)
		}
		return errors.NewUserError(errors.Newf("invalid server: %s", strings.Join(msgs, "; ")), "")
	}
	for _, e := range validator.Warnings(issues) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", yellow("warning:"), e.Message)
	}

	kinds := defaultClients(settings())
	if len(addClients) > 0 {
		if kinds, err = parseKinds(addClients, true); err != nil {
			return err
		}
	}

	result, cwd, err := discover(cmd)
	if err != nil {
		return err
	}
	if !addForce {
		if existing := existingIn(result, kinds, name); len(existing) > 0 {
			return errors.NewUserError(
				errors.Newf("server %q already exists in %s", name, labels(existing)),
				"Use --force to overwrite",
			)
		}
	}

	value, err := mcp.ServerValue(srv)
	if err != nil {
		return errors.NewUserError(err, "")
	}

	fmt.Fprintf(w, "Adding %q to %s\n", name, labels(kinds))
	batch := newWriter(cmd).AddToClients(kinds, cwd, name, value)
	return printBatch(w, batch, "Added", name)
}

// addServer builds the record described by the flags and positional
// arguments that follow the name.
func addServer(name string, rest []string) (mcp.Server, error) {
	if len(rest) == 0 && addURL == "" {
		return mcp.Server{}, errors.NewUserError(errAddMissingCommandOrURL, "")
	}
	if len(rest) > 0 && addURL != "" {
		return mcp.Server{}, errors.NewUserError(errAddBothCommandAndURL, "")
	}

	env, err := parseKeyValueSlice(addEnv, "--env")
	if err != nil {
		return mcp.Server{}, err
	}

	srv := mcp.Server{Name: name, Env: env}
	if addURL == "" {
		srv.Transport = mcp.Stdio(rest[0], rest[1:])
		return srv, nil
	}

	if len(env) > 0 {
		return mcp.Server{}, errors.NewUserError(nil, "--env is only supported for command servers")
	}
	headers, err := parseKeyValueSlice(addHeaders, "--header")
	if err != nil {
		return mcp.Server{}, err
	}
	switch strings.ToLower(addTransport) {
	case "http":
		srv.Transport = mcp.HTTP(addURL, headers)
	case "sse":
		if len(headers) > 0 {
			return mcp.Server{}, errors.NewUserError(nil, "--header is only supported with --transport http")
		}
		srv.Transport = mcp.SSE(addURL)
	default:
		return mcp.Server{}, errors.NewUserError(
			errors.Newf("invalid --transport %q", addTransport),
			"Valid transports: http, sse",
		)
	}
	return srv, nil
}

// existingIn returns the kinds among targets that already declare name.
func existingIn(result *mcp.DiscoveryResult, targets []client.Kind, name string) []client.Kind {
	var out []client.Kind
	for _, k := range targets {
		if result.Find(k, name) >= 0 {
			out = append(out, k)
		}
	}
	return out
}
