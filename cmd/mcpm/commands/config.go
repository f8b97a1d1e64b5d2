package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpm/internal/config"
	"github.com/thoreinstein/mcpm/internal/editor"
	"github.com/thoreinstein/mcpm/internal/errors"
)

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false,
		"overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mcpm configuration",
	Long: `Manage mcpm's own configuration, stored in ` + config.DefaultPath() + `
unless a config.yaml in the current directory or --config says otherwise.

Every key can also be set from the environment with the MCPM_ prefix,
e.g. MCPM_SHOW_SECRETS=true.

Without a subcommand, shows the effective configuration.`,
	Example: `  # Show the effective configuration
  mcpm config

  # Write a starter config file
  mcpm config init

See Also: mcpm doctor`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the effective configuration in YAML format, after defaults, file and environment are merged.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key. Array values are printed one
per line.`,
	Example: `  mcpm config get default_clients`,
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigGet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long:  `Write the default configuration to ` + config.DefaultPath() + `.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in $EDITOR",
	Long: `Open the config file in your editor. If no file was loaded, the default
location is opened; run 'mcpm config init' first to create it.`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), configPath())
		return nil
	},
}

// configPath is the file that was loaded, or the default location.
func configPath() string {
	if p := config.Used(); p != "" {
		return p
	}
	return config.DefaultPath()
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}

	w := cmd.OutOrStdout()
	if p := config.Used(); p != "" {
		fmt.Fprintf(w, "# %s\n", p)
	} else {
		fmt.Fprintln(w, "# defaults (no config file)")
	}

	data, err := yaml.Marshal(settings())
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	_, err = w.Write(data)
	return errors.Wrap(err, "writing config")
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	w := cmd.OutOrStdout()

	if !viper.IsSet(key) {
		fmt.Fprintln(w, "not set")
		return nil
	}

	switch v := viper.Get(key).(type) {
	case []any:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	case []string:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	default:
		fmt.Fprintln(w, viper.GetString(key))
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := config.DefaultPath()
	if _, err := os.Stat(path); err == nil && !configInitForce {
		return errors.NewUserError(
			errors.Newf("config file already exists at %s", path),
			"Use --force to overwrite",
		)
	}

	if err := config.Write(path, config.Default()); err != nil {
		return errors.NewSystemError(err, "")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigEdit(_ *cobra.Command, _ []string) error {
	path := configPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errors.NewUserError(
			errors.Newf("config file not found at %s", path),
			"Run: mcpm config init",
		)
	}

	if err := editor.Open(path); err != nil {
		return errors.NewSystemError(err, "Set $EDITOR to your preferred editor")
	}
	return nil
}
