package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/paths"
	"github.com/thoreinstein/mcpm/pkg/fileutil"
)

// FileName is the config file's base name without extension.
const FileName = "config"

// EnvPrefix prefixes every environment override, e.g. MCPM_SHOW_SECRETS.
const EnvPrefix = "MCPM"

// dirEnv overrides the directory searched for the config file.
const dirEnv = "MCPM_CONFIG_DIR"

// Config is mcpm's own configuration.
type Config struct {
	Version int `mapstructure:"version" yaml:"version"`

	// DefaultClients are the client ids add writes to when --client is
	// not given.
	DefaultClients []string `mapstructure:"default_clients" yaml:"default_clients"`

	// ShowSecrets disables masking of env values and headers in output.
	ShowSecrets bool `mapstructure:"show_secrets" yaml:"show_secrets"`

	// LogFormat is "text" or "json".
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// ProbeConcurrency caps simultaneous health probes in check. Zero
	// means one probe per server.
	ProbeConcurrency int `mapstructure:"probe_concurrency" yaml:"probe_concurrency"`

	// Watch enables rescanning the dashboard when a config file changes.
	Watch bool `mapstructure:"watch" yaml:"watch"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version:        1,
		DefaultClients: []string{client.ClaudeCodeProject.ID()},
		LogFormat:      "text",
		Watch:          true,
	}
}

// Dir returns the directory holding the default config file.
func Dir() string {
	if dir := os.Getenv(dirEnv); dir != "" {
		return dir
	}
	return paths.AppConfigDir()
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), FileName+".yaml")
}

// Init resets viper and registers search paths, environment binding and
// defaults. Call it once before Load.
func Init() {
	viper.Reset()

	viper.SetConfigName(FileName)
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	viper.AddConfigPath(Dir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	d := Default()
	viper.SetDefault("version", d.Version)
	viper.SetDefault("default_clients", d.DefaultClients)
	viper.SetDefault("show_secrets", d.ShowSecrets)
	viper.SetDefault("log_format", d.LogFormat)
	viper.SetDefault("probe_concurrency", d.ProbeConcurrency)
	viper.SetDefault("watch", d.Watch)
}

// Load reads the configuration. With an empty path the search paths are
// used and a missing file yields the defaults; an explicit path must
// exist. The result is validated.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		switch {
		case missing && path != "":
			return nil, errors.Wrapf(errors.ErrNotFound, "config file %s", path)
		case missing:
			// Implicit load: defaults apply.
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(errs...), "validating config")
	}
	return &cfg, nil
}

// Used returns the config file viper loaded, or "" when defaults apply.
func Used() string {
	return viper.ConfigFileUsed()
}

// Clients resolves DefaultClients to kinds. Unknown ids are skipped;
// Validate reports them.
func (c *Config) Clients() []client.Kind {
	var out []client.Kind
	for _, id := range c.DefaultClients {
		if k, ok := client.Parse(id); ok && k.Writable() {
			out = append(out, k)
		}
	}
	return out
}

// Write saves cfg as YAML at path, creating the directory.
func Write(path string, cfg *Config) error {
	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	return fileutil.AtomicWriteYAML(path, cfg, 0o600)
}
