// Package config loads mcpm's own settings with viper.
//
// It is distinct from the client config files mcpm reads and rewrites.
//
// # Configuration File
//
// The file is config.yaml, searched in the working directory and then in
// <XDG config home>/mcpm (or $MCPM_CONFIG_DIR):
//
//	version: 1
//	default_clients:
//	  - cc-project
//	  - cursor
//	show_secrets: false
//	log_format: text
//	probe_concurrency: 0
//	watch: true
//
// Every key can be overridden from the environment with the MCPM_ prefix,
// e.g. MCPM_SHOW_SECRETS=true.
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//
// Load validates the result; [Validate] returns every problem rather than
// the first.
package config
