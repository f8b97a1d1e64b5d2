// Package dashboard is the interactive terminal view of every discovered
// MCP server.
//
// A single bubbletea control loop owns the DiscoveryResult. Health probes
// run in their own goroutines and report through a health.Queue that the
// loop drains on every tick; config mutations run synchronously inside
// Update and are followed by a full rescan.
package dashboard
