// Package client is the registry of host applications whose config files
// declare MCP servers.
//
// Each [Kind] maps to a fixed table entry: a short label, a stable id used
// on the command line, the JSON key its servers live under, the file's
// [Shape], and a path rule. The registry holds no state.
//
//	p, ok := client.CursorProject.ConfigPath(cwd) // <cwd>/.cursor/mcp.json
package client
