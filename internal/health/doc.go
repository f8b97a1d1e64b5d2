// Package health verifies that stdio MCP servers start and answer the
// initialize handshake.
//
// A probe spawns the server, writes one initialize request, keeps stdin
// open, and races a stdout reader against a fixed deadline. Whatever the
// outcome, the child's process group is killed and the child is reaped
// before the probe returns.
//
// Asynchronous probes deliver mcp.HealthResult values into a Queue that
// the caller drains on its own schedule.
package health
