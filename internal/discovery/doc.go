// Package discovery scans every known client config file and merges the
// declared MCP servers into one [mcp.DiscoveryResult].
//
// Scanning is tolerant. A missing file is skipped silently, a malformed
// file contributes one error string and is skipped, and no single source
// can abort the scan. Identical names under different clients are kept as
// separate records; within the global client a name appears at most once.
package discovery
