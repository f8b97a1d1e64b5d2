// Package configwriter adds and removes server entries in client config
// files.
//
// Every mutation follows the same sequence: resolve the client's path,
// create its directory, read the current document (a missing file is an
// empty object, a malformed one aborts), copy the existing file to its
// ".bak" sibling, apply the client's structural rule, and replace the file
// through its ".tmp" sibling with a rename. Members mcpm does not
// understand are preserved.
//
// Batch helpers run one mutation per client and collect the failures
// without stopping at the first one.
package configwriter
