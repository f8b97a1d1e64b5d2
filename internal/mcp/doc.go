// Package mcp defines the canonical model shared by discovery, probing and
// config mutation: [Server], its [Transport], the probe [HealthStatus]
// state machine, and the [DiscoveryResult] a scan produces.
//
// # Transport Inference
//
// Client config files describe servers loosely. [ParseTransport] resolves
// an object to exactly one variant with a fixed precedence:
//
//  1. "type": "http" or "type": "sse" selects that variant.
//  2. A "command" member, or "type": "stdio", selects stdio.
//  3. A "url" member with no type selects http.
//  4. Anything else is unknown.
//
// Missing sub-fields are tolerated and decode as empty values.
//
// # Server Values
//
// [BuildServerValue] and [DecodeServerValue] convert between a stdio
// (command, args, env) triple and the JSON object written into client
// files; [ServerValue] also renders http and sse records so a server can
// be replicated to other clients.
//
// # Health Results
//
// Probes report [HealthResult] values tagged with a slot index and the
// probed server's [Key]. [DiscoveryResult.Apply] drops results whose slot
// is gone or now holds a different server.
package mcp
