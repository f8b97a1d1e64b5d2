package mcp

import (
	"fmt"
	"time"

	"github.com/thoreinstein/mcpm/internal/client"
)

// TransportKind discriminates the Transport variant.
type TransportKind int

const (
	// TransportUnknown is a server object with neither command, url nor a
	// recognized type.
	TransportUnknown TransportKind = iota
	// TransportStdio is a locally spawned process speaking over stdin/stdout.
	TransportStdio
	// TransportHTTP is a remote streamable-HTTP endpoint.
	TransportHTTP
	// TransportSSE is a remote Server-Sent Events endpoint.
	TransportSSE
)

// String returns the wire name of the transport ("stdio", "http", "sse",
// "unknown").
func (k TransportKind) String() string {
	switch k {
	case TransportStdio:
		return "stdio"
	case TransportHTTP:
		return "http"
	case TransportSSE:
		return "sse"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind as its wire name.
func (k TransportKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Transport is a tagged union over the ways a server can be reached.
// Only the fields of the active Kind are meaningful.
type Transport struct {
	Kind TransportKind `json:"type" yaml:"type" toml:"type"`

	// Stdio
	Command string   `json:"command,omitempty" yaml:"command,omitempty" toml:"command,omitempty"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty" toml:"args,omitempty"`

	// HTTP and SSE
	URL string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`

	// HTTP only. Nil when the source had no headers object.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" toml:"headers,omitempty"`
}

// Stdio builds a stdio transport.
func Stdio(command string, args []string) Transport {
	return Transport{Kind: TransportStdio, Command: command, Args: args}
}

// HTTP builds an http transport.
func HTTP(url string, headers map[string]string) Transport {
	return Transport{Kind: TransportHTTP, URL: url, Headers: headers}
}

// SSE builds an sse transport.
func SSE(url string) Transport {
	return Transport{Kind: TransportSSE, URL: url}
}

// Unknown builds an unknown transport.
func Unknown() Transport {
	return Transport{Kind: TransportUnknown}
}

// Probeable reports whether a health probe can run against the transport.
func (t Transport) Probeable() bool { return t.Kind == TransportStdio }

// Server is one discovered entry. Names are not globally unique; the
// same name may appear under several clients.
type Server struct {
	Name       string            `json:"name" yaml:"name" toml:"name"`
	Client     client.Kind       `json:"client" yaml:"client" toml:"client"`
	SourcePath string            `json:"source" yaml:"source" toml:"source"`
	Transport  Transport         `json:"transport" yaml:"transport" toml:"transport"`
	Env        map[string]string `json:"env,omitempty" yaml:"env,omitempty" toml:"env,omitempty"`

	Health      HealthStatus `json:"-" yaml:"-" toml:"-"`
	LastChecked time.Time    `json:"-" yaml:"-" toml:"-"`
}

// Key returns the identity used to match probe results to slots.
func (s Server) Key() Key {
	return Key{Client: s.Client, Name: s.Name, SourcePath: s.SourcePath}
}

// Key identifies a server record independently of its position.
type Key struct {
	Client     client.Kind
	Name       string
	SourcePath string
}

// String renders the key as "<label>/<name>".
func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Client.Label(), k.Name)
}
