package mcp

import (
	"slices"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/errors"
)

// Server object field names as they appear in client config files.
const (
	FieldType    = "type"
	FieldCommand = "command"
	FieldArgs    = "args"
	FieldEnv     = "env"
	FieldURL     = "url"
	FieldHeaders = "headers"
)

// ParseTransport infers a transport from a server object. Precedence:
// an explicit "http" or "sse" type wins; otherwise a command member (or
// type "stdio") means stdio; otherwise a url member means http; otherwise
// the transport is unknown. Missing or mistyped sub-fields become empty
// values rather than errors.
func ParseTransport(obj map[string]any) Transport {
	typ, _ := obj[FieldType].(string)

	switch typ {
	case "http":
		return HTTP(stringField(obj, FieldURL), StringMap(obj[FieldHeaders]))
	case "sse":
		return SSE(stringField(obj, FieldURL))
	}

	if _, ok := obj[FieldCommand]; ok || typ == "stdio" {
		return Stdio(stringField(obj, FieldCommand), stringSlice(obj[FieldArgs]))
	}
	if _, ok := obj[FieldURL]; ok {
		return HTTP(stringField(obj, FieldURL), StringMap(obj[FieldHeaders]))
	}
	return Unknown()
}

// StringMap copies the string-valued members of v when v is an object.
// It returns nil when v is absent or not an object, and an empty map for
// an object with no string members.
func StringMap(v any) map[string]string {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(obj))
	for k, val := range obj {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func stringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// ParseServerMap turns every object-valued member of m into a Server owned
// by kind. Records come out sorted by name.
func ParseServerMap(m map[string]any, kind client.Kind, source string) []Server {
	names := make([]string, 0, len(m))
	for name, v := range m {
		if _, ok := v.(map[string]any); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	out := make([]Server, 0, len(names))
	for _, name := range names {
		obj := m[name].(map[string]any)
		out = append(out, Server{
			Name:       name,
			Client:     kind,
			SourcePath: source,
			Transport:  ParseTransport(obj),
			Env:        StringMap(obj[FieldEnv]),
			Health:     Unchecked(),
		})
	}
	return out
}

// BuildServerValue produces the JSON object written for a stdio server.
// args and env are omitted when empty.
func BuildServerValue(command string, args []string, env map[string]string) map[string]any {
	v := map[string]any{FieldCommand: command}
	if len(args) > 0 {
		arr := make([]any, len(args))
		for i, a := range args {
			arr[i] = a
		}
		v[FieldArgs] = arr
	}
	if len(env) > 0 {
		v[FieldEnv] = stringMapValue(env)
	}
	return v
}

// DecodeServerValue is the inverse of BuildServerValue. Absent args and
// env decode as empty.
func DecodeServerValue(v map[string]any) (command string, args []string, env map[string]string) {
	command = stringField(v, FieldCommand)
	args = stringSlice(v[FieldArgs])
	env = StringMap(v[FieldEnv])
	if env == nil {
		env = map[string]string{}
	}
	return command, args, env
}

// ServerValue renders a discovered server back into a config-file object
// so it can be written to another client.
func ServerValue(s Server) (map[string]any, error) {
	t := s.Transport
	switch t.Kind {
	case TransportStdio:
		return BuildServerValue(t.Command, t.Args, s.Env), nil
	case TransportHTTP:
		v := map[string]any{FieldType: "http", FieldURL: t.URL}
		if len(t.Headers) > 0 {
			v[FieldHeaders] = stringMapValue(t.Headers)
		}
		return v, nil
	case TransportSSE:
		return map[string]any{FieldType: "sse", FieldURL: t.URL}, nil
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedTransport, "server %q", s.Name)
	}
}

func stringMapValue(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SortedKeys returns m's keys in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
