package client

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/paths"
)

// Kind identifies a host application that declares MCP servers.
type Kind int

// Known client kinds in canonical display order.
const (
	ClaudeCodeGlobal Kind = iota
	ClaudeCodeProject
	CursorGlobal
	CursorProject
	VSCodeProject
	Windsurf
	ClaudeDesktop
	ClaudeCodePlugin
)

// Shape describes how a client's file nests its server map.
type Shape int

const (
	// ShapeWrapped nests servers under a single key.
	ShapeWrapped Shape = iota
	// ShapeWrappedOrFlat uses the wrapped key when present and an object,
	// and otherwise treats every top-level object member as a server.
	ShapeWrappedOrFlat
	// ShapeGlobal has a root server map plus per-project server maps under
	// "projects".
	ShapeGlobal
	// ShapeVSCode nests under "servers", falling back to "mcpServers".
	ShapeVSCode
)

// Scope says what a config path is relative to.
type Scope int

const (
	// ScopeHome paths hang off the user's home directory.
	ScopeHome Scope = iota
	// ScopeProject paths hang off the working directory.
	ScopeProject
)

// ServersKey is the generic key most clients nest servers under.
const ServersKey = "mcpServers"

// ProjectsKey holds per-project settings in the global client's file.
const ProjectsKey = "projects"

type entry struct {
	id         string
	label      string
	name       string
	key        string
	shape      Shape
	scope      Scope
	rel        []string
	candidates [][]string
	writable   bool
}

var registry = map[Kind]entry{
	ClaudeCodeGlobal: {
		id: "cc-global", label: "CC-Global", name: "Claude Code (user)",
		key: ServersKey, shape: ShapeGlobal, scope: ScopeHome,
		rel: []string{".claude.json"}, writable: true,
	},
	ClaudeCodeProject: {
		id: "cc-project", label: "CC-Project", name: "Claude Code (project)",
		key: ServersKey, shape: ShapeWrappedOrFlat, scope: ScopeProject,
		rel: []string{".mcp.json"}, writable: true,
	},
	CursorGlobal: {
		id: "cursor", label: "Cursor", name: "Cursor (user)",
		key: ServersKey, shape: ShapeWrapped, scope: ScopeHome,
		rel: []string{".cursor", "mcp.json"}, writable: true,
	},
	CursorProject: {
		id: "cursor-project", label: "Cur-Proj", name: "Cursor (project)",
		key: ServersKey, shape: ShapeWrapped, scope: ScopeProject,
		rel: []string{".cursor", "mcp.json"}, writable: true,
	},
	VSCodeProject: {
		id: "vscode", label: "VSCode", name: "VS Code (workspace)",
		key: "servers", shape: ShapeVSCode, scope: ScopeProject,
		rel: []string{".vscode", "mcp.json"}, writable: true,
	},
	Windsurf: {
		id: "windsurf", label: "Windsurf", name: "Windsurf",
		key: ServersKey, shape: ShapeWrapped, scope: ScopeHome,
		rel: []string{".codeium", "windsurf", "mcp_config.json"}, writable: true,
	},
	ClaudeDesktop: {
		id: "desktop", label: "Desktop", name: "Claude Desktop",
		key: ServersKey, shape: ShapeWrapped, scope: ScopeHome,
		candidates: [][]string{
			{"Library", "Application Support", "Claude", "claude_desktop_config.json"},
			{".config", "Claude", "claude_desktop_config.json"},
		},
		writable: true,
	},
	ClaudeCodePlugin: {
		id: "plugin", label: "Plugin", name: "Claude Code plugins",
		key: ServersKey, shape: ShapeWrappedOrFlat, scope: ScopeHome,
	},
}

var order = []Kind{
	ClaudeCodeGlobal,
	ClaudeCodeProject,
	CursorGlobal,
	CursorProject,
	VSCodeProject,
	Windsurf,
	ClaudeDesktop,
	ClaudeCodePlugin,
}

// All returns every kind in canonical display order.
func All() []Kind {
	out := make([]Kind, len(order))
	copy(out, order)
	return out
}

// Writable returns the kinds that can be targets of add and sync,
// in canonical order.
func Writable() []Kind {
	return Filter(Kind.Writable)
}

// Label returns the short display label, e.g. "CC-Global".
func (k Kind) Label() string {
	if e, ok := registry[k]; ok {
		return e.label
	}
	return "Unknown"
}

// String implements fmt.Stringer.
func (k Kind) String() string { return k.Label() }

// ID returns the stable identifier used on the command line and in config.
func (k Kind) ID() string { return registry[k].id }

// Name returns the long human-readable client name.
func (k Kind) Name() string { return registry[k].name }

// ServersKey returns the key under which this client nests its servers.
func (k Kind) ServersKey() string { return registry[k].key }

// Shape returns how the client's file nests servers.
func (k Kind) Shape() Shape { return registry[k].shape }

// Scope reports whether the config path is home- or project-relative.
func (k Kind) Scope() Scope { return registry[k].scope }

// Writable reports whether add and sync may target this kind.
func (k Kind) Writable() bool { return registry[k].writable }

// Deletable reports whether entries of this kind can be removed. Plugin
// entries are removable through their source file even though the kind
// has no config path of its own.
func (k Kind) Deletable() bool { return k.Writable() || k == ClaudeCodePlugin }

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := registry[k]
	return ok
}

// ConfigPath resolves the kind's config file. Home-relative kinds resolve
// against the user's home directory and project-relative kinds against
// cwd. It returns false when the path cannot be determined.
//
// For kinds with several candidate locations the first existing one wins;
// when none exists the first candidate is returned so writes have a target.
func (k Kind) ConfigPath(cwd string) (string, bool) {
	e, ok := registry[k]
	if !ok {
		return "", false
	}

	var root string
	switch e.scope {
	case ScopeHome:
		root = paths.Home()
	case ScopeProject:
		root = cwd
	}
	if root == "" {
		return "", false
	}

	if len(e.candidates) > 0 {
		for _, c := range e.candidates {
			p := filepath.Join(append([]string{root}, c...)...)
			if _, err := os.Stat(p); err == nil {
				return p, true
			}
		}
		return filepath.Join(append([]string{root}, e.candidates[0]...)...), true
	}
	if len(e.rel) == 0 {
		return "", false
	}
	return filepath.Join(append([]string{root}, e.rel...)...), true
}

// Filter returns the kinds for which keep is true, in canonical order.
func Filter(keep func(Kind) bool) []Kind {
	var out []Kind
	for _, k := range order {
		if keep(k) {
			out = append(out, k)
		}
	}
	return out
}

// PluginRoot returns the directory scanned for plugin-provided servers.
func PluginRoot() string {
	return paths.HomeJoin(".claude", "plugins")
}

// PluginGlob is matched below PluginRoot to find plugin server files.
const PluginGlob = "**/.mcp.json"

// Parse resolves a kind from its id or label, case-insensitively.
func Parse(s string) (Kind, bool) {
	s = strings.TrimSpace(s)
	for _, k := range order {
		e := registry[k]
		if strings.EqualFold(s, e.id) || strings.EqualFold(s, e.label) {
			return k, true
		}
	}
	return 0, false
}

// IDs returns every kind's id in canonical order.
func IDs() []string {
	ids := make([]string, 0, len(order))
	for _, k := range order {
		ids = append(ids, registry[k].id)
	}
	return ids
}

// MarshalText encodes the kind as its id.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, errors.Newf("unknown client kind %d", int(k))
	}
	return []byte(k.ID()), nil
}

// UnmarshalText decodes an id or label.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, ok := Parse(string(b))
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "client %q", string(b))
	}
	*k = parsed
	return nil
}
