package discovery

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/logging"
	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/mcp/parser"
)

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger used for skipped and malformed sources.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithKinds restricts scanning to the given kinds.
func WithKinds(kinds ...client.Kind) Option {
	return func(s *Scanner) {
		s.kinds = kinds
	}
}

// Scanner reads every known client config location.
type Scanner struct {
	logger *slog.Logger
	kinds  []client.Kind
}

// New creates a Scanner over every registered client kind.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		logger: logging.NewDiscard(),
		kinds:  client.All(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Discover scans with default options.
func Discover(cwd string) *mcp.DiscoveryResult {
	return New().Discover(cwd)
}

// Discover scans every location and merges the results. It never fails:
// absent or unreadable files are skipped, and malformed files add one
// "<path>: <error>" string to Errors without affecting other sources.
func (s *Scanner) Discover(cwd string) *mcp.DiscoveryResult {
	result := &mcp.DiscoveryResult{}

	for _, kind := range s.kinds {
		if kind == client.ClaudeCodePlugin {
			s.scanPlugins(result)
			continue
		}
		path, ok := kind.ConfigPath(cwd)
		if !ok {
			s.logger.Debug("config path undeterminable", "client", kind.Label())
			continue
		}
		s.scanFile(result, kind, path)
	}

	seen := make(map[client.Kind]bool)
	for _, srv := range result.Servers {
		seen[srv.Client] = true
	}
	result.ActiveClients = client.Filter(func(k client.Kind) bool { return seen[k] })

	s.logger.Debug("discovery complete",
		"servers", len(result.Servers),
		"clients", len(result.ActiveClients),
		"errors", len(result.Errors),
	)
	return result
}

func (s *Scanner) scanFile(result *mcp.DiscoveryResult, kind client.Kind, path string) {
	v, err := parser.ReadFile(path)
	if err != nil {
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			s.logger.Debug("malformed config", "client", kind.Label(), "path", path, "error", err)
			result.Errors = append(result.Errors, pe.Error())
			return
		}
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("unreadable config skipped", "client", kind.Label(), "path", path, "error", err)
		}
		return
	}

	root, ok := v.(map[string]any)
	if !ok {
		s.logger.Debug("config is not an object", "client", kind.Label(), "path", path)
		return
	}

	servers := Extract(root, kind, path)
	s.logger.Debug("scanned config", "client", kind.Label(), "path", path, "servers", len(servers))
	result.Servers = append(result.Servers, servers...)
}

// Extract pulls the server records out of a decoded document according to
// the kind's shape.
func Extract(root map[string]any, kind client.Kind, source string) []mcp.Server {
	switch kind.Shape() {
	case client.ShapeGlobal:
		return extractGlobal(root, kind, source)
	case client.ShapeWrappedOrFlat:
		if m, ok := root[client.ServersKey].(map[string]any); ok {
			return mcp.ParseServerMap(m, kind, source)
		}
		return mcp.ParseServerMap(root, kind, source)
	case client.ShapeVSCode:
		if m, ok := root[kind.ServersKey()].(map[string]any); ok {
			return mcp.ParseServerMap(m, kind, source)
		}
		if m, ok := root[client.ServersKey].(map[string]any); ok {
			return mcp.ParseServerMap(m, kind, source)
		}
		return nil
	default:
		if m, ok := root[kind.ServersKey()].(map[string]any); ok {
			return mcp.ParseServerMap(m, kind, source)
		}
		return nil
	}
}

// extractGlobal merges the root server map with every project's map.
// First seen wins: root entries shadow project entries, and projects are
// visited in sorted key order.
func extractGlobal(root map[string]any, kind client.Kind, source string) []mcp.Server {
	var out []mcp.Server
	seen := make(map[string]bool)

	add := func(m map[string]any) {
		for _, srv := range mcp.ParseServerMap(m, kind, source) {
			if seen[srv.Name] {
				continue
			}
			seen[srv.Name] = true
			out = append(out, srv)
		}
	}

	if m, ok := root[client.ServersKey].(map[string]any); ok {
		add(m)
	}

	projects, _ := root[client.ProjectsKey].(map[string]any)
	for _, p := range mcp.SortedKeys(projects) {
		project, ok := projects[p].(map[string]any)
		if !ok {
			continue
		}
		if m, ok := project[client.ServersKey].(map[string]any); ok {
			add(m)
		}
	}
	return out
}

// PluginFiles lists plugin-provided server files below the plugin root.
func PluginFiles() []string {
	root := client.PluginRoot()
	if root == "" {
		return nil
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil
	}

	matches, err := doublestar.Glob(os.DirFS(root), client.PluginGlob)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Join(root, filepath.FromSlash(m)))
	}
	slices.Sort(out)
	return out
}

func (s *Scanner) scanPlugins(result *mcp.DiscoveryResult) {
	for _, path := range PluginFiles() {
		s.scanFile(result, client.ClaudeCodePlugin, path)
	}
}
