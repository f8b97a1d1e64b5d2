package doctor

import (
	"os"

	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/discovery"
)

// configFile is one client config location.
type configFile struct {
	Kind   client.Kind
	Path   string
	Exists bool
}

// clientFiles lists every client config location for cwd, followed by
// plugin-provided files.
func clientFiles(cwd string) []configFile {
	var files []configFile
	for _, k := range client.All() {
		if k == client.ClaudeCodePlugin {
			for _, p := range discovery.PluginFiles() {
				files = append(files, configFile{Kind: k, Path: p, Exists: true})
			}
			continue
		}
		path, ok := k.ConfigPath(cwd)
		if !ok {
			continue
		}
		_, err := os.Stat(path)
		files = append(files, configFile{Kind: k, Path: path, Exists: err == nil})
	}
	return files
}

func existing(files []configFile) []configFile {
	var out []configFile
	for _, f := range files {
		if f.Exists {
			out = append(out, f)
		}
	}
	return out
}
