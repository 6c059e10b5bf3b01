// Package lockfile reads myenv.lock files.
//
// A lockfile is a TOML document with one table per tool. Each tool records
// where it came from and, per package ecosystem, the resolved package:
//
//	[ripgrep]
//	source = "github:BurntSushi/ripgrep"
//	constraint = "^14"
//
//	[ripgrep.github]
//	package = "BurntSushi/ripgrep"
//	version = "14.1.0"
//	hash = "9f86d081884c7d65..."
//
// The store only cares about the hashes: they form the keep-set for GC.
package lockfile

import (
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the conventional lockfile name.
const FileName = "myenv.lock"

// Lockfile is a parsed lockfile keyed by tool name.
type Lockfile struct {
	Tools map[string]LockedTool
}

// LockedTool is a tool with its resolved packages per ecosystem.
type LockedTool struct {
	Source     string
	Constraint string
	Ecosystems map[string]LockedPackage
}

// LockedPackage is a package resolved for one ecosystem.
type LockedPackage struct {
	Package string `toml:"package"`
	Version string `toml:"version"`
	Hash    string `toml:"hash,omitempty"`
	Archive string `toml:"archive,omitempty"`
	Nixpkgs string `toml:"nixpkgs,omitempty"`
}

// Load reads and parses the lockfile at path.
func Load(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}
	lf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lf, nil
}

// Parse decodes a lockfile document.
func Parse(data []byte) (*Lockfile, error) {
	var raw map[string]map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse lockfile: %w", err)
	}

	lf := &Lockfile{Tools: make(map[string]LockedTool, len(raw))}
	for name, fields := range raw {
		tool := LockedTool{Ecosystems: make(map[string]LockedPackage)}
		for key, value := range fields {
			switch v := value.(type) {
			case string:
				switch key {
				case "source":
					tool.Source = v
				case "constraint":
					tool.Constraint = v
				}
			case map[string]any:
				pkg, err := decodePackage(v)
				if err != nil {
					return nil, fmt.Errorf("failed to parse lockfile: %s.%s: %w", name, key, err)
				}
				tool.Ecosystems[key] = pkg
			}
		}
		lf.Tools[name] = tool
	}
	return lf, nil
}

// decodePackage round-trips a generic table through the typed struct so
// field names and types are checked by the decoder.
func decodePackage(table map[string]any) (LockedPackage, error) {
	var pkg LockedPackage
	data, err := toml.Marshal(table)
	if err != nil {
		return pkg, err
	}
	err = toml.Unmarshal(data, &pkg)
	return pkg, err
}

// Hashes returns the distinct non-empty package hashes, sorted.
func (l *Lockfile) Hashes() []string {
	set := make(map[string]struct{})
	for _, tool := range l.Tools {
		for _, pkg := range tool.Ecosystems {
			if pkg.Hash != "" {
				set[pkg.Hash] = struct{}{}
			}
		}
	}
	hashes := make([]string, 0, len(set))
	for h := range set {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)
	return hashes
}
