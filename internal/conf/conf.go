package conf

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
)

// DefaultPath is where Load looks for the configuration file absent an
// explicit override: $HOME/.config/osh/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".osh.yaml"
	}
	return filepath.Join(home, ".config", "osh", "config.yaml")
}

// Namespace is a nested configuration tree, looked up by dotted path
// (e.g. Value("remote", "cluster1", "user")).
type Namespace struct {
	tree map[string]interface{}
}

// Empty returns a Namespace with nothing configured; lookups always miss.
func Empty() *Namespace { return &Namespace{tree: map[string]interface{}{}} }

// Load reads and parses the YAML file at path. A missing file is not an
// error: it's treated the same as an empty configuration, since most
// installations have no ~/.oshrc equivalent at all.
func Load(path string) (*Namespace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(), nil
		}
		return nil, err
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	if tree == nil {
		tree = map[string]interface{}{}
	}
	return &Namespace{tree: tree}, nil
}

// Value looks up a dotted key path, e.g. Value("remote", "prod", "user").
// It also accepts a single pre-joined dotted string. Returns false if any
// segment of the path is missing.
func (n *Namespace) Value(path ...string) (interface{}, bool) {
	if len(path) == 1 && strings.Contains(path[0], ".") {
		path = strings.Split(path[0], ".")
	}
	var cur interface{} = n.tree
	for _, key := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

var (
	defaultOnce sync.Once
	defaultNS   *Namespace
	defaultErr  error
)

// Default returns the configuration namespace loaded from DefaultPath(),
// read once and cached for the life of the process. Operators that
// resolve a named cluster (fork's thread generator, remote's host
// lookup) use this rather than threading a Namespace through every call.
func Default() (*Namespace, error) {
	defaultOnce.Do(func() {
		defaultNS, defaultErr = Load(DefaultPath())
	})
	return defaultNS, defaultErr
}

// StringValue looks up path and type-asserts the result as a string.
func (n *Namespace) StringValue(path ...string) (string, bool) {
	v, ok := n.Value(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
