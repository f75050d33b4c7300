package cluster

import (
	"fmt"
	"strings"
	"sync"

	"github.com/geophile/osh/internal/conf"
)

// Host is one remote machine a fork worker can run on.
type Host struct {
	Name      string
	Address   string
	User      string
	Identity  string
	DBProfile string
}

func (h Host) String() string { return h.Name }

// Cluster is a named group of hosts, optionally filtered down to those
// whose name contains a substring pattern.
type Cluster struct {
	Name  string
	User  string
	Hosts []Host
}

func (c *Cluster) String() string { return c.Name }

type cacheKey struct {
	name    string
	pattern string
}

var (
	mu    sync.Mutex
	cache = map[cacheKey]*Cluster{}
)

// Named resolves a cluster by name from the configuration namespace ns,
// restricting hosts to those whose name contains pattern (pattern == ""
// means every host). Results are cached by (name, pattern).
func Named(ns *conf.Namespace, name, pattern string) (*Cluster, error) {
	key := cacheKey{name, pattern}
	mu.Lock()
	if c, ok := cache[key]; ok {
		mu.Unlock()
		return c, nil
	}
	mu.Unlock()

	user, ok := ns.StringValue("remote", name, "user")
	if !ok || user == "" {
		user = "root"
	}
	identity, _ := ns.StringValue("remote", name, "identity")

	hostsValue, ok := ns.Value("remote", name, "hosts")
	if !ok {
		return nil, nil
	}
	hosts, err := parseHosts(name, hostsValue, user, identity)
	if err != nil {
		return nil, err
	}
	if len(hosts) == 0 {
		return nil, nil
	}

	filtered := hosts
	if pattern != "" {
		filtered = nil
		for _, h := range hosts {
			if strings.Contains(h.Name, pattern) {
				filtered = append(filtered, h)
			}
		}
	}
	c := &Cluster{Name: name, User: user, Hosts: filtered}

	mu.Lock()
	cache[key] = c
	mu.Unlock()
	return c, nil
}

// Define registers a cluster directly (the API equivalent of the
// configuration-file route), bypassing internal/conf entirely.
func Define(name, user string, hosts []Host) {
	mu.Lock()
	defer mu.Unlock()
	cache[cacheKey{name, ""}] = &Cluster{Name: name, User: user, Hosts: hosts}
}

func parseHosts(clusterName string, value interface{}, user, identity string) ([]Host, error) {
	switch v := value.(type) {
	case []interface{}:
		hosts := make([]Host, 0, len(v))
		for _, entry := range v {
			addr, ok := entry.(string)
			if !ok {
				return nil, fmt.Errorf("cluster %s: host list entries must be strings", clusterName)
			}
			hosts = append(hosts, Host{Name: addr, Address: addr, User: user, Identity: identity})
		}
		return hosts, nil
	case map[string]interface{}:
		hosts := make([]Host, 0, len(v))
		for name, spec := range v {
			addr, dbProfile, err := parseHostSpec(clusterName, spec)
			if err != nil {
				return nil, err
			}
			hosts = append(hosts, Host{Name: name, Address: addr, User: user, Identity: identity, DBProfile: dbProfile})
		}
		return hosts, nil
	default:
		return nil, nil
	}
}

func parseHostSpec(clusterName string, spec interface{}) (addr, dbProfile string, err error) {
	switch s := spec.(type) {
	case string:
		addr = s
	case map[string]interface{}:
		if a, ok := s["host"].(string); ok {
			addr = a
		}
		if p, ok := s["db_profile"].(string); ok {
			dbProfile = p
		}
	}
	if addr == "" {
		return "", "", fmt.Errorf(
			"error in configuration: host specification in remote.%s.hosts "+
				"must be a string, or a map with keys \"host\" and optionally \"db_profile\"",
			clusterName)
	}
	return addr, dbProfile, nil
}
