package mcp

import (
	"github.com/thoreinstein/mcpm/internal/client"
)

// DiscoveryResult is the output of one discovery pass. It is rebuilt
// wholesale on every scan; only Health and LastChecked are updated in place.
type DiscoveryResult struct {
	Servers       []Server      `json:"servers" yaml:"servers" toml:"servers"`
	ActiveClients []client.Kind `json:"active_clients" yaml:"active_clients" toml:"active_clients"`
	Errors        []string      `json:"errors" yaml:"errors" toml:"errors"`
}

// Find returns the index of the server named name under kind, or -1.
func (r *DiscoveryResult) Find(kind client.Kind, name string) int {
	for i := range r.Servers {
		if r.Servers[i].Client == kind && r.Servers[i].Name == name {
			return i
		}
	}
	return -1
}

// FindByName returns the indexes of every record named name, in order.
func (r *DiscoveryResult) FindByName(name string) []int {
	var out []int
	for i := range r.Servers {
		if r.Servers[i].Name == name {
			out = append(out, i)
		}
	}
	return out
}

// ClientsWith returns the kinds that declare a server named name, in
// canonical order.
func (r *DiscoveryResult) ClientsWith(name string) []client.Kind {
	have := r.clientSet(name)
	return client.Filter(func(k client.Kind) bool { return have[k] })
}

// ClientsWithout returns the writable kinds that do not declare name.
func (r *DiscoveryResult) ClientsWithout(name string) []client.Kind {
	have := r.clientSet(name)
	return client.Filter(func(k client.Kind) bool { return k.Writable() && !have[k] })
}

func (r *DiscoveryResult) clientSet(name string) map[client.Kind]bool {
	have := make(map[client.Kind]bool)
	for _, s := range r.Servers {
		if s.Name == name {
			have[s.Client] = true
		}
	}
	return have
}

// Names returns the distinct server names in discovery order.
func (r *DiscoveryResult) Names() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range r.Servers {
		if !seen[s.Name] {
			seen[s.Name] = true
			out = append(out, s.Name)
		}
	}
	return out
}

// Matrix reports, for every distinct name, which active clients declare it.
// Rows follow Names(); columns follow ActiveClients.
func (r *DiscoveryResult) Matrix() [][]bool {
	col := make(map[client.Kind]int, len(r.ActiveClients))
	for i, k := range r.ActiveClients {
		col[k] = i
	}
	row := make(map[string]int)
	names := r.Names()
	out := make([][]bool, len(names))
	for i, n := range names {
		row[n] = i
		out[i] = make([]bool, len(r.ActiveClients))
	}
	for _, s := range r.Servers {
		if c, ok := col[s.Client]; ok {
			out[row[s.Name]][c] = true
		}
	}
	return out
}

// Probeable returns the indexes of every stdio server.
func (r *DiscoveryResult) Probeable() []int {
	var out []int
	for i := range r.Servers {
		if r.Servers[i].Transport.Probeable() {
			out = append(out, i)
		}
	}
	return out
}

// MarkChecking moves slot i to Checking. It returns false if i is out of
// range or the slot is not probeable.
func (r *DiscoveryResult) MarkChecking(i int) bool {
	if i < 0 || i >= len(r.Servers) || !r.Servers[i].Transport.Probeable() {
		return false
	}
	r.Servers[i].Health = Checking()
	return true
}

// Apply writes a probe result into its slot. The result is dropped, and
// false returned, when the index is out of range or the slot now holds a
// different server than the one probed.
func (r *DiscoveryResult) Apply(res HealthResult) bool {
	if res.Index < 0 || res.Index >= len(r.Servers) {
		return false
	}
	s := &r.Servers[res.Index]
	if s.Key() != res.Key {
		return false
	}
	s.Health = res.Status
	s.LastChecked = res.CheckedAt
	return true
}
