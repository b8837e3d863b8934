package commands

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Command
	aliases map[string]string // alias -> primary name
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]Command),
		aliases: make(map[string]string),
	}
}

// Register adds a command. Names and aliases share one namespace and are
// matched case-insensitively.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{c.Name()}, c.Aliases()...)
	for _, key := range keys {
		if r.taken(strings.ToLower(key)) {
			return fmt.Errorf("command name already registered: %s", key)
		}
	}

	name := strings.ToLower(c.Name())
	r.byName[name] = c
	for _, alias := range c.Aliases() {
		r.aliases[strings.ToLower(alias)] = name
	}
	return nil
}

func (r *Registry) taken(key string) bool {
	_, cmd := r.byName[key]
	_, alias := r.aliases[key]
	return cmd || alias
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToLower(name)
	if primary, ok := r.aliases[key]; ok {
		key = primary
	}
	cmd, ok := r.byName[key]
	return cmd, ok
}

// All returns every command once, sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmds := make([]Command, 0, len(r.byName))
	for _, cmd := range r.byName {
		cmds = append(cmds, cmd)
	}
	slices.SortFunc(cmds, func(a, b Command) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return cmds
}

// DefaultRegistry holds the commands registered by this package.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry and panics on a name clash.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
