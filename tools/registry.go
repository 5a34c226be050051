package tools

import (
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
)

// Descriptor describes a registered tool
type Descriptor struct {
	Name        string             `json:"name" yaml:"name"`
	Description string             `json:"description" yaml:"description"`
	Aliases     []string           `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Registry maps tool names and aliases to tools.
// Names are matched case-insensitively.
type Registry struct {
	lock    sync.RWMutex
	tools   map[string]Tool
	aliases map[string]string
	order   []string
}

// NewRegistry returns a registry with the provided tools
func NewRegistry(list ...Tool) (*Registry, error) {
	r := &Registry{
		tools:   make(map[string]Tool),
		aliases: make(map[string]string),
	}
	for _, t := range list {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds the tool under its canonical name
func (r *Registry) Register(t Tool) error {
	name := normalize(t.Name())
	if name == "" {
		return errors.Mark(errors.New("tool name is empty"), ErrInvalidArgument)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if r.taken(name) {
		return errors.Mark(errors.Newf("%s: already registered", name), ErrDuplicateTool)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// RegisterAlias adds an alternative name for a registered tool
func (r *Registry) RegisterAlias(alias, name string) error {
	alias = normalize(alias)
	name = normalize(name)

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.tools[name]; !ok {
		return errors.Mark(errors.Newf("%s: tool not registered", name), ErrInvalidArgument)
	}
	if r.taken(alias) {
		return errors.Mark(errors.Newf("%s: already registered", alias), ErrDuplicateTool)
	}
	r.aliases[alias] = name
	return nil
}

func (r *Registry) taken(name string) bool {
	if _, ok := r.tools[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}

// Get returns the tool by name or alias
func (r *Registry) Get(name string) (Tool, bool) {
	name = normalize(name)

	r.lock.RLock()
	defer r.lock.RUnlock()

	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	t, ok := r.tools[name]
	return t, ok
}

// Names returns canonical tool names in registration order
func (r *Registry) Names() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return append([]string(nil), r.order...)
}

// Descriptors returns descriptors of the registered tools in registration order
func (r *Registry) Descriptors() []Descriptor {
	r.lock.RLock()
	defer r.lock.RUnlock()

	aliases := make(map[string][]string)
	for alias, name := range r.aliases {
		aliases[name] = append(aliases[name], alias)
	}

	list := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		a := aliases[name]
		sort.Strings(a)
		list = append(list, Descriptor{
			Name:        name,
			Description: t.Description(),
			Aliases:     a,
			Parameters:  t.Parameters(),
		})
	}
	return list
}

// Describe returns "- name: description" lines for every registered tool
func (r *Registry) Describe() string {
	var b strings.Builder
	for _, d := range r.Descriptors() {
		b.WriteString("- ")
		b.WriteString(d.Name)
		b.WriteString(": ")
		b.WriteString(d.Description)
		b.WriteString("\n")
	}
	return b.String()
}
