package vdom

import "github.com/purc-lang/purc/variant"

// ScopeManager binds a single vDOM node to a name->variant mapping,
// spec.md §4.2's scoped-variable manager. A node has at most one manager;
// Store.Create returns the existing one if called twice for the same node.
type ScopeManager struct {
	node  *Node
	names map[string]variant.Variant
}

func newScopeManager(node *Node) *ScopeManager {
	return &ScopeManager{node: node, names: map[string]variant.Variant{}}
}

// Bind associates name with value on this node. Bind takes ownership of a
// reference to value (callers should Ref() before calling if they also
// keep their own reference).
func (m *ScopeManager) Bind(name string, value variant.Variant) {
	if old, ok := m.names[name]; ok {
		old.Unref()
	}
	m.names[name] = value
}

// lookupLocal returns the value bound on exactly this node, without
// climbing ancestors.
func (m *ScopeManager) lookupLocal(name string) (variant.Variant, bool) {
	v, ok := m.names[name]
	return v, ok
}

// Destroy unrefs every bound variant. Called when a vDOM subtree that
// owns scoped-var managers is torn down (e.g. the document unloads).
func (m *ScopeManager) Destroy() {
	for _, v := range m.names {
		v.Unref()
	}
	m.names = nil
}

// Store is the process/document-wide registry of node -> ScopeManager,
// since the vDOM Node type itself carries no scoped-var storage (it is
// an immutable parse-tree node owned by the parser, not the runtime).
type Store struct {
	managers map[*Node]*ScopeManager
}

func NewStore() *Store {
	return &Store{managers: map[*Node]*ScopeManager{}}
}

// Create returns the ScopeManager for node, creating it on first use.
func (s *Store) Create(node *Node) *ScopeManager {
	if m, ok := s.managers[node]; ok {
		return m
	}
	m := newScopeManager(node)
	s.managers[node] = m
	return m
}

// Bind is a convenience that creates (if needed) the manager for node and
// binds name on it.
func (s *Store) Bind(node *Node, name string, value variant.Variant) {
	s.Create(node).Bind(name, value)
}

// Lookup climbs node's ancestor chain (spec.md §4.2: "Lookup of name N
// from a node V walks V's ancestors and returns the first manager that
// owns N") and returns the first bound value found, without taking a new
// reference — callers that need the value to outlive the scope must
// Ref() it themselves, exactly as spec.md §4.2 specifies.
func (s *Store) Lookup(node *Node, name string) (variant.Variant, bool) {
	var found variant.Variant
	var ok bool
	node.Ancestors(func(n *Node) bool {
		m, exists := s.managers[n]
		if !exists {
			return true
		}
		if v, has := m.lookupLocal(name); has {
			found, ok = v, true
			return false
		}
		return true
	})
	return found, ok
}

// Destroy tears down the manager for node, if any, unreffing all its
// bound variants.
func (s *Store) Destroy(node *Node) {
	m, ok := s.managers[node]
	if !ok {
		return
	}
	m.Destroy()
	delete(s.managers, node)
}
