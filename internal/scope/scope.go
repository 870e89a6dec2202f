// Package scope implements the lexical scope model of spec.md §2/§3.5: each
// scope carries a name→local-ID mapping and a list of per-scope analysis
// items that resolveItems later groups into a module's class/function/
// require/field lists.
package scope

import "github.com/luatype/analyzer/internal/model"

// Kind distinguishes the scope's syntactic role.
type Kind string

const (
	Module   Kind = "module"
	Function Kind = "function"
	Block    Kind = "block"
)

// ItemKind tags which field of Item is populated.
type ItemKind int

const (
	ItemClass ItemKind = iota
	ItemFunction
	ItemRequire
	ItemField
	ItemSeenClass
)

// Item is a partial record emitted eagerly during assignment processing
// (spec.md GLOSSARY: "Partial item"), later grouped by resolveItems.
type Item struct {
	Kind        ItemKind
	Class       model.ClassDecl
	Function    model.FunctionDecl
	Require     model.RequireDecl
	Field       model.FieldDecl
	SeenClass   string
}

// Scope is one lexical scope: a module, a function body, or a block.
type Scope struct {
	ID     string
	Kind   Kind
	Name   string
	Parent *Scope

	names    map[string]model.ID
	Items    []Item
	Children []*Scope

	// FunctionID is set when Kind == Function, naming the interned function
	// record this scope belongs to (set by setFunctionInfo, read by addReturn
	// to find the enclosing function).
	FunctionID model.ID
}

// New creates a root (module) scope.
func New(moduleID string) *Scope {
	return &Scope{
		ID:    moduleID,
		Kind:  Module,
		Name:  moduleID,
		names: make(map[string]model.ID),
	}
}

// Child creates and links a nested scope.
func (s *Scope) Child(kind Kind, name string) *Scope {
	child := &Scope{
		ID:     s.ID + "::" + name,
		Kind:   kind,
		Name:   name,
		Parent: s,
		names:  make(map[string]model.ID),
	}
	s.Children = append(s.Children, child)
	return child
}

// Declare binds name to id in this scope, shadowing any outer binding.
func (s *Scope) Declare(name string, id model.ID) {
	s.names[name] = id
}

// Resolve looks up name, walking outward through parent scopes. Returns
// false if name is never bound (a global).
func (s *Scope) Resolve(name string) (model.ID, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if id, ok := cur.names[name]; ok {
			return id, true
		}
	}
	return "", false
}

// ResolveLocal looks up name in this scope only, without walking outward.
func (s *Scope) ResolveLocal(name string) (model.ID, bool) {
	id, ok := s.names[name]
	return id, ok
}

// IsFunctionScope reports whether s (or an ancestor up to the nearest
// function boundary) is inside a function body, used by addAssignment rule
// 1 ("Within a function scope...").
func (s *Scope) IsFunctionScope() bool {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == Function {
			return true
		}
		if cur.Kind == Module {
			return false
		}
	}
	return false
}

// EnclosingFunction returns the nearest ancestor function scope, or nil at
// module level.
func (s *Scope) EnclosingFunction() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == Function {
			return cur
		}
	}
	return nil
}

// Module returns the root module scope.
func (s *Scope) Module() *Scope {
	cur := s
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// AddItem appends a partial item to this scope for later resolution.
func (s *Scope) AddItem(item Item) {
	s.Items = append(s.Items, item)
}

// Walk visits s and every descendant scope, in the order scopes were
// created, calling fn on each.
func (s *Scope) Walk(fn func(*Scope)) {
	fn(s)
	for _, child := range s.Children {
		child.Walk(fn)
	}
}
