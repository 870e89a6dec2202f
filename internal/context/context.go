// Package context implements the cross-module analysis context described in
// spec.md §4.1: it registers assignments, fields, require-bindings, and
// usage constraints into per-module scopes, detects the four class idioms,
// and resolves each module's scope into a ResolvedModule.
package context

import (
	"fmt"
	"strings"

	"github.com/luatype/analyzer/internal/model"
	"github.com/luatype/analyzer/internal/resolve"
	"github.com/luatype/analyzer/internal/scope"
)

// DiagnosticKind enumerates the error taxonomy of spec.md §7 that degrades
// to a recorded diagnostic instead of an exception.
type DiagnosticKind string

const (
	DiagAmbiguousResolution DiagnosticKind = "AmbiguousResolution"
	DiagDuplicateModuleID   DiagnosticKind = "DuplicateModuleID"
	DiagNameCollision       DiagnosticKind = "NameCollision"
	DiagInconsistentArity   DiagnosticKind = "InconsistentArity"
	DiagParseError          DiagnosticKind = "ParseError"
)

// Diagnostic is one non-fatal analysis note (spec.md §7).
type Diagnostic struct {
	Kind    DiagnosticKind
	Module  string
	Message string
}

// Context is the single owned value threaded through ingestion of every
// module (spec.md §9: "no process-global state is required").
type Context struct {
	Interner *model.Interner

	// moduleScopes maps a module ID to its root scope, populated as each
	// module is ingested and consulted by the resolver for require lookups.
	moduleScopes map[string]*scope.Scope

	// moduleReturns holds the finalized return-type vector for each module
	// once resolveItems has run for it, consulted by `require` resolution
	// in the type resolver.
	moduleReturns map[string][]model.TypeSet

	// aliases maps a require path-suffix to every full module ID sharing
	// that suffix (spec.md §6); used only when a shorter require name is
	// ambiguous, and ignored entirely when non-unique.
	aliases map[string][]string

	// classTables indexes every declared class by name, first-writer-wins
	// across modules (spec.md §7 NameCollision policy).
	classTables map[string]model.ID

	currentModule string
	diagnostics   []Diagnostic

	// moduleReturnFns tracks the synthetic FunctionInfo allocated to carry a
	// module's top-level `return` statement, created lazily (spec.md §3.5's
	// module-scope function info).
	moduleReturnFns map[string]model.ID

	resolver *resolve.Resolver
}

// New creates an empty analysis context.
func New() *Context {
	c := &Context{
		Interner:        model.NewInterner(),
		moduleScopes:    make(map[string]*scope.Scope),
		moduleReturns:   make(map[string][]model.TypeSet),
		aliases:         make(map[string][]string),
		classTables:     make(map[string]model.ID),
		moduleReturnFns: make(map[string]model.ID),
	}
	c.resolver = resolve.New(c)
	return c
}

// Resolve exposes the type resolver to callers outside this package (the
// finalizer in particular), satisfying spec.md §4.2's public surface.
func (c *Context) Resolve(info *model.ExpressionInfo) model.TypeSet {
	return c.resolver.Resolve(info)
}

// ResolveReturnTypes exposes resolveReturnTypes for a call expression.
func (c *Context) ResolveReturnTypes(call *model.Expression) []model.TypeSet {
	return c.resolver.ResolveReturnTypes(call)
}

// ResolveToLiteral exposes resolveToLiteral.
func (c *Context) ResolveToLiteral(info *model.ExpressionInfo) (interface{}, bool) {
	return c.resolver.ResolveToLiteral(info)
}

// The methods below satisfy resolve.Store so the resolver can be driven
// purely through the Context without an import cycle between the two
// packages.

// Table implements resolve.Store.
func (c *Context) Table(id model.ID) *model.TableInfo { return c.Interner.Table(id) }

// Function implements resolve.Store.
func (c *Context) Function(id model.ID) *model.FunctionInfo { return c.Interner.Function(id) }

// LocalDefinitions implements resolve.Store.
func (c *Context) LocalDefinitions(id model.ID) []*model.ExpressionInfo {
	if id.IsTable() || id.IsFunction() {
		return nil
	}
	return c.Interner.LocalDefinitions(id)
}

// FunctionOf implements resolve.Store.
func (c *Context) FunctionOf(parameter model.ID) (model.ID, bool) {
	return c.Interner.FunctionOf(parameter)
}

// SetAliases installs the path-suffix → full module ID alias map described
// in spec.md §6. Call before ingesting modules that rely on it.
func (c *Context) SetAliases(aliases map[string][]string) {
	c.aliases = aliases
}

// Diagnostics returns every diagnostic accumulated so far.
func (c *Context) Diagnostics() []Diagnostic { return c.diagnostics }

func (c *Context) diagnose(kind DiagnosticKind, message string) {
	c.diagnostics = append(c.diagnostics, Diagnostic{
		Kind:    kind,
		Module:  c.currentModule,
		Message: message,
	})
}

// ResolveModulePath honors the alias map for an ambiguous require-by-suffix
// (spec.md §6): "any non-unique alias is ignored".
func (c *Context) ResolveModulePath(path string) string {
	if _, ok := c.moduleScopes[path]; ok {
		return path
	}
	candidates := c.aliases[path]
	if len(candidates) == 1 {
		return candidates[0]
	}
	return path
}

// ModuleScope returns the root scope for a previously-ingested module.
func (c *Context) ModuleScope(id string) (*scope.Scope, bool) {
	s, ok := c.moduleScopes[id]
	return s, ok
}

// ModuleReturns returns the finalized per-slot return type sets for module
// id, used by the type resolver's `require` variant.
func (c *Context) ModuleReturns(id string) ([]model.TypeSet, bool) {
	r, ok := c.moduleReturns[id]
	return r, ok
}

// setModuleReturns records module id's resolved returns vector.
func (c *Context) setModuleReturns(id string, returns []model.TypeSet) {
	c.moduleReturns[id] = returns
}

// CurrentModule returns the module ID currently being ingested or
// finalized.
func (c *Context) CurrentModule() string { return c.currentModule }

// SetCurrentModule is used by the finalizer (spec.md §4.3: "setting
// context.currentModule accordingly") to scope definition partitioning to
// one module at a time.
func (c *Context) SetCurrentModule(id string) { c.currentModule = id }

// registerClass records name → tableID, first-writer-wins across modules
// (spec.md §7 NameCollision policy: "first-writer-wins across modules").
func (c *Context) registerClass(name string, id model.ID) {
	if _, exists := c.classTables[name]; exists {
		return
	}
	c.classTables[name] = id
}

// ClassTable looks up a previously registered class by name.
func (c *Context) ClassTable(name string) (model.ID, bool) {
	id, ok := c.classTables[name]
	return id, ok
}

func canonicalModuleKey(name string) string {
	return strings.TrimSuffix(strings.ReplaceAll(name, "\\", "/"), ".lua")
}

func (c *Context) fail(format string, args ...interface{}) {
	c.diagnose(DiagAmbiguousResolution, fmt.Sprintf(format, args...))
}
