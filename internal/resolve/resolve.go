// Package resolve implements the type resolver of spec.md §4.2: it computes
// possible type sets for arbitrary expressions by walking references,
// operations, members, indices, and require-imports, with cycle detection,
// usage narrowing, and literal-only truthiness folding.
package resolve

import (
	"github.com/luatype/analyzer/internal/model"
)

// Store is the read-only view of the analysis context the resolver needs.
// context.Context implements this interface; keeping it as an interface
// here (rather than importing the context package directly) avoids a
// resolve↔context import cycle, since the context package also drives the
// resolver for usage-flow computations.
type Store interface {
	Table(id model.ID) *model.TableInfo
	Function(id model.ID) *model.FunctionInfo
	LocalDefinitions(id model.ID) []*model.ExpressionInfo
	FunctionOf(parameter model.ID) (model.ID, bool)
	ModuleReturns(path string) ([]model.TypeSet, bool)
	ResolveModulePath(path string) string
}

// builtinReturn is a well-known global function recognized by exact name
// (spec.md §4.2's resolveReturnTypes).
type builtinReturn struct {
	name string
	set  model.TypeSet
}

var builtins = []builtinReturn{
	{"tonumber", model.NewTypeSet(model.TypeNumber, model.TypeNil)},
	{"tostring", model.NewTypeSet(model.TypeString)},
	{"getText", model.NewTypeSet(model.TypeString)},
	{"getTextOrNull", model.NewTypeSet(model.TypeString, model.TypeNil)},
}

func builtinReturnTypes(name string) (model.TypeSet, bool) {
	for _, b := range builtins {
		if b.name == name {
			return b.set.Clone(), true
		}
	}
	return nil, false
}

// Resolver computes type sets for expressions, memoizing per call to break
// cycles (spec.md §4.2, §8 "Cycle safety").
type Resolver struct {
	store Store
}

// New builds a Resolver backed by store.
func New(store Store) *Resolver {
	return &Resolver{store: store}
}

// seenKey identifies one (ExpressionInfo, return-index) visit for the cycle
// memo, per spec.md §8: "never recurses more than once through any
// (ExpressionInfo, index) pair".
type seenKey struct {
	info *model.ExpressionInfo
	idx  int
}

// Resolve computes info's type set, applying usage narrowing and boolean
// collapse as its final steps (spec.md §4.2).
func (r *Resolver) Resolve(info *model.ExpressionInfo) model.TypeSet {
	seen := make(map[seenKey]model.TypeSet)
	return r.resolve(info, seen)
}

func (r *Resolver) resolve(info *model.ExpressionInfo, seen map[seenKey]model.TypeSet) model.TypeSet {
	if info == nil || info.Expr == nil {
		return model.TypeSet{}
	}
	key := seenKey{info: info, idx: info.ReturnIndex}
	if partial, ok := seen[key]; ok {
		return partial
	}
	// Seed the memo with an empty set so a recursive visit of the same node
	// returns the partial accumulation so far (least-fixed-point contract).
	accum := model.TypeSet{}
	seen[key] = accum

	result := r.resolveVariant(info, seen)
	for t := range result {
		accum[t] = struct{}{}
	}

	if info.Usage != nil {
		accum = accum.Narrow(info.Usage)
	}
	accum.CollapseBoolean()
	seen[key] = accum
	return accum
}

func (r *Resolver) resolveVariant(info *model.ExpressionInfo, seen map[seenKey]model.TypeSet) model.TypeSet {
	e := info.Expr
	switch e.Kind {
	case model.ExprLiteral:
		return r.resolveLiteral(e)

	case model.ExprReference:
		return r.resolveReference(info, e.Reference, seen)

	case model.ExprMember:
		return r.resolveMember(e.Base, e.Member, seen)

	case model.ExprIndex:
		key, ok := r.ResolveToLiteral(e.Index)
		if !ok {
			return model.TypeSet{}
		}
		return r.resolveMember(e.Base, literalToKey(key), seen)

	case model.ExprOperation:
		return r.resolveOperation(info, seen)

	case model.ExprRequire:
		return r.resolveRequire(e.RequireModule, info.ReturnIndex)
	}
	return model.TypeSet{}
}

func (r *Resolver) resolveLiteral(e *model.Expression) model.TypeSet {
	switch e.LuaType {
	case model.TypeTrue:
		return model.NewTypeSet(model.TypeTrue)
	case model.TypeFalse:
		return model.NewTypeSet(model.TypeFalse)
	case model.TypeTable:
		return model.NewTypeSet(model.Type(e.TableID))
	case model.TypeFunction:
		return model.NewTypeSet(model.Type(e.FunctionID))
	default:
		return model.NewTypeSet(e.LuaType)
	}
}

func (r *Resolver) resolveReference(info *model.ExpressionInfo, id model.ID, seen map[seenKey]model.TypeSet) model.TypeSet {
	// A reference to a table/function ID names that table/function itself:
	// LocalDefinitions never carries assignment history for these IDs (they
	// are declared, not locally defined), so the resolved set must be seeded
	// here rather than falling through to definitionsOf.
	if id.IsTable() || id.IsFunction() {
		return model.NewTypeSet(model.Type(id))
	}
	result := model.TypeSet{}
	if id.IsParameter() {
		if owner, ok := r.store.FunctionOf(id); ok {
			if fn := r.store.Function(owner); fn != nil {
				for i, p := range fn.Parameters {
					if p == id && i < len(fn.ParameterTypes) {
						result = result.Union(fn.ParameterTypes[i])
					}
				}
			}
		}
	}
	for _, def := range r.definitionsOf(id) {
		result = result.Union(r.resolve(def, seen))
	}
	return result
}

// definitionsOf returns every expression ever assigned to id when it names
// a function parameter or a plain local; table and function IDs carry no
// definitions here.
func (r *Resolver) definitionsOf(id model.ID) []*model.ExpressionInfo {
	return r.store.LocalDefinitions(id)
}

func (r *Resolver) resolveMember(base *model.ExpressionInfo, key string, seen map[seenKey]model.TypeSet) model.TypeSet {
	baseTypes := r.resolve(base, seen)
	result := model.TypeSet{}
	for t := range baseTypes {
		id := model.ID(t)
		if !id.IsTable() {
			continue
		}
		table := r.store.Table(id)
		if table == nil {
			continue
		}
		for _, def := range table.Definitions[key] {
			result = result.Union(r.resolve(def, seen))
		}
	}
	return result
}

func literalToKey(v interface{}) string {
	switch x := v.(type) {
	case string:
		return model.LiteralKey(x, true)
	case float64:
		return model.LiteralKey(formatNumber(x), false)
	case bool:
		if x {
			return "true"
		}
		return "false"
	}
	return ""
}
