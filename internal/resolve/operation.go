package resolve

import (
	"strconv"

	"github.com/luatype/analyzer/ast"
	"github.com/luatype/analyzer/internal/model"
)

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// resolveOperation implements spec.md §4.2's operation/call and
// operation/other rules.
func (r *Resolver) resolveOperation(info *model.ExpressionInfo, seen map[seenKey]model.TypeSet) model.TypeSet {
	e := info.Expr
	if e.Operator == model.OpCall {
		return r.resolveCallResult(info, seen)
	}

	switch e.Operator {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod, ast.OpPow,
		ast.OpBAnd, ast.OpBOr, ast.OpBXor, ast.OpBNot, ast.OpShl, ast.OpShr, ast.OpLen:
		return model.NewTypeSet(model.TypeNumber)
	case ast.OpConcat:
		return model.NewTypeSet(model.TypeString)
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		return model.NewTypeSet(model.TypeBoolean)
	case ast.OpUnm:
		return model.NewTypeSet(model.TypeNumber)
	case ast.OpNot:
		if len(e.Arguments) == 1 {
			if lit, ok := r.ResolveToLiteral(e.Arguments[0]); ok {
				if truthy := isTruthy(lit); truthy {
					return model.NewTypeSet(model.TypeFalse)
				}
				return model.NewTypeSet(model.TypeTrue)
			}
		}
		return model.NewTypeSet(model.TypeBoolean)
	case ast.OpOr:
		return r.resolveOr(info, seen)
	case ast.OpAnd:
		return r.resolveAnd(info, seen)
	}
	return model.TypeSet{}
}

// resolveOr implements spec.md §4.2's `or` short-circuit rule, including the
// `X and Y or Z` ternary special case.
func (r *Resolver) resolveOr(info *model.ExpressionInfo, seen map[seenKey]model.TypeSet) model.TypeSet {
	if len(info.Expr.Arguments) != 2 {
		return model.TypeSet{}
	}
	lhs, rhs := info.Expr.Arguments[0], info.Expr.Arguments[1]

	// X and Y or Z: substitute Y for LHS when LHS is itself `X and Y`.
	if lhs.Expr != nil && lhs.Expr.Kind == model.ExprOperation && lhs.Expr.Operator == ast.OpAnd && len(lhs.Expr.Arguments) == 2 {
		lhs = lhs.Expr.Arguments[1]
	}

	if lit, ok := r.ResolveToLiteral(lhs); ok {
		if !isTruthy(lit) {
			return r.resolve(rhs, seen)
		}
	}
	return r.resolve(lhs, seen).Union(r.resolve(rhs, seen))
}

// resolveAnd implements spec.md §4.2's `and` short-circuit rule.
func (r *Resolver) resolveAnd(info *model.ExpressionInfo, seen map[seenKey]model.TypeSet) model.TypeSet {
	if len(info.Expr.Arguments) != 2 {
		return model.TypeSet{}
	}
	lhs, rhs := info.Expr.Arguments[0], info.Expr.Arguments[1]
	if lit, ok := r.ResolveToLiteral(lhs); ok {
		if isTruthy(lit) {
			return r.resolve(rhs, seen)
		}
		return r.resolve(lhs, seen)
	}
	return r.resolve(lhs, seen).Union(r.resolve(rhs, seen))
}

func isTruthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	default:
		return true
	}
}

// resolveCallResult implements spec.md §4.2's operation/call rule: resolve
// return types, then pick the ExpressionInfo's 1-based slot (default 1).
func (r *Resolver) resolveCallResult(info *model.ExpressionInfo, seen map[seenKey]model.TypeSet) model.TypeSet {
	if len(info.Expr.Arguments) == 0 {
		return model.TypeSet{}
	}
	returns := r.ResolveReturnTypes(info.Expr)
	idx := info.ReturnIndex
	if idx <= 0 {
		idx = 1
	}
	if idx-1 >= len(returns) {
		return model.NewTypeSet(model.TypeNil)
	}
	return returns[idx-1]
}

// ResolveReturnTypes implements spec.md §4.2's resolveReturnTypes: built-in
// exact-name recognition, then resolution through a single resolvable
// callee, with the constructor-slot-0 special case.
func (r *Resolver) ResolveReturnTypes(call *model.Expression) []model.TypeSet {
	if len(call.Arguments) == 0 {
		return nil
	}
	callee := call.Arguments[0]
	if callee.Expr != nil && callee.Expr.Kind == model.ExprReference {
		if name, ok := r.nameOf(callee.Expr.Reference); ok {
			if set, ok := builtinReturnTypes(name); ok {
				return []model.TypeSet{set}
			}
		}
	}

	fnID, ok := r.singleFunctionID(callee)
	if !ok {
		return nil
	}
	fn := r.store.Function(fnID)
	if fn == nil {
		return nil
	}
	returns := make([]model.TypeSet, len(fn.ReturnTypes))
	for i, set := range fn.ReturnTypes {
		returns[i] = set.Clone()
	}
	if fn.IsConstructor && len(returns) > 0 {
		returns[0] = returns[0].Union(model.NewTypeSet(model.Type(model.InstanceID)))
	}
	return returns
}

// nameOf best-effort recovers a human label for a reference ID's bracketed
// suffix, used only to match built-in function names by exact identity; it
// intentionally does not attempt to resolve shadowing.
func (r *Resolver) nameOf(id model.ID) (string, bool) {
	s := string(id)
	start, end := -1, -1
	for i := 0; i < len(s); i++ {
		if s[i] == '[' {
			start = i + 1
		}
		if s[i] == ']' {
			end = i
		}
	}
	if start >= 0 && end > start {
		return s[start:end], true
	}
	return "", false
}

func (r *Resolver) singleFunctionID(e *model.ExpressionInfo) (model.ID, bool) {
	if e == nil || e.Expr == nil {
		return "", false
	}
	switch e.Expr.Kind {
	case model.ExprLiteral:
		if e.Expr.LuaType == model.TypeFunction && e.Expr.FunctionID != "" {
			return e.Expr.FunctionID, true
		}
	case model.ExprReference:
		id := e.Expr.Reference
		if id.IsFunction() {
			return id, true
		}
		defs := r.store.LocalDefinitions(id)
		if len(defs) == 1 {
			return r.singleFunctionID(defs[0])
		}
	}
	return "", false
}

// resolveRequire implements spec.md §4.2's `require` variant.
func (r *Resolver) resolveRequire(modulePath string, index int) model.TypeSet {
	resolved := r.store.ResolveModulePath(modulePath)
	returns, ok := r.store.ModuleReturns(resolved)
	if !ok {
		return model.TypeSet{}
	}
	slot := index - 1
	if slot < 0 {
		slot = 0
	}
	if slot >= len(returns) {
		return model.TypeSet{}
	}
	return returns[slot].Clone()
}
