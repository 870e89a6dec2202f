package context

import (
	"github.com/luatype/analyzer/ast"
	"github.com/luatype/analyzer/internal/model"
	"github.com/luatype/analyzer/internal/scope"
)

// moduleReturnFunction lazily allocates the synthetic FunctionInfo that
// carries a module's top-level `return` statement, so module returns and
// function returns share the same per-slot union/width machinery (spec.md
// §3.5/§4.1.5).
func (c *Context) moduleReturnFunction(moduleID string) model.ID {
	if id, ok := c.moduleReturnFns[moduleID]; ok {
		return id
	}
	id, _ := c.Interner.NewFunction("")
	c.moduleReturnFns[moduleID] = id
	return id
}

// resolveReturnsInto implements spec.md §4.1.5: each return argument
// contributes its resolved type to the matching per-slot union; a trailing
// call expands into its full declared return width instead of contributing
// only its first slot.
func (c *Context) resolveReturnsInto(s *scope.Scope, fn *model.FunctionInfo, args []ast.Expression) {
	if len(args) == 0 {
		fn.ObserveReturnWidth(0)
		return
	}

	built := make([]*model.ExpressionInfo, 0, len(args))
	for i, a := range args {
		info := c.buildExpression(s, a)
		if i == len(args)-1 {
			if width, ok := c.callReturnWidth(info); ok && width > 1 {
				built = append(built, expandTailCall(info, width)...)
				continue
			}
		}
		built = append(built, info)
	}

	fn.ObserveReturnWidth(len(built))
	for slot, e := range built {
		fn.EnsureReturnSlot(slot)
		types := c.Resolve(e)
		fn.ReturnTypes[slot] = fn.ReturnTypes[slot].Union(types)
		fn.ReturnExpressions[slot] = append(fn.ReturnExpressions[slot], e)
	}
}

// isCallInfo reports whether info wraps a call operation.
func isCallInfo(info *model.ExpressionInfo) bool {
	return info != nil && info.Expr != nil && info.Expr.Kind == model.ExprOperation && info.Expr.Operator == model.OpCall
}

// callReturnWidth reports the declared return width of a call expression,
// when resolvable through a single callee.
func (c *Context) callReturnWidth(info *model.ExpressionInfo) (int, bool) {
	if !isCallInfo(info) {
		return 0, false
	}
	returns := c.ResolveReturnTypes(info.Expr)
	if returns == nil {
		return 0, false
	}
	return len(returns), true
}

// expandTailCall expands a trailing call expression into width contiguous
// return slots, each selecting the matching 1-based ReturnIndex.
func expandTailCall(info *model.ExpressionInfo, width int) []*model.ExpressionInfo {
	out := make([]*model.ExpressionInfo, width)
	for i := 0; i < width; i++ {
		copied := *info
		copied.ReturnIndex = i + 1
		out[i] = &copied
	}
	return out
}
