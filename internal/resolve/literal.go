package resolve

import "github.com/luatype/analyzer/internal/model"

// ResolveToLiteral implements spec.md §4.2's resolveToLiteral: a
// depth-bounded recursive walk that folds references with exactly one
// definition, and/or results
// that collapse to a known boolean, and member/index accesses into
// singleton-table bases. Returns (value, true) on success.
func (r *Resolver) ResolveToLiteral(info *model.ExpressionInfo) (interface{}, bool) {
	return r.resolveToLiteralDepth(info, 0)
}

const maxLiteralFoldDepth = 64

func (r *Resolver) resolveToLiteralDepth(info *model.ExpressionInfo, depth int) (interface{}, bool) {
	if info == nil || info.Expr == nil || depth > maxLiteralFoldDepth {
		return nil, false
	}
	e := info.Expr
	switch e.Kind {
	case model.ExprLiteral:
		switch e.LuaType {
		case model.TypeTrue:
			return true, true
		case model.TypeFalse:
			return false, true
		case model.TypeNil:
			return nil, true
		case model.TypeString, model.TypeNumber:
			return e.Literal, true
		}
		return nil, false

	case model.ExprReference:
		defs := r.store.LocalDefinitions(e.Reference)
		if len(defs) != 1 {
			return nil, false
		}
		return r.resolveToLiteralDepth(defs[0], depth+1)

	case model.ExprOperation:
		switch e.Operator {
		case "and":
			if len(e.Arguments) != 2 {
				return nil, false
			}
			lhs, ok := r.resolveToLiteralDepth(e.Arguments[0], depth+1)
			if !ok {
				return nil, false
			}
			if !isTruthy(lhs) {
				return false, true
			}
			rhs, ok := r.resolveToLiteralDepth(e.Arguments[1], depth+1)
			if !ok {
				return nil, false
			}
			return isTruthy(rhs), true
		case "or":
			if len(e.Arguments) != 2 {
				return nil, false
			}
			lhs, ok := r.resolveToLiteralDepth(e.Arguments[0], depth+1)
			if !ok {
				return nil, false
			}
			if isTruthy(lhs) {
				return true, true
			}
			rhs, ok := r.resolveToLiteralDepth(e.Arguments[1], depth+1)
			if !ok {
				return nil, false
			}
			return isTruthy(rhs), true
		}
		return nil, false

	case model.ExprMember, model.ExprIndex:
		key := e.Member
		if e.Kind == model.ExprIndex {
			idx, ok := r.resolveToLiteralDepth(e.Index, depth+1)
			if !ok {
				return nil, false
			}
			key = literalToKey(idx)
		}
		baseTypes := r.resolve(e.Base, make(map[seenKey]model.TypeSet))
		if baseTypes.Len() != 1 {
			return nil, false
		}
		for t := range baseTypes {
			id := model.ID(t)
			if !id.IsTable() {
				return nil, false
			}
			table := r.store.Table(id)
			if table == nil {
				return nil, false
			}
			defs := table.Definitions[key]
			if len(defs) != 1 {
				return nil, false
			}
			return r.resolveToLiteralDepth(defs[0], depth+1)
		}
	}
	return nil, false
}
