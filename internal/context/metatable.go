package context

import (
	"github.com/luatype/analyzer/ast"
	"github.com/luatype/analyzer/internal/model"
	"github.com/luatype/analyzer/internal/scope"
)

// setMetatable implements spec.md §4.1.2: when `setmetatable(X, meta)` is
// called with meta resolving to a class table or `{__index = Y}`, and X is
// a local whose definitions are all plain (non-class) tables, copy each
// field of those tables into the metatable under the instance flag and
// repoint X at the metatable, promoting it to a class instance.
func (c *Context) setMetatable(s *scope.Scope, target, meta ast.Expression) {
	ident, ok := target.(*ast.Identifier)
	if !ok {
		return
	}
	localID, ok := s.Resolve(ident.Name)
	if !ok || !localID.IsLocal() {
		return
	}
	metaTableID, ok := c.resolveMetaTarget(s, meta)
	if !ok {
		return
	}
	metaTable := c.Interner.Table(metaTableID)
	if metaTable == nil {
		return
	}

	defs := c.Interner.LocalDefinitions(localID)
	if len(defs) == 0 {
		return
	}
	var sourceTables []model.ID
	for _, def := range defs {
		if def.Expr == nil || def.Expr.Kind != model.ExprLiteral || def.Expr.LuaType != model.TypeTable {
			return
		}
		id := def.Expr.TableID
		t := c.Interner.Table(id)
		if t == nil || t.ClassName != "" {
			return
		}
		sourceTables = append(sourceTables, id)
	}

	for _, srcID := range sourceTables {
		src := c.Interner.Table(srcID)
		for _, key := range src.KeyOrder {
			for _, e := range src.Definitions[key] {
				copied := *e
				copied.Instance = true
				metaTable.AddDefinition(key, &copied)
			}
		}
	}

	c.Interner.Locals()[localID] = []*model.ExpressionInfo{model.NewTableLiteral(metaTableID, c.currentModule)}
}

// resolveMetaTarget resolves meta to a table ID when it names a class table
// directly, or the `Y` operand of a `{__index = Y}` literal.
func (c *Context) resolveMetaTarget(s *scope.Scope, meta ast.Expression) (model.ID, bool) {
	if t, ok := meta.(*ast.TableConstructorExpression); ok {
		for _, f := range t.Fields {
			if f.Kind != ast.TableFieldKeyString {
				continue
			}
			keyID, ok := f.Key.(*ast.Identifier)
			if !ok || keyID.Name != "__index" {
				continue
			}
			return c.resolveSingleTable(s, f.Value)
		}
		return "", false
	}
	return c.resolveSingleTable(s, meta)
}

func (c *Context) resolveSingleTable(s *scope.Scope, e ast.Expression) (model.ID, bool) {
	info := c.buildExpression(s, e)
	if info.Expr != nil && info.Expr.Kind == model.ExprLiteral && info.Expr.LuaType == model.TypeTable {
		return info.Expr.TableID, true
	}
	types := c.Resolve(info)
	if types.Len() != 1 {
		return "", false
	}
	for t := range types {
		if model.ID(t).IsTable() {
			return model.ID(t), true
		}
	}
	return "", false
}
