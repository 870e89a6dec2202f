package context

import (
	"github.com/luatype/analyzer/internal/model"
	"github.com/luatype/analyzer/internal/scope"
)

// resolveItems implements spec.md §4.1.6: group a module scope's partial
// items into its ResolvedModule, keep only the touched-but-undeclared
// classes whose table actually gained content, and finalize the module's
// return vector.
func (c *Context) resolveItems(moduleID string, s *scope.Scope) *model.ResolvedModule {
	out := &model.ResolvedModule{
		ID:          moduleID,
		Scope:       s,
		SeenClasses: make(map[string]struct{}),
	}

	declared := make(map[string]struct{})
	for _, item := range s.Items {
		switch item.Kind {
		case scope.ItemClass:
			out.Classes = append(out.Classes, item.Class)
			declared[item.Class.Name] = struct{}{}
		case scope.ItemFunction:
			out.Functions = append(out.Functions, item.Function)
		case scope.ItemRequire:
			out.Requires = append(out.Requires, item.Require)
		case scope.ItemField:
			out.Fields = append(out.Fields, item.Field)
		case scope.ItemSeenClass:
			out.SeenClasses[item.SeenClass] = struct{}{}
		}
	}

	// A class merely touched, not declared, by this module is only worth
	// carrying forward when its table actually gained content somewhere
	// (spec.md §4.1.6's "non-empty touched-but-undeclared class" rule).
	for name := range out.SeenClasses {
		if _, ok := declared[name]; ok {
			delete(out.SeenClasses, name)
			continue
		}
		id, ok := c.ClassTable(name)
		if !ok {
			delete(out.SeenClasses, name)
			continue
		}
		table := c.Interner.Table(id)
		if table == nil || (len(table.Definitions) == 0 && len(table.LiteralFields) == 0) {
			delete(out.SeenClasses, name)
		}
	}

	fnID := c.moduleReturnFunction(moduleID)
	fn := c.Interner.Function(fnID)
	fn.ApplyNilToSurplusSlots()
	out.Returns = fn.ReturnTypes
	c.setModuleReturns(moduleID, fn.ReturnTypes)
	return out
}
