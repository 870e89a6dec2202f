package finalize

import (
	"strconv"

	"github.com/luatype/analyzer/internal/model"
)

// finalizeClass implements spec.md §4.3 step 2: partition every key's
// definitions authored by the current module into methods, functions,
// constructors, instance fields, and static fields.
func (f *Finalizer) finalizeClass(tableID model.ID, decl model.ClassDecl) *model.AnalyzedClass {
	table := f.ctx.Interner.Table(tableID)
	if table == nil {
		return nil
	}
	ac := &model.AnalyzedClass{Name: decl.Name, Base: decl.Base, DeriveName: decl.DeriveName}
	currentModule := f.ctx.CurrentModule()

	for _, key := range table.KeyOrder {
		defs := table.Definitions[key]
		var moduleDefs []*model.ExpressionInfo
		for _, d := range defs {
			if d.DefiningModule == currentModule {
				moduleDefs = append(moduleDefs, d)
			}
		}
		if len(moduleDefs) == 0 {
			continue
		}
		name := unquoteKey(key)

		isFunctionKey := false
		for _, d := range moduleDefs {
			fn := functionLiteralOf(f, d)
			if fn == nil {
				continue
			}
			isFunctionKey = true
			afn := f.buildAnalyzedFunction(name, fn)
			switch {
			case name == "overload":
				ac.Overloads = append(ac.Overloads, *afn)
			case (fn.IsConstructor || name == "new") && fn.IsMethod:
				ac.Constructors = append(ac.Constructors, *afn)
			case fn.IsConstructor || name == "new":
				// `function T.new(...)` dot-style: a constructor reached by
				// call, not by `:`, so it carries no implicit self.
				ac.FunctionConstructors = append(ac.FunctionConstructors, *afn)
			case fn.IsMethod:
				ac.Methods = append(ac.Methods, *afn)
			default:
				ac.Functions = append(ac.Functions, *afn)
			}
		}
		// Literal-key collisions with an already-emitted function field are
		// suppressed (spec.md §4.3 step 2).
		if isFunctionKey {
			continue
		}

		instanceEmitted := false
		staticPresent := false
		for _, d := range moduleDefs {
			if d.Instance {
				if instanceEmitted {
					continue
				}
				instanceEmitted = true
				ac.Fields = append(ac.Fields, model.AnalyzedField{
					Name:     name,
					Types:    f.finalizeTypeSet(f.ctx.Resolve(d)),
					Instance: true,
				})
			} else {
				staticPresent = true
			}
		}
		if staticPresent {
			ac.StaticFields = append(ac.StaticFields, f.finalizeStaticField(name, key, table))
		}
	}

	ac.LiteralFields = f.finalizeLiteralFields(table, currentModule)
	ac.SetterFields = f.finalizeFloatingSetters(table, currentModule)

	ac.IsEmpty = len(ac.Fields) == 0 && len(ac.StaticFields) == 0 && len(ac.LiteralFields) == 0 &&
		len(ac.SetterFields) == 0 && len(ac.Methods) == 0 && len(ac.Functions) == 0 &&
		len(ac.Constructors) == 0 && len(ac.FunctionConstructors) == 0
	return ac
}

// finalizeLiteralFields implements spec.md §4.3 step 2's `literalFields`
// output: the class table's own `{...}` constructor fields (if any),
// insertion-ordered, restricted to definitions authored by currentModule.
func (f *Finalizer) finalizeLiteralFields(table *model.TableInfo, currentModule string) []model.AnalyzedField {
	var out []model.AnalyzedField
	autoIndex := 0
	for _, lf := range table.LiteralFields {
		if lf.Value != nil && lf.Value.DefiningModule != "" && lf.Value.DefiningModule != currentModule {
			continue
		}
		var fieldName string
		if lf.Key == "" {
			autoIndex++
			fieldName = strconv.Itoa(lf.AutoIndex)
		} else {
			fieldName = unquoteKey(lf.Key)
		}
		var types []string
		if lf.Value != nil {
			types = f.finalizeTypeSet(f.ctx.Resolve(lf.Value))
		}
		out = append(out, model.AnalyzedField{Name: fieldName, Types: types})
	}
	return out
}

// literalKeySet recovers the canonical literalKey (or auto-index string) of
// every field table's own `{...}` constructor carried, so nested-table
// definitions added later by a setter can be told apart from the table's
// original literal shape.
func literalKeySet(table *model.TableInfo) map[string]bool {
	keys := make(map[string]bool, len(table.LiteralFields))
	autoIndex := 0
	for _, lf := range table.LiteralFields {
		if lf.Key == "" {
			autoIndex++
			keys[strconv.Itoa(autoIndex)] = true
			continue
		}
		keys[lf.Key] = true
	}
	return keys
}

// finalizeFloatingSetters implements spec.md §4.3 step 2's floating-setters
// pass: a nested table reached only through a read off this class (e.g.
// `A.config.timeout = 5`, where `config` is never itself promoted to a named
// class) still has its post-construction field assignments surfaced here,
// dotted as `key.nestedKey`. A nested table that carries its own class name
// is skipped — it is finalized as its own class instead (spec.md §4.3 step
// 2's "deferred as extra classes" clause).
func (f *Finalizer) finalizeFloatingSetters(table *model.TableInfo, currentModule string) []model.AnalyzedField {
	var out []model.AnalyzedField
	for _, key := range table.KeyOrder {
		nestedID, ok := singleNestedTableID(table.Definitions[key], currentModule)
		if !ok {
			continue
		}
		nested := f.ctx.Interner.Table(nestedID)
		if nested == nil || nested.ClassName != "" {
			continue
		}
		literal := literalKeySet(nested)
		outerName := unquoteKey(key)
		for _, nestedKey := range nested.KeyOrder {
			if literal[nestedKey] {
				continue
			}
			var types model.TypeSet
			found := false
			for _, d := range nested.Definitions[nestedKey] {
				if d.DefiningModule != currentModule {
					continue
				}
				found = true
				types = types.Union(f.ctx.Resolve(d))
			}
			if !found {
				continue
			}
			out = append(out, model.AnalyzedField{
				Name:  outerName + "." + unquoteKey(nestedKey),
				Types: f.finalizeTypeSet(types),
			})
		}
	}
	return out
}

// singleNestedTableID reports the table ID a key's module-authored
// definitions resolve to, if and only if every such definition is the same
// table literal (i.e. the key was never reassigned to something else).
func singleNestedTableID(defs []*model.ExpressionInfo, currentModule string) (model.ID, bool) {
	var id model.ID
	found := false
	for _, d := range defs {
		if d == nil || d.DefiningModule != currentModule || d.Expr == nil {
			continue
		}
		if d.Expr.Kind != model.ExprLiteral || d.Expr.LuaType != model.TypeTable {
			return "", false
		}
		if found && d.Expr.TableID != id {
			return "", false
		}
		id = d.Expr.TableID
		found = true
	}
	return id, found
}

func functionLiteralOf(f *Finalizer, d *model.ExpressionInfo) *model.FunctionInfo {
	if d == nil || d.Expr == nil || d.Expr.Kind != model.ExprLiteral || d.Expr.LuaType != model.TypeFunction {
		return nil
	}
	return f.ctx.Interner.Function(d.Expr.FunctionID)
}

// finalizeStaticField implements spec.md §4.3 step 3: union the types of
// every module-level static definition, or fall back to nil when there is
// none.
func (f *Finalizer) finalizeStaticField(name, key string, table *model.TableInfo) model.AnalyzedField {
	currentModule := f.ctx.CurrentModule()
	types := model.TypeSet{}
	found := false
	for _, d := range table.Definitions[key] {
		if d.DefiningModule != currentModule || d.Instance {
			continue
		}
		found = true
		types = types.Union(f.ctx.Resolve(d))
	}
	if !found {
		types.Add(model.TypeNil)
	}
	return model.AnalyzedField{Name: name, Types: f.finalizeTypeSet(types)}
}

// buildAnalyzedFunction finalizes one FunctionInfo into its public shape,
// skipping the synthetic leading @self slot for methods.
func (f *Finalizer) buildAnalyzedFunction(name string, fn *model.FunctionInfo) *model.AnalyzedFunction {
	af := &model.AnalyzedFunction{Name: name, IsMethod: fn.IsMethod}
	start := 0
	if fn.IsMethod {
		start = 1
	}
	for i := start; i < len(fn.Parameters); i++ {
		var types model.TypeSet
		if i < len(fn.ParameterTypes) {
			types = fn.ParameterTypes[i]
		}
		pname := ""
		if i < len(fn.ParameterNames) {
			pname = fn.ParameterNames[i]
		}
		af.Parameters = append(af.Parameters, model.AnalyzedParameter{
			Name:  pname,
			Types: f.finalizeTypeSet(types),
		})
	}
	for _, rt := range fn.ReturnTypes {
		af.ReturnTypes = append(af.ReturnTypes, joinTypes(f.finalizeTypeSet(rt)))
	}
	return af
}

// pruneAncestorFields implements spec.md §4.3 step 6: walk up ac's
// ancestor chain by name and drop any field whose {name, types} exactly
// matches one already present on an ancestor. Re-running this over an
// already-pruned class is a no-op, since a removed field can never match
// again (spec.md §8, "ancestor-pruning idempotence").
func (f *Finalizer) pruneAncestorFields(ac *model.AnalyzedClass, byName map[string]*model.AnalyzedClass) {
	if ac.Base == "" {
		return
	}
	visited := map[string]bool{}
	base := ac.Base
	for base != "" && !visited[base] {
		visited[base] = true
		ancestor, ok := byName[base]
		if !ok {
			break
		}
		ac.Fields = subtractMatchingFields(ac.Fields, ancestor.Fields)
		ac.StaticFields = subtractMatchingFields(ac.StaticFields, ancestor.StaticFields)
		base = ancestor.Base
	}
}

func subtractMatchingFields(fields, ancestorFields []model.AnalyzedField) []model.AnalyzedField {
	if len(ancestorFields) == 0 {
		return fields
	}
	signatures := make(map[string]bool, len(ancestorFields))
	for _, af := range ancestorFields {
		signatures[fieldSignature(af)] = true
	}
	out := make([]model.AnalyzedField, 0, len(fields))
	for _, field := range fields {
		if signatures[fieldSignature(field)] {
			continue
		}
		out = append(out, field)
	}
	return out
}

func fieldSignature(af model.AnalyzedField) string {
	return af.Name + "|" + joinTypes(af.Types)
}
