// Package finalize implements the per-module finalizer of spec.md §4.3: it
// turns each ResolvedModule's interned tables/functions into the public
// AnalyzedModule shape, stripping every opaque "@..." ID along the way.
package finalize

import (
	"github.com/luatype/analyzer/internal/context"
	"github.com/luatype/analyzer/internal/model"
)

// Finalizer holds the single context the whole run shares; it carries no
// other state of its own (spec.md §5: "single-threaded and synchronous").
type Finalizer struct {
	ctx *context.Context
}

// New builds a Finalizer backed by ctx.
func New(ctx *context.Context) *Finalizer {
	return &Finalizer{ctx: ctx}
}

// Run implements spec.md §4.3: finalize every module in the dependency
// order supplied by the caller, then prune ancestor-duplicated class fields
// once every module's classes are known (step 6, which spans modules).
func (f *Finalizer) Run(modules []*model.ResolvedModule) []*model.AnalyzedModule {
	out := make([]*model.AnalyzedModule, 0, len(modules))
	classesByName := map[string]*model.AnalyzedClass{}
	emitted := map[string]bool{}

	for _, rm := range modules {
		if rm == nil {
			continue
		}
		f.ctx.SetCurrentModule(rm.ID)
		am := f.finalizeModule(rm, emitted)
		out = append(out, am)
	}
	for _, am := range out {
		for i := range am.Classes {
			classesByName[am.Classes[i].Name] = &am.Classes[i]
		}
	}
	for _, am := range out {
		for i := range am.Classes {
			f.pruneAncestorFields(&am.Classes[i], classesByName)
		}
	}
	return out
}

// finalizeModule implements spec.md §4.3 steps 2-5 and 7 for one module.
func (f *Finalizer) finalizeModule(rm *model.ResolvedModule, emitted map[string]bool) *model.AnalyzedModule {
	am := &model.AnalyzedModule{ID: rm.ID}

	for _, decl := range rm.Classes {
		if emitted[decl.Name] {
			continue
		}
		table := f.ctx.Interner.Table(decl.TableID)
		if table == nil {
			continue
		}
		if table.EmitAsTable {
			if t := f.finalizeTable(decl.TableID, decl.Name); t != nil {
				am.Tables = append(am.Tables, *t)
			}
			emitted[decl.Name] = true
			continue
		}
		if ac := f.finalizeClass(decl.TableID, decl); ac != nil {
			am.Classes = append(am.Classes, *ac)
			emitted[decl.Name] = true
		}
	}

	// Classes merely touched (read, not declared) by this module but whose
	// table gained content (spec.md §4.1.6's inclusion rule) still get an
	// emitted skeleton here, the first module to see non-empty content.
	for name := range rm.SeenClasses {
		if emitted[name] {
			continue
		}
		id, ok := f.ctx.ClassTable(name)
		if !ok {
			continue
		}
		if ac := f.finalizeClass(id, model.ClassDecl{Name: name}); ac != nil {
			am.Classes = append(am.Classes, *ac)
			emitted[name] = true
		}
	}

	for _, fd := range rm.Functions {
		fn := f.ctx.Interner.Function(fd.FunctionID)
		if fn == nil {
			continue
		}
		afn := f.buildAnalyzedFunction(fd.Name, fn)
		am.Functions = append(am.Functions, *afn)
	}

	for _, field := range rm.Fields {
		am.Fields = append(am.Fields, model.AnalyzedField{
			Name:     unquoteKey(field.Key),
			Types:    f.finalizeTypeSet(f.ctx.Resolve(field.Value)),
			Instance: field.Instance,
		})
	}

	for i, ts := range rm.Returns {
		ar := model.AnalyzedReturn{Index: i + 1, Types: f.finalizeTypeSet(ts)}
		if len(ts) == 1 {
			for t := range ts {
				id := model.ID(t)
				if id.IsTable() {
					if table := f.ctx.Interner.Table(id); table != nil && table.ClassName == "" {
						ar.Literal = f.finalizeTable(id, "")
					}
				}
			}
		}
		am.Returns = append(am.Returns, ar)
	}

	return am
}
