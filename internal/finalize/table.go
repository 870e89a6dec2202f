package finalize

import (
	"strconv"

	"github.com/luatype/analyzer/internal/model"
)

// finalizeTable implements spec.md §4.3 step 4: rebuild a plain table
// literal's fields in insertion order, preserving auto-numeric keys only
// while they continue the implicit 1-based sequence. A keyed field with two
// or more definitions gets the union of all their types; any other field
// gets the types of its literal value. Field values themselves are not
// emitted.
func (f *Finalizer) finalizeTable(tableID model.ID, name string) *model.AnalyzedTable {
	table := f.ctx.Interner.Table(tableID)
	if table == nil {
		return nil
	}
	at := &model.AnalyzedTable{Name: name}
	autoIndex := 0
	for _, lf := range table.LiteralFields {
		var fieldName string
		if lf.Key == "" {
			autoIndex++
			if lf.AutoIndex == autoIndex {
				fieldName = strconv.Itoa(autoIndex)
			} else {
				// Sequence broken (e.g. a later explicit [3] = ... field);
				// keep the explicit position instead of guessing.
				fieldName = strconv.Itoa(lf.AutoIndex)
			}
		} else {
			fieldName = unquoteKey(lf.Key)
		}

		var types []string
		if lf.Key != "" && len(table.Definitions[lf.Key]) >= 2 {
			merged := model.TypeSet{}
			for _, d := range table.Definitions[lf.Key] {
				merged = merged.Union(f.ctx.Resolve(d))
			}
			types = f.finalizeTypeSet(merged)
		} else if lf.Value != nil {
			types = f.finalizeTypeSet(f.ctx.Resolve(lf.Value))
		}
		at.Fields = append(at.Fields, model.AnalyzedField{Name: fieldName, Types: types})
	}
	return at
}
