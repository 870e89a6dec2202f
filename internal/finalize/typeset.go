package finalize

import (
	"sort"
	"strings"

	"github.com/luatype/analyzer/internal/model"
)

// finalizeTypeSet implements spec.md §4.3 step 7: collapse `unknown` to a
// bare `nil?`, rewrite `@function`/`@table` IDs to their public names, drop
// any leftover internal ID, and replace more than two non-primitive classes
// with the `{table}` narrowing-failure fallback.
func (f *Finalizer) finalizeTypeSet(ts model.TypeSet) []string {
	if len(ts) == 0 {
		return nil
	}
	if ts.Has(model.TypeUnknown) {
		if ts.Has(model.TypeNil) {
			return []string{"nil"}
		}
		return nil
	}

	out := map[string]struct{}{}
	var classNames []string
	for t := range ts {
		switch t {
		case model.TypeNil, model.TypeBoolean, model.TypeString, model.TypeNumber:
			out[string(t)] = struct{}{}
		case model.TypeFunction:
			out["function"] = struct{}{}
		case model.TypeTrue, model.TypeFalse:
			out["boolean"] = struct{}{}
		default:
			id := model.ID(t)
			switch {
			case id.IsFunction():
				out["function"] = struct{}{}
			case id.IsTable():
				table := f.ctx.Interner.Table(id)
				if table == nil {
					continue
				}
				switch {
				case table.EmitAsTable:
					out["table"] = struct{}{}
				case table.ClassName != "":
					classNames = append(classNames, table.ClassName)
					out[table.ClassName] = struct{}{}
				default:
					out["table"] = struct{}{}
				}
			}
			// Any other leftover "@..." ID is dropped per spec.md §4.3 step 7.
		}
	}

	if len(classNames) > 2 {
		for _, name := range classNames {
			delete(out, name)
		}
		out["table"] = struct{}{}
	}

	result := make([]string, 0, len(out))
	for t := range out {
		result = append(result, t)
	}
	sort.Strings(result)
	return result
}

func joinTypes(types []string) string {
	return strings.Join(types, "|")
}

// unquoteKey strips the quoting/escaping model.LiteralKey applies to string
// keys, passing numeric/identifier keys through unchanged.
func unquoteKey(key string) string {
	if len(key) < 2 || key[0] != '"' || key[len(key)-1] != '"' {
		return key
	}
	inner := key[1 : len(key)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}
