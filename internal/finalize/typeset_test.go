package finalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luatype/analyzer/internal/context"
	"github.com/luatype/analyzer/internal/model"
)

func TestFinalizeTypeSet_Primitives(t *testing.T) {
	ctx := context.New()
	f := New(ctx)

	out := f.finalizeTypeSet(model.NewTypeSet(model.TypeString, model.TypeNumber))
	assert.Equal(t, []string{"number", "string"}, out)
}

func TestFinalizeTypeSet_UnknownCollapsesToNil(t *testing.T) {
	ctx := context.New()
	f := New(ctx)

	assert.Nil(t, f.finalizeTypeSet(model.NewTypeSet(model.TypeUnknown)))
	assert.Equal(t, []string{"nil"}, f.finalizeTypeSet(model.NewTypeSet(model.TypeUnknown, model.TypeNil)))
}

func TestFinalizeTypeSet_ClassNameOverTable(t *testing.T) {
	ctx := context.New()
	f := New(ctx)

	id, table := ctx.Interner.NewTable("Dog", "animals")
	table.ClassName = "Dog"

	out := f.finalizeTypeSet(model.NewTypeSet(model.Type(id)))
	assert.Equal(t, []string{"Dog"}, out)
}

func TestFinalizeTypeSet_ManyClassesFallBackToTable(t *testing.T) {
	ctx := context.New()
	f := New(ctx)

	var types []model.Type
	for _, name := range []string{"Dog", "Cat", "Bird"} {
		id, table := ctx.Interner.NewTable(name, "animals")
		table.ClassName = name
		types = append(types, model.Type(id))
	}

	out := f.finalizeTypeSet(model.NewTypeSet(types...))
	assert.Equal(t, []string{"table"}, out)
}

func TestFinalizeTypeSet_EmitAsTable(t *testing.T) {
	ctx := context.New()
	f := New(ctx)

	id, table := ctx.Interner.NewTable("config", "init")
	table.EmitAsTable = true

	out := f.finalizeTypeSet(model.NewTypeSet(model.Type(id)))
	assert.Equal(t, []string{"table"}, out)
}

func TestUnquoteKey(t *testing.T) {
	assert.Equal(t, "name", unquoteKey(`"name"`))
	assert.Equal(t, "1", unquoteKey("1"))
	assert.Equal(t, `a"b`, unquoteKey(`"a\"b"`))
}

func TestJoinTypes(t *testing.T) {
	assert.Equal(t, "number|string", joinTypes([]string{"number", "string"}))
	assert.Equal(t, "", joinTypes(nil))
}
