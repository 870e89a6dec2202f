package finalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luatype/analyzer/internal/context"
	"github.com/luatype/analyzer/internal/model"
)

func TestFinalizeTable_PreservesInsertionOrder(t *testing.T) {
	ctx := context.New()
	f := New(ctx)

	id, table := ctx.Interner.NewTable("colors", "init")
	table.LiteralFields = []model.LiteralField{
		{Key: "", AutoIndex: 1, Value: model.NewPrimitiveLiteral(model.TypeString, "red", "init")},
		{Key: "", AutoIndex: 2, Value: model.NewPrimitiveLiteral(model.TypeString, "green", "init")},
		{Key: model.LiteralKey("label", true), Value: model.NewPrimitiveLiteral(model.TypeString, "palette", "init")},
	}

	at := f.finalizeTable(id, "colors")

	assert.Equal(t, "1", at.Fields[0].Name)
	assert.Equal(t, "2", at.Fields[1].Name)
	assert.Equal(t, "label", at.Fields[2].Name)
}

func TestFinalizeTable_MultipleDefinitionsUnionTypes(t *testing.T) {
	ctx := context.New()
	f := New(ctx)

	id, table := ctx.Interner.NewTable("opts", "init")
	key := model.LiteralKey("value", true)
	first := model.NewPrimitiveLiteral(model.TypeString, "x", "init")
	table.AddDefinition(key, first)
	table.LiteralFields = []model.LiteralField{{Key: key, Value: first}}

	at := f.finalizeTable(id, "opts")
	assert.Equal(t, []string{"string"}, at.Fields[0].Types)

	second := model.NewPrimitiveLiteral(model.TypeNumber, 1.0, "init")
	table.AddDefinition(key, second)

	at = f.finalizeTable(id, "opts")
	assert.ElementsMatch(t, []string{"number", "string"}, at.Fields[0].Types)
}
