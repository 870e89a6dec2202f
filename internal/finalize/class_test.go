package finalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luatype/analyzer/internal/context"
	"github.com/luatype/analyzer/internal/model"
)

func TestFinalizeClass_PartitionsFieldsStaticsAndMethods(t *testing.T) {
	ctx := context.New()
	ctx.SetCurrentModule("dog")
	f := New(ctx)

	id, table := ctx.Interner.NewTable("Dog", "dog")
	table.ClassName = "Dog"

	// instance field `self.name`
	table.AddDefinition(model.LiteralKey("name", true), &model.ExpressionInfo{
		Expr:           &model.Expression{Kind: model.ExprLiteral, LuaType: model.TypeString},
		Instance:       true,
		DefiningModule: "dog",
	})
	// static field `Dog.count = 0`
	table.AddDefinition(model.LiteralKey("count", true), &model.ExpressionInfo{
		Expr:           &model.Expression{Kind: model.ExprLiteral, LuaType: model.TypeNumber},
		DefiningModule: "dog",
	})
	// method `function Dog:bark() end`
	fnID, fn := ctx.Interner.NewFunction("bark")
	fn.IsMethod = true
	fn.Parameters = []model.ID{model.SelfID}
	fn.ParameterNames = []string{"self"}
	table.AddDefinition(model.LiteralKey("bark", true), &model.ExpressionInfo{
		Expr:           &model.Expression{Kind: model.ExprLiteral, LuaType: model.TypeFunction, FunctionID: fnID},
		DefiningModule: "dog",
	})

	ac := f.finalizeClass(id, model.ClassDecl{Name: "Dog"})

	assert.False(t, ac.IsEmpty)
	assert.Len(t, ac.Fields, 1)
	assert.Equal(t, "name", ac.Fields[0].Name)
	assert.True(t, ac.Fields[0].Instance)

	assert.Len(t, ac.StaticFields, 1)
	assert.Equal(t, "count", ac.StaticFields[0].Name)

	assert.Len(t, ac.Methods, 1)
	assert.Equal(t, "bark", ac.Methods[0].Name)
	// the synthetic leading @self slot must not surface as a parameter.
	assert.Len(t, ac.Methods[0].Parameters, 0)
}

func TestFinalizeClass_OnlyCurrentModuleDefsCount(t *testing.T) {
	ctx := context.New()
	f := New(ctx)

	id, table := ctx.Interner.NewTable("Dog", "dog")
	table.AddDefinition(model.LiteralKey("name", true), &model.ExpressionInfo{
		Expr:           &model.Expression{Kind: model.ExprLiteral, LuaType: model.TypeString},
		Instance:       true,
		DefiningModule: "other_module",
	})

	ctx.SetCurrentModule("dog")
	ac := f.finalizeClass(id, model.ClassDecl{Name: "Dog"})
	assert.True(t, ac.IsEmpty, "definitions from a different module must not be finalized here")
}

func TestFinalizeClass_FloatingSetterOnNestedTable(t *testing.T) {
	ctx := context.New()
	ctx.SetCurrentModule("dog")
	f := New(ctx)

	id, table := ctx.Interner.NewTable("Dog", "dog")
	table.ClassName = "Dog"

	// Dog.config = {} (a plain nested table, never promoted to its own class)
	configID, configTable := ctx.Interner.NewTable("", "dog")
	configLiteral := &model.ExpressionInfo{
		Expr:           &model.Expression{Kind: model.ExprLiteral, LuaType: model.TypeTable, TableID: configID},
		DefiningModule: "dog",
	}
	table.AddDefinition(model.LiteralKey("config", false), configLiteral)

	// Dog.config.timeout = 5, reached only by reading Dog.config first.
	configTable.AddDefinition(model.LiteralKey("timeout", false), &model.ExpressionInfo{
		Expr:           &model.Expression{Kind: model.ExprLiteral, LuaType: model.TypeNumber},
		DefiningModule: "dog",
	})

	ac := f.finalizeClass(id, model.ClassDecl{Name: "Dog"})

	if assert.Len(t, ac.SetterFields, 1) {
		assert.Equal(t, "config.timeout", ac.SetterFields[0].Name)
		assert.Equal(t, []string{"number"}, ac.SetterFields[0].Types)
	}
}

func TestFinalizeClass_NestedClassIsNotFloatingSetter(t *testing.T) {
	ctx := context.New()
	ctx.SetCurrentModule("dog")
	f := New(ctx)

	id, table := ctx.Interner.NewTable("Dog", "dog")
	table.ClassName = "Dog"

	collarID, collarTable := ctx.Interner.NewTable("Collar", "dog")
	collarTable.ClassName = "Collar"
	table.AddDefinition(model.LiteralKey("collar", false), &model.ExpressionInfo{
		Expr:           &model.Expression{Kind: model.ExprLiteral, LuaType: model.TypeTable, TableID: collarID},
		DefiningModule: "dog",
	})
	collarTable.AddDefinition(model.LiteralKey("size", false), &model.ExpressionInfo{
		Expr:           &model.Expression{Kind: model.ExprLiteral, LuaType: model.TypeNumber},
		DefiningModule: "dog",
	})

	ac := f.finalizeClass(id, model.ClassDecl{Name: "Dog"})
	assert.Empty(t, ac.SetterFields, "a nested table with its own class name is finalized as its own class, not folded into setterFields")
}

func TestPruneAncestorFields_RemovesDuplicateAncestorField(t *testing.T) {
	ctx := context.New()
	f := New(ctx)

	base := &model.AnalyzedClass{
		Name:   "Animal",
		Fields: []model.AnalyzedField{{Name: "name", Types: []string{"string"}, Instance: true}},
	}
	child := &model.AnalyzedClass{
		Name: "Dog",
		Base: "Animal",
		Fields: []model.AnalyzedField{
			{Name: "name", Types: []string{"string"}, Instance: true},
			{Name: "breed", Types: []string{"string"}, Instance: true},
		},
	}
	byName := map[string]*model.AnalyzedClass{"Animal": base, "Dog": child}

	f.pruneAncestorFields(child, byName)

	assert.Len(t, child.Fields, 1)
	assert.Equal(t, "breed", child.Fields[0].Name)
}

func TestPruneAncestorFields_IdempotentOnSecondRun(t *testing.T) {
	ctx := context.New()
	f := New(ctx)

	base := &model.AnalyzedClass{
		Name:   "Animal",
		Fields: []model.AnalyzedField{{Name: "name", Types: []string{"string"}, Instance: true}},
	}
	child := &model.AnalyzedClass{
		Name:   "Dog",
		Base:   "Animal",
		Fields: []model.AnalyzedField{{Name: "name", Types: []string{"string"}, Instance: true}},
	}
	byName := map[string]*model.AnalyzedClass{"Animal": base, "Dog": child}

	f.pruneAncestorFields(child, byName)
	once := len(child.Fields)
	f.pruneAncestorFields(child, byName)
	assert.Equal(t, once, len(child.Fields))
}
