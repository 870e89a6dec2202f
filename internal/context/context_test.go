package context_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luatype/analyzer/ast"
	"github.com/luatype/analyzer/internal/context"
	"github.com/luatype/analyzer/internal/model"
)

// str/num/id are tiny constructors to keep the hand-built chunks below
// readable.
func str(v string) *ast.StringLiteral   { return &ast.StringLiteral{Value: v} }
func num(v float64) *ast.NumericLiteral { return &ast.NumericLiteral{Value: v} }
func id(n string) *ast.Identifier       { return &ast.Identifier{Name: n} }

func TestIngestModule_ReturnTableLiteral(t *testing.T) {
	// return { x = 1 }
	chunk := &ast.Chunk{
		Body: []ast.Statement{
			&ast.ReturnStatement{Arguments: []ast.Expression{
				&ast.TableConstructorExpression{Fields: []ast.TableField{
					{Kind: ast.TableFieldKeyString, Key: id("x"), Value: num(1)},
				}},
			}},
		},
	}

	ctx := context.New()
	rm := ctx.IngestModule("config", chunk)
	require.NotNil(t, rm)
	require.Len(t, rm.Returns, 1)

	var sawTable bool
	for ty := range rm.Returns[0] {
		if model.ID(ty).IsTable() {
			sawTable = true
		}
	}
	assert.True(t, sawTable)
}

func TestIngestModule_LocalAssignmentAndReturn(t *testing.T) {
	// local greeting = "hi"
	// return greeting
	chunk := &ast.Chunk{
		Body: []ast.Statement{
			&ast.LocalStatement{
				Names: []*ast.Identifier{id("greeting")},
				Init:  []ast.Expression{str("hi")},
			},
			&ast.ReturnStatement{Arguments: []ast.Expression{id("greeting")}},
		},
	}

	ctx := context.New()
	rm := ctx.IngestModule("greeter", chunk)
	require.NotNil(t, rm)
	require.Len(t, rm.Returns, 1)
	assert.True(t, rm.Returns[0].Has(model.TypeString))
}

func TestIngestModule_DuplicateModuleIDIsDiagnosed(t *testing.T) {
	chunk := &ast.Chunk{Body: []ast.Statement{&ast.ReturnStatement{}}}
	ctx := context.New()

	first := ctx.IngestModule("dup", chunk)
	require.NotNil(t, first)
	second := ctx.IngestModule("dup", chunk)
	assert.Nil(t, second)

	diags := ctx.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, context.DiagDuplicateModuleID, diags[0].Kind)
}

func TestIngestModule_FunctionDeclarationRegistersFunction(t *testing.T) {
	// function add(a, b) return a + b end
	chunk := &ast.Chunk{
		Body: []ast.Statement{
			&ast.FunctionDeclaration{
				Identifier: id("add"),
				Parameters: []*ast.Identifier{{Name: "a"}, {Name: "b"}},
				Body: []ast.Statement{
					&ast.ReturnStatement{Arguments: []ast.Expression{
						&ast.BinaryExpression{Operator: ast.OpAdd, Left: id("a"), Right: id("b")},
					}},
				},
			},
		},
	}

	ctx := context.New()
	rm := ctx.IngestModule("math_utils", chunk)
	require.NotNil(t, rm)
	require.Len(t, rm.Functions, 1)
	assert.Equal(t, "add", rm.Functions[0].Name)

	fn := ctx.Interner.Function(rm.Functions[0].FunctionID)
	require.NotNil(t, fn)
	assert.Len(t, fn.Parameters, 2)
}

func TestIngestModule_NamedGlobalClassWithMethod(t *testing.T) {
	// A = {}
	// function A:foo(x) return x end
	chunk := &ast.Chunk{
		Body: []ast.Statement{
			&ast.AssignmentStatement{
				Variables: []ast.Expression{id("A")},
				Init:      []ast.Expression{&ast.TableConstructorExpression{}},
			},
			&ast.FunctionDeclaration{
				Identifier: &ast.MemberExpression{Base: id("A"), Member: "foo", Indexer: ast.Colon},
				Parameters: []*ast.Identifier{{Name: "x"}},
				Body: []ast.Statement{
					&ast.ReturnStatement{Arguments: []ast.Expression{id("x")}},
				},
			},
		},
	}

	ctx := context.New()
	rm := ctx.IngestModule("a_class", chunk)
	require.NotNil(t, rm)
	require.Len(t, rm.Classes, 1)
	assert.Equal(t, "A", rm.Classes[0].Name)

	table := ctx.Interner.Table(rm.Classes[0].TableID)
	require.NotNil(t, table)
	defs := table.Definitions[model.LiteralKey("foo", false)]
	require.Len(t, defs, 1)
	require.NotNil(t, defs[0].Expr)
	require.Equal(t, model.ExprLiteral, defs[0].Expr.Kind)
	require.Equal(t, model.TypeFunction, defs[0].Expr.LuaType)

	fn := ctx.Interner.Function(defs[0].Expr.FunctionID)
	require.NotNil(t, fn)
	assert.True(t, fn.IsMethod)
	assert.Len(t, fn.Parameters, 2) // synthetic @self, then x
}

func TestIngestModule_LocalTableLiteralStaysPlainValue(t *testing.T) {
	// local t = {1, 2, 3}
	// return t
	chunk := &ast.Chunk{
		Body: []ast.Statement{
			&ast.LocalStatement{
				Names: []*ast.Identifier{id("t")},
				Init: []ast.Expression{&ast.TableConstructorExpression{Fields: []ast.TableField{
					{Kind: ast.TableFieldAuto, Value: num(1)},
					{Kind: ast.TableFieldAuto, Value: num(2)},
					{Kind: ast.TableFieldAuto, Value: num(3)},
				}}},
			},
			&ast.ReturnStatement{Arguments: []ast.Expression{id("t")}},
		},
	}

	ctx := context.New()
	rm := ctx.IngestModule("plain_table", chunk)
	require.NotNil(t, rm)
	assert.Empty(t, rm.Classes, "a local table literal must not be promoted to a named class")
	require.Len(t, rm.Returns, 1)

	var tableID model.ID
	for ty := range rm.Returns[0] {
		if model.ID(ty).IsTable() {
			tableID = model.ID(ty)
		}
	}
	require.NotEmpty(t, tableID)
	table := ctx.Interner.Table(tableID)
	require.NotNil(t, table)
	assert.Empty(t, table.ClassName)
}

func TestIngestModule_MultiReturnTailExpansion(t *testing.T) {
	// function pair() return 1, "two" end
	// local a, b = pair()
	pairDecl := &ast.FunctionDeclaration{
		Identifier: id("pair"),
		Body: []ast.Statement{
			&ast.ReturnStatement{Arguments: []ast.Expression{num(1), str("two")}},
		},
	}
	chunk := &ast.Chunk{
		Body: []ast.Statement{
			pairDecl,
			&ast.LocalStatement{
				Names: []*ast.Identifier{id("a"), id("b")},
				Init: []ast.Expression{&ast.CallExpression{
					Base: id("pair"),
				}},
			},
			&ast.ReturnStatement{Arguments: []ast.Expression{id("a"), id("b")}},
		},
	}

	ctx := context.New()
	rm := ctx.IngestModule("pairmod", chunk)
	require.NotNil(t, rm)
	require.Len(t, rm.Returns, 2)
	assert.True(t, rm.Returns[0].Has(model.TypeNumber))
	assert.True(t, rm.Returns[1].Has(model.TypeString))
}
