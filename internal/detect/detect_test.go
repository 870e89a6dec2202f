package detect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luatype/analyzer/ast"
	"github.com/luatype/analyzer/internal/detect"
)

func TestDeriveCall(t *testing.T) {
	tests := []struct {
		name       string
		base       ast.Expression
		args       []ast.Expression
		wantBase   string
		wantDerive string
		wantOK     bool
	}{
		{
			name: "Animal:derive(\"Dog\")",
			base: &ast.MemberExpression{
				Base:    &ast.Identifier{Name: "Animal"},
				Member:  "derive",
				Indexer: ast.Colon,
			},
			args:       []ast.Expression{&ast.StringLiteral{Value: "Dog"}},
			wantBase:   "Animal",
			wantDerive: "Dog",
			wantOK:     true,
		},
		{
			name: "dot indexer is not a derive call",
			base: &ast.MemberExpression{
				Base:    &ast.Identifier{Name: "Animal"},
				Member:  "derive",
				Indexer: ast.Dot,
			},
			args:   []ast.Expression{&ast.StringLiteral{Value: "Dog"}},
			wantOK: false,
		},
		{
			name: "wrong argument count",
			base: &ast.MemberExpression{
				Base:    &ast.Identifier{Name: "Animal"},
				Member:  "derive",
				Indexer: ast.Colon,
			},
			args:   nil,
			wantOK: false,
		},
		{
			name: "non-string argument",
			base: &ast.MemberExpression{
				Base:    &ast.Identifier{Name: "Animal"},
				Member:  "derive",
				Indexer: ast.Colon,
			},
			args:   []ast.Expression{&ast.NumericLiteral{Value: 1}},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, derive, ok := detect.DeriveCall(tt.base, tt.args)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantBase, base)
				assert.Equal(t, tt.wantDerive, derive)
			}
		})
	}
}

func TestClosureClassBinding(t *testing.T) {
	// local self = {}
	// function self.bark() end
	body := []ast.Statement{
		&ast.LocalStatement{
			Names: []*ast.Identifier{{Name: "self"}},
			Init:  []ast.Expression{&ast.TableConstructorExpression{}},
		},
		&ast.FunctionDeclaration{
			Identifier: &ast.MemberExpression{Base: &ast.Identifier{Name: "self"}, Member: "bark", Indexer: ast.Dot},
		},
	}
	binding, ok := detect.ClosureClassBinding(body)
	assert.True(t, ok)
	assert.Equal(t, "self", binding)
}

func TestClosureClassBinding_NoMethodFails(t *testing.T) {
	body := []ast.Statement{
		&ast.LocalStatement{
			Names: []*ast.Identifier{{Name: "self"}},
			Init:  []ast.Expression{&ast.TableConstructorExpression{}},
		},
	}
	_, ok := detect.ClosureClassBinding(body)
	assert.False(t, ok)
}

func TestClosureClassBinding_SuppressedBySetmetatable(t *testing.T) {
	body := []ast.Statement{
		&ast.LocalStatement{
			Names: []*ast.Identifier{{Name: "self"}},
			Init:  []ast.Expression{&ast.TableConstructorExpression{}},
		},
		&ast.FunctionDeclaration{
			Identifier: &ast.MemberExpression{Base: &ast.Identifier{Name: "self"}, Member: "bark", Indexer: ast.Dot},
		},
		&ast.CallStatement{
			Expression: &ast.CallExpression{
				Base: &ast.Identifier{Name: "setmetatable"},
				Arguments: []ast.Expression{
					&ast.Identifier{Name: "self"},
					&ast.Identifier{Name: "SomeMeta"},
				},
			},
		},
	}
	_, ok := detect.ClosureClassBinding(body)
	assert.False(t, ok)
}

func TestFrameworkUIBase(t *testing.T) {
	base := &ast.MemberExpression{Base: &ast.Identifier{Name: "Atom"}, Member: "__call", Indexer: ast.Dot}
	args := []ast.Expression{
		&ast.TableConstructorExpression{
			Fields: []ast.TableField{
				{
					Kind:  ast.TableFieldKeyString,
					Key:   &ast.Identifier{Name: "_ATOM_UI_CLASS"},
					Value: &ast.StringLiteral{Value: "Button"},
				},
			},
		},
	}
	name, ok := detect.FrameworkUIBase(base, args)
	assert.True(t, ok)
	assert.Equal(t, "Button", name)
}

func TestFrameworkUIChild(t *testing.T) {
	tagged := map[string]bool{"Button": true}
	isUITagged := func(name string) bool { return tagged[name] }

	base := &ast.Identifier{Name: "Button"}
	args := []ast.Expression{&ast.TableConstructorExpression{}}
	name, ok := detect.FrameworkUIChild(base, args, isUITagged)
	assert.True(t, ok)
	assert.Equal(t, "Button", name)

	untaggedBase := &ast.Identifier{Name: "Widget"}
	_, ok = detect.FrameworkUIChild(untaggedBase, args, isUITagged)
	assert.False(t, ok)
}

func TestSetMetatableCall(t *testing.T) {
	base := &ast.Identifier{Name: "setmetatable"}
	args := []ast.Expression{&ast.Identifier{Name: "instance"}, &ast.Identifier{Name: "Meta"}}
	target, meta, ok := detect.SetMetatableCall(base, args)
	assert.True(t, ok)
	assert.Equal(t, args[0], target)
	assert.Equal(t, args[1], meta)

	_, _, ok = detect.SetMetatableCall(&ast.Identifier{Name: "notsetmetatable"}, args)
	assert.False(t, ok)
}
