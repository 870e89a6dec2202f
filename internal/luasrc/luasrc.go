// Package luasrc is the one concrete producer of ast.Chunk this repository
// ships: it wraps github.com/smacker/go-tree-sitter and its lua grammar
// binding, lowering the concrete syntax tree into the ast package's node
// kinds (spec.md §6's external parser contract). It performs no semantic
// analysis of its own — that is the analysis core's job.
package luasrc

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/lua"

	"github.com/luatype/analyzer/ast"
)

// ParseFile reads and lowers one .lua source file into an ast.Chunk.
func ParseFile(path string) (*ast.Chunk, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return ParseSource(src)
}

// ParseSource lowers a Lua source buffer into an ast.Chunk.
func ParseSource(src []byte) (*ast.Chunk, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(lua.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}

	l := &lowerer{source: src}
	return &ast.Chunk{Body: l.block(tree.RootNode())}, nil
}

// lowerer carries the source buffer every sitter.Node.Content call needs.
type lowerer struct {
	source []byte
}

func (l *lowerer) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(l.source)
}

// block lowers every named statement-shaped child of n, skipping node kinds
// this thin adapter does not recognize (spec.md §2.2: "lowering only, no
// semantic analysis").
func (l *lowerer) block(n *sitter.Node) []ast.Statement {
	if n == nil {
		return nil
	}
	var out []ast.Statement
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		if stmt := l.statement(n.NamedChild(i)); stmt != nil {
			out = append(out, stmt)
		}
	}
	return out
}

func (l *lowerer) statement(n *sitter.Node) ast.Statement {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "local_variable_declaration", "local_assignment":
		return l.localStatement(n)
	case "assignment_statement", "variable_assignment":
		return l.assignmentStatement(n)
	case "function_declaration", "function_statement":
		return l.functionDeclaration(n, false)
	case "local_function", "local_function_declaration":
		return l.functionDeclaration(n, true)
	case "function_call", "call_statement":
		return &ast.CallStatement{Expression: l.expression(n)}
	case "return_statement":
		return &ast.ReturnStatement{Arguments: l.expressionList(n.ChildByFieldName("expression_list"))}
	case "do_statement", "comment":
		return nil
	}
	return nil
}

// localStatement lowers `local a, b = 1, f()`. Name/init lists are read
// positionally off the node's named children rather than by field name,
// since tree-sitter-lua forks disagree on field naming for this shape.
func (l *lowerer) localStatement(n *sitter.Node) ast.Statement {
	var names []*ast.Identifier
	var inits []ast.Expression
	seenAssign := false
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "variable_list", "name_list":
			names = l.identifierList(child)
		case "expression_list":
			inits = l.expressionList(child)
			seenAssign = true
		case "identifier":
			if !seenAssign {
				names = append(names, &ast.Identifier{Name: l.text(child)})
			} else {
				inits = append(inits, l.expression(child))
			}
		}
	}
	return &ast.LocalStatement{Names: names, Init: inits}
}

func (l *lowerer) assignmentStatement(n *sitter.Node) ast.Statement {
	var targets []ast.Expression
	var inits []ast.Expression
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "variable_list":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				targets = append(targets, l.expression(child.NamedChild(j)))
			}
		case "expression_list":
			inits = l.expressionList(child)
		}
	}
	return &ast.AssignmentStatement{Variables: targets, Init: inits}
}

func (l *lowerer) functionDeclaration(n *sitter.Node, forceLocal bool) ast.Statement {
	var identifier ast.Expression
	var params []*ast.Identifier
	var body []ast.Statement
	hasVararg := false

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "function_name", "variable_list", "dot_index_expression", "method_index_expression", "identifier":
			if identifier == nil {
				identifier = l.expression(child)
			}
		case "parameters", "parameter_list":
			params, hasVararg = l.parameterList(child)
		case "block":
			body = l.block(child)
		}
	}
	return &ast.FunctionDeclaration{
		Identifier: identifier,
		IsLocal:    forceLocal,
		Parameters: params,
		HasVararg:  hasVararg,
		Body:       body,
	}
}

func (l *lowerer) parameterList(n *sitter.Node) ([]*ast.Identifier, bool) {
	var params []*ast.Identifier
	vararg := false
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "vararg_expression" || child.Type() == "spread" {
			vararg = true
			continue
		}
		params = append(params, &ast.Identifier{Name: l.text(child)})
	}
	return params, vararg
}

func (l *lowerer) identifierList(n *sitter.Node) []*ast.Identifier {
	var out []*ast.Identifier
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, &ast.Identifier{Name: l.text(n.NamedChild(i))})
	}
	return out
}

func (l *lowerer) expressionList(n *sitter.Node) []ast.Expression {
	if n == nil {
		return nil
	}
	var out []ast.Expression
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, l.expression(n.NamedChild(i)))
	}
	return out
}

func (l *lowerer) expression(n *sitter.Node) ast.Expression {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier":
		return &ast.Identifier{Name: l.text(n)}
	case "vararg_expression":
		return &ast.VarargLiteral{}
	case "string":
		return &ast.StringLiteral{Value: unquoteLuaString(l.text(n))}
	case "number":
		v, _ := strconv.ParseFloat(l.text(n), 64)
		return &ast.NumericLiteral{Value: v}
	case "true":
		return &ast.BooleanLiteral{Value: true}
	case "false":
		return &ast.BooleanLiteral{Value: false}
	case "nil":
		return &ast.NilLiteral{}
	case "table_constructor":
		return l.tableConstructor(n)
	case "function_definition", "function_expression":
		return l.functionDeclaration(n, false).(*ast.FunctionDeclaration)
	case "dot_index_expression":
		return &ast.MemberExpression{
			Base:    l.expression(n.ChildByFieldName("table")),
			Member:  l.text(n.ChildByFieldName("field")),
			Indexer: ast.Dot,
		}
	case "method_index_expression":
		return &ast.MemberExpression{
			Base:    l.expression(n.ChildByFieldName("table")),
			Member:  l.text(n.ChildByFieldName("method")),
			Indexer: ast.Colon,
		}
	case "bracket_index_expression":
		return &ast.IndexExpression{
			Base:  l.expression(n.ChildByFieldName("table")),
			Index: l.expression(n.ChildByFieldName("field")),
		}
	case "function_call":
		return l.callExpression(n)
	case "parenthesized_expression":
		if n.NamedChildCount() > 0 {
			return l.expression(n.NamedChild(0))
		}
	case "unary_expression":
		return &ast.UnaryExpression{
			Operator: unaryOperator(l.text(n.ChildByFieldName("operator"))),
			Argument: l.expression(n.ChildByFieldName("operand")),
		}
	case "binary_expression":
		return &ast.BinaryExpression{
			Operator: binaryOperator(l.text(n.ChildByFieldName("operator"))),
			Left:     l.expression(n.ChildByFieldName("left")),
			Right:    l.expression(n.ChildByFieldName("right")),
		}
	}
	return nil
}

func (l *lowerer) callExpression(n *sitter.Node) ast.Expression {
	base := l.expression(n.ChildByFieldName("name"))
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return &ast.CallExpression{Base: base}
	}
	switch args.Type() {
	case "string":
		return &ast.StringCallExpression{Base: base, Literal: &ast.StringLiteral{Value: unquoteLuaString(l.text(args))}}
	case "table_constructor":
		return &ast.TableCallExpression{Base: base, Table: l.tableConstructor(args).(*ast.TableConstructorExpression)}
	default:
		return &ast.CallExpression{Base: base, Arguments: l.expressionList(args)}
	}
}

func (l *lowerer) tableConstructor(n *sitter.Node) ast.Expression {
	t := &ast.TableConstructorExpression{}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		field := n.NamedChild(i)
		switch field.Type() {
		case "field":
			name := field.ChildByFieldName("name")
			key := field.ChildByFieldName("key")
			value := field.ChildByFieldName("value")
			switch {
			case name != nil:
				t.Fields = append(t.Fields, ast.TableField{
					Kind:  ast.TableFieldKeyString,
					Key:   &ast.Identifier{Name: l.text(name)},
					Value: l.expression(value),
				})
			case key != nil:
				t.Fields = append(t.Fields, ast.TableField{
					Kind:  ast.TableFieldKey,
					Key:   l.expression(key),
					Value: l.expression(value),
				})
			default:
				t.Fields = append(t.Fields, ast.TableField{Kind: ast.TableFieldAuto, Value: l.expression(value)})
			}
		default:
			t.Fields = append(t.Fields, ast.TableField{Kind: ast.TableFieldAuto, Value: l.expression(field)})
		}
	}
	return t
}

func unquoteLuaString(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}
	if len(raw) >= 4 && strings.HasPrefix(raw, "[[") && strings.HasSuffix(raw, "]]") {
		return raw[2 : len(raw)-2]
	}
	return raw
}

func unaryOperator(op string) ast.Operator {
	switch op {
	case "-":
		return ast.OpUnm
	case "not":
		return ast.OpNot
	case "#":
		return ast.OpLen
	case "~":
		return ast.OpBNot
	}
	return ast.Operator(op)
}

func binaryOperator(op string) ast.Operator {
	switch op {
	case "..":
		return ast.OpConcat
	case "and":
		return ast.OpAnd
	case "or":
		return ast.OpOr
	}
	return ast.Operator(op)
}
