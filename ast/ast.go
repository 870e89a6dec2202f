// Package ast defines the node shapes the analysis core consumes.
//
// These types are a data contract, not a parser: the lexer/parser that
// produces them is an external collaborator (see spec.md §1). Node kinds
// and field names follow the minimum surface spec.md §6 requires.
package ast

// Node is implemented by every AST node kind.
type Node interface {
	node()
}

// Position is a line/column location in the originating source file.
type Position struct {
	Line   int
	Column int
}

// Chunk is the root of a parsed module.
type Chunk struct {
	Body []Statement
}

func (*Chunk) node() {}

// Statement is implemented by every statement node kind.
type Statement interface {
	Node
	stmt()
}

// Expression is implemented by every expression node kind.
type Expression interface {
	Node
	expr()
}

// LocalStatement declares one or more local variables, optionally with
// initializers: `local a, b = 1, f()`.
type LocalStatement struct {
	Names []*Identifier
	Init  []Expression
}

func (*LocalStatement) node() {}
func (*LocalStatement) stmt() {}

// AssignmentStatement covers `lhs = rhs` where lhs is one or more of
// reference | index | member.
type AssignmentStatement struct {
	Variables []Expression // Identifier | IndexExpression | MemberExpression
	Init      []Expression
}

func (*AssignmentStatement) node() {}
func (*AssignmentStatement) stmt() {}

// FunctionDeclaration covers both `function name(...) end` and
// `local function name(...) end` and method forms `function T:m(...) end`.
type FunctionDeclaration struct {
	Identifier Expression // nil for anonymous function literals used as expressions
	IsLocal    bool
	Parameters []*Identifier // synthetic "self" is injected by the context, not here
	HasVararg  bool
	Body       []Statement
}

func (*FunctionDeclaration) node() {}
func (*FunctionDeclaration) stmt() {}
func (*FunctionDeclaration) expr() {}

// CallStatement wraps a call expression used as a standalone statement.
type CallStatement struct {
	Expression Expression // CallExpression | StringCallExpression | TableCallExpression
}

func (*CallStatement) node() {}
func (*CallStatement) stmt() {}

// ReturnStatement covers `return e1, e2, ...`.
type ReturnStatement struct {
	Arguments []Expression
}

func (*ReturnStatement) node() {}
func (*ReturnStatement) stmt() {}

// CallExpression covers `f(a, b)`.
type CallExpression struct {
	Base      Expression
	Arguments []Expression
}

func (*CallExpression) node() {}
func (*CallExpression) expr() {}

// StringCallExpression covers `f "literal"`.
type StringCallExpression struct {
	Base    Expression
	Literal *StringLiteral
}

func (*StringCallExpression) node() {}
func (*StringCallExpression) expr() {}

// TableCallExpression covers `f{...}`.
type TableCallExpression struct {
	Base  Expression
	Table *TableConstructorExpression
}

func (*TableCallExpression) node() {}
func (*TableCallExpression) expr() {}

// Indexer distinguishes `.` from `:` member access.
type Indexer string

const (
	Dot   Indexer = "."
	Colon Indexer = ":"
)

// MemberExpression covers `base.member` / `base:member`.
type MemberExpression struct {
	Base    Expression
	Member  string
	Indexer Indexer
}

func (*MemberExpression) node() {}
func (*MemberExpression) expr() {}

// IndexExpression covers `base[index]`.
type IndexExpression struct {
	Base  Expression
	Index Expression
}

func (*IndexExpression) node() {}
func (*IndexExpression) expr() {}

// TableConstructorExpression covers `{...}` literals.
type TableConstructorExpression struct {
	Fields []TableField
}

func (*TableConstructorExpression) node() {}
func (*TableConstructorExpression) expr() {}

// TableFieldKind distinguishes the three constructor field shapes.
type TableFieldKind int

const (
	// TableFieldAuto is an auto-indexed positional value: `{1, 2, 3}`.
	TableFieldAuto TableFieldKind = iota
	// TableFieldKeyString is a bareword key: `{foo = 1}`.
	TableFieldKeyString
	// TableFieldKey is a bracketed key: `{[1] = "x"}` or `{["foo"] = 1}`.
	TableFieldKey
)

// TableField is one entry of a table constructor.
type TableField struct {
	Kind  TableFieldKind
	Key   Expression // nil for TableFieldAuto
	Value Expression
}

// Identifier is a bare name reference.
type Identifier struct {
	Name string
}

func (*Identifier) node() {}
func (*Identifier) expr() {}

// VarargLiteral covers `...`.
type VarargLiteral struct{}

func (*VarargLiteral) node() {}
func (*VarargLiteral) expr() {}

// StringLiteral is a quoted string literal.
type StringLiteral struct {
	Value string
}

func (*StringLiteral) node() {}
func (*StringLiteral) expr() {}

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	Value bool
}

func (*BooleanLiteral) node() {}
func (*BooleanLiteral) expr() {}

// NumericLiteral is a number literal.
type NumericLiteral struct {
	Value float64
}

func (*NumericLiteral) node() {}
func (*NumericLiteral) expr() {}

// NilLiteral is the `nil` literal.
type NilLiteral struct{}

func (*NilLiteral) node() {}
func (*NilLiteral) expr() {}

// Operator is the full set of unary/binary operators the core understands.
type Operator string

const (
	OpAdd    Operator = "+"
	OpSub    Operator = "-"
	OpMul    Operator = "*"
	OpDiv    Operator = "/"
	OpMod    Operator = "%"
	OpPow    Operator = "^"
	OpConcat Operator = ".."
	OpEq     Operator = "=="
	OpNeq    Operator = "~="
	OpLt     Operator = "<"
	OpLte    Operator = "<="
	OpGt     Operator = ">"
	OpGte    Operator = ">="
	OpAnd    Operator = "and"
	OpOr     Operator = "or"
	OpNot    Operator = "not"
	OpLen    Operator = "#"
	OpUnm    Operator = "-u" // unary minus, distinct token from OpSub
	OpBAnd   Operator = "&"
	OpBOr    Operator = "|"
	OpBXor   Operator = "~"
	OpBNot   Operator = "~u"
	OpShl    Operator = "<<"
	OpShr    Operator = ">>"
)

// UnaryExpression covers `not x`, `-x`, `#x`, `~x`.
type UnaryExpression struct {
	Operator Operator
	Argument Expression
}

func (*UnaryExpression) node() {}
func (*UnaryExpression) expr() {}

// BinaryExpression covers every two-operand operator including `and`/`or`.
type BinaryExpression struct {
	Operator Operator
	Left     Expression
	Right    Expression
}

func (*BinaryExpression) node() {}
func (*BinaryExpression) expr() {}
