package model

import "github.com/luatype/analyzer/ast"

// ExpressionKind tags the Expression variant in play (spec.md §3.2).
type ExpressionKind int

const (
	ExprReference ExpressionKind = iota
	ExprRequire
	ExprLiteral
	ExprIndex
	ExprMember
	ExprOperation
)

// Expression is the tagged sum described in spec.md §3.2. Only the fields
// relevant to Kind are populated; the rest are zero.
type Expression struct {
	Kind ExpressionKind

	// ExprReference
	Reference ID

	// ExprRequire
	RequireModule string

	// ExprLiteral
	LuaType     Type
	Literal     interface{} // string | float64 | bool, or nil
	TableID     ID
	FunctionID  ID
	Fields      []LiteralField // only for table literals
	Parameters  []ID           // only for function literals
	ReturnTypes []TypeSet      // only for function literals
	IsMethod    bool           // only for function literals

	// ExprIndex / ExprMember
	Base    *ExpressionInfo
	Index   *ExpressionInfo // ExprIndex only
	Member  string          // ExprMember only
	Indexer ast.Indexer     // ExprMember only

	// ExprOperation
	Operator  ast.Operator
	Arguments []*ExpressionInfo
}

// LiteralField is one key/value pair of a table literal, insertion-ordered
// per spec.md §3.3.
type LiteralField struct {
	Key       string // canonical literalKey(name, luaType?) form, or "" for auto
	AutoIndex int    // 1-based position when Key == "", else 0
	Value     *ExpressionInfo
	Static    TypeSet // optional precomputed static type, may be nil
}

// ExpressionInfo wraps an Expression with the flags spec.md §3.2 describes.
type ExpressionInfo struct {
	Expr *Expression

	// ReturnIndex is the 1-based multi-return slot selected from a call
	// expression; 0 means "unset / use slot 1".
	ReturnIndex int

	Instance       bool
	FromLiteral    bool
	FunctionLevel  bool
	DefiningModule string

	// Usage is the narrowing mask accumulated for this expression by
	// addUsage (spec.md §4.1.4). nil means "no usage constraint observed".
	Usage TypeSet
}

// NewReference builds an ExpressionInfo wrapping a bare reference.
func NewReference(id ID, definingModule string) *ExpressionInfo {
	return &ExpressionInfo{
		Expr:           &Expression{Kind: ExprReference, Reference: id},
		DefiningModule: definingModule,
	}
}

// NewRequire builds an ExpressionInfo wrapping a require-import.
func NewRequire(modulePath, definingModule string) *ExpressionInfo {
	return &ExpressionInfo{
		Expr:           &Expression{Kind: ExprRequire, RequireModule: modulePath},
		DefiningModule: definingModule,
	}
}

// NewPrimitiveLiteral builds a literal expression for a non-container type.
func NewPrimitiveLiteral(t Type, value interface{}, definingModule string) *ExpressionInfo {
	return &ExpressionInfo{
		Expr:           &Expression{Kind: ExprLiteral, LuaType: t, Literal: value},
		FromLiteral:    true,
		DefiningModule: definingModule,
	}
}

// NewTableLiteral builds a literal expression referring to an interned table.
func NewTableLiteral(id ID, definingModule string) *ExpressionInfo {
	return &ExpressionInfo{
		Expr:           &Expression{Kind: ExprLiteral, LuaType: TypeTable, TableID: id},
		FromLiteral:    true,
		DefiningModule: definingModule,
	}
}

// NewFunctionLiteral builds a literal expression referring to an interned
// function.
func NewFunctionLiteral(id ID, definingModule string) *ExpressionInfo {
	return &ExpressionInfo{
		Expr:           &Expression{Kind: ExprLiteral, LuaType: TypeFunction, FunctionID: id},
		FromLiteral:    true,
		DefiningModule: definingModule,
	}
}

// NewMember builds a member-access expression (`base.member` / `base:member`).
func NewMember(base *ExpressionInfo, member string, indexer ast.Indexer, definingModule string) *ExpressionInfo {
	return &ExpressionInfo{
		Expr: &Expression{
			Kind:    ExprMember,
			Base:    base,
			Member:  member,
			Indexer: indexer,
		},
		DefiningModule: definingModule,
	}
}

// NewIndex builds an index-access expression (`base[index]`).
func NewIndex(base, index *ExpressionInfo, definingModule string) *ExpressionInfo {
	return &ExpressionInfo{
		Expr: &Expression{
			Kind:  ExprIndex,
			Base:  base,
			Index: index,
		},
		DefiningModule: definingModule,
	}
}

// NewOperation builds an operator expression, including the special `call`
// form (spec.md §3.2).
func NewOperation(op ast.Operator, args []*ExpressionInfo, definingModule string) *ExpressionInfo {
	return &ExpressionInfo{
		Expr: &Expression{
			Kind:      ExprOperation,
			Operator:  op,
			Arguments: args,
		},
		DefiningModule: definingModule,
	}
}

// OpCall is the synthetic operator used for call expressions (`f(...)`).
const OpCall ast.Operator = "call"

// LiteralKey canonicalizes a field key for `definitions` lookups per
// spec.md §3.3/GLOSSARY: strings are double-quoted with internal quotes
// escaped; numeric/identifier keys pass through as their textual form.
func LiteralKey(name string, isString bool) string {
	if !isString {
		return name
	}
	escaped := make([]byte, 0, len(name)+2)
	escaped = append(escaped, '"')
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '"' || c == '\\' {
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, c)
	}
	escaped = append(escaped, '"')
	return string(escaped)
}
