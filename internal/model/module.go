package model

// ClassDecl is a class declared within one module, as recorded by
// addAssignment's reference rules (spec.md §3.5).
type ClassDecl struct {
	Name           string
	TableID        ID
	Base           string
	DeriveName     string
	Generated      bool
	DefiningModule string
}

// FunctionDecl is a global (non-method) function declared within one module.
type FunctionDecl struct {
	Name       string
	FunctionID ID
}

// RequireDecl records a require-assignment (spec.md §4.1.1 rule 2).
type RequireDecl struct {
	Name   string
	Module string
}

// FieldDecl records a field assignment resolved within one module.
type FieldDecl struct {
	TableID  ID
	Key      string
	Instance bool
	Value    *ExpressionInfo
}

// ResolvedModule is the per-module, pre-finalize output of resolveItems
// (spec.md §3.5).
type ResolvedModule struct {
	ID    string
	Scope interface{} // *scope.Scope; interface{} avoids an import cycle

	Classes   []ClassDecl
	Functions []FunctionDecl
	Requires  []RequireDecl
	Fields    []FieldDecl

	// Returns is the module-scope function's return vector, one TypeSet per
	// slot, or nil if the module returns nothing.
	Returns []TypeSet

	// SeenClasses records classes whose tables were merely touched by this
	// module (read, not declared) so empty skeletons can still be emitted
	// downstream (spec.md §4.1.6).
	SeenClasses map[string]struct{}
}

// AnalyzedModule is the public, finalized output for one module (spec.md
// §3.6). No internal "@"-ID may appear anywhere within it.
type AnalyzedModule struct {
	ID        string
	Classes   []AnalyzedClass
	Tables    []AnalyzedTable
	Functions []AnalyzedFunction
	Fields    []AnalyzedField
	Returns   []AnalyzedReturn
}

// AnalyzedClass is one finalized class (spec.md §3.6).
type AnalyzedClass struct {
	Name         string
	Base         string
	DeriveName   string
	Fields       []AnalyzedField
	LiteralFields []AnalyzedField
	StaticFields []AnalyzedField
	SetterFields []AnalyzedField

	Methods             []AnalyzedFunction
	Functions           []AnalyzedFunction
	Constructors        []AnalyzedFunction
	FunctionConstructors []AnalyzedFunction
	Overloads           []AnalyzedFunction

	IsEmpty bool
}

// AnalyzedTable is a finalized standalone table literal.
type AnalyzedTable struct {
	Name   string
	Fields []AnalyzedField
}

// AnalyzedFunction is a finalized function/method/constructor.
type AnalyzedFunction struct {
	Name        string
	IsMethod    bool
	Parameters  []AnalyzedParameter
	ReturnTypes []string // one entry per slot, "|"-joined union already rendered by caller if desired
}

// AnalyzedParameter is one finalized parameter.
type AnalyzedParameter struct {
	Name  string
	Types []string
}

// AnalyzedField is a finalized field/static-field/setter entry.
type AnalyzedField struct {
	Name     string
	Types    []string
	Instance bool
}

// AnalyzedReturn is one finalized module-return slot.
type AnalyzedReturn struct {
	Index   int
	Types   []string
	Literal *AnalyzedTable // populated only when the slot resolves to a single table literal
}
