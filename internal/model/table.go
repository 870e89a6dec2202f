package model

// TableInfo is the interned record for one table (spec.md §3.3). Its
// lifetime equals the lifetime of the owning Interner.
type TableInfo struct {
	// LiteralFields holds the insertion-ordered key/value pairs of a table
	// constructor, used by finalizeTable to rebuild literal tables.
	LiteralFields []LiteralField

	// Definitions maps a canonical literalKey to every ExpressionInfo ever
	// assigned to that key, across all modules, in insertion order (spec.md
	// §5 "Ordering guarantee").
	Definitions map[string][]*ExpressionInfo

	// KeyOrder records the order keys were first assigned to Definitions,
	// across all modules, so the finalizer can rebuild class/table field
	// order deterministically even for keys with no LiteralFields entry.
	KeyOrder []string

	DefiningModule string

	ClassName    string
	OriginalName string

	EmitAsTable     bool
	IsLocalClass    bool
	IsEmptyClass    bool
	IsClosureClass  bool
	FromHiddenClass bool
	IsAtomUI        bool
	IsAtomUIBase    bool

	// ContainerID back-references the enclosing namespace table so nested
	// tables can bubble an implied-class creation up (spec.md §3.3).
	ContainerID ID

	// OriginalBase/OriginalDeriveName record a derive call's operands
	// (spec.md §4.1.1 rule 4) so the finalizer can emit `deriveName`.
	OriginalBase       string
	OriginalDeriveName string
}

// AddDefinition appends expr to the ordered definition list for key,
// preserving the insertion-order guarantee spec.md §5 requires.
func (t *TableInfo) AddDefinition(key string, expr *ExpressionInfo) {
	if _, exists := t.Definitions[key]; !exists {
		t.KeyOrder = append(t.KeyOrder, key)
	}
	t.Definitions[key] = append(t.Definitions[key], expr)
}

// FunctionInfo is the interned record for one function (spec.md §3.4).
type FunctionInfo struct {
	Parameters     []ID
	ParameterNames []string
	// ParameterTypes holds the accumulated inferred type set per parameter
	// slot, indexed the same as Parameters.
	ParameterTypes []TypeSet

	// ReturnTypes/ReturnExpressions are per-slot unions; slot i holds every
	// type / expression that ever contributed to return position i.
	ReturnTypes       []TypeSet
	ReturnExpressions [][]*ExpressionInfo

	// MinReturns is the minimum observed return width; slots at or beyond
	// this index are implicitly nullable (spec.md §4.1.5).
	MinReturns    int
	minReturnsSet bool

	// IdentifierExpression records where the function was assigned, used
	// for method/constructor detection (spec.md §3.4).
	IdentifierExpression *ExpressionInfo

	IsConstructor bool
	IsMethod      bool
}

// EnsureParameterSlot grows ParameterTypes to cover index i, returning the
// (possibly newly-allocated) TypeSet at that slot.
func (f *FunctionInfo) EnsureParameterSlot(i int) TypeSet {
	for len(f.ParameterTypes) <= i {
		f.ParameterTypes = append(f.ParameterTypes, TypeSet{})
	}
	if f.ParameterTypes[i] == nil {
		f.ParameterTypes[i] = TypeSet{}
	}
	return f.ParameterTypes[i]
}

// EnsureReturnSlot grows ReturnTypes/ReturnExpressions to cover index i.
func (f *FunctionInfo) EnsureReturnSlot(i int) {
	for len(f.ReturnTypes) <= i {
		f.ReturnTypes = append(f.ReturnTypes, TypeSet{})
		f.ReturnExpressions = append(f.ReturnExpressions, nil)
	}
	if f.ReturnTypes[i] == nil {
		f.ReturnTypes[i] = TypeSet{}
	}
}

// ObserveReturnWidth folds width into MinReturns per spec.md §4.1.5: "update
// minReturns to the lower of the current value and this return's width".
func (f *FunctionInfo) ObserveReturnWidth(width int) {
	if !f.minReturnsSet || width < f.MinReturns {
		f.MinReturns = width
		f.minReturnsSet = true
	}
}

// ApplyNilToSurplusSlots adds `nil` to every return slot at or beyond
// MinReturns, the final step of spec.md §4.1.5.
func (f *FunctionInfo) ApplyNilToSurplusSlots() {
	for i := f.MinReturns; i < len(f.ReturnTypes); i++ {
		if f.ReturnTypes[i] == nil {
			f.ReturnTypes[i] = TypeSet{}
		}
		f.ReturnTypes[i].Add(TypeNil)
	}
}
