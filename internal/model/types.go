package model

// Type is a public, emittable type name: one of the reserved primitives or
// an opaque class name (spec.md §3.6). Internal "@..."-IDs must never reach
// a Type value that escapes the finalizer.
type Type string

const (
	TypeNil      Type = "nil"
	TypeBoolean  Type = "boolean"
	TypeString   Type = "string"
	TypeNumber   Type = "number"
	TypeTable    Type = "table"
	TypeFunction Type = "function"
	TypeUnknown  Type = "unknown"
	// TypeTrue/TypeFalse mark a value known to be exactly true or false. The
	// boolean collapse described in spec.md §4.2 / §8 ("Boolean collapse")
	// folds the pair into TypeBoolean; the finalizer renders either one as
	// boolean.
	TypeTrue  Type = "true"
	TypeFalse Type = "false"
)

// usage masks restrict a TypeSet to the 5-element universe
// {boolean,function,number,string,table}; nil/unknown are never masked out
// because usage constraints only ever describe how a value is *used*, and
// nil/unknown are not structural shapes.
var usageUniverse = TypeSet{
	TypeBoolean:  {},
	TypeFunction: {},
	TypeNumber:   {},
	TypeString:   {},
	TypeTable:    {},
}

// TypeSet is an unordered set of Types, represented as a map for O(1)
// membership and union. A nil/empty TypeSet means "no information" (spec.md
// §9: "empty ≡ absent information").
type TypeSet map[Type]struct{}

// NewTypeSet builds a TypeSet from the given members.
func NewTypeSet(types ...Type) TypeSet {
	s := make(TypeSet, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

// Clone returns an independent copy.
func (s TypeSet) Clone() TypeSet {
	out := make(TypeSet, len(s))
	for t := range s {
		out[t] = struct{}{}
	}
	return out
}

// Union returns a new set containing every member of s and other.
func (s TypeSet) Union(other TypeSet) TypeSet {
	out := s.Clone()
	for t := range other {
		out[t] = struct{}{}
	}
	return out
}

// Add inserts t in place and returns s for chaining.
func (s TypeSet) Add(t Type) TypeSet {
	s[t] = struct{}{}
	return s
}

// Has reports membership.
func (s TypeSet) Has(t Type) bool {
	_, ok := s[t]
	return ok
}

// Len returns the number of distinct types.
func (s TypeSet) Len() int { return len(s) }

// Equal reports whether s and other contain exactly the same types.
func (s TypeSet) Equal(other TypeSet) bool {
	if len(s) != len(other) {
		return false
	}
	for t := range s {
		if !other.Has(t) {
			return false
		}
	}
	return true
}

// Subset reports whether every member of s is also a member of other.
func (s TypeSet) Subset(other TypeSet) bool {
	for t := range s {
		if !other.Has(t) {
			return false
		}
	}
	return true
}

// Narrow applies a usage mask per spec.md §4.1.4/§4.2: the result is
// restricted to types permitted by mask, unless that would empty the set,
// in which case the original set passes through unchanged (spec.md §8,
// "Narrowing monotonicity").
func (s TypeSet) Narrow(mask TypeSet) TypeSet {
	if len(s) <= 1 || mask == nil || mask.Equal(usageUniverse) {
		return s
	}
	narrowed := make(TypeSet)
	for t := range s {
		// nil/unknown are never eliminated by a structural usage mask.
		if t == TypeNil || t == TypeUnknown || mask.Has(t) {
			narrowed[t] = struct{}{}
		}
	}
	if len(narrowed) == 0 {
		return s
	}
	return narrowed
}

// CollapseBoolean folds {true,false} down to {boolean} in place, per
// spec.md §4.2's final step and §8's "Boolean collapse" property.
func (s TypeSet) CollapseBoolean() TypeSet {
	if s.Has(TypeTrue) && s.Has(TypeFalse) {
		delete(s, TypeTrue)
		delete(s, TypeFalse)
		s[TypeBoolean] = struct{}{}
	}
	return s
}

// IsLiteralTruthy reports whether s is known, from literal folding alone, to
// always be truthy (anything except nil/false).
func (s TypeSet) IsLiteralTruthy() (truthy bool, known bool) {
	if len(s) != 1 {
		return false, false
	}
	for t := range s {
		switch t {
		case TypeNil, TypeFalse:
			return false, true
		case TypeBoolean, TypeUnknown:
			return false, false
		default:
			return true, true
		}
	}
	return false, false
}

// ConcatMask restricts a concatenand to {string,number}.
func ConcatMask() TypeSet { return NewTypeSet(TypeString, TypeNumber) }

// IndexOrLenMask restricts an indexed/length operand to {string,table}.
func IndexOrLenMask() TypeSet { return NewTypeSet(TypeString, TypeTable) }

// IndexAssignMask restricts an index-assigned base to {table}.
func IndexAssignMask() TypeSet { return NewTypeSet(TypeTable) }

// ArithmeticMask restricts an arithmetic operand / loop counter to {number}.
func ArithmeticMask() TypeSet { return NewTypeSet(TypeNumber) }

// CallMask restricts a called expression to {function}.
func CallMask() TypeSet { return NewTypeSet(TypeFunction) }
