package model

import (
	"fmt"
	"strings"

	"github.com/minio/highwayhash"
)

// ID is an opaque, interned identifier. Every ID that begins with "@" is
// internal and must be stripped or rewritten before emission (spec.md §3.1).
type ID string

// Reserved role IDs that are not namespaced by a sequence number.
const (
	SelfID      ID = "@self"
	InstanceID  ID = "@instance"
	LocalID     ID = "@local"
	FieldID     ID = "@field"
	GeneratedID ID = "@generated"
)

// IsTable reports whether id was allocated from the table namespace.
func (id ID) IsTable() bool { return strings.HasPrefix(string(id), "@table(") }

// IsFunction reports whether id was allocated from the function namespace.
func (id ID) IsFunction() bool { return strings.HasPrefix(string(id), "@function(") }

// IsParameter reports whether id names a parameter slot, including @self.
func (id ID) IsParameter() bool {
	return id == SelfID || strings.HasPrefix(string(id), "@parameter(")
}

// IsModule reports whether id names an imported module binding.
func (id ID) IsModule() bool { return strings.HasPrefix(string(id), "@module(") }

// IsLocal reports whether id names a plain local binding.
func (id ID) IsLocal() bool { return strings.HasPrefix(string(id), "@local(") }

// IsInternal reports whether id must never leak into public output.
func (id ID) IsInternal() bool { return strings.HasPrefix(string(id), "@") }

// ModuleID builds the reserved require-binding role ID for a module path.
func ModuleID(path string) ID { return ID("@module(" + path + ")") }

// namespace is a monotonically increasing counter for one ID kind, scoped to
// the lifetime of a single Interner (spec.md §3.1: "N is monotonically
// increasing per namespace within the lifetime of a context").
type namespace struct {
	next int
}

func (n *namespace) alloc() int {
	seq := n.next
	n.next++
	return seq
}

// Interner owns every TableInfo/FunctionInfo record for the lifetime of an
// analysis run. All cross-references between records are opaque IDs, never
// pointers, so cyclic structures (a table whose static field holds itself)
// never form a literal reference cycle in Go's object graph.
type Interner struct {
	tables    map[ID]*TableInfo
	functions map[ID]*FunctionInfo
	// locals holds the definition list for every plain (non-table,
	// non-function) local binding, the same insertion-ordered shape as
	// TableInfo.Definitions, so the resolver reads a local's definitions the
	// same way it reads a table key's.
	locals map[ID][]*ExpressionInfo

	tableNS     namespace
	functionNS  namespace
	parameterNS namespace
	localNS     namespace

	// paramOwner maps a parameter ID back to the function that declares it,
	// per spec.md §4.1.3's "reverse map".
	paramOwner map[ID]ID
}

// NewInterner creates an empty record store.
func NewInterner() *Interner {
	return &Interner{
		tables:     make(map[ID]*TableInfo),
		functions:  make(map[ID]*FunctionInfo),
		locals:     make(map[ID][]*ExpressionInfo),
		paramOwner: make(map[ID]ID),
	}
}

// NewLocal allocates an ID for a plain local binding (one that never
// resolves to a table or function literal on its own).
func (n *Interner) NewLocal(name string) ID {
	seq := n.localNS.alloc()
	return ID(fmt.Sprintf("@local(%d)%s", seq, labelSuffix(name)))
}

// AddLocalDefinition appends expr to id's definition list.
func (n *Interner) AddLocalDefinition(id ID, expr *ExpressionInfo) {
	n.locals[id] = append(n.locals[id], expr)
}

// LocalDefinitions returns every expression ever assigned to id.
func (n *Interner) LocalDefinitions(id ID) []*ExpressionInfo { return n.locals[id] }

// Locals returns every interned local ID and its definitions.
func (n *Interner) Locals() map[ID][]*ExpressionInfo { return n.locals }

// NewTable allocates and owns a fresh TableInfo, optionally named for
// readability (the `[name?]` suffix in spec.md §3.1).
func (n *Interner) NewTable(name string, definingModule string) (ID, *TableInfo) {
	seq := n.tableNS.alloc()
	id := ID(fmt.Sprintf("@table(%d)%s", seq, labelSuffix(name)))
	info := &TableInfo{
		Definitions:    make(map[string][]*ExpressionInfo),
		DefiningModule: definingModule,
	}
	n.tables[id] = info
	return id, info
}

// NewGeneratedTable allocates a synthetic table (derive result, closure-class
// self/publ binding, framework UI node) and appends a short content-addressed
// fingerprint to its debug label so unrelated synthetic tables never print
// identically, mirroring the teacher's graph.Hash content-fingerprint use.
func (n *Interner) NewGeneratedTable(seed, definingModule string) (ID, *TableInfo) {
	fp := fingerprint(seed)
	id, info := n.NewTable(seed+"~"+fp, definingModule)
	info.FromHiddenClass = true
	return id, info
}

// NewFunction allocates and owns a fresh FunctionInfo.
func (n *Interner) NewFunction(name string) (ID, *FunctionInfo) {
	seq := n.functionNS.alloc()
	id := ID(fmt.Sprintf("@function(%d)%s", seq, labelSuffix(name)))
	info := &FunctionInfo{}
	n.functions[id] = info
	return id, info
}

// NewParameter allocates a parameter ID and records its owning function for
// the reverse lookup spec.md §4.1.3 requires.
func (n *Interner) NewParameter(owner ID) ID {
	seq := n.parameterNS.alloc()
	id := ID(fmt.Sprintf("@parameter(%d)", seq))
	n.paramOwner[id] = owner
	return id
}

// Table returns the record for id, or nil if id does not name a table.
func (n *Interner) Table(id ID) *TableInfo { return n.tables[id] }

// Function returns the record for id, or nil if id does not name a function.
func (n *Interner) Function(id ID) *FunctionInfo { return n.functions[id] }

// FunctionOf returns the function that owns parameter id, if any.
func (n *Interner) FunctionOf(parameter ID) (ID, bool) {
	owner, ok := n.paramOwner[parameter]
	return owner, ok
}

// Tables returns every interned table ID, for passes that must visit all
// records (e.g. the finalizer's ancestor-pruning pass).
func (n *Interner) Tables() map[ID]*TableInfo { return n.tables }

// Functions returns every interned function ID.
func (n *Interner) Functions() map[ID]*FunctionInfo { return n.functions }

func labelSuffix(name string) string {
	if name == "" {
		return ""
	}
	return "[" + name + "]"
}

var fingerprintKey = []byte("LUATYPEANALYZERHIGHWAYHASHKEY000")

// fingerprint produces a short, stable hex fingerprint of seed using the same
// HighwayHash construction as the teacher's graph.Hash helper.
func fingerprint(seed string) string {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return "0"
	}
	_, _ = h.Write([]byte(seed))
	return fmt.Sprintf("%x", h.Sum64())[:8]
}
