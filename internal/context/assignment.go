package context

import (
	"strconv"
	"strings"

	"github.com/luatype/analyzer/ast"
	"github.com/luatype/analyzer/internal/detect"
	"github.com/luatype/analyzer/internal/model"
	"github.com/luatype/analyzer/internal/scope"
)

// addAssignment implements spec.md §4.1.1's dispatch over an assignment's
// left-hand side shape. Exactly one of rawRHS/prebuilt is non-nil: rawRHS
// lets the call-shape detectors (derive, framework UI) inspect the original
// AST before it is lowered; prebuilt is used for multi-return tail slots
// that have no corresponding source expression of their own.
func (c *Context) addAssignment(s *scope.Scope, lhs ast.Expression, rawRHS ast.Expression, prebuilt *model.ExpressionInfo, isLocal bool) {
	switch n := lhs.(type) {
	case *ast.Identifier:
		c.addReferenceAssignment(s, n, rawRHS, prebuilt, isLocal)
	case *ast.IndexExpression:
		c.addIndexAssignment(s, n, rawRHS, prebuilt)
	case *ast.MemberExpression:
		c.addMemberAssignment(s, n, rawRHS, prebuilt)
	}
}

// extractCallShape normalizes the three call-expression AST shapes into a
// uniform (base, arguments) pair for the pattern detectors.
func (c *Context) extractCallShape(e ast.Expression) (base ast.Expression, args []ast.Expression, ok bool) {
	switch n := e.(type) {
	case *ast.CallExpression:
		return n.Base, n.Arguments, true
	case *ast.StringCallExpression:
		return n.Base, []ast.Expression{n.Literal}, true
	case *ast.TableCallExpression:
		return n.Base, []ast.Expression{n.Table}, true
	}
	return nil, nil, false
}

// classShapeResult is one matched class-idiom detector result (spec.md
// §4.4).
type classShapeResult struct {
	tableID    model.ID
	info       *model.TableInfo
	base       string
	deriveName string
}

// matchClassShape recognizes the derive-call and framework-UI idioms off a
// call's (base, arguments) pair, allocating a fresh synthetic class table
// when one matches. label seeds the generated table's debug name.
func (c *Context) matchClassShape(label string, base ast.Expression, args []ast.Expression) (*classShapeResult, bool) {
	if baseName, deriveName, ok := detect.DeriveCall(base, args); ok {
		classID, info := c.Interner.NewGeneratedTable(label, c.currentModule)
		info.OriginalBase = baseName
		info.OriginalDeriveName = deriveName
		return &classShapeResult{tableID: classID, info: info, base: baseName, deriveName: deriveName}, true
	}
	if className, ok := detect.FrameworkUIBase(base, args); ok {
		classID, info := c.Interner.NewGeneratedTable(className, c.currentModule)
		info.ClassName = className
		info.IsAtomUI = true
		info.IsAtomUIBase = true
		c.injectFrameworkUIFields(classID, info)
		return &classShapeResult{tableID: classID, info: info}, true
	}
	if parentName, ok := detect.FrameworkUIChild(base, args, c.isUITagged); ok {
		classID, info := c.Interner.NewGeneratedTable(label, c.currentModule)
		info.IsAtomUI = true
		info.OriginalBase = parentName
		c.injectFrameworkUIFields(classID, info)
		return &classShapeResult{tableID: classID, info: info, base: parentName}, true
	}
	return nil, false
}

// isUITagged reports whether a previously-registered class is a framework
// UI node, used by detect.FrameworkUIChild.
func (c *Context) isUITagged(name string) bool {
	id, ok := c.ClassTable(name)
	if !ok {
		return false
	}
	t := c.Interner.Table(id)
	return t != nil && t.IsAtomUI
}

// injectFrameworkUIFields adds the javaObj/children/super fields and the
// overload(args: table): T method spec.md §4.4 requires of a framework UI
// class table.
func (c *Context) injectFrameworkUIFields(tableID model.ID, info *model.TableInfo) {
	mod := c.currentModule
	info.AddDefinition(model.LiteralKey("javaObj", false), model.NewPrimitiveLiteral(model.TypeUnknown, nil, mod))
	info.AddDefinition(model.LiteralKey("children", false), model.NewPrimitiveLiteral(model.TypeTable, nil, mod))
	info.AddDefinition(model.LiteralKey("super", false), model.NewPrimitiveLiteral(model.TypeUnknown, nil, mod))

	fnID, fn := c.Interner.NewFunction("overload")
	fn.Parameters = []model.ID{c.Interner.NewParameter(fnID)}
	fn.ParameterNames = []string{"args"}
	fn.ParameterTypes = []model.TypeSet{model.NewTypeSet(model.TypeTable)}
	fn.ReturnTypes = []model.TypeSet{model.NewTypeSet(model.Type(tableID))}
	info.AddDefinition(model.LiteralKey("overload", false), model.NewFunctionLiteral(fnID, mod))
}

// addReferenceAssignment implements spec.md §4.1.1's reference rules.
func (c *Context) addReferenceAssignment(s *scope.Scope, n *ast.Identifier, rawRHS ast.Expression, prebuilt *model.ExpressionInfo, isLocal bool) {
	if prebuilt == nil {
		if base, args, ok := c.extractCallShape(rawRHS); ok {
			if shape, ok := c.matchClassShape(n.Name, base, args); ok {
				if shape.info.ClassName == "" {
					shape.info.ClassName = n.Name
				}
				s.Declare(n.Name, shape.tableID)
				c.registerClass(shape.info.ClassName, shape.tableID)
				s.Module().AddItem(scope.Item{Kind: scope.ItemClass, Class: model.ClassDecl{
					Name: shape.info.ClassName, TableID: shape.tableID, Base: shape.base, DeriveName: shape.deriveName,
					Generated: true, DefiningModule: c.currentModule,
				}})
				return
			}
		}
	}
	rhs := prebuilt
	if rhs == nil {
		rhs = c.buildExpression(s, rawRHS)
	}
	c.applyReferenceAssignment(s, n, rhs, isLocal)
}

func (c *Context) applyReferenceAssignment(s *scope.Scope, n *ast.Identifier, rhs *model.ExpressionInfo, isLocal bool) {
	// Rule 1: inside a function, an assignment to the closure-class
	// self/publ binding is dropped, so the binding keeps its synthetic class
	// table. Other references inside a function are not filtered here; they
	// go through the rules below like module-level ones.
	if s.IsFunctionScope() && (n.Name == "self" || n.Name == "publ") {
		if id, ok := s.ResolveLocal(n.Name); ok && id.IsTable() {
			return
		}
	}

	// Rule 2: require-assignment at module level.
	if s.Kind == scope.Module && rhs.Expr != nil && rhs.Expr.Kind == model.ExprRequire {
		id := model.ModuleID(rhs.Expr.RequireModule)
		s.Declare(n.Name, id)
		s.Module().AddItem(scope.Item{Kind: scope.ItemRequire, Require: model.RequireDecl{Name: n.Name, Module: rhs.Expr.RequireModule}})
		return
	}

	// Rule 3: global (non-local) function definition.
	_, hasLocalBinding := s.ResolveLocal(n.Name)
	if !hasLocalBinding && rhs.Expr != nil && rhs.Expr.Kind == model.ExprLiteral && rhs.Expr.LuaType == model.TypeFunction {
		s.Declare(n.Name, rhs.Expr.FunctionID)
		s.Module().AddItem(scope.Item{Kind: scope.ItemFunction, Function: model.FunctionDecl{Name: n.Name, FunctionID: rhs.Expr.FunctionID}})
		return
	}

	// Rule 5: named global where RHS resolves to a single @table, after
	// unwrapping `X = X or {}`. Spec.md §4.1.1 rule 5 scopes this to a
	// "Named global" — a local binding stays a plain table value (spec.md
	// §8 scenario: `local t = {1,2,3}; return t` must not become a class).
	if !isLocal {
		if tableID, ok := c.singleTableTarget(s, n.Name, rhs); ok {
			table := c.Interner.Table(tableID)
			if table.ClassName != "" && table.ClassName != n.Name {
				// Already named for a different class: when the RHS is not a
				// literal or operation, degrade to a field assignment rather
				// than rename it; otherwise the table is renamed below.
				if rhs.Expr == nil || (rhs.Expr.Kind != model.ExprLiteral && rhs.Expr.Kind != model.ExprOperation) {
					c.addField(s, tableID, model.LiteralKey(n.Name, false), false, "", nil, rhs)
					return
				}
			}
			table.ClassName = n.Name
			s.Declare(n.Name, tableID)
			c.registerClass(n.Name, tableID)
			s.Module().AddItem(scope.Item{Kind: scope.ItemClass, Class: model.ClassDecl{Name: n.Name, TableID: tableID, DefiningModule: c.currentModule}})
			return
		}
	}

	// Rule 6: named global where RHS resolves to a single @function.
	if fnID, ok := c.singleFunctionID(rhs); ok {
		s.Declare(n.Name, fnID)
		s.Module().AddItem(scope.Item{Kind: scope.ItemFunction, Function: model.FunctionDecl{Name: n.Name, FunctionID: fnID}})
		return
	}

	// Fallback: plain value assignment to a local or global slot.
	id, existed := s.Resolve(n.Name)
	if !existed {
		id = c.Interner.NewLocal(n.Name)
		s.Declare(n.Name, id)
	}
	if !id.IsTable() && !id.IsFunction() {
		c.Interner.AddLocalDefinition(id, rhs)
	}
}

// singleTableTarget implements spec.md §4.1.1 rule 5's `X = X or {}`
// unwrapping before checking for a single resolvable @table.
func (c *Context) singleTableTarget(s *scope.Scope, name string, rhs *model.ExpressionInfo) (model.ID, bool) {
	target := rhs
	if rhs.Expr != nil && rhs.Expr.Kind == model.ExprOperation && rhs.Expr.Operator == ast.OpOr && len(rhs.Expr.Arguments) == 2 {
		lhs := rhs.Expr.Arguments[0]
		if lhs.Expr != nil && lhs.Expr.Kind == model.ExprReference {
			if existing, ok := s.Resolve(name); ok && lhs.Expr.Reference == existing {
				target = rhs.Expr.Arguments[1]
			}
		}
	}
	if target.Expr != nil && target.Expr.Kind == model.ExprLiteral && target.Expr.LuaType == model.TypeTable {
		return target.Expr.TableID, true
	}
	types := c.Resolve(target)
	if types.Len() == 1 {
		for t := range types {
			if model.ID(t).IsTable() {
				return model.ID(t), true
			}
		}
	}
	return "", false
}

// addIndexAssignment implements spec.md §4.1.1's index rule: resolve base to
// exactly one type and index to a literal; add a field using the canonical
// key.
func (c *Context) addIndexAssignment(s *scope.Scope, n *ast.IndexExpression, rawRHS ast.Expression, prebuilt *model.ExpressionInfo) {
	base := c.buildExpression(s, n.Base)
	c.addIndexAssignUsage(base)
	index := c.buildExpression(s, n.Index)
	lit, ok := c.ResolveToLiteral(index)
	if !ok {
		return
	}
	key := literalFieldKey(lit)
	if key == "" {
		return
	}
	types := c.Resolve(base)
	if types.Len() != 1 {
		return
	}
	for t := range types {
		id := model.ID(t)
		if !id.IsTable() {
			return
		}
		c.addField(s, id, key, false, "", rawRHS, prebuilt)
	}
}

func literalFieldKey(v interface{}) string {
	switch x := v.(type) {
	case string:
		return model.LiteralKey(x, true)
	case float64:
		return model.LiteralKey(strconv.FormatFloat(x, 'g', -1, 64), false)
	case bool:
		if x {
			return "true"
		}
		return "false"
	}
	return ""
}

// addMemberAssignment implements spec.md §4.1.1's member rule: resolve base
// to exactly one type after filtering out @self/@instance, ignore
// `__index` (handled by setmetatable), attach originalName to any assigned
// table, and add the field flagging instance when the base resolved through
// an instance.
func (c *Context) addMemberAssignment(s *scope.Scope, n *ast.MemberExpression, rawRHS ast.Expression, prebuilt *model.ExpressionInfo) {
	base := c.buildExpression(s, n.Base)
	baseTypes := c.Resolve(base)
	filtered := model.TypeSet{}
	instance := base.Instance
	for t := range baseTypes {
		if model.ID(t) == model.SelfID || model.ID(t) == model.InstanceID {
			instance = true
			continue
		}
		filtered[t] = struct{}{}
	}
	if filtered.Len() != 1 {
		return
	}
	if n.Member == "__index" {
		return
	}
	var tableID model.ID
	for t := range filtered {
		tableID = model.ID(t)
	}
	if !tableID.IsTable() {
		return
	}
	originalName, _ := dottedPath(n)
	key := model.LiteralKey(n.Member, false)
	c.addField(s, tableID, key, instance, originalName, rawRHS, prebuilt)
}

func dottedPath(n *ast.MemberExpression) (string, bool) {
	var parts []string
	var walk func(e ast.Expression) bool
	walk = func(e ast.Expression) bool {
		switch x := e.(type) {
		case *ast.Identifier:
			parts = append([]string{x.Name}, parts...)
			return true
		case *ast.MemberExpression:
			if !walk(x.Base) {
				return false
			}
			parts = append(parts, x.Member)
			return true
		}
		return false
	}
	if !walk(n) {
		return "", false
	}
	return strings.Join(parts, "."), true
}

// addField implements spec.md §4.1.1's addField: records key on tableID's
// Definitions, propagates the seenClass partial, and detects the derive-call
// and framework-UI idioms at field-assignment granularity. Exactly one of
// rawRHS/prebuilt is non-nil, as in addAssignment.
func (c *Context) addField(s *scope.Scope, tableID model.ID, key string, instance bool, originalName string, rawRHS ast.Expression, prebuilt *model.ExpressionInfo) {
	table := c.Interner.Table(tableID)
	if table == nil {
		return
	}

	var value *model.ExpressionInfo
	if prebuilt != nil {
		value = prebuilt
	} else {
		if base, args, ok := c.extractCallShape(rawRHS); ok {
			if shape, ok := c.matchClassShape(key, base, args); ok {
				shape.info.ContainerID = tableID
				if shape.info.ClassName != "" {
					c.registerClass(shape.info.ClassName, shape.tableID)
				}
				value = model.NewTableLiteral(shape.tableID, c.currentModule)
			}
		}
		if value == nil {
			value = c.buildExpression(s, rawRHS)
		}
	}
	c.addFieldValue(s, tableID, key, instance, originalName, value)
}

func (c *Context) addFieldValue(s *scope.Scope, tableID model.ID, key string, instance bool, originalName string, value *model.ExpressionInfo) {
	table := c.Interner.Table(tableID)
	if table == nil {
		return
	}

	// Function assigned into a non-class table that is itself contained by
	// a class: synthesize a nested class so the method attaches to a named
	// entity instead of an anonymous table (spec.md §4.1.1).
	if fn := c.functionFromValue(value); fn != nil && table.ClassName == "" && table.ContainerID != "" {
		nestedID, nestedInfo := c.Interner.NewGeneratedTable(key, c.currentModule)
		nestedInfo.ClassName = key
		nestedInfo.ContainerID = table.ContainerID
		nestedInfo.AddDefinition(key, value)
		fn.IdentifierExpression = value
		c.registerClass(key, nestedID)
		value = model.NewTableLiteral(nestedID, c.currentModule)
	}

	value.Instance = instance
	table.AddDefinition(key, value)
	if fn := c.functionFromValue(value); fn != nil {
		fn.IdentifierExpression = value
	}
	if originalName != "" && value.Expr != nil && value.Expr.Kind == model.ExprLiteral && value.Expr.LuaType == model.TypeTable {
		if t := c.Interner.Table(value.Expr.TableID); t != nil && t.OriginalName == "" {
			t.OriginalName = originalName
		}
	}

	if table.ClassName != "" {
		s.Module().AddItem(scope.Item{Kind: scope.ItemSeenClass, SeenClass: table.ClassName})
	} else if s.Kind == scope.Module {
		s.Module().AddItem(scope.Item{Kind: scope.ItemField, Field: model.FieldDecl{TableID: tableID, Key: key, Instance: instance, Value: value}})
	}
}

func (c *Context) functionFromValue(value *model.ExpressionInfo) *model.FunctionInfo {
	if value == nil || value.Expr == nil || value.Expr.Kind != model.ExprLiteral || value.Expr.LuaType != model.TypeFunction {
		return nil
	}
	return c.Interner.Function(value.Expr.FunctionID)
}
