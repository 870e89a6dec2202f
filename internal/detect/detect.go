// Package detect implements the pattern detectors of spec.md §4.4: pure
// predicates over already-lowered AST shapes that recognize the source
// language's class idioms (derive-call, closure-class, framework UI nodes,
// setmetatable instances).
package detect

import "github.com/luatype/analyzer/ast"

// DeriveCall reports whether a call's base/arguments form `X:derive("T")`
// (spec.md §4.4 "Derive call"): a colon-indexed call to `derive` with a
// single string-literal argument, on an identifier base.
func DeriveCall(base ast.Expression, args []ast.Expression) (baseName, deriveName string, ok bool) {
	member, ok := base.(*ast.MemberExpression)
	if !ok || member.Indexer != ast.Colon || member.Member != "derive" {
		return "", "", false
	}
	if len(args) != 1 {
		return "", "", false
	}
	str, ok := args[0].(*ast.StringLiteral)
	if !ok {
		return "", "", false
	}
	name, ok := identifierName(member.Base)
	if !ok {
		return "", "", false
	}
	return name, str.Value, true
}

func identifierName(e ast.Expression) (string, bool) {
	id, ok := e.(*ast.Identifier)
	if !ok {
		return "", false
	}
	return id.Name, true
}

// ClosureClassBinding scans a function body for the closure-class idiom
// (spec.md §4.4): a local `self = {}` / `self = Base.new(...)` / `publ = {}`
// binding followed by at least one subsequent function declaration that
// targets that binding, and not suppressed by a `setmetatable` call on it.
func ClosureClassBinding(body []ast.Statement) (binding string, ok bool) {
	hasMethod := false
	suppressed := false
	for _, stmt := range body {
		switch st := stmt.(type) {
		case *ast.LocalStatement:
			for i, ident := range st.Names {
				if ident.Name != "self" && ident.Name != "publ" {
					continue
				}
				if i >= len(st.Init) {
					continue
				}
				if isClosureInit(st.Init[i]) {
					binding = ident.Name
				}
			}
		case *ast.FunctionDeclaration:
			if binding != "" && targetsBinding(st.Identifier, binding) {
				hasMethod = true
			}
		case *ast.AssignmentStatement:
			for i, v := range st.Variables {
				if binding == "" || !targetsBinding(v, binding) {
					continue
				}
				if i < len(st.Init) {
					if _, isFn := st.Init[i].(*ast.FunctionDeclaration); isFn {
						hasMethod = true
					}
				}
			}
		case *ast.CallStatement:
			if target, _, ok := SetMetatableCall(callParts(st.Expression)); ok {
				if id, isID := target.(*ast.Identifier); isID && id.Name == binding {
					suppressed = true
				}
			}
		}
	}
	if binding != "" && hasMethod && !suppressed {
		return binding, true
	}
	return "", false
}

func callParts(e ast.Expression) (ast.Expression, []ast.Expression) {
	switch c := e.(type) {
	case *ast.CallExpression:
		return c.Base, c.Arguments
	case *ast.StringCallExpression:
		return c.Base, []ast.Expression{c.Literal}
	case *ast.TableCallExpression:
		return c.Base, []ast.Expression{c.Table}
	}
	return nil, nil
}

func isClosureInit(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.TableConstructorExpression:
		return len(n.Fields) == 0
	case *ast.CallExpression:
		if m, ok := n.Base.(*ast.MemberExpression); ok && m.Member == "new" {
			return true
		}
	}
	return false
}

func targetsBinding(e ast.Expression, binding string) bool {
	m, ok := e.(*ast.MemberExpression)
	if !ok {
		return false
	}
	id, ok := m.Base.(*ast.Identifier)
	return ok && id.Name == binding
}

// FrameworkUIBase reports whether a call's base/arguments form
// `A.__call({ _ATOM_UI_CLASS = X, ... })` (spec.md §4.4 "Framework base/child
// UI"), returning the declared class name X.
func FrameworkUIBase(base ast.Expression, args []ast.Expression) (className string, ok bool) {
	m, ok := base.(*ast.MemberExpression)
	if !ok || m.Member != "__call" {
		return "", false
	}
	if len(args) != 1 {
		return "", false
	}
	t, ok := args[0].(*ast.TableConstructorExpression)
	if !ok {
		return "", false
	}
	for _, f := range t.Fields {
		if f.Kind != ast.TableFieldKeyString {
			continue
		}
		keyID, ok := f.Key.(*ast.Identifier)
		if !ok || keyID.Name != "_ATOM_UI_CLASS" {
			continue
		}
		if str, ok := f.Value.(*ast.StringLiteral); ok {
			return str.Value, true
		}
	}
	return "", false
}

// FrameworkUIChild reports whether a call's base/arguments form
// `Parent({...})` where Parent names a previously-tagged UI table (spec.md
// §4.4), returning the parent's name.
func FrameworkUIChild(base ast.Expression, args []ast.Expression, isUITagged func(name string) bool) (parentName string, ok bool) {
	id, ok := base.(*ast.Identifier)
	if !ok {
		return "", false
	}
	if len(args) != 1 {
		return "", false
	}
	if _, ok := args[0].(*ast.TableConstructorExpression); !ok {
		return "", false
	}
	if !isUITagged(id.Name) {
		return "", false
	}
	return id.Name, true
}

// SetMetatableCall reports whether a call's base/arguments form
// `setmetatable(X, meta)` (spec.md §4.1.2/§4.4), returning the two argument
// expressions.
func SetMetatableCall(base ast.Expression, args []ast.Expression) (target, meta ast.Expression, ok bool) {
	if base == nil {
		return nil, nil, false
	}
	id, ok := base.(*ast.Identifier)
	if !ok || id.Name != "setmetatable" || len(args) != 2 {
		return nil, nil, false
	}
	return args[0], args[1], true
}
