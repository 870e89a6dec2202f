package context

import (
	"strings"

	"github.com/luatype/analyzer/ast"
	"github.com/luatype/analyzer/internal/detect"
	"github.com/luatype/analyzer/internal/model"
	"github.com/luatype/analyzer/internal/scope"
)

func functionLabel(identifier ast.Expression) string {
	switch n := identifier.(type) {
	case *ast.Identifier:
		return n.Name
	case *ast.MemberExpression:
		if base := functionLabel(n.Base); base != "" {
			return base + string(n.Indexer) + n.Member
		}
		return n.Member
	}
	return ""
}

// setFunctionInfo implements spec.md §4.1.3: interns a function, injects a
// synthetic self parameter for colon-indexed methods, detects the
// closure-class idiom and `.new` constructors, applies parameter name
// heuristics, and walks the function body.
func (c *Context) setFunctionInfo(s *scope.Scope, identifier ast.Expression, decl *ast.FunctionDeclaration) model.ID {
	name := functionLabel(identifier)
	fnID, fn := c.Interner.NewFunction(name)
	fnScope := s.Child(scope.Function, name)
	fnScope.FunctionID = fnID

	member, isMemberTarget := identifier.(*ast.MemberExpression)
	isMethod := isMemberTarget && member.Indexer == ast.Colon
	fn.IsMethod = isMethod

	if isMethod {
		fn.Parameters = append(fn.Parameters, model.SelfID)
		fn.ParameterNames = append(fn.ParameterNames, "self")
		fnScope.Declare("self", model.SelfID)
	}
	for _, p := range decl.Parameters {
		paramID := c.Interner.NewParameter(fnID)
		fn.Parameters = append(fn.Parameters, paramID)
		fn.ParameterNames = append(fn.ParameterNames, p.Name)
		fnScope.Declare(p.Name, paramID)
	}
	applyParameterNameHeuristics(fn)

	// Closure-class detection runs first; when it fires, the constructor
	// and return set come from the synthetic class table and ordinary
	// `.new` constructor detection below is suppressed (spec.md §4.1.3).
	closureFired := c.detectClosureClass(fnScope, fn, decl)
	if !closureFired && isMemberTarget && member.Member == "new" {
		c.detectConstructor(s, member, fn)
	}

	savedModule := c.currentModule
	c.buildFunctionBody(fnScope, decl.Body)
	c.currentModule = savedModule
	fn.ApplyNilToSurplusSlots()

	return fnID
}

// detectClosureClass implements spec.md §4.4's closure-class idiom: a
// `self`/`publ` local bound to `{}` or `Base.new(...)`, with at least one
// subsequent function declaration on that binding and no suppressing
// `setmetatable` call.
func (c *Context) detectClosureClass(fnScope *scope.Scope, fn *model.FunctionInfo, decl *ast.FunctionDeclaration) bool {
	binding, ok := detect.ClosureClassBinding(decl.Body)
	if !ok {
		return false
	}
	classID, info := c.Interner.NewGeneratedTable(binding, c.currentModule)
	info.IsClosureClass = true
	info.IsLocalClass = true
	fnScope.Declare(binding, classID)
	fn.IsConstructor = true
	return true
}

// detectConstructor implements spec.md §4.1.3's `.new` constructor rule: a
// member-call `Base.new(...)` marks the function a constructor and pushes
// the base class into the return set, promoting a plain table to an
// implied class when it has none yet.
func (c *Context) detectConstructor(s *scope.Scope, member *ast.MemberExpression, fn *model.FunctionInfo) {
	baseID, ok := c.resolveSingleTable(s, member.Base)
	if !ok {
		return
	}
	table := c.Interner.Table(baseID)
	if table == nil {
		return
	}
	if table.ClassName == "" && !table.EmitAsTable {
		if label, ok := identifierLabel(member.Base); ok {
			table.ClassName = label
			c.registerClass(label, baseID)
		}
	}
	fn.IsConstructor = true
	fn.EnsureReturnSlot(0)
	fn.ReturnTypes[0] = fn.ReturnTypes[0].Union(model.NewTypeSet(model.Type(baseID)))
}

func identifierLabel(e ast.Expression) (string, bool) {
	switch n := e.(type) {
	case *ast.Identifier:
		return n.Name, true
	case *ast.MemberExpression:
		return n.Member, true
	}
	return "", false
}

// applyParameterNameHeuristics implements spec.md §4.1.3's optional
// parameter-name type heuristics.
func applyParameterNameHeuristics(fn *model.FunctionInfo) {
	geometryNames := map[string]bool{"x": true, "y": true, "z": true, "w": true, "h": true, "width": true, "height": true}
	colorNames := map[string]bool{"r": true, "g": true, "b": true, "a": true}

	geometryCount, colorCount := 0, 0
	hasDx, hasDy := false, false
	for _, name := range fn.ParameterNames {
		lower := strings.ToLower(name)
		if geometryNames[lower] {
			geometryCount++
		}
		if colorNames[lower] {
			colorCount++
		}
		if lower == "dx" {
			hasDx = true
		}
		if lower == "dy" {
			hasDy = true
		}
	}
	numericNames := map[string]bool{}
	if geometryCount >= 2 {
		for name := range geometryNames {
			numericNames[name] = true
		}
	}
	if colorCount >= 3 {
		for name := range colorNames {
			numericNames[name] = true
		}
	}
	if hasDx && hasDy {
		numericNames["dx"] = true
		numericNames["dy"] = true
	}

	for i, name := range fn.ParameterNames {
		lower := strings.ToLower(name)
		if strings.HasPrefix(lower, "do") {
			continue
		}
		var t model.Type
		switch {
		case numericNames[lower]:
			t = model.TypeNumber
		case strings.HasPrefix(name, "is") && len(name) > 2:
			t = model.TypeBoolean
		case hasUpperSuffix(name, "STR", "NAME", "TITLE"):
			t = model.TypeString
		case hasUpperPrefix(name, "NUM") || hasUpperSuffix(name, "NUM"):
			t = model.TypeNumber
		case lower == "target" || isParamOrArgN(lower):
			t = model.TypeUnknown
		default:
			continue
		}
		fn.EnsureParameterSlot(i)
		fn.ParameterTypes[i] = fn.ParameterTypes[i].Union(model.NewTypeSet(t))
	}
}

func hasUpperSuffix(name string, suffixes ...string) bool {
	upper := strings.ToUpper(name)
	for _, suf := range suffixes {
		if strings.HasSuffix(upper, suf) {
			return true
		}
	}
	return false
}

func hasUpperPrefix(name string, prefixes ...string) bool {
	upper := strings.ToUpper(name)
	for _, pre := range prefixes {
		if strings.HasPrefix(upper, pre) {
			return true
		}
	}
	return false
}

func isParamOrArgN(lower string) bool {
	for _, prefix := range []string{"param", "arg"} {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		rest := lower[len(prefix):]
		if rest == "" {
			continue
		}
		allDigits := true
		for _, r := range rest {
			if r < '0' || r > '9' {
				allDigits = false
				break
			}
		}
		if allDigits {
			return true
		}
	}
	return false
}
