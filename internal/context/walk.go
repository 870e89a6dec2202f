package context

import (
	"github.com/luatype/analyzer/ast"
	"github.com/luatype/analyzer/internal/model"
	"github.com/luatype/analyzer/internal/scope"
)

// IngestModule implements spec.md §4.1: walk chunk's statements into s,
// resolve its scope into a ResolvedModule, and record a DuplicateModuleID
// diagnostic (spec.md §7) instead of re-ingesting a module ID twice.
func (c *Context) IngestModule(moduleID string, chunk *ast.Chunk) *model.ResolvedModule {
	if _, exists := c.moduleScopes[moduleID]; exists {
		c.diagnose(DiagDuplicateModuleID, "module ingested more than once, keeping the first: "+moduleID)
		return nil
	}
	savedModule := c.currentModule
	c.currentModule = moduleID

	s := scope.New(moduleID)
	c.moduleScopes[moduleID] = s
	c.walkStatements(s, chunk.Body)
	resolved := c.resolveItems(moduleID, s)

	c.currentModule = savedModule
	return resolved
}

// buildFunctionBody walks a function's body statements within its own
// scope, used by setFunctionInfo.
func (c *Context) buildFunctionBody(s *scope.Scope, body []ast.Statement) {
	c.walkStatements(s, body)
}

func (c *Context) walkStatements(s *scope.Scope, stmts []ast.Statement) {
	for _, stmt := range stmts {
		c.walkStatement(s, stmt)
	}
}

func (c *Context) walkStatement(s *scope.Scope, stmt ast.Statement) {
	switch n := stmt.(type) {
	case *ast.LocalStatement:
		c.walkLocal(s, n)
	case *ast.AssignmentStatement:
		c.walkAssignment(s, n)
	case *ast.FunctionDeclaration:
		c.walkFunctionDeclarationStatement(s, n)
	case *ast.CallStatement:
		c.buildExpression(s, n.Expression)
	case *ast.ReturnStatement:
		c.addReturn(s, n.Arguments)
	}
}

// walkFunctionDeclarationStatement lowers the statement form of
// `function name(...) end` / `function T:m(...) end`, binding the result by
// whichever lhs shape the declaration names.
func (c *Context) walkFunctionDeclarationStatement(s *scope.Scope, decl *ast.FunctionDeclaration) {
	id := c.setFunctionInfo(s, decl.Identifier, decl)
	switch target := decl.Identifier.(type) {
	case *ast.Identifier:
		s.Declare(target.Name, id)
		if !decl.IsLocal && s.Kind == scope.Module {
			s.Module().AddItem(scope.Item{Kind: scope.ItemFunction, Function: model.FunctionDecl{Name: target.Name, FunctionID: id}})
		}
	case *ast.MemberExpression:
		c.addAssignment(s, target, nil, model.NewFunctionLiteral(id, c.currentModule), decl.IsLocal)
	}
}

func (c *Context) walkLocal(s *scope.Scope, n *ast.LocalStatement) {
	c.assignTargetsFromInits(s, identifiersToExpressions(n.Names), n.Init, true)
}

func (c *Context) walkAssignment(s *scope.Scope, n *ast.AssignmentStatement) {
	c.assignTargetsFromInits(s, n.Variables, n.Init, false)
}

// assignTargetsFromInits implements the shared shape of `local`/plain
// assignment statements: pairwise target/initializer dispatch, with the
// final initializer expanding across any surplus targets per spec.md
// §4.1.5's multi-return slot semantics.
func (c *Context) assignTargetsFromInits(s *scope.Scope, targets []ast.Expression, inits []ast.Expression, isLocal bool) {
	for i, target := range targets {
		if isLocal {
			if ident, ok := target.(*ast.Identifier); ok {
				if id, ok := s.ResolveLocal(ident.Name); ok && id.IsTable() {
					// Closure-class self/publ binding already owns its
					// synthetic table (spec.md §4.1.3/§4.4); re-declaring
					// it here would discard that table.
					continue
				}
			}
		}
		switch {
		case i >= len(inits):
			c.addAssignment(s, target, nil, model.NewPrimitiveLiteral(model.TypeNil, nil, c.currentModule), isLocal)
		case i == len(inits)-1 && i < len(targets)-1:
			c.assignSurplusFromTail(s, targets[i:], inits[i], isLocal)
			return
		default:
			c.addAssignment(s, target, inits[i], nil, isLocal)
		}
	}
}

// assignSurplusFromTail feeds the first surplus target the raw tail
// expression (so call-shape detectors still see it) and rebuilds the same
// expression for each further target with an incrementing 1-based
// ReturnIndex.
func (c *Context) assignSurplusFromTail(s *scope.Scope, targets []ast.Expression, tail ast.Expression, isLocal bool) {
	c.addAssignment(s, targets[0], tail, nil, isLocal)
	for slot := 1; slot < len(targets); slot++ {
		info := c.buildExpression(s, tail)
		info.ReturnIndex = slot + 1
		c.addAssignment(s, targets[slot], nil, info, isLocal)
	}
}

func identifiersToExpressions(ids []*ast.Identifier) []ast.Expression {
	out := make([]ast.Expression, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// addReturn implements spec.md §4.1.5: route a `return` statement's
// arguments into the enclosing function's return vector, or the module's
// synthetic return function at module scope.
func (c *Context) addReturn(s *scope.Scope, args []ast.Expression) {
	fnID := c.returnFunctionID(s)
	fn := c.Interner.Function(fnID)
	if fn == nil {
		return
	}
	c.resolveReturnsInto(s, fn, args)
}

func (c *Context) returnFunctionID(s *scope.Scope) model.ID {
	if fnScope := s.EnclosingFunction(); fnScope != nil && fnScope.FunctionID != "" {
		return fnScope.FunctionID
	}
	return c.moduleReturnFunction(c.currentModule)
}
