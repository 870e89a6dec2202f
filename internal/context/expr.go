package context

import (
	"strconv"

	"github.com/luatype/analyzer/ast"
	"github.com/luatype/analyzer/internal/detect"
	"github.com/luatype/analyzer/internal/model"
	"github.com/luatype/analyzer/internal/scope"
)

// buildExpression lowers an ast.Expression into a model.ExpressionInfo,
// resolving bare references against s and interning any table/function
// literal encountered along the way.
func (c *Context) buildExpression(s *scope.Scope, e ast.Expression) *model.ExpressionInfo {
	if e == nil {
		return nil
	}
	mod := c.currentModule
	switch n := e.(type) {
	case *ast.Identifier:
		if n.Name == "nil" {
			return model.NewPrimitiveLiteral(model.TypeNil, nil, mod)
		}
		if id, ok := s.Resolve(n.Name); ok {
			return model.NewReference(id, mod)
		}
		// Unbound name: treat as a fresh global local slot so repeated
		// reference to the same unresolved global still shares one ID.
		id := c.Interner.NewLocal(n.Name)
		s.Module().Declare(n.Name, id)
		return model.NewReference(id, mod)

	case *ast.StringLiteral:
		return model.NewPrimitiveLiteral(model.TypeString, n.Value, mod)
	case *ast.NumericLiteral:
		return model.NewPrimitiveLiteral(model.TypeNumber, n.Value, mod)
	case *ast.BooleanLiteral:
		if n.Value {
			return model.NewPrimitiveLiteral(model.TypeTrue, true, mod)
		}
		return model.NewPrimitiveLiteral(model.TypeFalse, false, mod)
	case *ast.NilLiteral:
		return model.NewPrimitiveLiteral(model.TypeNil, nil, mod)
	case *ast.VarargLiteral:
		return &model.ExpressionInfo{
			Expr:           &model.Expression{Kind: model.ExprLiteral, LuaType: model.TypeUnknown},
			DefiningModule: mod,
		}

	case *ast.TableConstructorExpression:
		return c.buildTableConstructor(s, n)

	case *ast.FunctionDeclaration:
		id := c.setFunctionInfo(s, nil, n)
		return model.NewFunctionLiteral(id, mod)

	case *ast.MemberExpression:
		base := c.buildExpression(s, n.Base)
		info := model.NewMember(base, n.Member, n.Indexer, mod)
		if n.Indexer == ast.Colon {
			info.Instance = true
		}
		return info

	case *ast.IndexExpression:
		base := c.buildExpression(s, n.Base)
		index := c.buildExpression(s, n.Index)
		c.addIndexOrLenUsage(base)
		return model.NewIndex(base, index, mod)

	case *ast.CallExpression:
		return c.buildCall(s, n.Base, n.Arguments)

	case *ast.StringCallExpression:
		return c.buildCall(s, n.Base, []ast.Expression{n.Literal})

	case *ast.TableCallExpression:
		return c.buildCall(s, n.Base, []ast.Expression{n.Table})

	case *ast.UnaryExpression:
		arg := c.buildExpression(s, n.Argument)
		switch n.Operator {
		case ast.OpUnm, ast.OpBNot:
			c.addArithmeticUsage(arg)
		case ast.OpLen:
			c.addIndexOrLenUsage(arg)
		}
		return model.NewOperation(n.Operator, []*model.ExpressionInfo{arg}, mod)

	case *ast.BinaryExpression:
		left := c.buildExpression(s, n.Left)
		right := c.buildExpression(s, n.Right)
		switch n.Operator {
		case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod, ast.OpPow,
			ast.OpBAnd, ast.OpBOr, ast.OpBXor, ast.OpShl, ast.OpShr:
			c.addArithmeticUsage(left)
			c.addArithmeticUsage(right)
		case ast.OpConcat:
			c.addConcatUsage(left)
			c.addConcatUsage(right)
		}
		return model.NewOperation(n.Operator, []*model.ExpressionInfo{left, right}, mod)
	}
	return &model.ExpressionInfo{Expr: &model.Expression{Kind: model.ExprLiteral, LuaType: model.TypeUnknown}, DefiningModule: mod}
}

// buildCall lowers a call form into either a `require` pseudo-expression
// (spec.md §4.2 "require" variant) or a generic operation/call, wiring
// argument types into the callee's inferred parameter types per spec.md
// §4.1.4.
func (c *Context) buildCall(s *scope.Scope, base ast.Expression, args []ast.Expression) *model.ExpressionInfo {
	mod := c.currentModule
	if ident, ok := base.(*ast.Identifier); ok && ident.Name == "require" && len(args) == 1 {
		if str, ok := args[0].(*ast.StringLiteral); ok {
			return model.NewRequire(canonicalModuleKey(str.Value), mod)
		}
	}
	if target, metaExpr, ok := detect.SetMetatableCall(base, args); ok {
		c.setMetatable(s, target, metaExpr)
	}

	baseInfo := c.buildExpression(s, base)
	argInfos := make([]*model.ExpressionInfo, 0, len(args)+1)
	argInfos = append(argInfos, baseInfo)
	for _, a := range args {
		argInfos = append(argInfos, c.buildExpression(s, a))
	}
	c.addUsage(baseInfo, model.CallMask())
	c.flowArgumentsToParameters(baseInfo, args, s)
	return model.NewOperation(model.OpCall, argInfos, mod)
}

// flowArgumentsToParameters implements spec.md §4.1.4's call-usage clause:
// "if the call target resolves to a single function ID, the types of each
// argument are unioned into that function's inferred parameter types, and
// any missing arguments contribute nil to surplus parameters."
func (c *Context) flowArgumentsToParameters(callee *model.ExpressionInfo, args []ast.Expression, s *scope.Scope) {
	fnID, ok := c.singleFunctionID(callee)
	if !ok {
		return
	}
	fn := c.Interner.Function(fnID)
	if fn == nil {
		return
	}
	offset := 0
	if fn.IsMethod {
		offset = 1 // leading @self already occupies slot 0
	}
	for i := range args {
		slot := i + offset
		if slot >= len(fn.Parameters) {
			break
		}
		argInfo := c.buildExpression(s, args[i])
		types := c.Resolve(argInfo)
		fn.EnsureParameterSlot(slot)
		fn.ParameterTypes[slot] = fn.ParameterTypes[slot].Union(types)
	}
	for slot := len(args) + offset; slot < len(fn.Parameters); slot++ {
		fn.EnsureParameterSlot(slot)
		fn.ParameterTypes[slot].Add(model.TypeNil)
	}
}

// singleFunctionID reports the function ID a reference expression resolves
// to, if and only if it resolves to exactly one.
func (c *Context) singleFunctionID(e *model.ExpressionInfo) (model.ID, bool) {
	if e == nil || e.Expr == nil {
		return "", false
	}
	switch e.Expr.Kind {
	case model.ExprLiteral:
		if e.Expr.LuaType == model.TypeFunction && e.Expr.FunctionID != "" {
			return e.Expr.FunctionID, true
		}
	case model.ExprReference:
		id := e.Expr.Reference
		if id.IsFunction() {
			return id, true
		}
		if id.IsLocal() {
			defs := c.Interner.LocalDefinitions(id)
			if len(defs) == 1 {
				return c.singleFunctionID(defs[0])
			}
		}
	}
	return "", false
}

// buildTableConstructor interns a fresh TableInfo for a `{...}` literal and
// populates both LiteralFields (insertion order) and Definitions (keyed
// lookup), per spec.md §3.3/§4.3 step 4.
func (c *Context) buildTableConstructor(s *scope.Scope, t *ast.TableConstructorExpression) *model.ExpressionInfo {
	id, info := c.Interner.NewTable("", c.currentModule)
	autoIndex := 0
	for _, f := range t.Fields {
		value := c.buildExpression(s, f.Value)
		var key string
		switch f.Kind {
		case ast.TableFieldAuto:
			autoIndex++
			key = strconv.Itoa(autoIndex)
			info.LiteralFields = append(info.LiteralFields, model.LiteralField{AutoIndex: autoIndex, Value: value})
		case ast.TableFieldKeyString:
			if keyID, ok := f.Key.(*ast.Identifier); ok {
				key = model.LiteralKey(keyID.Name, false)
			}
			info.LiteralFields = append(info.LiteralFields, model.LiteralField{Key: key, Value: value})
		case ast.TableFieldKey:
			key = c.foldKeyLiteral(s, f.Key)
			info.LiteralFields = append(info.LiteralFields, model.LiteralField{Key: key, Value: value})
		}
		if key != "" {
			info.AddDefinition(key, value)
		}
	}
	return model.NewTableLiteral(id, c.currentModule)
}

// foldKeyLiteral canonicalizes a bracketed table-constructor key
// (`{[k] = v}`) to its literalKey form when k is a string or numeric
// literal; any other key expression yields "" and is not recorded in
// Definitions.
func (c *Context) foldKeyLiteral(s *scope.Scope, key ast.Expression) string {
	switch k := key.(type) {
	case *ast.StringLiteral:
		return model.LiteralKey(k.Value, true)
	case *ast.NumericLiteral:
		return model.LiteralKey(strconv.FormatFloat(k.Value, 'g', -1, 64), false)
	}
	return ""
}
