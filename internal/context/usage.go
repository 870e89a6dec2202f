package context

import "github.com/luatype/analyzer/internal/model"

// addUsage implements spec.md §4.1.4: usage masks compose monotonically via
// set intersection on the 5-element universe. A mask equal to the full
// universe carries no information and is dropped during narrowing.
func (c *Context) addUsage(info *model.ExpressionInfo, mask model.TypeSet) {
	if info == nil {
		return
	}
	if info.Usage == nil {
		info.Usage = mask
		return
	}
	info.Usage = intersect(info.Usage, mask)
}

func intersect(a, b model.TypeSet) model.TypeSet {
	out := model.TypeSet{}
	for t := range a {
		if b.Has(t) {
			out[t] = struct{}{}
		}
	}
	return out
}

// addConcatUsage marks info as a concatenand (spec.md §4.1.4).
func (c *Context) addConcatUsage(info *model.ExpressionInfo) {
	c.addUsage(info, model.ConcatMask())
}

// addIndexOrLenUsage marks info as an indexed or length operand.
func (c *Context) addIndexOrLenUsage(info *model.ExpressionInfo) {
	c.addUsage(info, model.IndexOrLenMask())
}

// addIndexAssignUsage marks info as the base of an index-assignment.
func (c *Context) addIndexAssignUsage(info *model.ExpressionInfo) {
	c.addUsage(info, model.IndexAssignMask())
}

// addArithmeticUsage marks info as an arithmetic operand or numeric loop
// counter.
func (c *Context) addArithmeticUsage(info *model.ExpressionInfo) {
	c.addUsage(info, model.ArithmeticMask())
}
