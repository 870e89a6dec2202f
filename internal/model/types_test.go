package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luatype/analyzer/internal/model"
)

func TestTypeSet_Union(t *testing.T) {
	a := model.NewTypeSet(model.TypeString)
	b := model.NewTypeSet(model.TypeNumber)
	union := a.Union(b)

	assert.True(t, union.Has(model.TypeString))
	assert.True(t, union.Has(model.TypeNumber))
	assert.Equal(t, 2, union.Len())
	// Union must not mutate either operand.
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, b.Len())
}

func TestTypeSet_NarrowNeverEmpties(t *testing.T) {
	// spec.md §8 "Narrowing monotonicity": a usage mask never empties a set.
	mixed := model.NewTypeSet(model.TypeString, model.TypeNumber)
	narrowed := mixed.Narrow(model.CallMask())

	assert.False(t, narrowed.Len() == 0)
	assert.True(t, narrowed.Equal(mixed), "narrowing to an impossible mask must pass the set through unchanged")
}

func TestTypeSet_NarrowRestrictsWhenPossible(t *testing.T) {
	mixed := model.NewTypeSet(model.TypeString, model.TypeNumber, model.TypeTable)
	narrowed := mixed.Narrow(model.IndexOrLenMask())

	assert.True(t, narrowed.Subset(mixed))
	assert.False(t, narrowed.Has(model.TypeNumber))
}

func TestTypeSet_NarrowPreservesNilAndUnknown(t *testing.T) {
	withNil := model.NewTypeSet(model.TypeNil, model.TypeString)
	narrowed := withNil.Narrow(model.ArithmeticMask())

	assert.True(t, narrowed.Has(model.TypeNil))

	withUnknown := model.NewTypeSet(model.TypeUnknown, model.TypeString)
	assert.True(t, withUnknown.Narrow(model.ArithmeticMask()).Has(model.TypeUnknown))
}

func TestTypeSet_CollapseBoolean(t *testing.T) {
	s := model.NewTypeSet(model.TypeTrue, model.TypeFalse)
	collapsed := s.CollapseBoolean()

	assert.True(t, collapsed.Has(model.TypeBoolean))
	assert.False(t, collapsed.Has(model.TypeTrue))
	assert.False(t, collapsed.Has(model.TypeFalse))
	assert.Equal(t, 1, collapsed.Len())
}

func TestTypeSet_IsLiteralTruthy(t *testing.T) {
	tests := []struct {
		name      string
		set       model.TypeSet
		wantTruth bool
		wantKnown bool
	}{
		{"single false is known falsy", model.NewTypeSet(model.TypeFalse), false, true},
		{"single nil is known falsy", model.NewTypeSet(model.TypeNil), false, true},
		{"single string is known truthy", model.NewTypeSet(model.TypeString), true, true},
		{"mixed set is unknown", model.NewTypeSet(model.TypeString, model.TypeNil), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			truthy, known := tt.set.IsLiteralTruthy()
			assert.Equal(t, tt.wantKnown, known)
			if known {
				assert.Equal(t, tt.wantTruth, truthy)
			}
		})
	}
}

func TestTypeSet_Equal(t *testing.T) {
	a := model.NewTypeSet(model.TypeString, model.TypeNumber)
	b := model.NewTypeSet(model.TypeNumber, model.TypeString)
	c := model.NewTypeSet(model.TypeNumber)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
