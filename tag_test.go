package staged

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNominal_Equal(t *testing.T) {
	a := Nominal("myapp.UserService")
	b := Nominal("myapp.UserService")

	assert.Equal(t, a, b)
	assert.True(t, a.Equal(b))
}

func TestNominal_DifferentNames_NotEqual(t *testing.T) {
	a := Nominal("myapp.UserService")
	b := Nominal("myapp.OrderService")

	assert.False(t, a.Equal(b))
}

func TestToken_DistinctCalls_NotEqual(t *testing.T) {
	a := NewToken("handler")
	b := NewToken("handler")

	assert.NotEqual(t, a, b)
	assert.False(t, TokenTag(a).Equal(TokenTag(b)))
}

func TestToken_SameValue_Equal(t *testing.T) {
	tok := NewToken("handler")

	assert.True(t, TokenTag(tok).Equal(TokenTag(tok)))
}

func TestSetOf_StructuralEquality(t *testing.T) {
	a := SetOf(Nominal("myapp.Plugin"))
	b := SetOf(Nominal("myapp.Plugin"))

	assert.Equal(t, a, b)
	assert.True(t, a.Equal(b))

	elem, ok := a.Elem()
	assert.True(t, ok)
	assert.Equal(t, Nominal("myapp.Plugin"), elem)
}

func TestSetOf_NestedStaysComparable(t *testing.T) {
	inner := SetOf(Nominal("myapp.Plugin"))
	outer := SetOf(inner)

	assert.NotPanics(t, func() {
		m := map[TypeTag]bool{outer: true}
		assert.True(t, m[outer])
	})
}

func TestKey_Equal(t *testing.T) {
	a := Named(Nominal("myapp.Db"), "primary")
	b := Named(Nominal("myapp.Db"), "primary")
	c := Named(Nominal("myapp.Db"), "replica")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestKey_IsSet(t *testing.T) {
	plain := Of(Nominal("myapp.Db"))
	set := SetKey(Nominal("myapp.Plugin"), nil)

	assert.False(t, plain.IsSet())
	assert.True(t, set.IsSet())
}

func TestKey_UsableAsMapKey(t *testing.T) {
	m := map[Key]string{
		Of(Nominal("myapp.Db")):              "db",
		Named(Nominal("myapp.Db"), "backup"): "backup-db",
	}

	assert.Equal(t, "db", m[Of(Nominal("myapp.Db"))])
	assert.Equal(t, "backup-db", m[Named(Nominal("myapp.Db"), "backup")])
}

func TestPrimitiveTag_String(t *testing.T) {
	assert.Equal(t, "int", PrimitiveTag(PrimitiveInt).String())
	assert.Equal(t, "string", PrimitiveTag(PrimitiveString).String())
}
