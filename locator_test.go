package staged

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocator_GetMissingKey(t *testing.T) {
	loc := newLocator(map[Key]any{}, nil, nil)

	_, err := loc.Get(Of(Nominal("myapp.Missing")))
	var notFound *InstanceNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestLocator_FindPresentKey(t *testing.T) {
	key := Of(Nominal("myapp.Db"))
	loc := newLocator(map[Key]any{key: "conn"}, []Key{key}, nil)

	v, ok := loc.Find(key)
	assert.True(t, ok)
	assert.Equal(t, "conn", v)
	assert.True(t, loc.Has(key))
}

func TestLocator_GetSet_AbsentReturnsNilNoError(t *testing.T) {
	loc := newLocator(map[Key]any{}, nil, nil)

	set, err := loc.GetSet(Nominal("myapp.Plugin"), nil)
	assert.NoError(t, err)
	assert.Nil(t, set)
}

func TestLocator_Close_RunsDestructorsInLIFOOrder(t *testing.T) {
	var order []string
	destructors := []func() error{
		func() error { order = append(order, "first"); return nil },
		func() error { order = append(order, "second"); return nil },
	}
	loc := newLocator(map[Key]any{}, nil, destructors)

	assert.NoError(t, loc.Close())
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestLocator_Close_IsIdempotent(t *testing.T) {
	calls := 0
	destructors := []func() error{
		func() error { calls++; return nil },
	}
	loc := newLocator(map[Key]any{}, nil, destructors)

	assert.NoError(t, loc.Close())
	assert.NoError(t, loc.Close())
	assert.Equal(t, 1, calls)
}

func TestLocator_Close_AggregatesErrorsAndKeepsGoing(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	destructors := []func() error{
		func() error { return errA },
		func() error { return errB },
	}
	loc := newLocator(map[Key]any{}, nil, destructors)

	err := loc.Close()
	var agg *AggregateCleanupError
	assert.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Errors, 2)
}

func TestLocator_Keys_ReturnsCopy(t *testing.T) {
	key := Of(Nominal("myapp.Db"))
	loc := newLocator(map[Key]any{key: "conn"}, []Key{key}, nil)

	keys := loc.Keys()
	keys[0] = Of(Nominal("myapp.Mutated"))

	assert.Equal(t, key, loc.Keys()[0])
}
