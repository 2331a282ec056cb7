package staged

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstance_Value(t *testing.T) {
	b := Instance(Of(Nominal("myapp.Config")), "prod-config", nil)

	assert.Equal(t, BindingInstance, b.Kind)
	assert.Equal(t, "prod-config", b.Value())
	assert.Nil(t, b.deps())
}

func TestClass_DepsComeFromFunctoid(t *testing.T) {
	dbKey := Of(Nominal("myapp.Db"))
	f, err := NewFunctoid(func(ctx context.Context, args []any) (any, error) {
		return "svc", nil
	}, []Key{dbKey}, false)
	assert.NoError(t, err)

	b := Class(Of(Nominal("myapp.Service")), f, nil)

	assert.Equal(t, []Key{dbKey}, b.deps())
}

func TestAlias_DepsIsTarget(t *testing.T) {
	target := Named(Nominal("myapp.Db"), "primary")
	b := Alias(Of(Nominal("myapp.DefaultDb")), target, nil)

	assert.Equal(t, BindingAlias, b.Kind)
	assert.Equal(t, target, b.Target())
	assert.Equal(t, []Key{target}, b.deps())
}

func TestSetElement_RejectsNonConstructibleInner(t *testing.T) {
	alias := Alias(Of(Nominal("myapp.Plugin")), Of(Nominal("myapp.Other")), nil)

	_, err := SetElement(Of(Nominal("myapp.Plugin")), alias, nil, false)
	assert.Error(t, err)
}

func TestSetElement_BuildsCollectionKey(t *testing.T) {
	inst := Instance(Of(Nominal("myapp.Plugin")), "core", nil)

	b, err := SetElement(Of(Nominal("myapp.Plugin")), inst, nil, false)
	assert.NoError(t, err)
	assert.Equal(t, BindingSetElement, b.Kind)
	assert.True(t, b.Key.IsSet())
	assert.NotNil(t, b.Inner())
	assert.Equal(t, "core", b.Inner().Value())
	assert.False(t, b.Weak())
}

func TestSetElement_WeakFlagCarried(t *testing.T) {
	inst := Instance(Of(Nominal("myapp.Plugin")), "core", nil)

	b, err := SetElement(Of(Nominal("myapp.Plugin")), inst, nil, true)
	assert.NoError(t, err)
	assert.True(t, b.Weak())
}

func TestSetElement_DepsComeFromInner(t *testing.T) {
	dbKey := Of(Nominal("myapp.Db"))
	f, err := NewFunctoid(func(ctx context.Context, args []any) (any, error) {
		return "plugin", nil
	}, []Key{dbKey}, false)
	assert.NoError(t, err)
	inner := Class(Of(Nominal("myapp.Plugin")), f, nil)

	b, err := SetElement(Of(Nominal("myapp.Plugin")), inner, nil, false)
	assert.NoError(t, err)
	assert.Equal(t, []Key{dbKey}, b.deps())
}

func TestAssistedFactory_NoDIDeps(t *testing.T) {
	f, err := NewFunctoid(func(ctx context.Context, args []any) (any, error) {
		return nil, nil
	}, []Key{Of(Nominal("myapp.Db"))}, false)
	assert.NoError(t, err)

	b := AssistedFactory(Of(Nominal("myapp.WidgetFactory")), f, []string{"name"}, nil)

	assert.Equal(t, BindingAssistedFactory, b.Kind)
	assert.Nil(t, b.deps())
	assert.Equal(t, []string{"name"}, b.RuntimeParams())
}

func TestWithDestructor_AttachesAndReturnsCopy(t *testing.T) {
	called := false
	orig := Instance(Of(Nominal("myapp.Conn")), "conn", nil)
	b := orig.WithDestructor(func(v any) error {
		called = true
		return nil
	})

	assert.Nil(t, orig.GetDestructor())
	assert.NotNil(t, b.GetDestructor())
	err := b.GetDestructor()(b.Value())
	assert.NoError(t, err)
	assert.True(t, called)
}

func TestBindingKind_String(t *testing.T) {
	assert.Equal(t, "Instance", BindingInstance.String())
	assert.Equal(t, "Set-element", BindingSetElement.String())
	assert.Equal(t, "AssistedFactory", BindingAssistedFactory.String())
}
