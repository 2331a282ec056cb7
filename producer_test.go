package staged

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProducer_Produce_InstanceBinding(t *testing.T) {
	key := Of(Nominal("myapp.Config"))
	m := NewModule(Instance(key, "value", nil))

	plan, err := NewPlanner(nil).Plan(m, []Key{key}, PlanOptions{})
	assert.NoError(t, err)

	loc, err := NewProducer(nil).Produce(plan, nil)
	assert.NoError(t, err)

	v, err := loc.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, "value", v)
}

func TestProducer_Produce_AliasResolvesToTarget(t *testing.T) {
	target := Of(Nominal("myapp.Real"))
	alias := Of(Nominal("myapp.Alias"))
	m := NewModule(
		Instance(target, "real-value", nil),
		Alias(alias, target, nil),
	)

	plan, err := NewPlanner(nil).Plan(m, []Key{alias}, PlanOptions{})
	assert.NoError(t, err)

	loc, err := NewProducer(nil).Produce(plan, nil)
	assert.NoError(t, err)

	v, err := loc.Get(alias)
	assert.NoError(t, err)
	assert.Equal(t, "real-value", v)
}

func TestProducer_Produce_ConstructionFailurePropagates(t *testing.T) {
	boom := errors.New("construction failed")
	key := Of(Nominal("myapp.Broken"))
	f, err := NewFunctoid(func(ctx context.Context, args []any) (any, error) {
		return nil, boom
	}, nil, false)
	assert.NoError(t, err)

	m := NewModule(Class(key, f, nil))
	plan, err := NewPlanner(nil).Plan(m, []Key{key}, PlanOptions{})
	assert.NoError(t, err)

	_, err = NewProducer(nil).Produce(plan, nil)
	var failure *ProducerFailure
	assert.ErrorAs(t, err, &failure)
	assert.ErrorIs(t, failure.Wrapped, boom)
}

func TestProducer_Produce_NonWeakSetElementFailurePropagates(t *testing.T) {
	boom := errors.New("plugin init failed")
	pluginKey := Of(Nominal("myapp.Plugin"))
	f, err := NewFunctoid(func(ctx context.Context, args []any) (any, error) {
		return nil, boom
	}, nil, false)
	assert.NoError(t, err)
	elem, err := SetElement(pluginKey, Class(pluginKey, f, nil), nil, false)
	assert.NoError(t, err)

	m := NewModule(elem)
	plan, err := NewPlanner(nil).Plan(m, []Key{elem.Key}, PlanOptions{})
	assert.NoError(t, err)

	_, err = NewProducer(nil).Produce(plan, nil)
	assert.Error(t, err)
}

func TestProducer_Produce_WeakSetElementFailureDropsSilently(t *testing.T) {
	boom := errors.New("plugin init failed")
	pluginKey := Of(Nominal("myapp.Plugin"))
	f, err := NewFunctoid(func(ctx context.Context, args []any) (any, error) {
		return nil, boom
	}, nil, false)
	assert.NoError(t, err)
	elem, err := SetElement(pluginKey, Class(pluginKey, f, nil), nil, true)
	assert.NoError(t, err)
	core, err := SetElement(pluginKey, Instance(pluginKey, "core", nil), nil, false)
	assert.NoError(t, err)

	m := NewModule(core, elem)
	plan, err := NewPlanner(nil).Plan(m, []Key{core.Key}, PlanOptions{})
	assert.NoError(t, err)

	loc, err := NewProducer(nil).Produce(plan, nil)
	assert.NoError(t, err)

	set, err := loc.GetSet(pluginKey.Tag, pluginKey.ID)
	assert.NoError(t, err)
	assert.Equal(t, []any{"core"}, set)
}

func TestProducer_AssistedFactory_ResolvesRuntimeAndDIArgs(t *testing.T) {
	dbKey := Of(Nominal("myapp.Db"))
	widgetKey := Of(Nominal("myapp.WidgetFactory"))

	f, err := NewFunctoid(func(ctx context.Context, args []any) (any, error) {
		return args[0].(string) + "-" + args[1].(string), nil // name, db
	}, []Key{dbKey}, false)
	assert.NoError(t, err)

	m := NewModule(
		Instance(dbKey, "db-conn", nil),
		AssistedFactory(widgetKey, f, []string{"name"}, nil),
	)

	plan, err := NewPlanner(nil).Plan(m, []Key{dbKey, widgetKey}, PlanOptions{})
	assert.NoError(t, err)

	loc, err := NewProducer(nil).Produce(plan, nil)
	assert.NoError(t, err)

	factory, err := loc.Get(widgetKey)
	assert.NoError(t, err)

	make := factory.(AssistedFactoryFunc)
	v, err := make("widget1")
	assert.NoError(t, err)
	assert.Equal(t, "widget1-db-conn", v)
}

func TestProducer_AssistedFactory_ArityMismatch(t *testing.T) {
	widgetKey := Of(Nominal("myapp.WidgetFactory"))
	f, err := NewFunctoid(func(ctx context.Context, args []any) (any, error) {
		return nil, nil
	}, nil, false)
	assert.NoError(t, err)

	m := NewModule(AssistedFactory(widgetKey, f, []string{"name"}, nil))
	plan, err := NewPlanner(nil).Plan(m, []Key{widgetKey}, PlanOptions{})
	assert.NoError(t, err)

	loc, err := NewProducer(nil).Produce(plan, nil)
	assert.NoError(t, err)

	factory, err := loc.Get(widgetKey)
	assert.NoError(t, err)

	_, err = factory.(AssistedFactoryFunc)()
	var fce *FunctoidConstructionError
	assert.ErrorAs(t, err, &fce)
}

func TestProducer_Produce_DestructorRegisteredOnLocator(t *testing.T) {
	closed := false
	key := Of(Nominal("myapp.Conn"))
	b := Instance(key, "conn", nil).WithDestructor(func(v any) error {
		closed = true
		return nil
	})

	m := NewModule(b)
	plan, err := NewPlanner(nil).Plan(m, []Key{key}, PlanOptions{})
	assert.NoError(t, err)

	loc, err := NewProducer(nil).Produce(plan, nil)
	assert.NoError(t, err)
	assert.NoError(t, loc.Close())
	assert.True(t, closed)
}
