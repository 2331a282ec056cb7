package staged

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathActivation_ExtendForbidsSiblingChoices(t *testing.T) {
	env := MustAxis("Env", "Prod", "Test", "Staging")
	testPoint, _ := NewAxisPoint(env, "Test")

	base := newPathActivation(EmptyActivation)
	extended := base.extend(NewBindingTags(testPoint))

	prodTags := NewBindingTags(func() AxisPoint { p, _ := NewAxisPoint(env, "Prod"); return p }())
	assert.False(t, extended.satisfiesPath(prodTags))

	testTags := NewBindingTags(testPoint)
	assert.True(t, extended.satisfiesPath(testTags))
}

func TestPathActivation_UntaggedCandidateAlwaysSatisfiesPath(t *testing.T) {
	env := MustAxis("Env", "Prod", "Test")
	testPoint, _ := NewAxisPoint(env, "Test")

	pa := newPathActivation(EmptyActivation).extend(NewBindingTags(testPoint))
	assert.True(t, pa.satisfiesPath(NewBindingTags()))
}

func TestPathActivation_ExtendWithEmptyTagsIsNoop(t *testing.T) {
	pa := newPathActivation(EmptyActivation)
	extended := pa.extend(NewBindingTags())

	assert.Equal(t, pa, extended)
}

func TestPathActivation_Valid_RequiresBaseMatchAndPathSatisfaction(t *testing.T) {
	env := MustAxis("Env", "Prod", "Test")
	testPoint, _ := NewAxisPoint(env, "Test")
	prodPoint, _ := NewAxisPoint(env, "Prod")

	act, err := NewActivation(testPoint)
	assert.NoError(t, err)
	pa := newPathActivation(act)

	assert.True(t, pa.valid(NewBindingTags(testPoint)))
	assert.False(t, pa.valid(NewBindingTags(prodPoint)))
}

func TestPathActivation_RenderConstraint_NamesRequiredChoice(t *testing.T) {
	env := MustAxis("Env", "Prod", "Test")
	testPoint, _ := NewAxisPoint(env, "Test")
	prodPoint, _ := NewAxisPoint(env, "Prod")

	pa := newPathActivation(EmptyActivation).extend(NewBindingTags(testPoint))
	candidate := Instance(Of(Nominal("myapp.Db")), "db", NewBindingTags(prodPoint))

	assert.Equal(t, "Env must be Test", pa.renderConstraint([]Binding{candidate}))
}
