package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubFactory(m *Manifest) (Plugin, error) {
	return stubPlugin{}, nil
}

func TestCatalog_AddAndLookup(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Add("meow", stubFactory))

	f, ok := c.Lookup("meow")
	assert.True(t, ok)
	assert.NotNil(t, f)

	_, ok = c.Lookup("woof")
	assert.False(t, ok)
}

func TestCatalog_AddErrors(t *testing.T) {
	c := NewCatalog()

	assert.Error(t, c.Add("", stubFactory))
	assert.Error(t, c.Add("meow", nil))

	require.NoError(t, c.Add("meow", stubFactory))
	assert.Error(t, c.Add("meow", stubFactory))
}

func TestCatalog_MustAddPanicsOnDuplicate(t *testing.T) {
	c := NewCatalog().MustAdd("meow", stubFactory)

	assert.Panics(t, func() { c.MustAdd("meow", stubFactory) })
}

func TestCatalog_Default(t *testing.T) {
	c := NewCatalog().MustAdd("meow", stubFactory)

	var usedDefault bool
	c.SetDefault(func(m *Manifest) (Plugin, error) {
		usedDefault = true
		return stubPlugin{}, nil
	})

	f, ok := c.Lookup("anything")
	require.True(t, ok)
	_, err := f(&Manifest{})
	require.NoError(t, err)
	assert.True(t, usedDefault)

	usedDefault = false
	f, _ = c.Lookup("meow")
	_, _ = f(&Manifest{})
	assert.False(t, usedDefault)
}

func TestCatalog_Names(t *testing.T) {
	c := NewCatalog().
		MustAdd("zeta", stubFactory).
		MustAdd("alpha", stubFactory)

	assert.Equal(t, []string{"alpha", "zeta"}, c.Names())
}
