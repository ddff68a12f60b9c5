package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFallsBackToDefaults(t *testing.T) {
	c := New(nil)
	require.Equal(t, 3, c.Len())

	p, ok := c.Get(2)
	require.True(t, ok)
	assert.Equal(t, int64(300), p.Price)
}

func TestListKeepsStableOrder(t *testing.T) {
	c := New([]Product{
		{ID: 7, Name: "B", Price: 100},
		{ID: 3, Name: "A", Price: 200},
	})

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, 3, list[0].ID)
	assert.Equal(t, 7, list[1].ID)
}

func TestDuplicateIDKeepsLastDefinition(t *testing.T) {
	c := New([]Product{
		{ID: 1, Name: "old", Price: 100},
		{ID: 1, Name: "new", Price: 150},
	})

	require.Equal(t, 1, c.Len())
	p, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, "new", p.Name)
	assert.Equal(t, int64(150), p.Price)
}

func TestGetUnknownID(t *testing.T) {
	c := New(Defaults())
	_, ok := c.Get(99)
	assert.False(t, ok)
}
