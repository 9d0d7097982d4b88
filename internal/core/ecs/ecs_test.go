package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityPoolGenerations(t *testing.T) {
	p := NewEntityPool()

	a := p.Create()
	require.False(t, a.IsZero())
	assert.True(t, p.Alive(a))
	assert.Equal(t, 1, p.Live())

	assert.True(t, p.Destroy(a))
	assert.False(t, p.Alive(a))
	assert.False(t, p.Destroy(a), "second destroy of a stale id")

	b := p.Create()
	assert.Equal(t, a.Index(), b.Index(), "free list reuses the slot")
	assert.NotEqual(t, a, b)
	assert.False(t, p.Alive(a))
	assert.True(t, p.Alive(b))
}

func TestZeroIDNeverAlive(t *testing.T) {
	p := NewEntityPool()
	p.Create()
	assert.False(t, p.Alive(0))
}

func TestWorldDestroyStripsComponents(t *testing.T) {
	names := NewStore[string]()
	tags := NewStore[int]()
	w := NewWorld(names)
	w.Track(tags)

	id := w.CreateEntity()
	names.Set(id, "column1")
	tags.Set(id, 3)
	require.True(t, names.Has(id))

	assert.True(t, w.Destroy(id))
	assert.False(t, names.Has(id))
	assert.False(t, tags.Has(id))
	assert.False(t, w.Destroy(id))
}

func TestEach2(t *testing.T) {
	a := NewStore[int]()
	b := NewStore[string]()
	a.Set(1, 10)
	a.Set(2, 20)
	b.Set(2, "two")
	b.Set(3, "three")

	seen := map[EntityID]string{}
	Each2(a, b, func(id EntityID, n int, s string) {
		seen[id] = s
		assert.Equal(t, 20, n)
	})
	assert.Equal(t, map[EntityID]string{2: "two"}, seen)
}
