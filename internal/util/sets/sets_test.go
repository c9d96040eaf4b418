package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_UnionAndSorted(t *testing.T) {
	a := New("Content/Blog/media", "Content/Blog/en/media")
	b := New("Content/Blog/media", "Content/Blog/cs/img")

	a.Union(b)

	assert.Equal(t, 3, a.Len())
	assert.True(t, a.Has("Content/Blog/cs/img"))
	assert.Equal(t, []string{"Content/Blog/cs/img", "Content/Blog/en/media", "Content/Blog/media"}, Sorted(a))
}

func TestSet_CloneIsIndependent(t *testing.T) {
	a := New(1, 2)
	c := a.Clone()
	c.Add(3)

	assert.False(t, a.Has(3))
	assert.True(t, c.Has(3))
}

func TestSorted_Empty(t *testing.T) {
	assert.Empty(t, Sorted(New[string]()))
}
