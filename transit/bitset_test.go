package transit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitset_SetGetClear(t *testing.T) {
	b := NewBitset(10)
	require.False(t, b.Get(3))
	b.Set(3)
	require.True(t, b.Get(3))
	b.Clear(3)
	require.False(t, b.Get(3))
}

func TestBitset_GrowsPastInitialSize(t *testing.T) {
	b := NewBitset(4)
	b.Set(200)
	require.True(t, b.Get(200))
	require.False(t, b.Get(199))
}

func TestBitset_Intersects(t *testing.T) {
	a := NewBitset(10)
	b := NewBitset(10)
	a.Set(5)
	require.False(t, a.Intersects(b))
	b.Set(5)
	require.True(t, a.Intersects(b))
}

func TestBitset_Union(t *testing.T) {
	a := NewBitset(10)
	b := NewBitset(10)
	a.Set(1)
	b.Set(2)
	u := a.Union(b)
	require.True(t, u.Get(1))
	require.True(t, u.Get(2))

	// Original bitsets unaffected.
	require.False(t, a.Get(2))
}

func TestBitset_Each(t *testing.T) {
	b := NewBitset(200)
	b.Set(0)
	b.Set(63)
	b.Set(64)
	b.Set(150)

	var seen []int
	b.Each(func(i int) { seen = append(seen, i) })
	require.Equal(t, []int{0, 63, 64, 150}, seen)
}

func TestBitset_Clone(t *testing.T) {
	a := NewBitset(10)
	a.Set(4)
	c := a.Clone()
	c.Set(5)
	require.False(t, a.Get(5))
	require.True(t, c.Get(4))
}

func TestBitset_KeyEqualForSameBitsDifferentCapacity(t *testing.T) {
	a := NewBitset(10)
	a.Set(3)
	b := NewBitset(200)
	b.Set(3)
	require.Equal(t, a.Key(), b.Key())
}

func TestBitset_KeyDiffersForDifferentBits(t *testing.T) {
	a := NewBitset(10)
	a.Set(3)
	b := NewBitset(10)
	b.Set(4)
	require.NotEqual(t, a.Key(), b.Key())
}
