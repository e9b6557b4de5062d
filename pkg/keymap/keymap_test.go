package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmpty(t *testing.T) {
	m := New[int32, string]()
	assert.EqualValues(t, 0, m.NextKey())
	assert.Equal(t, 0, m.Len())
}

func TestTransactAllocates(t *testing.T) {
	m := New[int32, string]()

	assert.EqualValues(t, 0, m.Transact("zero"))
	assert.EqualValues(t, 1, m.Transact("one"))
	assert.EqualValues(t, 2, m.Transact("two"))
	assert.EqualValues(t, 3, m.NextKey())
}

func TestTransactIdempotent(t *testing.T) {
	m := New[int32, string]()

	first := m.Transact("zero")
	second := m.Transact("zero")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, m.Len())
	assert.EqualValues(t, 1, m.NextKey())
}

func TestTransactFillsGap(t *testing.T) {
	m, err := FromMap(map[int32]string{
		0: "zero",
		1: "one",
		3: "three",
	})
	require.NoError(t, err)

	// The gap at 2 is the lowest free key
	assert.EqualValues(t, 2, m.NextKey())

	pk := m.Transact("two")
	assert.EqualValues(t, 2, pk)

	// 0..3 are now all used, so the cursor jumps past them
	assert.EqualValues(t, 4, m.NextKey())
}

func TestFromMapRejectsDuplicateValue(t *testing.T) {
	_, err := FromMap(map[int32]string{
		0: "same",
		1: "same",
	})
	require.Error(t, err)
}

func TestLookupBothSides(t *testing.T) {
	m := New[int64, string]()
	m.Transact("btc")
	m.Transact("eth")

	k, ok := m.Key("eth")
	require.True(t, ok)
	assert.EqualValues(t, 1, k)

	v, ok := m.Value(0)
	require.True(t, ok)
	assert.Equal(t, "btc", v)

	_, ok = m.Key("missing")
	assert.False(t, ok)
	_, ok = m.Value(99)
	assert.False(t, ok)
}

// TestBijectionInvariant drives a mixed transact sequence and checks both
// invariants after every call: no duplicate keys or values, and the cursor
// is always the lowest absent non-negative key.
func TestBijectionInvariant(t *testing.T) {
	m, err := FromMap(map[int16]string{
		0: "a",
		2: "c",
		5: "f",
	})
	require.NoError(t, err)

	values := []string{"b", "a", "d", "e", "f", "g", "b"}
	for _, v := range values {
		m.Transact(v)
		checkInvariants(t, m)
	}

	assert.Equal(t, 7, m.Len())
}

func checkInvariants[K interface{ ~int16 }, V comparable](t *testing.T, m *KeyMap[K, V]) {
	t.Helper()

	require.Equal(t, len(m.byKey), len(m.byVal), "bijection sides out of sync")
	for k, v := range m.byKey {
		back, ok := m.byVal[v]
		require.True(t, ok, "value %v missing from reverse side", v)
		require.Equal(t, k, back, "value %v maps back to %v, not %v", v, back, k)
	}

	_, used := m.byKey[m.next]
	require.False(t, used, "next key %v already used", m.next)
	for k := K(0); k < m.next; k++ {
		_, used := m.byKey[k]
		require.True(t, used, "key %v below cursor %v is free", k, m.next)
	}
}

func TestPairsIsACopy(t *testing.T) {
	m := New[int32, string]()
	m.Transact("zero")

	pairs := m.Pairs()
	pairs[42] = "intruder"

	_, ok := m.Value(42)
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}
