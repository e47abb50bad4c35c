// Package integration tests the weak association table through its public
// API only: add/lookup/remove sequences, duplicate detection, get-or-create
// under contention, and close semantics.
package integration

import (
	"sync"
	"testing"

	"github.com/mesh-intelligence/tether/pkg/tether"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// host stands in for an application object that gains out-of-band fields.
type host struct {
	name string
}

func TestAddRemoveSequenceDeterminesLookup(t *testing.T) {
	tbl := tether.New[host, string]()
	defer tbl.Close()

	k1 := &host{name: "k1"}
	k2 := &host{name: "k2"}

	require.NoError(t, tbl.Add(k1, "a"))
	require.NoError(t, tbl.Add(k2, "b"))

	found, err := tbl.Remove(k1)
	require.NoError(t, err)
	assert.True(t, found)

	_, ok, err := tbl.TryGet(k1)
	require.NoError(t, err)
	assert.False(t, ok, "removed key must read as absent")

	v, ok, err := tbl.TryGet(k2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestDuplicateAddAndReAdd(t *testing.T) {
	tbl := tether.New[host, string]()
	defer tbl.Close()

	k := &host{name: "k"}
	require.NoError(t, tbl.Add(k, "first"))

	err := tbl.Add(k, "second")
	require.ErrorIs(t, err, tether.ErrDuplicateKey)

	// The failed add leaves the table untouched.
	v, ok, err := tbl.TryGet(k)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "first", v)

	found, err := tbl.Remove(k)
	require.NoError(t, err)
	require.True(t, found)
	require.NoError(t, tbl.Add(k, "second"), "add immediately after remove must succeed")
}

func TestGetOrAddSequential(t *testing.T) {
	tbl := tether.New[host, *int]()
	defer tbl.Close()

	k := &host{name: "k"}
	calls := 0
	factory := func(*host) *int {
		calls++
		return new(int)
	}

	first, err := tbl.GetOrAdd(k, factory)
	require.NoError(t, err)
	second, err := tbl.GetOrAdd(k, factory)
	require.NoError(t, err)

	assert.Same(t, first, second, "both calls must return the identical value")
	assert.Equal(t, 1, calls, "factory must run once when uncontended")
}

func TestGetOrAddConcurrentCallersAgree(t *testing.T) {
	tbl := tether.New[host, *int]()
	defer tbl.Close()

	const callers = 32
	k := &host{name: "contested"}

	var wg sync.WaitGroup
	results := make([]*int, callers)
	start := make(chan struct{})
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			v, err := tbl.GetOrAdd(k, func(*host) *int { return new(int) })
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 1; i < callers; i++ {
		assert.Same(t, results[0], results[i], "caller %d observed a different value", i)
	}
}

func TestInputValidation(t *testing.T) {
	tbl := tether.New[host, string]()
	defer tbl.Close()

	_, _, err := tbl.TryGet(nil)
	assert.ErrorIs(t, err, tether.ErrNilKey)

	assert.ErrorIs(t, tbl.Add(nil, "x"), tether.ErrNilKey)

	_, err = tbl.Remove(nil)
	assert.ErrorIs(t, err, tether.ErrNilKey)

	_, err = tbl.GetOrAdd(nil, func(*host) string { return "" })
	assert.ErrorIs(t, err, tether.ErrNilKey)

	_, err = tbl.GetOrAdd(&host{name: "k"}, nil)
	assert.ErrorIs(t, err, tether.ErrNilFactory)
}

func TestCloseBlocksFurtherUse(t *testing.T) {
	tbl := tether.New[host, string]()

	k := &host{name: "k"}
	require.NoError(t, tbl.Add(k, "v"))

	require.NoError(t, tbl.Close())
	require.NoError(t, tbl.Close(), "Close must be idempotent")

	_, _, err := tbl.TryGet(k)
	assert.ErrorIs(t, err, tether.ErrCorrupted)

	assert.ErrorIs(t, tbl.Add(&host{name: "late"}, "x"), tether.ErrCorrupted)

	_, err = tbl.Remove(k)
	assert.ErrorIs(t, err, tether.ErrCorrupted)

	_, err = tbl.GetOrAdd(k, func(*host) string { return "" })
	assert.ErrorIs(t, err, tether.ErrCorrupted)
}

func TestManyEntriesSurviveGrowth(t *testing.T) {
	tbl := tether.New[host, int]()
	defer tbl.Close()

	const n = 500
	keys := make([]*host, n)
	for i := range keys {
		keys[i] = &host{name: "key"}
		require.NoError(t, tbl.Add(keys[i], i))
	}
	for i, k := range keys {
		v, ok, err := tbl.TryGet(k)
		require.NoError(t, err)
		require.True(t, ok, "key %d lost", i)
		assert.Equal(t, i, v)
	}
}
