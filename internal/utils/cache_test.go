package utils

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	siggserrors "github.com/toyz/siggs/pkg/errors"
)

type entry struct {
	name string
}

func TestCache_GetOrCreate(t *testing.T) {
	cache := NewCache[*entry]()

	first, err := cache.GetOrCreate("a", func() (*entry, error) { return &entry{name: "a"}, nil })
	require.NoError(t, err)

	second, err := cache.GetOrCreate("a", func() (*entry, error) {
		t.Fatal("build must not run for a cached key")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Same(t, first, second)

	value, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Same(t, first, value)

	_, ok = cache.Get("missing")
	assert.False(t, ok)

	stats := cache.GetStats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Builds)
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	cache := NewCache[*entry]()
	boom := errors.New("boom")

	_, err := cache.GetOrCreate("a", func() (*entry, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, cache.Size())

	value, err := cache.GetOrCreate("a", func() (*entry, error) { return &entry{name: "a"}, nil })
	require.NoError(t, err)
	assert.Equal(t, "a", value.name)

	stats := cache.GetStats()
	assert.Equal(t, uint64(1), stats.Failures)
	assert.Equal(t, uint64(1), stats.Builds)
}

func TestCache_ConcurrentMissesBuildOnce(t *testing.T) {
	cache := NewCache[*entry]()

	var builds atomic.Int32
	release := make(chan struct{})
	build := func() (*entry, error) {
		builds.Add(1)
		<-release
		return &entry{name: "shared"}, nil
	}

	const callers = 32
	results := make([]*entry, callers)
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			value, err := cache.GetOrCreate("key", build)
			assert.NoError(t, err)
			results[i] = value
		}(i)
	}

	started.Wait()
	time.Sleep(10 * time.Millisecond)
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), builds.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestCache_DistinctKeysAreIndependent(t *testing.T) {
	cache := NewCache[*entry]()

	a, err := cache.GetOrCreate("a", func() (*entry, error) { return &entry{name: "a"}, nil })
	require.NoError(t, err)
	b, err := cache.GetOrCreate("b", func() (*entry, error) { return &entry{name: "b"}, nil })
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, []string{"a", "b"}, cache.Keys())

	seen := make(map[string]string)
	cache.ForEach(func(key string, value *entry) { seen[key] = value.name })
	assert.Equal(t, map[string]string{"a": "a", "b": "b"}, seen)
}

func TestCache_ConflictingStorePanics(t *testing.T) {
	cache := NewCache[*entry]()
	cache.store("a", &entry{name: "first"})

	// storing the same value again is allowed
	value, _ := cache.Get("a")
	assert.NotPanics(t, func() { cache.store("a", value) })

	defer func() {
		r := recover()
		require.NotNil(t, r)
		violation, ok := r.(*siggserrors.ConcurrencyViolation)
		require.True(t, ok)
		assert.Equal(t, "a", violation.Key)
	}()
	cache.store("a", &entry{name: "second"})
}
