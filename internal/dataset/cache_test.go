package dataset

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T, dataDir string) *Cache {
	t.Helper()
	return NewCache(NewStore(dataDir), zap.NewNop().Sugar(), nil)
}

func seedLocation(t *testing.T, dataDir, location string) {
	t.Helper()
	writeTestCSV(t, dataDir, location, []string{
		"date,T2M_mean,T2M_min,T2M_max,PRECTOT_mm,WindSpeed,CLDTOT_pct",
		"2020-01-01,20,15,25,0,3,50",
		"2020-01-02,21,16,26,4,4,60",
	})
}

func TestCacheReturnsSameInstance(t *testing.T) {
	dataDir := t.TempDir()
	seedLocation(t, dataDir, "lisbon")
	cache := newTestCache(t, dataDir)

	first, err := cache.GetOrLoad("lisbon")
	require.NoError(t, err)
	second, err := cache.GetOrLoad("lisbon")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestCacheConcurrentColdStart(t *testing.T) {
	dataDir := t.TempDir()
	seedLocation(t, dataDir, "lisbon")
	cache := newTestCache(t, dataDir)

	const goroutines = 16
	tables := make([]*Table, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			table, err := cache.GetOrLoad("lisbon")
			assert.NoError(t, err)
			tables[i] = table
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, tables[0], tables[i])
	}
}

func TestCacheRetriesAfterFailedLoad(t *testing.T) {
	dataDir := t.TempDir()
	cache := newTestCache(t, dataDir)

	_, err := cache.GetOrLoad("lisbon")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	// The data shows up later; a failed load must not be pinned
	seedLocation(t, dataDir, "lisbon")
	table, err := cache.GetOrLoad("lisbon")
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
}

func TestCacheWarm(t *testing.T) {
	dataDir := t.TempDir()
	seedLocation(t, dataDir, "lisbon")
	cache := newTestCache(t, dataDir)

	// One loadable location, one missing; Warm must not fail on the latter
	cache.Warm([]string{"lisbon", "atlantis"})

	table, err := cache.GetOrLoad("lisbon")
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
}
