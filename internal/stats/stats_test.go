package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot_HitRate(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	for i := 0; i < 3; i++ {
		c.Search()
	}
	c.CacheHit()
	c.CacheMiss()
	c.CacheMiss()
	c.DirectoryCall()
	c.JobBoardCall()
	c.WebsiteScan()
	c.WebsiteScan()

	got := c.Snapshot(42)

	assert.Equal(t, int64(3), got.TotalSearches)
	assert.Equal(t, int64(1), got.CacheHits)
	assert.Equal(t, int64(2), got.CacheMisses)
	assert.Equal(t, 33.3, got.CacheHitRate)
	assert.Equal(t, int64(1), got.APICalls.Directory)
	assert.Equal(t, int64(1), got.APICalls.JobBoard)
	assert.Equal(t, int64(2), got.APICalls.Website)
	assert.Equal(t, 42, got.CacheSize)
}

func TestSnapshot_Empty(t *testing.T) {
	t.Parallel()

	got := NewCollector().Snapshot(0)
	assert.Zero(t, got.TotalSearches)
	assert.Zero(t, got.CacheHitRate)
}

func TestReset(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	c.Search()
	c.CacheHit()
	c.Reset()

	got := c.Snapshot(0)
	assert.Zero(t, got.TotalSearches)
	assert.Zero(t, got.CacheHits)
}

func TestConcurrentCounting(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Search()
			c.CacheMiss()
		}()
	}
	wg.Wait()

	got := c.Snapshot(0)
	assert.Equal(t, int64(50), got.TotalSearches)
	assert.Equal(t, int64(50), got.CacheMisses)
}
