// Package stats tracks resolution counters for the contact cascade.
package stats

import (
	"math"
	"sync"
)

// Collector accumulates cascade counters. Safe for concurrent use.
type Collector struct {
	mu sync.Mutex

	totalSearches  int64
	cacheHits      int64
	cacheMisses    int64
	directoryCalls int64
	jobBoardCalls  int64
	websiteScans   int64
}

// APICalls breaks down the outbound call counters by source.
type APICalls struct {
	Directory int64 `json:"2gis"`
	JobBoard  int64 `json:"hh_ru"`
	Website   int64 `json:"website_parses"`
}

// Snapshot is a point-in-time copy of the counters. CacheHitRate is a
// percentage rounded to one decimal place.
type Snapshot struct {
	TotalSearches int64    `json:"total_searches"`
	CacheHits     int64    `json:"cache_hits"`
	CacheMisses   int64    `json:"cache_misses"`
	CacheHitRate  float64  `json:"cache_hit_rate"`
	APICalls      APICalls `json:"api_calls"`
	CacheSize     int      `json:"cache_size"`
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Search() {
	c.mu.Lock()
	c.totalSearches++
	c.mu.Unlock()
}

func (c *Collector) CacheHit() {
	c.mu.Lock()
	c.cacheHits++
	c.mu.Unlock()
}

func (c *Collector) CacheMiss() {
	c.mu.Lock()
	c.cacheMisses++
	c.mu.Unlock()
}

func (c *Collector) DirectoryCall() {
	c.mu.Lock()
	c.directoryCalls++
	c.mu.Unlock()
}

func (c *Collector) JobBoardCall() {
	c.mu.Lock()
	c.jobBoardCalls++
	c.mu.Unlock()
}

func (c *Collector) WebsiteScan() {
	c.mu.Lock()
	c.websiteScans++
	c.mu.Unlock()
}

// Snapshot returns a copy of the counters. cacheSize is the current
// number of cached records, supplied by the caller since the cache lives
// elsewhere.
func (c *Collector) Snapshot(cacheSize int) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		TotalSearches: c.totalSearches,
		CacheHits:     c.cacheHits,
		CacheMisses:   c.cacheMisses,
		APICalls: APICalls{
			Directory: c.directoryCalls,
			JobBoard:  c.jobBoardCalls,
			Website:   c.websiteScans,
		},
		CacheSize: cacheSize,
	}
	if c.totalSearches > 0 {
		rate := float64(c.cacheHits) / float64(c.totalSearches) * 100
		s.CacheHitRate = math.Round(rate*10) / 10
	}
	return s
}

// Reset zeroes all counters.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.totalSearches = 0
	c.cacheHits = 0
	c.cacheMisses = 0
	c.directoryCalls = 0
	c.jobBoardCalls = 0
	c.websiteScans = 0
	c.mu.Unlock()
}
