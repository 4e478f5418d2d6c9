// Copyright 2025 The notekeep Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package filecache

import "time"

// counters are accumulated for the lifetime of a cache instance and are
// never reset, not even by Clear.
type counters struct {
	hits          uint64
	misses        uint64
	evictions     uint64
	totalRequests uint64
	totalLatency  time.Duration
}

func (c *counters) record(hit bool, elapsed time.Duration) {
	c.totalRequests++
	c.totalLatency += elapsed
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

// Stats is a point-in-time snapshot of a cache's counters plus the
// derived values callers display.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Evictions     uint64
	TotalRequests uint64
	// HitRate is a percentage in [0, 100].
	HitRate float64
	// AvgResponseTime is the mean latency over every Get so far.
	AvgResponseTime time.Duration
	// TotalSize is the current byte footprint of the memory tier.
	TotalSize int64
	// MaxSize echoes the configured byte budget.
	MaxSize int64
	// FileCount is the current number of memory-tier entries.
	FileCount int
}

func (c *counters) snapshot(totalSize, maxSize int64, fileCount int) Stats {
	s := Stats{
		Hits:          c.hits,
		Misses:        c.misses,
		Evictions:     c.evictions,
		TotalRequests: c.totalRequests,
		TotalSize:     totalSize,
		MaxSize:       maxSize,
		FileCount:     fileCount,
	}
	if c.totalRequests > 0 {
		s.HitRate = float64(c.hits) / float64(c.totalRequests) * 100
		s.AvgResponseTime = c.totalLatency / time.Duration(c.totalRequests)
	}
	return s
}
