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

// Package filecache implements a bounded two-tier cache of file blobs:
// an insertion-ordered in-memory map in front of a persistent
// blobstore.Store. Expired entries are purged lazily on read, and both
// a byte budget and an entry-count ceiling are enforced after every
// insert by evicting the oldest-inserted entries first.
package filecache

import (
	"context"
	"sync"
	"time"

	"github.com/notekeep-io/notekeep/pkg/blobstore"
	"github.com/notekeep-io/notekeep/pkg/nklog"
	"github.com/notekeep-io/notekeep/pkg/thumbnail"
)

// ThumbnailSuffix is appended to a key to address its derived preview.
const ThumbnailSuffix = "_thumbnail"

// Fetcher retrieves a remote blob for DownloadAndCache. Implemented by
// transfer.Downloader.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, mimeType string, err error)
}

type entry struct {
	data []byte
	meta blobstore.EntryMeta
}

// Cache is a single module's file cache. Safe for concurrent use.
type Cache struct {
	name    string
	cfg     Config
	store   blobstore.Store
	fetcher Fetcher

	mu        sync.Mutex
	entries   map[string]*entry
	order     []string // insertion order, oldest first
	totalSize int64
	stats     counters
	degraded  bool // persistent tier failed once; warned already
}

// New creates a cache named name (used in logs) over the given
// persistent store. store may be nil for a memory-only cache; fetcher
// may be nil if DownloadAndCache is never used.
func New(name string, cfg Config, store blobstore.Store, fetcher Fetcher) *Cache {
	return &Cache{
		name:    name,
		cfg:     cfg,
		store:   store,
		fetcher: fetcher,
		entries: make(map[string]*entry),
	}
}

// Name returns the module name this cache serves.
func (c *Cache) Name() string { return c.name }

// GetFile returns the cached blob for key, or (nil, false) on a miss.
// An expired entry counts as a miss and is purged from both tiers.
// A persistent-tier hit is promoted into the memory tier.
func (c *Cache) GetFile(ctx context.Context, key string) ([]byte, bool) {
	start := time.Now()
	now := start

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if e.meta.Expired(now) {
			c.removeLocked(key)
			c.mu.Unlock()
			c.storeDelete(ctx, key)
			c.finish(false, start)
			return nil, false
		}
		data := e.data
		c.mu.Unlock()
		c.finish(true, start)
		return data, true
	}
	c.mu.Unlock()

	if c.store == nil {
		c.finish(false, start)
		return nil, false
	}

	data, meta, err := c.store.Get(ctx, key)
	if err != nil {
		if err != blobstore.ErrNotFound {
			c.warnStore("read", err)
		}
		c.finish(false, start)
		return nil, false
	}
	if meta.Expired(now) {
		// lazy purge bounds persistent-store growth
		c.storeDelete(ctx, key)
		c.finish(false, start)
		return nil, false
	}

	c.mu.Lock()
	c.insertLocked(key, data, meta)
	evicted := c.evictLocked()
	c.mu.Unlock()
	c.purgeStore(ctx, evicted)

	c.finish(true, start)
	return data, true
}

// CacheOptions tweak a single CacheFile call.
type CacheOptions struct {
	// TTL overrides the module default when positive.
	TTL time.Duration
	// SkipThumbnail suppresses preview derivation for this insert.
	SkipThumbnail bool
}

// CacheFile stores a blob under key in both tiers. Blobs larger than
// the configured byte budget are rejected with a warning log and the
// call is a no-op. The memory-tier write is visible as soon as this
// returns; the persistent write is awaited too, but its failure only
// degrades the cache to memory-only operation.
func (c *Cache) CacheFile(ctx context.Context, key string, data []byte, mimeType string) {
	c.CacheFileOpts(ctx, key, data, mimeType, CacheOptions{})
}

// CacheFileOpts is CacheFile with per-call options.
func (c *Cache) CacheFileOpts(ctx context.Context, key string, data []byte, mimeType string, opts CacheOptions) {
	size := int64(len(data))
	if size > c.cfg.MaxSize {
		nklog.Warnf("%s cache: rejecting %q: %d bytes exceeds cache budget of %d", c.name, key, size, c.cfg.MaxSize)
		return
	}

	ttl := c.cfg.TTL
	if opts.TTL > 0 {
		ttl = opts.TTL
	}
	meta := blobstore.EntryMeta{
		Timestamp: time.Now(),
		TTL:       ttl,
		Size:      size,
		MimeType:  mimeType,
	}

	c.mu.Lock()
	c.insertLocked(key, data, meta)
	c.mu.Unlock()

	c.storePut(ctx, key, data, meta)

	if !opts.SkipThumbnail && c.cfg.GenerateThumbnails && thumbnail.IsImage(mimeType) {
		c.cacheThumbnail(ctx, key, data, meta)
	}

	c.mu.Lock()
	evicted := c.evictLocked()
	c.mu.Unlock()
	c.purgeStore(ctx, evicted)
}

func (c *Cache) cacheThumbnail(ctx context.Context, key string, data []byte, parent blobstore.EntryMeta) {
	thumb, err := thumbnail.Generate(data, c.cfg.ThumbnailSize)
	if err != nil {
		nklog.Warnf("%s cache: thumbnail for %q failed: %v", c.name, key, err)
		return
	}

	meta := blobstore.EntryMeta{
		Timestamp:   parent.Timestamp,
		TTL:         parent.TTL,
		Size:        int64(len(thumb)),
		MimeType:    "image/jpeg",
		IsThumbnail: true,
		OriginalKey: key,
	}
	thumbKey := key + ThumbnailSuffix

	c.mu.Lock()
	c.insertLocked(thumbKey, thumb, meta)
	c.mu.Unlock()

	c.storePut(ctx, thumbKey, thumb, meta)
}

// GetThumbnail returns the cached preview derived from key, if any.
func (c *Cache) GetThumbnail(ctx context.Context, key string) ([]byte, bool) {
	return c.GetFile(ctx, key+ThumbnailSuffix)
}

// DownloadAndCache returns the cached blob for key, fetching and
// caching it on a miss. Fetch failures are logged and reported as
// (nil, false); the caller degrades to a placeholder.
func (c *Cache) DownloadAndCache(ctx context.Context, url, key string) ([]byte, bool) {
	if key == "" {
		key = url
	}
	if data, ok := c.GetFile(ctx, key); ok {
		return data, true
	}
	if c.fetcher == nil {
		nklog.Warnf("%s cache: no fetcher configured, cannot download %q", c.name, url)
		return nil, false
	}

	data, mimeType, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		nklog.Errorf("%s cache: download of %q failed: %v", c.name, url, err)
		return nil, false
	}
	c.CacheFile(ctx, key, data, mimeType)
	return data, true
}

// InvalidateFile removes key and its thumbnail from both tiers. It
// reports whether anything was removed from either tier, so an entry
// that only survives in the persistent tier (cold cache after a
// restart) still reports true.
func (c *Cache) InvalidateFile(ctx context.Context, key string) bool {
	thumbKey := key + ThumbnailSuffix

	c.mu.Lock()
	removed := c.removeLocked(key)
	removed = c.removeLocked(thumbKey) || removed
	c.mu.Unlock()

	removed = c.storeRemove(ctx, key) || removed
	removed = c.storeRemove(ctx, thumbKey) || removed
	return removed
}

// storeRemove deletes key from the persistent tier and reports whether
// it was present there.
func (c *Cache) storeRemove(ctx context.Context, key string) bool {
	if c.store == nil {
		return false
	}
	if _, _, err := c.store.Get(ctx, key); err != nil {
		if err != blobstore.ErrNotFound {
			c.warnStore("read", err)
		}
		return false
	}
	c.storeDelete(ctx, key)
	return true
}

// Clear empties both tiers. Lifetime counters are preserved.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.order = nil
	c.totalSize = 0
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Clear(ctx); err != nil {
			c.warnStore("clear", err)
		}
	}
}

// Stats returns a snapshot of the cache counters and current footprint.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.snapshot(c.totalSize, c.cfg.MaxSize, len(c.entries))
}

// insertLocked adds or replaces an entry, keeping order and totalSize
// coherent. Caller holds c.mu.
func (c *Cache) insertLocked(key string, data []byte, meta blobstore.EntryMeta) {
	if old, ok := c.entries[key]; ok {
		c.totalSize -= old.meta.Size
		c.dropOrderLocked(key)
	}
	c.entries[key] = &entry{data: data, meta: meta}
	c.order = append(c.order, key)
	c.totalSize += meta.Size
}

// removeLocked deletes key from the memory tier. Caller holds c.mu.
func (c *Cache) removeLocked(key string) bool {
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	delete(c.entries, key)
	c.totalSize -= e.meta.Size
	c.dropOrderLocked(key)
	return true
}

func (c *Cache) dropOrderLocked(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// evictLocked enforces both pressure ceilings, dropping the
// oldest-inserted entry first. This is deliberately insertion-order
// (FIFO) eviction, not access-order LRU. It returns the evicted keys so
// the caller can purge the persistent tier after releasing c.mu.
// Caller holds c.mu.
func (c *Cache) evictLocked() []string {
	var evicted []string
	for len(c.entries) > c.cfg.MaxFiles && len(c.order) > 0 {
		evicted = append(evicted, c.evictOldestLocked())
	}
	for c.totalSize > c.cfg.MaxSize && len(c.order) > 0 {
		evicted = append(evicted, c.evictOldestLocked())
	}
	return evicted
}

func (c *Cache) evictOldestLocked() string {
	key := c.order[0]
	c.order = c.order[1:]
	if e, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.totalSize -= e.meta.Size
		c.stats.evictions++
		nklog.Debugf("%s cache: evicted %q (%d bytes)", c.name, key, e.meta.Size)
	}
	return key
}

func (c *Cache) finish(hit bool, start time.Time) {
	c.mu.Lock()
	c.stats.record(hit, time.Since(start))
	c.mu.Unlock()
}

func (c *Cache) storePut(ctx context.Context, key string, data []byte, meta blobstore.EntryMeta) {
	if c.store == nil {
		return
	}
	if err := c.store.Put(ctx, key, data, meta); err != nil {
		c.warnStore("write", err)
	}
}

func (c *Cache) purgeStore(ctx context.Context, keys []string) {
	for _, key := range keys {
		c.storeDelete(ctx, key)
	}
}

func (c *Cache) storeDelete(ctx context.Context, key string) {
	if c.store == nil {
		return
	}
	if err := c.store.Delete(ctx, key); err != nil {
		c.warnStore("delete", err)
	}
}

// warnStore logs the first persistent-tier failure; later failures are
// demoted to debug so a dead store does not flood the log.
func (c *Cache) warnStore(op string, err error) {
	c.mu.Lock()
	first := !c.degraded
	c.degraded = true
	c.mu.Unlock()

	if first {
		nklog.Warnf("%s cache: persistent tier %s failed, continuing memory-only: %v", c.name, op, err)
	} else {
		nklog.Debugf("%s cache: persistent tier %s failed: %v", c.name, op, err)
	}
}
