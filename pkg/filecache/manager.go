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

import (
	"fmt"

	"github.com/notekeep-io/notekeep/pkg/blobstore"
	"github.com/notekeep-io/notekeep/pkg/nklog"
)

// StoreFactory builds the persistent tier for one module cache. It may
// return (nil, nil) for a memory-only tier.
type StoreFactory func(module string) (blobstore.Store, error)

// Manager owns the four module caches. It is constructed explicitly and
// passed to whoever needs it; there are no package-level cache
// singletons, so tests get isolated instances.
type Manager struct {
	caches map[string]*Cache
}

// NewManager builds a cache per module using the given store factory
// and optional fetcher. A factory error degrades that module to
// memory-only rather than failing construction.
func NewManager(newStore StoreFactory, fetcher Fetcher) *Manager {
	return NewManagerWithConfigs(DefaultConfigs(), newStore, fetcher)
}

// NewManagerWithConfigs is NewManager with explicit budgets, for tests
// and non-default deployments.
func NewManagerWithConfigs(configs map[string]Config, newStore StoreFactory, fetcher Fetcher) *Manager {
	m := &Manager{caches: make(map[string]*Cache, len(configs))}
	for module, cfg := range configs {
		var store blobstore.Store
		if newStore != nil {
			s, err := newStore(module)
			if err != nil {
				nklog.Warnf("%s cache: persistent tier unavailable, running memory-only: %v", module, err)
			} else {
				store = s
			}
		}
		m.caches[module] = New(module, cfg, store, fetcher)
	}
	return m
}

// Cache returns the cache for a module name.
func (m *Manager) Cache(module string) (*Cache, error) {
	c, ok := m.caches[module]
	if !ok {
		return nil, fmt.Errorf("no cache configured for module %q", module)
	}
	return c, nil
}

func (m *Manager) Documents() *Cache  { return m.caches[ModuleDocuments] }
func (m *Manager) Archive() *Cache    { return m.caches[ModuleArchive] }
func (m *Manager) Diary() *Cache      { return m.caches[ModuleDiary] }
func (m *Manager) Thumbnails() *Cache { return m.caches[ModuleThumbnails] }

// Close releases every cache's persistent store.
func (m *Manager) Close() error {
	var firstErr error
	for module, c := range m.caches {
		if c.store == nil {
			continue
		}
		if err := c.store.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing %s store: %w", module, err)
		}
	}
	return firstErr
}
