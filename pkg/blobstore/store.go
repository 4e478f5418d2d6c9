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

package blobstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent from the store.
var ErrNotFound = errors.New("blobstore: key not found")

// EntryMeta describes a stored blob. It travels with the payload so a
// cache rebuilt from the persistent tier can restore expiry and
// thumbnail bookkeeping.
type EntryMeta struct {
	Timestamp   time.Time     `json:"timestamp"`
	TTL         time.Duration `json:"ttl"`
	Size        int64         `json:"size"`
	MimeType    string        `json:"mimeType"`
	IsThumbnail bool          `json:"isThumbnail"`
	OriginalKey string        `json:"originalKey,omitempty"`
}

// Expired reports whether the entry is past its TTL at the given time.
// A zero TTL never expires.
func (m EntryMeta) Expired(now time.Time) bool {
	if m.TTL <= 0 {
		return false
	}
	return now.Sub(m.Timestamp) >= m.TTL
}

// Store is the persistent tier of the file cache. Implementations must
// be safe for concurrent use.
type Store interface {
	// Put stores the blob and its metadata under key, replacing any
	// previous value.
	Put(ctx context.Context, key string, data []byte, meta EntryMeta) error

	// Get retrieves the blob and metadata for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, EntryMeta, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry owned by this store instance.
	Clear(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
