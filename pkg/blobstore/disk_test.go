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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMeta(size int64) EntryMeta {
	return EntryMeta{
		Timestamp: time.Now(),
		TTL:       time.Hour,
		Size:      size,
		MimeType:  "application/pdf",
	}
}

func TestDiskStore_PutGet(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte("hello blob")

	require.NoError(t, store.Put(ctx, "doc1", data, testMeta(int64(len(data)))))

	got, meta, err := store.Get(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "application/pdf", meta.MimeType)
	assert.Equal(t, int64(len(data)), meta.Size)
}

func TestDiskStore_GetMissing(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiskStore_Overwrite(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "doc1", []byte("v1"), testMeta(2)))
	require.NoError(t, store.Put(ctx, "doc1", []byte("v2"), testMeta(2)))

	got, _, err := store.Get(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestDiskStore_Delete(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "doc1", []byte("x"), testMeta(1)))
	require.NoError(t, store.Delete(ctx, "doc1"))

	_, _, err = store.Get(ctx, "doc1")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting again is not an error
	assert.NoError(t, store.Delete(ctx, "doc1"))
}

func TestDiskStore_Clear(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "a", []byte("1"), testMeta(1)))
	require.NoError(t, store.Put(ctx, "b", []byte("2"), testMeta(1)))
	require.NoError(t, store.Clear(ctx))

	_, _, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = store.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)

	// store survives a clear
	require.NoError(t, store.Put(ctx, "c", []byte("3"), testMeta(1)))
}

func TestDiskStore_KeyWithSlashes(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	key := "diary/2026-01-01/../../etc/passwd"
	require.NoError(t, store.Put(ctx, key, []byte("safe"), testMeta(4)))

	got, _, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("safe"), got)
}

func TestEntryMeta_Expired(t *testing.T) {
	now := time.Now()
	meta := EntryMeta{Timestamp: now.Add(-2 * time.Hour), TTL: time.Hour}
	assert.True(t, meta.Expired(now))

	meta.TTL = 3 * time.Hour
	assert.False(t, meta.Expired(now))

	meta.TTL = 0
	assert.False(t, meta.Expired(now))
}
