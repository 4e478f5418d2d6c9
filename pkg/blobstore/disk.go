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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps blobs in a local directory tree. Cache keys are
// opaque strings, so file names are derived from the key's SHA-256
// digest rather than the key itself.
type DiskStore struct {
	root string
}

// NewDiskStore creates a disk store rooted at root, creating the
// directory if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("disk store root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, "tmp"), 0o700); err != nil {
		return nil, err
	}
	return &DiskStore{root: abs}, nil
}

func (s *DiskStore) Put(ctx context.Context, key string, data []byte, meta EntryMeta) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	blobPath, metaPath, err := s.paths(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(blobPath), 0o700); err != nil {
		return err
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	if err := s.writeAtomic(blobPath, data); err != nil {
		return err
	}
	if err := s.writeAtomic(metaPath, metaJSON); err != nil {
		_ = os.Remove(blobPath)
		return err
	}
	return nil
}

func (s *DiskStore) Get(ctx context.Context, key string) ([]byte, EntryMeta, error) {
	var zero EntryMeta
	if err := ctx.Err(); err != nil {
		return nil, zero, err
	}

	blobPath, metaPath, err := s.paths(key)
	if err != nil {
		return nil, zero, err
	}

	metaJSON, err := os.ReadFile(metaPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, zero, ErrNotFound
		}
		return nil, zero, err
	}
	var meta EntryMeta
	if err := json.Unmarshal(metaJSON, &meta); err != nil {
		return nil, zero, fmt.Errorf("corrupt metadata for %q: %w", key, err)
	}

	data, err := os.ReadFile(blobPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, zero, ErrNotFound
		}
		return nil, zero, err
	}
	return data, meta, nil
}

func (s *DiskStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	blobPath, metaPath, err := s.paths(key)
	if err != nil {
		return err
	}
	if err := os.Remove(blobPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.Remove(metaPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *DiskStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.RemoveAll(s.root); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(s.root, "tmp"), 0o700); err != nil {
		return err
	}
	return nil
}

func (s *DiskStore) Close() error { return nil }

// writeAtomic stages data in the tmp dir and renames it into place so a
// crash mid-write never leaves a truncated blob under a live path.
func (s *DiskStore) writeAtomic(dst string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Join(s.root, "tmp"), "put-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func (s *DiskStore) paths(key string) (blobPath, metaPath string, err error) {
	if strings.TrimSpace(key) == "" {
		return "", "", fmt.Errorf("key is required")
	}
	sum := sha256.Sum256([]byte(key))
	digest := hex.EncodeToString(sum[:])
	dir := filepath.Join(s.root, digest[0:2])
	return filepath.Join(dir, digest+".bin"), filepath.Join(dir, digest+".json"), nil
}
