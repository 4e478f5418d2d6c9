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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps blobs and their metadata in Redis (or Dragonfly)
// under a key prefix, with the entry TTL mapped onto native expiry.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(addr, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) metaKey(key string) string {
	return fmt.Sprintf("nk:%s:meta:%s", s.prefix, key)
}

func (s *RedisStore) blobKey(key string) string {
	return fmt.Sprintf("nk:%s:blob:%s", s.prefix, key)
}

func (s *RedisStore) Put(ctx context.Context, key string, data []byte, meta EntryMeta) error {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.metaKey(key), metaJSON, meta.TTL).Err(); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.blobKey(key), data, meta.TTL).Err(); err != nil {
		_ = s.client.Del(ctx, s.metaKey(key)).Err()
		return err
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, EntryMeta, error) {
	var zero EntryMeta

	metaJSON, err := s.client.Get(ctx, s.metaKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, zero, ErrNotFound
		}
		return nil, zero, err
	}
	var meta EntryMeta
	if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
		return nil, zero, fmt.Errorf("corrupt metadata for %q: %w", key, err)
	}

	data, err := s.client.Get(ctx, s.blobKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, zero, ErrNotFound
		}
		return nil, zero, err
	}
	return data, meta, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.metaKey(key), s.blobKey(key)).Err()
}

func (s *RedisStore) Clear(ctx context.Context) error {
	pattern := fmt.Sprintf("nk:%s:*", s.prefix)
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (s *RedisStore) Close() error {
	if c, ok := s.client.(*redis.Client); ok {
		return c.Close()
	}
	return nil
}
