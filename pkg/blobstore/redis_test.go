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
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
)

func TestRedisStore_Put(t *testing.T) {
	meta := EntryMeta{
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		TTL:       time.Hour,
		Size:      3,
		MimeType:  "text/plain",
	}
	metaJSON, _ := json.Marshal(meta)

	testCases := []struct {
		name    string
		key     string
		data    []byte
		mocker  func(mock redismock.ClientMock)
		wantErr bool
	}{
		{
			name: "success",
			key:  "doc1",
			data: []byte("abc"),
			mocker: func(mock redismock.ClientMock) {
				mock.ExpectSet("nk:documents:meta:doc1", metaJSON, time.Hour).SetVal("OK")
				mock.ExpectSet("nk:documents:blob:doc1", []byte("abc"), time.Hour).SetVal("OK")
			},
			wantErr: false,
		},
		{
			name: "blob write fails, meta rolled back",
			key:  "doc2",
			data: []byte("abc"),
			mocker: func(mock redismock.ClientMock) {
				mock.ExpectSet("nk:documents:meta:doc2", metaJSON, time.Hour).SetVal("OK")
				mock.ExpectSet("nk:documents:blob:doc2", []byte("abc"), time.Hour).SetErr(errors.New("redis error"))
				mock.ExpectDel("nk:documents:meta:doc2").SetVal(1)
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, mock := redismock.NewClientMock()
			store := &RedisStore{client: client, prefix: "documents"}

			tc.mocker(mock)
			err := store.Put(context.Background(), tc.key, tc.data, meta)
			if (err != nil) != tc.wantErr {
				t.Errorf("Put() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("there were unfulfilled expectations: %s", err)
			}
		})
	}
}

func TestRedisStore_Get(t *testing.T) {
	meta := EntryMeta{
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		TTL:       time.Hour,
		Size:      3,
		MimeType:  "text/plain",
	}
	metaJSON, _ := json.Marshal(meta)

	testCases := []struct {
		name     string
		key      string
		mocker   func(mock redismock.ClientMock)
		wantData []byte
		wantErr  error
	}{
		{
			name: "success",
			key:  "doc1",
			mocker: func(mock redismock.ClientMock) {
				mock.ExpectGet("nk:documents:meta:doc1").SetVal(string(metaJSON))
				mock.ExpectGet("nk:documents:blob:doc1").SetVal("abc")
			},
			wantData: []byte("abc"),
		},
		{
			name: "meta missing",
			key:  "gone",
			mocker: func(mock redismock.ClientMock) {
				mock.ExpectGet("nk:documents:meta:gone").SetErr(redis.Nil)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "blob expired between reads",
			key:  "doc3",
			mocker: func(mock redismock.ClientMock) {
				mock.ExpectGet("nk:documents:meta:doc3").SetVal(string(metaJSON))
				mock.ExpectGet("nk:documents:blob:doc3").SetErr(redis.Nil)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "corrupt metadata",
			key:  "doc4",
			mocker: func(mock redismock.ClientMock) {
				mock.ExpectGet("nk:documents:meta:doc4").SetVal("not json")
			},
			wantErr: errors.New("corrupt"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, mock := redismock.NewClientMock()
			store := &RedisStore{client: client, prefix: "documents"}

			tc.mocker(mock)
			data, gotMeta, err := store.Get(context.Background(), tc.key)

			if tc.wantErr != nil {
				if err == nil {
					t.Fatalf("Get() expected error, got nil")
				}
				if errors.Is(tc.wantErr, ErrNotFound) && !errors.Is(err, ErrNotFound) {
					t.Errorf("Get() error = %v, want ErrNotFound", err)
				}
			} else {
				if err != nil {
					t.Fatalf("Get() unexpected error: %v", err)
				}
				if string(data) != string(tc.wantData) {
					t.Errorf("Get() data = %q, want %q", data, tc.wantData)
				}
				if gotMeta.MimeType != meta.MimeType {
					t.Errorf("Get() mimeType = %q, want %q", gotMeta.MimeType, meta.MimeType)
				}
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("there were unfulfilled expectations: %s", err)
			}
		})
	}
}

func TestRedisStore_Delete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := &RedisStore{client: client, prefix: "diary"}

	mock.ExpectDel("nk:diary:meta:e1", "nk:diary:blob:e1").SetVal(2)

	if err := store.Delete(context.Background(), "e1"); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestRedisStore_Clear(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := &RedisStore{client: client, prefix: "diary"}

	mock.ExpectScan(0, "nk:diary:*", 100).SetVal([]string{"nk:diary:meta:a", "nk:diary:blob:a"}, 0)
	mock.ExpectDel("nk:diary:meta:a", "nk:diary:blob:a").SetVal(2)

	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("Clear() unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
