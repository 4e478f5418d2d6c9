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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioOptions configures an object-storage backed store.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// Prefix namespaces this store's objects inside the bucket, so
	// several module caches can share one bucket.
	Prefix string
}

// MinioStore keeps cache blobs in an S3-compatible bucket. Useful for
// users who point the persistent tier at self-hosted object storage.
type MinioStore struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioStore initializes the client and ensures the bucket exists.
func NewMinioStore(opts MinioOptions) (*MinioStore, error) {
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" || opts.Bucket == "" {
		return nil, fmt.Errorf("minio endpoint, credentials and bucket are required")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return &MinioStore{client: client, bucket: opts.Bucket, prefix: opts.Prefix}, nil
}

func (s *MinioStore) blobName(key string) string {
	return s.prefix + "/blob/" + key
}

func (s *MinioStore) metaName(key string) string {
	return s.prefix + "/meta/" + key
}

func (s *MinioStore) Put(ctx context.Context, key string, data []byte, meta EntryMeta) error {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	contentType := meta.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, s.bucket, s.blobName(key),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, s.bucket, s.metaName(key),
		bytes.NewReader(metaJSON), int64(len(metaJSON)),
		minio.PutObjectOptions{ContentType: "application/json"})
	return err
}

func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, EntryMeta, error) {
	var zero EntryMeta

	metaJSON, err := s.readObject(ctx, s.metaName(key))
	if err != nil {
		return nil, zero, err
	}
	var meta EntryMeta
	if err := json.Unmarshal(metaJSON, &meta); err != nil {
		return nil, zero, fmt.Errorf("corrupt metadata for %q: %w", key, err)
	}

	data, err := s.readObject(ctx, s.blobName(key))
	if err != nil {
		return nil, zero, err
	}
	return data, meta, nil
}

func (s *MinioStore) readObject(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, s.blobName(key), minio.RemoveObjectOptions{}); err != nil {
		return err
	}
	return s.client.RemoveObject(ctx, s.bucket, s.metaName(key), minio.RemoveObjectOptions{})
}

func (s *MinioStore) Clear(ctx context.Context) error {
	objectCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix + "/",
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return object.Err
		}
		if err := s.client.RemoveObject(ctx, s.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return err
		}
	}
	return nil
}

func (s *MinioStore) Close() error { return nil }
