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

// Package transfer moves file blobs between the client and the backend
// in chunks, reporting progress to the caller after every chunk.
package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// downloadChunkSize is the read buffer used when draining a response
// body, so progress callbacks fire at a steady granularity.
const downloadChunkSize = 64 * 1024

// ProgressFunc receives the running byte count of a transfer. total is
// -1 when the remote side did not announce a length.
type ProgressFunc func(transferred, total int64)

// Downloader fetches files over HTTP.
type Downloader struct {
	client *http.Client
	token  string
}

// NewDownloader creates a downloader. client may be nil to use a
// default client; token, when non-empty, is sent as a bearer token.
func NewDownloader(client *http.Client, token string) *Downloader {
	if client == nil {
		client = &http.Client{}
	}
	return &Downloader{client: client, token: token}
}

// Download retrieves url, invoking progress after each chunk. The
// context cancels the transfer mid-stream.
func (d *Downloader) Download(ctx context.Context, url string, progress ProgressFunc) (data []byte, mimeType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("download failed: %s", resp.Status)
	}

	total := resp.ContentLength // -1 when unknown
	mimeType = resp.Header.Get("Content-Type")

	var buf bytes.Buffer
	chunk := make([]byte, downloadChunkSize)
	var transferred int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			transferred += int64(n)
			if progress != nil {
				progress(transferred, total)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return nil, "", readErr
		}
	}

	return buf.Bytes(), mimeType, nil
}

// Fetch implements the file cache's Fetcher interface.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	return d.Download(ctx, url, nil)
}
