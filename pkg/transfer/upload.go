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

package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// uploadChunkSize is the payload size of a single chunk PUT.
const uploadChunkSize = 256 * 1024

// Uploader streams file bytes to the backend's chunked-upload endpoint.
// The upload is a handshake (POST /api/uploads) followed by numbered
// chunk PUTs; attaching metadata is a separate commit call owned by the
// unified file service.
type Uploader struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewUploader creates an uploader against baseURL. client may be nil.
func NewUploader(client *http.Client, baseURL, token string) *Uploader {
	if client == nil {
		client = &http.Client{}
	}
	return &Uploader{client: client, baseURL: strings.TrimRight(baseURL, "/"), token: token}
}

type uploadHandshake struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

type uploadHandshakeResponse struct {
	UploadID string `json:"uploadId"`
}

// Upload performs the handshake and streams data in chunks, invoking
// progress after each one. It returns the upload identifier the commit
// call must reference.
func (u *Uploader) Upload(ctx context.Context, filename, mimeType string, data []byte, progress ProgressFunc) (string, error) {
	uploadID, err := u.handshake(ctx, filename, mimeType, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("upload handshake: %w", err)
	}

	total := int64(len(data))
	var transferred int64
	for n := 0; transferred < total || (total == 0 && n == 0); n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		end := transferred + uploadChunkSize
		if end > total {
			end = total
		}
		if err := u.putChunk(ctx, uploadID, n, data[transferred:end]); err != nil {
			return "", fmt.Errorf("upload chunk %d: %w", n, err)
		}
		transferred = end
		if progress != nil {
			progress(transferred, total)
		}
	}

	return uploadID, nil
}

func (u *Uploader) handshake(ctx context.Context, filename, mimeType string, size int64) (string, error) {
	payload, err := json.Marshal(uploadHandshake{Filename: filename, MimeType: mimeType, Size: size})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/api/uploads", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	u.setAuth(req)

	resp, err := u.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("handshake failed: %s", resp.Status)
	}

	var hr uploadHandshakeResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		return "", err
	}
	if hr.UploadID == "" {
		// older backends leave id assignment to the client
		return uuid.NewString(), nil
	}
	return hr.UploadID, nil
}

func (u *Uploader) putChunk(ctx context.Context, uploadID string, n int, chunk []byte) error {
	url := fmt.Sprintf("%s/api/uploads/%s/chunks/%d", u.baseURL, uploadID, n)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(chunk))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	u.setAuth(req)

	resp, err := u.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("chunk upload failed: %s", resp.Status)
	}
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (u *Uploader) setAuth(req *http.Request) {
	if u.token != "" {
		req.Header.Set("Authorization", "Bearer "+u.token)
	}
}
