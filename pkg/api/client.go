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

// Package api is the HTTP client for the notekeep backend's per-module
// file endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

// Client is a simple HTTP client for the notekeep API.
type Client struct {
	baseURL   string
	http      *http.Client
	authToken string
}

// NewClient creates a new API client. httpClient may be nil.
func NewClient(baseURL, authToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      httpClient,
		authToken: strings.TrimSpace(authToken),
	}
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// ListDocuments fetches the flat document list.
func (c *Client) ListDocuments(ctx context.Context) ([]RawRecord, error) {
	var resp []RawRecord
	err := c.do(ctx, http.MethodGet, "/api/documents", nil, &resp)
	return resp, err
}

// ListNoteFiles fetches attachments of a note.
func (c *Client) ListNoteFiles(ctx context.Context, noteID string) ([]RawRecord, error) {
	var resp []RawRecord
	err := c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(noteID)+"/files", nil, &resp)
	return resp, err
}

// ListDiaryEntryFiles fetches attachments of a diary entry.
func (c *Client) ListDiaryEntryFiles(ctx context.Context, entryID string) ([]RawRecord, error) {
	var resp []RawRecord
	err := c.do(ctx, http.MethodGet, "/api/diary/entries/"+url.PathEscape(entryID)+"/files", nil, &resp)
	return resp, err
}

// ListArchiveItems fetches the items of an archive folder.
func (c *Client) ListArchiveItems(ctx context.Context, folderID string) ([]RawRecord, error) {
	var resp []RawRecord
	err := c.do(ctx, http.MethodGet, "/api/archive/folders/"+url.PathEscape(folderID)+"/items", nil, &resp)
	return resp, err
}

// ListProjectDocuments fetches documents linked to a project.
func (c *Client) ListProjectDocuments(ctx context.Context, projectID string) ([]RawRecord, error) {
	var resp []RawRecord
	err := c.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(projectID)+"/documents", nil, &resp)
	return resp, err
}

// CommitUpload posts metadata for a finished upload to the
// module-specific commit path and returns the permanent record.
func (c *Client) CommitUpload(ctx context.Context, path string, req CommitRequest) (RawRecord, error) {
	var resp RawRecord
	err := c.doBody(ctx, http.MethodPost, path, req, &resp)
	return resp, err
}

// DeletePreflight asks whether a file is safely deletable.
func (c *Client) DeletePreflight(ctx context.Context, uuid string) (PreflightResponse, error) {
	var resp PreflightResponse
	err := c.do(ctx, http.MethodGet, "/api/files/"+url.PathEscape(uuid)+"/delete-preflight", nil, &resp)
	return resp, err
}

// DeleteDocument hard-deletes a flat document.
func (c *Client) DeleteDocument(ctx context.Context, uuid string) error {
	return c.do(ctx, http.MethodDelete, "/api/documents/"+url.PathEscape(uuid), nil, nil)
}

// DeleteArchiveItem hard-deletes an archive item.
func (c *Client) DeleteArchiveItem(ctx context.Context, uuid string) error {
	return c.do(ctx, http.MethodDelete, "/api/archive/items/"+url.PathEscape(uuid), nil, nil)
}

// UnlinkNoteFile detaches a file from a note without deleting it.
func (c *Client) UnlinkNoteFile(ctx context.Context, noteID, uuid string) error {
	path := "/api/notes/" + url.PathEscape(noteID) + "/files/" + url.PathEscape(uuid) + "/unlink"
	return c.doBody(ctx, http.MethodPost, path, nil, nil)
}

// UnlinkDiaryFile detaches a file from a diary entry.
func (c *Client) UnlinkDiaryFile(ctx context.Context, entryID, uuid string) error {
	path := "/api/diary/entries/" + url.PathEscape(entryID) + "/files/" + url.PathEscape(uuid) + "/unlink"
	return c.doBody(ctx, http.MethodPost, path, nil, nil)
}

// ReorderProjectFiles persists a new file ordering for a project.
func (c *Client) ReorderProjectFiles(ctx context.Context, projectID string, uuids []string) error {
	path := "/api/projects/" + url.PathEscape(projectID) + "/files/order"
	return c.doBody(ctx, http.MethodPut, path, map[string]any{"fileUuids": uuids}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	return c.request(ctx, method, path, query, nil, out)
}

func (c *Client) doBody(ctx context.Context, method, path string, body, out any) error {
	return c.request(ctx, method, path, nil, body, out)
}

func (c *Client) request(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		if errResp.Code != "" {
			return fmt.Errorf("%s: %s", errResp.Code, errResp.Error)
		}
		return fmt.Errorf("%s", errResp.Error)
	}
	return fmt.Errorf("api error: %s", resp.Status)
}
