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

package api

// RawRecord is a backend file record before normalization. The backend
// has shipped both camelCase and snake_case field names over time, so
// records stay untyped until the unified layer maps them.
type RawRecord = map[string]any

// CommitRequest attaches metadata to a finished chunked upload,
// converting it into a permanent record.
type CommitRequest struct {
	UploadID     string   `json:"uploadId"`
	Filename     string   `json:"filename"`
	MimeType     string   `json:"mimeType"`
	Size         int64    `json:"size"`
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	ProjectUUIDs []string `json:"projectUuids,omitempty"`
}

// PreflightResponse is the backend's verdict on whether a file can be
// deleted without breaking cross-module references.
type PreflightResponse struct {
	CanDelete bool   `json:"canDelete"`
	Warning   string `json:"warning,omitempty"`
}

// ErrorResponse is the backend's error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
