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

package unified

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/notekeep-io/notekeep/pkg/api"
	"github.com/notekeep-io/notekeep/pkg/nklog"
)

func TestNormalizeDualConventions(t *testing.T) {
	camelOnly := api.RawRecord{"uuid": "u1", "mimeType": "application/pdf"}
	snakeOnly := api.RawRecord{"uuid": "u1", "mime_type": "application/pdf"}
	both := api.RawRecord{"uuid": "u1", "mimeType": "application/pdf", "mime_type": "application/pdf"}

	a := Normalize(camelOnly, ModuleDocuments, "")
	b := Normalize(snakeOnly, ModuleDocuments, "")
	c := Normalize(both, ModuleDocuments, "")

	assert.Equal(t, a, b)
	assert.Equal(t, b, c)
	assert.Equal(t, "application/pdf", a.MimeType)
}

func TestNormalizeCamelCaseWins(t *testing.T) {
	record := api.RawRecord{
		"uuid":      "u1",
		"filename":  "new-name.pdf",
		"file_name": "old-name.pdf",
	}
	item := Normalize(record, ModuleDocuments, "")
	assert.Equal(t, "new-name.pdf", item.Filename)
}

func TestNormalizeSnakeCaseRecord(t *testing.T) {
	record := api.RawRecord{
		"uuid":          "u2",
		"file_name":     "scan.png",
		"original_name": "Scan 2026-01-05.png",
		"mime_type":     "image/png",
		"file_size":     float64(2048),
		"created_at":    "2026-01-05T10:30:00Z",
		"is_encrypted":  false,
	}

	item := Normalize(record, ModuleArchive, "folder-9")

	assert.Equal(t, "u2", item.UUID)
	assert.Equal(t, "scan.png", item.Filename)
	assert.Equal(t, "Scan 2026-01-05.png", item.OriginalName)
	assert.Equal(t, "image/png", item.MimeType)
	assert.Equal(t, int64(2048), item.FileSize)
	assert.Equal(t, time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC), item.CreatedAt)
	assert.Equal(t, "folder-9", item.EntityID)
	assert.Equal(t, ModuleArchive, item.Module)
}

func TestNormalizeMediaTypeInference(t *testing.T) {
	testCases := []struct {
		mime string
		want string
	}{
		{"image/jpeg", "image"},
		{"video/mp4", "video"},
		{"audio/webm", "audio"},
		{"application/pdf", "document"},
		{"", "document"},
	}
	for _, tc := range testCases {
		item := Normalize(api.RawRecord{"uuid": "u", "mimeType": tc.mime}, ModuleDocuments, "")
		assert.Equal(t, tc.want, item.MediaType, "mime %q", tc.mime)
	}
}

func TestNormalizeMediaTypeHintPreserved(t *testing.T) {
	item := Normalize(api.RawRecord{"uuid": "u", "mediaType": "video", "mimeType": "application/octet-stream"}, ModuleDocuments, "")
	assert.Equal(t, "video", item.MediaType)
}

func TestNormalizeEncryptionDiaryOnly(t *testing.T) {
	diary := Normalize(api.RawRecord{"uuid": "u", "isEncrypted": true}, ModuleDiary, "e1")
	assert.True(t, diary.IsEncrypted)

	doc := Normalize(api.RawRecord{"uuid": "u", "isEncrypted": true}, ModuleDocuments, "")
	assert.False(t, doc.IsEncrypted, "encryption flag outside diary is backend noise")
}

func TestNormalizeOriginalNameFallsBackToFilename(t *testing.T) {
	item := Normalize(api.RawRecord{"uuid": "u", "filename": "a.txt"}, ModuleNotes, "n1")
	assert.Equal(t, "a.txt", item.OriginalName)
}

func TestNormalizeFlatDocumentsIgnoreEntity(t *testing.T) {
	item := Normalize(api.RawRecord{"uuid": "u", "entityId": "whatever"}, ModuleDocuments, "also-ignored")
	assert.Empty(t, item.EntityID)
}

func TestDownloadPathPure(t *testing.T) {
	testCases := []struct {
		module Module
		want   string
	}{
		{ModuleDocuments, "/api/documents/u1/download"},
		{ModuleProjects, "/api/documents/u1/download"},
		{ModuleNotes, "/api/notes/files/u1/download"},
		{ModuleDiary, "/api/diary/files/u1/download"},
		{ModuleArchive, "/api/archive/items/u1/download"},
	}
	for _, tc := range testCases {
		first := DownloadPath(tc.module, "u1")
		assert.Equal(t, tc.want, first)
		// pure: call order and repetition change nothing
		assert.Equal(t, first, DownloadPath(tc.module, "u1"))
	}
}

func TestNormalizeUnparseableTimestampLogged(t *testing.T) {
	buf := new(bytes.Buffer)
	nklog.SetOutput(buf)
	defer nklog.SetOutput(os.Stderr)

	nklog.SetLevel(nklog.LevelDebug)
	defer nklog.SetLevel(nklog.LevelInfo)

	record := api.RawRecord{
		"uuid":      "u9",
		"createdAt": "28/08/2026 10:00",
	}
	item := Normalize(record, ModuleDocuments, "")

	assert.True(t, item.CreatedAt.IsZero())
	assert.Contains(t, buf.String(), "unrecognized timestamp layout")
	assert.Contains(t, buf.String(), "28/08/2026 10:00")
}

func TestModuleValid(t *testing.T) {
	assert.True(t, ModuleNotes.Valid())
	assert.True(t, ModuleProjects.Valid())
	assert.False(t, Module("settings").Valid())
	assert.False(t, Module("").Valid())
}
