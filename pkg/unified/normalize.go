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
	"strconv"
	"strings"
	"time"

	"github.com/notekeep-io/notekeep/pkg/api"
	"github.com/notekeep-io/notekeep/pkg/nklog"
)

// The backend has shipped two field-naming conventions over time.
// Normalization is an explicit mapping table applied once at this
// boundary; nothing downstream ever sees a raw record.
type fieldMapping struct {
	camel  string
	snake  string
	assign func(item *FileItem, v any)
}

var fileFieldMappings = []fieldMapping{
	{"uuid", "uuid", func(i *FileItem, v any) { i.UUID = asString(v) }},
	{"filename", "file_name", func(i *FileItem, v any) { i.Filename = asString(v) }},
	{"originalName", "original_name", func(i *FileItem, v any) { i.OriginalName = asString(v) }},
	{"mimeType", "mime_type", func(i *FileItem, v any) { i.MimeType = asString(v) }},
	{"fileSize", "file_size", func(i *FileItem, v any) { i.FileSize = asInt64(v) }},
	{"description", "description", func(i *FileItem, v any) { i.Description = asString(v) }},
	{"createdAt", "created_at", func(i *FileItem, v any) { i.CreatedAt = asTime(v) }},
	{"mediaType", "media_type", func(i *FileItem, v any) { i.MediaType = asString(v) }},
	{"isEncrypted", "is_encrypted", func(i *FileItem, v any) { i.IsEncrypted = asBool(v) }},
	{"filePath", "file_path", func(i *FileItem, v any) { i.FilePath = asString(v) }},
	{"thumbnailPath", "thumbnail_path", func(i *FileItem, v any) { i.ThumbnailPath = asString(v) }},
	{"entityId", "entity_id", func(i *FileItem, v any) { i.EntityID = asString(v) }},
}

// Normalize converts a raw backend record into a FileItem, accepting
// either naming convention for every field. The camelCase spelling wins
// when a record carries both.
func Normalize(record api.RawRecord, module Module, entityID string) FileItem {
	item := FileItem{Module: module, EntityID: entityID}

	for _, m := range fileFieldMappings {
		if v, ok := record[m.camel]; ok && v != nil {
			m.assign(&item, v)
			continue
		}
		if v, ok := record[m.snake]; ok && v != nil {
			m.assign(&item, v)
		}
	}

	if item.OriginalName == "" {
		item.OriginalName = item.Filename
	}
	if item.MediaType == "" {
		item.MediaType = mediaTypeFromMime(item.MimeType)
	}
	// encryption is a diary-only property; stray flags on other
	// modules are backend noise, not a contract
	if item.Module != ModuleDiary {
		item.IsEncrypted = false
	}
	if item.Module == ModuleDocuments {
		item.EntityID = ""
	}
	return item
}

// NormalizeAll maps a raw listing into FileItems.
func NormalizeAll(records []api.RawRecord, module Module, entityID string) []FileItem {
	items := make([]FileItem, 0, len(records))
	for _, r := range records {
		items = append(items, Normalize(r, module, entityID))
	}
	return items
}

func mediaTypeFromMime(mime string) string {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return "image"
	case strings.HasPrefix(mime, "video/"):
		return "video"
	case strings.HasPrefix(mime, "audio/"):
		return "audio"
	default:
		return "document"
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case float64: // encoding/json default for numbers
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	}
	return 0
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true" || b == "1"
	}
	return false
}

func asTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	// distinguishes backend timestamp drift from an absent field
	nklog.Debugf("unrecognized timestamp layout %q", s)
	return time.Time{}
}
