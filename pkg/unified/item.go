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

import "time"

// FileItem is the module-agnostic representation of a backend file
// record. It is built transiently at read time; only the underlying
// blob is ever cached. Module plus UUID uniquely address a file across
// the whole system.
type FileItem struct {
	UUID         string
	Filename     string
	OriginalName string
	MimeType     string
	FileSize     int64
	Description  string
	CreatedAt    time.Time
	// MediaType is a coarse hint: image, video, audio or document.
	MediaType string
	// IsEncrypted is true only for diary attachments.
	IsEncrypted bool
	// FilePath and ThumbnailPath are optional server-side hints.
	FilePath      string
	ThumbnailPath string
	Module        Module
	// EntityID is the parent record (note, diary entry, archive folder
	// or project). Empty for the flat documents module.
	EntityID string
}
