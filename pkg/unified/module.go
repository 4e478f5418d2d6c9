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

import "github.com/notekeep-io/notekeep/pkg/filecache"

// Module is one of the five content domains that own their backend
// file-storage endpoints.
type Module string

const (
	ModuleNotes     Module = "notes"
	ModuleDiary     Module = "diary"
	ModuleDocuments Module = "documents"
	ModuleArchive   Module = "archive"
	ModuleProjects  Module = "projects"
)

// Valid reports whether m names a known module.
func (m Module) Valid() bool {
	switch m {
	case ModuleNotes, ModuleDiary, ModuleDocuments, ModuleArchive, ModuleProjects:
		return true
	}
	return false
}

// cacheName maps a content module onto the cache that holds its blobs.
// Notes attachments and project documents live on the documents
// endpoints, so they share the documents cache budget.
func (m Module) cacheName() string {
	switch m {
	case ModuleDiary:
		return filecache.ModuleDiary
	case ModuleArchive:
		return filecache.ModuleArchive
	default:
		return filecache.ModuleDocuments
	}
}

// DownloadPath resolves the backend download path for a file. It is a
// pure function of (module, uuid): same inputs, same path, always.
func DownloadPath(m Module, uuid string) string {
	switch m {
	case ModuleNotes:
		return "/api/notes/files/" + uuid + "/download"
	case ModuleDiary:
		return "/api/diary/files/" + uuid + "/download"
	case ModuleArchive:
		return "/api/archive/items/" + uuid + "/download"
	default:
		// documents; projects reuse the documents endpoint
		return "/api/documents/" + uuid + "/download"
	}
}
