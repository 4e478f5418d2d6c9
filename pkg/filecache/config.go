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

package filecache

import "time"

// Config bounds a single module cache.
type Config struct {
	// MaxSize is the total byte budget across all entries.
	MaxSize int64
	// MaxFiles is the entry-count ceiling.
	MaxFiles int
	// TTL is the default validity duration for new entries.
	TTL time.Duration
	// ThumbnailSize bounds the longest side of generated previews.
	ThumbnailSize int
	// GenerateThumbnails derives previews for image blobs on insert.
	GenerateThumbnails bool
}

// Cache names for the four module caches a Manager owns.
const (
	ModuleDocuments  = "documents"
	ModuleArchive    = "archive"
	ModuleDiary      = "diary"
	ModuleThumbnails = "thumbnails"
)

// DefaultConfigs returns the per-module cache budgets. The thumbnails
// cache has generation disabled because it is itself the thumbnail tier.
func DefaultConfigs() map[string]Config {
	return map[string]Config{
		ModuleDocuments: {
			MaxSize:            50 * 1024 * 1024,
			MaxFiles:           500,
			TTL:                24 * time.Hour,
			ThumbnailSize:      200,
			GenerateThumbnails: true,
		},
		ModuleArchive: {
			MaxSize:            100 * 1024 * 1024,
			MaxFiles:           1000,
			TTL:                7 * 24 * time.Hour,
			ThumbnailSize:      200,
			GenerateThumbnails: true,
		},
		ModuleDiary: {
			MaxSize:            25 * 1024 * 1024,
			MaxFiles:           200,
			TTL:                3 * 24 * time.Hour,
			ThumbnailSize:      150,
			GenerateThumbnails: true,
		},
		ModuleThumbnails: {
			MaxSize:            10 * 1024 * 1024,
			MaxFiles:           2000,
			TTL:                7 * 24 * time.Hour,
			GenerateThumbnails: false,
		},
	}
}
