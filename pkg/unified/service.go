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

// Package unified is the single entry point for file operations across
// the notes, diary, documents, archive and projects modules. It hides
// per-module backend differences (endpoint shapes, field naming,
// encryption) behind one file abstraction, delegating blobs to the
// file cache and byte movement to the transfer layer.
package unified

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/notekeep-io/notekeep/pkg/api"
	"github.com/notekeep-io/notekeep/pkg/filecache"
	"github.com/notekeep-io/notekeep/pkg/nklog"
	"github.com/notekeep-io/notekeep/pkg/transfer"
	"github.com/notekeep-io/notekeep/pkg/vaultcrypt"
)

// maxCachedDownload is the largest blob DownloadFile will route through
// the cache; anything bigger streams straight to the caller.
const maxCachedDownload = 100 * 1024 * 1024

// Service is the unified file service.
type Service struct {
	api        *api.Client
	caches     *filecache.Manager
	downloader *transfer.Downloader
	uploader   *transfer.Uploader
}

// NewService wires the unified service over its collaborators.
func NewService(client *api.Client, caches *filecache.Manager, downloader *transfer.Downloader, uploader *transfer.Uploader) *Service {
	return &Service{api: client, caches: caches, downloader: downloader, uploader: uploader}
}

// GetFiles lists the files of a module, normalized into FileItems.
// entityID scopes notes, diary, archive and projects listings; it is
// ignored for the flat documents module.
func (s *Service) GetFiles(ctx context.Context, module Module, entityID string) ([]FileItem, error) {
	if !module.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModule, module)
	}

	var (
		records []api.RawRecord
		err     error
	)
	switch module {
	case ModuleDocuments:
		entityID = ""
		records, err = s.api.ListDocuments(ctx)
	case ModuleNotes:
		records, err = s.api.ListNoteFiles(ctx, entityID)
	case ModuleDiary:
		records, err = s.api.ListDiaryEntryFiles(ctx, entityID)
	case ModuleArchive:
		records, err = s.api.ListArchiveItems(ctx, entityID)
	case ModuleProjects:
		records, err = s.api.ListProjectDocuments(ctx, entityID)
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s files: %w", module, err)
	}
	return NormalizeAll(records, module, entityID), nil
}

// DownloadURL resolves the absolute download URL for a file.
func (s *Service) DownloadURL(file FileItem) string {
	return s.api.BaseURL() + DownloadPath(file.Module, url.PathEscape(file.UUID))
}

// DeleteFile removes a file after a preflight safety check. When the
// preflight reports the file is not safely deletable, the delete
// endpoint is never called and the backend's warning is surfaced
// verbatim via ErrDeleteBlocked. Notes and diary files are unlinked
// from their parent rather than hard-deleted.
func (s *Service) DeleteFile(ctx context.Context, file FileItem) error {
	pre, err := s.api.DeletePreflight(ctx, file.UUID)
	if err != nil {
		return fmt.Errorf("delete preflight for %s: %w", file.UUID, err)
	}
	if !pre.CanDelete {
		return fmt.Errorf("%w: %s", ErrDeleteBlocked, pre.Warning)
	}

	switch file.Module {
	case ModuleNotes:
		err = s.api.UnlinkNoteFile(ctx, file.EntityID, file.UUID)
	case ModuleDiary:
		err = s.api.UnlinkDiaryFile(ctx, file.EntityID, file.UUID)
	case ModuleArchive:
		err = s.api.DeleteArchiveItem(ctx, file.UUID)
	case ModuleDocuments, ModuleProjects:
		err = s.api.DeleteDocument(ctx, file.UUID)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedModule, file.Module)
	}
	if err != nil {
		return fmt.Errorf("deleting %s file %s: %w", file.Module, file.UUID, err)
	}

	if cache := s.cacheFor(file.Module); cache != nil {
		cache.InvalidateFile(ctx, file.UUID)
	}
	return nil
}

// UploadOptions carry the metadata committed with an upload.
type UploadOptions struct {
	Title        string
	Description  string
	Tags         []string
	ProjectUUIDs []string
	Progress     transfer.ProgressFunc
}

// UploadFile streams a file to the backend and commits it as a
// permanent record of the given module: stage one moves the raw bytes
// through the chunked upload endpoint, stage two posts the metadata.
func (s *Service) UploadFile(ctx context.Context, module Module, entityID, filename, mimeType string, data []byte, opts UploadOptions) (FileItem, error) {
	if !module.Valid() {
		return FileItem{}, fmt.Errorf("%w: %q", ErrUnsupportedModule, module)
	}

	uploadID, err := s.uploader.Upload(ctx, filename, mimeType, data, opts.Progress)
	if err != nil {
		return FileItem{}, fmt.Errorf("uploading %s: %w", filename, err)
	}

	record, err := s.api.CommitUpload(ctx, commitPath(module, entityID), api.CommitRequest{
		UploadID:     uploadID,
		Filename:     filename,
		MimeType:     mimeType,
		Size:         int64(len(data)),
		Title:        opts.Title,
		Description:  opts.Description,
		Tags:         opts.Tags,
		ProjectUUIDs: opts.ProjectUUIDs,
	})
	if err != nil {
		return FileItem{}, fmt.Errorf("committing %s: %w", filename, err)
	}

	return Normalize(record, module, entityID), nil
}

// NamedBlob pairs a filename with its content for batch uploads.
type NamedBlob struct {
	Filename string
	MimeType string
	Data     []byte
}

// UploadFiles uploads several files sequentially, stopping at the first
// failure and returning the items committed so far alongside the error.
func (s *Service) UploadFiles(ctx context.Context, module Module, entityID string, blobs []NamedBlob, opts UploadOptions) ([]FileItem, error) {
	items := make([]FileItem, 0, len(blobs))
	for _, b := range blobs {
		item, err := s.UploadFile(ctx, module, entityID, b.Filename, b.MimeType, b.Data, opts)
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

// UploadAudioRecording wraps a raw recorded blob into a named file
// before the regular two-stage upload.
func (s *Service) UploadAudioRecording(ctx context.Context, module Module, entityID string, data []byte, opts UploadOptions) (FileItem, error) {
	name := "recording-" + time.Now().Format("20060102-150405") + ".webm"
	return s.UploadFile(ctx, module, entityID, name, "audio/webm", data, opts)
}

// DownloadFile retrieves a file's bytes. Encrypted diary attachments
// are downloaded raw and decrypted client-side with key; the plaintext
// is never cached. For every other file the module cache serves or
// populates the blob, except blobs over the cache ceiling which stream
// straight through.
func (s *Service) DownloadFile(ctx context.Context, file FileItem, key []byte, progress transfer.ProgressFunc) ([]byte, error) {
	if len(key) > 0 && file.Module != ModuleDiary {
		return nil, ErrEncryptionNotSupported
	}

	fileURL := s.DownloadURL(file)

	if file.Module == ModuleDiary && file.IsEncrypted {
		if len(key) == 0 {
			return nil, ErrMissingKey
		}
		raw, _, err := s.downloader.Download(ctx, fileURL, progress)
		if err != nil {
			return nil, fmt.Errorf("downloading encrypted file %s: %w", file.UUID, err)
		}
		plaintext, err := vaultcrypt.DecryptBlob(raw, key)
		if err != nil {
			return nil, fmt.Errorf("decrypting %s: %w", file.UUID, err)
		}
		return plaintext, nil
	}

	if file.FileSize > maxCachedDownload {
		nklog.Debugf("file %s exceeds cache ceiling, streaming uncached", file.UUID)
		data, _, err := s.downloader.Download(ctx, fileURL, progress)
		return data, err
	}

	cache := s.cacheFor(file.Module)
	if cache == nil {
		data, _, err := s.downloader.Download(ctx, fileURL, progress)
		return data, err
	}
	data, ok := cache.DownloadAndCache(ctx, fileURL, file.UUID)
	if !ok {
		return nil, fmt.Errorf("file %s is unavailable", file.UUID)
	}
	return data, nil
}

// Thumbnail returns preview bytes for a file. A server-side thumbnail
// hint wins and is cached in the thumbnail tier; when the hint fetch
// misses, or no hint exists, a preview derived at cache time is served,
// if one exists.
func (s *Service) Thumbnail(ctx context.Context, file FileItem) ([]byte, bool) {
	if file.ThumbnailPath != "" && s.caches != nil {
		if thumbs := s.caches.Thumbnails(); thumbs != nil {
			if data, ok := thumbs.DownloadAndCache(ctx, s.api.BaseURL()+file.ThumbnailPath, file.UUID); ok {
				return data, true
			}
		}
	}
	if cache := s.cacheFor(file.Module); cache != nil {
		return cache.GetThumbnail(ctx, file.UUID)
	}
	return nil, false
}

// ReorderFiles persists a new file ordering. Only the projects module
// supports ordering; calling it for anything else is an integration
// bug and fails loudly.
func (s *Service) ReorderFiles(ctx context.Context, module Module, entityID string, uuids []string) error {
	if module != ModuleProjects {
		return fmt.Errorf("%w: reorder is projects-only, got %q", ErrUnsupportedModule, module)
	}
	if err := s.api.ReorderProjectFiles(ctx, entityID, uuids); err != nil {
		return fmt.Errorf("reordering project %s files: %w", entityID, err)
	}
	return nil
}

func (s *Service) cacheFor(module Module) *filecache.Cache {
	if s.caches == nil {
		return nil
	}
	c, err := s.caches.Cache(module.cacheName())
	if err != nil {
		return nil
	}
	return c
}

func commitPath(module Module, entityID string) string {
	switch module {
	case ModuleNotes:
		return "/api/notes/" + url.PathEscape(entityID) + "/files"
	case ModuleDiary:
		return "/api/diary/entries/" + url.PathEscape(entityID) + "/files"
	case ModuleArchive:
		return "/api/archive/folders/" + url.PathEscape(entityID) + "/items"
	default:
		// documents; projects commit as documents plus project links
		return "/api/documents"
	}
}
