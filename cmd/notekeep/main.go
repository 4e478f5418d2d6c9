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

package main

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/notekeep-io/notekeep/pkg/api"
	"github.com/notekeep-io/notekeep/pkg/blobstore"
	"github.com/notekeep-io/notekeep/pkg/config"
	"github.com/notekeep-io/notekeep/pkg/filecache"
	"github.com/notekeep-io/notekeep/pkg/nklog"
	"github.com/notekeep-io/notekeep/pkg/transfer"
	"github.com/notekeep-io/notekeep/pkg/unified"
)

const usage = `Usage: notekeep <command> [args]

Commands:
  list     <module> [entityID]              List files of a module.
  upload   <module> <entityID> <path>...    Upload local files.
  download <module> <entityID> <uuid>       Download a file to the current directory.
  delete   <module> <entityID> <uuid>       Delete (or unlink) a file.
  stats                                     Print cache statistics.
  clear                                     Clear every cache tier.
`

func main() {
	if err := config.InitConfig(); err != nil {
		nklog.Fatalf("Failed to initialize configuration: %v", err)
	}

	cfg := config.Get()

	logLevel, err := nklog.ParseLevel(cfg.LogLevel)
	if err != nil {
		nklog.Warnf("Invalid initial log level '%s': %v. Using default.", cfg.LogLevel, err)
	}
	nklog.SetLevel(logLevel)

	args := pflag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	httpClient := &http.Client{Timeout: 5 * time.Minute}
	client := api.NewClient(cfg.BaseURL, cfg.APIToken, httpClient)
	downloader := transfer.NewDownloader(httpClient, cfg.APIToken)
	uploader := transfer.NewUploader(httpClient, cfg.BaseURL, cfg.APIToken)

	caches := filecache.NewManager(storeFactory(cfg), downloader)
	defer func() {
		if err := caches.Close(); err != nil {
			nklog.Errorf("Error closing caches: %v", err)
		}
	}()

	svc := unified.NewService(client, caches, downloader, uploader)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, svc, caches, args); err != nil {
		nklog.Fatalf("%v", err)
	}
}

// storeFactory builds the persistent tier named by cacheTier. Every
// module cache gets its own namespace within the tier.
func storeFactory(cfg config.Config) filecache.StoreFactory {
	switch cfg.CacheTier {
	case "disk":
		return func(module string) (blobstore.Store, error) {
			return blobstore.NewDiskStore(filepath.Join(os.ExpandEnv(cfg.CacheDir), module))
		}
	case "redis":
		return func(module string) (blobstore.Store, error) {
			return blobstore.NewRedisStore(cfg.RedisAddr, module)
		}
	case "minio":
		return func(module string) (blobstore.Store, error) {
			return blobstore.NewMinioStore(blobstore.MinioOptions{
				Endpoint:  cfg.Minio.Endpoint,
				AccessKey: cfg.Minio.AccessKey,
				SecretKey: cfg.Minio.SecretKey,
				Bucket:    cfg.Minio.Bucket,
				UseSSL:    cfg.Minio.UseSSL,
				Prefix:    module,
			})
		}
	case "", "none":
		return nil
	default:
		nklog.Warnf("Unknown cache tier '%s', running memory-only.", cfg.CacheTier)
		return nil
	}
}

func run(ctx context.Context, svc *unified.Service, caches *filecache.Manager, args []string) error {
	switch cmd := args[0]; cmd {
	case "list":
		if len(args) < 2 {
			return fmt.Errorf("list needs a module name")
		}
		entityID := ""
		if len(args) > 2 {
			entityID = args[2]
		}
		return listFiles(ctx, svc, unified.Module(args[1]), entityID)

	case "upload":
		if len(args) < 4 {
			return fmt.Errorf("upload needs a module, an entity ID and at least one path")
		}
		return uploadFiles(ctx, svc, unified.Module(args[1]), args[2], args[3:])

	case "download":
		if len(args) != 4 {
			return fmt.Errorf("download needs a module, an entity ID and a file UUID")
		}
		return downloadFile(ctx, svc, unified.Module(args[1]), args[2], args[3])

	case "delete":
		if len(args) != 4 {
			return fmt.Errorf("delete needs a module, an entity ID and a file UUID")
		}
		return deleteFile(ctx, svc, unified.Module(args[1]), args[2], args[3])

	case "stats":
		return printStats(caches)

	case "clear":
		return clearCaches(ctx, caches)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func listFiles(ctx context.Context, svc *unified.Service, module unified.Module, entityID string) error {
	items, err := svc.GetFiles(ctx, module, entityID)
	if err != nil {
		return err
	}
	for _, it := range items {
		fmt.Printf("%s  %-40s  %10d  %s\n", it.UUID, it.OriginalName, it.FileSize, it.MimeType)
	}
	nklog.Infof("%d file(s) in %s", len(items), module)
	return nil
}

func uploadFiles(ctx context.Context, svc *unified.Service, module unified.Module, entityID string, paths []string) error {
	blobs := make([]unified.NamedBlob, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		mimeType := mime.TypeByExtension(filepath.Ext(p))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		blobs = append(blobs, unified.NamedBlob{
			Filename: filepath.Base(p),
			MimeType: mimeType,
			Data:     data,
		})
	}

	items, err := svc.UploadFiles(ctx, module, entityID, blobs, unified.UploadOptions{
		Progress: func(transferred, total int64) {
			nklog.Debugf("uploaded %d/%d bytes", transferred, total)
		},
	})
	for _, it := range items {
		nklog.Infof("Uploaded %s as %s", it.OriginalName, it.UUID)
	}
	return err
}

func downloadFile(ctx context.Context, svc *unified.Service, module unified.Module, entityID, uuid string) error {
	file, err := findFile(ctx, svc, module, entityID, uuid)
	if err != nil {
		return err
	}

	data, err := svc.DownloadFile(ctx, file, nil, func(transferred, total int64) {
		nklog.Debugf("downloaded %d/%d bytes", transferred, total)
	})
	if err != nil {
		return err
	}

	name := file.OriginalName
	if name == "" {
		name = uuid
	}
	out := filepath.Base(name)
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	nklog.Infof("Saved %s (%d bytes)", out, len(data))
	return nil
}

func deleteFile(ctx context.Context, svc *unified.Service, module unified.Module, entityID, uuid string) error {
	file, err := findFile(ctx, svc, module, entityID, uuid)
	if err != nil {
		return err
	}
	if err := svc.DeleteFile(ctx, file); err != nil {
		return err
	}
	nklog.Infof("Deleted %s", uuid)
	return nil
}

func findFile(ctx context.Context, svc *unified.Service, module unified.Module, entityID, uuid string) (unified.FileItem, error) {
	items, err := svc.GetFiles(ctx, module, entityID)
	if err != nil {
		return unified.FileItem{}, err
	}
	for _, it := range items {
		if it.UUID == uuid {
			return it, nil
		}
	}
	return unified.FileItem{}, fmt.Errorf("no file %s in %s", uuid, module)
}

func printStats(caches *filecache.Manager) error {
	for _, c := range []*filecache.Cache{
		caches.Documents(), caches.Archive(), caches.Diary(), caches.Thumbnails(),
	} {
		if c == nil {
			continue
		}
		s := c.Stats()
		fmt.Printf("%-12s files=%d size=%d/%d hits=%d misses=%d evictions=%d hitRate=%.1f%% avg=%s\n",
			c.Name(), s.FileCount, s.TotalSize, s.MaxSize,
			s.Hits, s.Misses, s.Evictions, s.HitRate, s.AvgResponseTime)
	}
	return nil
}

func clearCaches(ctx context.Context, caches *filecache.Manager) error {
	for _, c := range []*filecache.Cache{
		caches.Documents(), caches.Archive(), caches.Diary(), caches.Thumbnails(),
	} {
		if c == nil {
			continue
		}
		c.Clear(ctx)
		nklog.Infof("Cleared %s cache", c.Name())
	}
	return nil
}
