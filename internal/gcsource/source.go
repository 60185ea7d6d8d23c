// Package gcsource serves statements from a Cloud Storage bucket, the
// landing zone for manually uploaded exports. A "folder" here is
// "bucket" or "bucket/prefix"; object names act as file IDs.
package gcsource

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/finbase/statement-sync/internal/domain"
	"github.com/finbase/statement-sync/internal/syncer"
)

// Source lists and downloads statement files from GCS. It holds a shared
// client; call Close when done.
type Source struct {
	client *storage.Client
}

func New(ctx context.Context) (*Source, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("New: creating storage client: %w", err)
	}
	return &Source{client: client}, nil
}

func (s *Source) Close() error {
	return s.client.Close()
}

// ListFolder enumerates the objects under "bucket" or "bucket/prefix",
// newest-updated-first. The returned file ID is "bucket/objectName" so that
// Download needs no extra context.
func (s *Source) ListFolder(ctx context.Context, folderID string) ([]domain.RemoteFile, error) {
	bucket, prefix := splitFolderID(folderID)
	if bucket == "" {
		return nil, fmt.Errorf("ListFolder: empty bucket in folder ID %q", folderID)
	}

	it := s.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var files []domain.RemoteFile
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListFolder: iterating %s: %w", folderID, err)
		}
		// Prefix placeholders created by console "folders" have no content.
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		files = append(files, domain.RemoteFile{
			ID:           bucket + "/" + attrs.Name,
			Name:         path.Base(attrs.Name),
			MimeType:     attrs.ContentType,
			Size:         attrs.Size,
			ModifiedTime: attrs.Updated,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModifiedTime.After(files[j].ModifiedTime)
	})
	return files, nil
}

// Download reads the whole object identified by "bucket/objectName".
func (s *Source) Download(ctx context.Context, fileID string) ([]byte, error) {
	bucket, object := splitFolderID(fileID)
	if bucket == "" || object == "" {
		return nil, fmt.Errorf("Download: malformed file ID %q, want bucket/object", fileID)
	}

	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Download: opening object reader for %s: %w", fileID, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("Download: reading object %s: %w", fileID, err)
	}
	return data, nil
}

func splitFolderID(folderID string) (bucket, rest string) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(folderID), "gs://")
	bucket, rest, _ = strings.Cut(trimmed, "/")
	return bucket, rest
}

var _ syncer.FileSource = (*Source)(nil)
