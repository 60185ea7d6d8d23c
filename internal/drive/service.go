package drive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/finbase/statement-sync/internal/domain"
	"github.com/finbase/statement-sync/internal/syncer"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Service wraps the Drive v3 API as a statement file source. Access is
// read-only; the pipeline never writes to the linked folder.
type Service struct {
	svc *drivev3.Service
}

// NewService builds a Drive client from a service-account key file with the
// read-only scope.
func NewService(ctx context.Context, credentialsFile string) (*Service, error) {
	svc, err := drivev3.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drivev3.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("NewService: creating drive client: %w", err)
	}
	return &Service{svc: svc}, nil
}

// NewServiceWithOptions builds a Drive client from explicit client options,
// used by tests and non-default credential setups.
func NewServiceWithOptions(ctx context.Context, opts ...option.ClientOption) (*Service, error) {
	svc, err := drivev3.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewServiceWithOptions: creating drive client: %w", err)
	}
	return &Service{svc: svc}, nil
}

// ListFolder returns the folder's files newest-modified-first, excluding
// trashed items.
func (s *Service) ListFolder(ctx context.Context, folderID string) ([]domain.RemoteFile, error) {
	resp, err := s.svc.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", escapeQueryTerm(folderID))).
		Fields("files(id,name,size,modifiedTime,mimeType)").
		OrderBy("modifiedTime desc").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("ListFolder: listing folder %s: %w", folderID, err)
	}

	files := make([]domain.RemoteFile, 0, len(resp.Files))
	for _, f := range resp.Files {
		modified, _ := time.Parse(time.RFC3339, f.ModifiedTime)
		files = append(files, domain.RemoteFile{
			ID:           f.Id,
			Name:         f.Name,
			MimeType:     f.MimeType,
			Size:         f.Size,
			ModifiedTime: modified,
		})
	}
	return files, nil
}

// Download fetches the raw bytes of one file.
func (s *Service) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := s.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("Download: fetching file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Download: reading file %s: %w", fileID, err)
	}
	return data, nil
}

// SearchFolders returns up to one small page of folders whose name contains
// the query. No pagination is offered beyond that.
func (s *Service) SearchFolders(ctx context.Context, query string) ([]domain.RemoteFolder, error) {
	q := fmt.Sprintf("mimeType='%s' and name contains '%s' and trashed=false",
		folderMimeType, escapeQueryTerm(query))

	resp, err := s.svc.Files.List().
		Q(q).
		Fields("files(id,name,webViewLink)").
		PageSize(10).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("SearchFolders: searching %q: %w", query, err)
	}

	folders := make([]domain.RemoteFolder, 0, len(resp.Files))
	for _, f := range resp.Files {
		folders = append(folders, domain.RemoteFolder{
			ID:          f.Id,
			Name:        f.Name,
			WebViewLink: f.WebViewLink,
		})
	}
	return folders, nil
}

// escapeQueryTerm escapes the characters Drive query strings treat specially.
func escapeQueryTerm(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

var (
	_ syncer.FileSource     = (*Service)(nil)
	_ syncer.FolderSearcher = (*Service)(nil)
)
