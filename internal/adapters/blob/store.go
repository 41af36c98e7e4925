// Package blob stores uploaded candidate files on any afs backend.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	model "github.com/okian/skillnav/internal/domain/model"
	"github.com/okian/skillnav/pkg/metrics"
)

// collaborator labels external-call metrics.
const collaborator = "blob"

// Store writes attachments below a base URL.
type Store struct {
	baseURL string
	fs      afs.Service
}

// New creates the base location and one folder per attachment kind. A bare path is treated as a
// local directory.
func New(ctx context.Context, baseURL string) (*Store, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("base url cannot be empty")
	}
	fs := afs.New()
	baseURL = url.Normalize(baseURL, file.Scheme)

	kinds := []model.AttachmentKind{model.AttachmentCertification, model.AttachmentInternship, model.AttachmentCourse}
	for _, kind := range kinds {
		dir := url.Join(baseURL, string(kind))
		exists, _ := fs.Exists(ctx, dir)
		if exists {
			continue
		}
		if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return &Store{baseURL: baseURL, fs: fs}, nil
}

// Put writes r under kind/ with a unique prefix on the base filename.
func (s *Store) Put(ctx context.Context, kind model.AttachmentKind, filename string, r io.Reader) (model.Attachment, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return model.Attachment{}, ErrEmptyFilename
	}

	location := url.Join(s.baseURL, path.Join(string(kind), uuid.NewString()+"_"+name))
	start := time.Now()
	err := s.fs.Upload(ctx, location, file.DefaultFileOsMode, r)
	metrics.RecordExternalCall(collaborator, float64(time.Since(start).Milliseconds()), err)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("failed to store %s: %w", name, err)
	}
	metrics.RecordUploadStored()
	return model.Attachment{Kind: kind, Filename: name, Location: location}, nil
}

// Delete removes a stored attachment. A missing object is not an error.
func (s *Store) Delete(ctx context.Context, location string) error {
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", location, err)
	}
	if !exists {
		return nil
	}
	if err := s.fs.Delete(ctx, location); err != nil {
		return fmt.Errorf("failed to delete %s: %w", location, err)
	}
	return nil
}

// Read returns the content at location.
func (s *Store) Read(ctx context.Context, location string) ([]byte, error) {
	return Fetch(ctx, location)
}

// Fetch downloads any afs URL, e.g. a model artifact.
func Fetch(ctx context.Context, location string) ([]byte, error) {
	fs := afs.New()
	location = url.Normalize(location, file.Scheme)
	exists, err := fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", location, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", location, ErrNotFound)
	}
	data, err := fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	return data, nil
}

// Save writes data to any afs URL, creating parent folders as needed.
func Save(ctx context.Context, location string, data []byte) error {
	fs := afs.New()
	location = url.Normalize(location, file.Scheme)
	start := time.Now()
	err := fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data))
	metrics.RecordExternalCall(collaborator, float64(time.Since(start).Milliseconds()), err)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", location, err)
	}
	return nil
}
