package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/juke/dril-dao/pkg/tokenmeta"
)

// Backend is an in-memory implementation of the tokenmeta.DocumentStore interface
type Backend struct {
	mu                sync.RWMutex
	documents         map[string][]byte
	documentsMimeType map[string]string
}

// New creates a new in-memory document store
func New() tokenmeta.DocumentStore {
	return &Backend{
		documents:         make(map[string][]byte),
		documentsMimeType: make(map[string]string),
	}
}

// GetUploadURL returns a URL for uploading a document
// In-memory implementation doesn't use URLs
func (b *Backend) GetUploadURL(ctx context.Context, key string) (string, error) {
	return "", errors.New("direct upload required for memory backend")
}

// Upload stores a document directly
func (b *Backend) Upload(ctx context.Context, key string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.documents[key] = data
	// Set default MIME type if not set
	if _, exists := b.documentsMimeType[key]; !exists {
		b.documentsMimeType[key] = "application/octet-stream"
	}
	return nil
}

// UploadWithParams stores a document with parameters
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params tokenmeta.UploadDocumentParams) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.documents[params.Key] = data
	b.documentsMimeType[params.Key] = params.MimeType
	return nil
}

// GetDownloadURL returns a URL for downloading a document
// In-memory implementation doesn't use URLs
func (b *Backend) GetDownloadURL(ctx context.Context, key string) (string, error) {
	return "", errors.New("direct download required for memory backend")
}

// Download retrieves a document directly
func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.documents[key]
	if !exists {
		return nil, tokenmeta.ErrDocumentNotFound
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes a document
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.documents[key]; !exists {
		return tokenmeta.ErrDocumentNotFound
	}

	delete(b.documents, key)
	delete(b.documentsMimeType, key)
	return nil
}

// GetDocumentMeta retrieves metadata for a stored document
func (b *Backend) GetDocumentMeta(ctx context.Context, key string) (*tokenmeta.DocumentMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.documents[key]
	if !exists {
		return nil, tokenmeta.ErrDocumentNotFound
	}
	mimeType := b.documentsMimeType[key]

	meta := &tokenmeta.DocumentMeta{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: mimeType,
		Metadata:    map[string]string{"mime_type": mimeType},
	}

	return meta, nil
}
