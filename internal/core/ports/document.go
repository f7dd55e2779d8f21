package ports

import (
	"context"
	"io"

	"github.com/nadlan-invest/portal/internal/core/domain"
)

// DocumentStore persists uploaded file content together with its metadata.
type DocumentStore interface {
	Upload(ctx context.Context, doc domain.Document, content io.Reader) (*domain.Document, error)
	Find(ctx context.Context, id string) (*domain.Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Document, error)
	Open(ctx context.Context, id string) (io.ReadCloser, error)
}

// DocumentService defines the document-upload use cases.
type DocumentService interface {
	Upload(ctx context.Context, ownerID, filename, contentType string, size int64, content io.Reader) (*domain.Document, error)
	List(ctx context.Context, ownerID string) ([]domain.Document, error)
	// Open returns the document and its content when ownerID owns it.
	Open(ctx context.Context, id, ownerID string) (*domain.Document, io.ReadCloser, error)
}
