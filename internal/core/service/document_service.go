package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nadlan-invest/portal/internal/core/domain"
	"github.com/nadlan-invest/portal/internal/core/ports"
)

type DocumentService struct {
	store ports.DocumentStore
	log   zerolog.Logger
}

func NewDocumentService(store ports.DocumentStore, log zerolog.Logger) *DocumentService {
	return &DocumentService{store: store, log: log}
}

// Upload stores a document for ownerID. size is the size declared by the
// client; content is truncated at MaxDocumentSize regardless.
func (s *DocumentService) Upload(ctx context.Context, ownerID, filename, contentType string, size int64, content io.Reader) (*domain.Document, error) {
	if ownerID == "" {
		return nil, domain.ErrForbidden
	}
	if size > domain.MaxDocumentSize {
		return nil, domain.ErrDocumentTooLarge
	}

	doc := domain.Document{
		OwnerID:     ownerID,
		Filename:    sanitizeFilename(filename),
		ContentType: contentType,
		UploadedAt:  time.Now().UTC(),
	}
	if doc.ContentType == "" {
		doc.ContentType = "application/octet-stream"
	}

	stored, err := s.store.Upload(ctx, doc, io.LimitReader(content, domain.MaxDocumentSize))
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("document_id", stored.ID).Str("owner_id", ownerID).Int64("size", stored.Size).Msg("document uploaded")
	return stored, nil
}

func (s *DocumentService) List(ctx context.Context, ownerID string) ([]domain.Document, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

func (s *DocumentService) Open(ctx context.Context, id, ownerID string) (*domain.Document, io.ReadCloser, error) {
	doc, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if doc.OwnerID != ownerID {
		return nil, nil, domain.ErrForbidden
	}

	rc, err := s.store.Open(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return doc, rc, nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "document"
	}
	return name
}
