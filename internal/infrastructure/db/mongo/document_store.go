package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nadlan-invest/portal/internal/core/domain"
)

const documentsBucket = "documents"

// DocumentStore keeps uploaded documents in a GridFS bucket. Owner and
// content type travel in the file metadata.
type DocumentStore struct {
	bucket *gridfs.Bucket
}

func NewDocumentStore(db *mongo.Database) (*DocumentStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(documentsBucket))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	return &DocumentStore{bucket: bucket}, nil
}

type documentMetadata struct {
	OwnerID     string `bson:"owner_id"`
	ContentType string `bson:"content_type"`
}

type gridFile struct {
	ID         primitive.ObjectID `bson:"_id"`
	Length     int64              `bson:"length"`
	UploadDate time.Time          `bson:"uploadDate"`
	Filename   string             `bson:"filename"`
	Metadata   documentMetadata   `bson:"metadata"`
}

// Upload streams content into GridFS. The GridFS upload API of the v1 driver
// is not context-aware; ctx only bounds the metadata lookup afterwards.
func (s *DocumentStore) Upload(ctx context.Context, doc domain.Document, content io.Reader) (*domain.Document, error) {
	meta := documentMetadata{OwnerID: doc.OwnerID, ContentType: doc.ContentType}
	id, err := s.bucket.UploadFromStream(doc.Filename, content, options.GridFSUpload().SetMetadata(meta))
	if err != nil {
		return nil, fmt.Errorf("gridfs upload: %w", err)
	}
	return s.Find(ctx, id.Hex())
}

func (s *DocumentStore) Find(ctx context.Context, id string) (*domain.Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrDocumentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var f gridFile
	if err := s.bucket.GetFilesCollection().FindOne(ctx, bson.M{"_id": oid}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return f.toDomain(), nil
}

func (s *DocumentStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "uploadDate", Value: -1}})
	cur, err := s.bucket.GetFilesCollection().Find(ctx, bson.M{"metadata.owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer cur.Close(ctx)

	var files []gridFile
	if err := cur.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}

	docs := make([]domain.Document, 0, len(files))
	for _, f := range files {
		docs = append(docs, *f.toDomain())
	}
	return docs, nil
}

func (s *DocumentStore) Open(_ context.Context, id string) (io.ReadCloser, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrDocumentNotFound
	}
	stream, err := s.bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("gridfs open: %w", err)
	}
	return stream, nil
}

func (f gridFile) toDomain() *domain.Document {
	return &domain.Document{
		ID:          f.ID.Hex(),
		OwnerID:     f.Metadata.OwnerID,
		Filename:    f.Filename,
		ContentType: f.Metadata.ContentType,
		Size:        f.Length,
		UploadedAt:  f.UploadDate,
	}
}
