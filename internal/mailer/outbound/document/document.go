package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
	"github.com/shandysiswandi/pagemail/internal/pkg/goerror"
	"github.com/shandysiswandi/pagemail/internal/pkg/instrument"
	"github.com/shandysiswandi/pagemail/internal/pkg/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Store fetches source PDFs from object storage.
type Store struct {
	storage storage.Storage
	bucket  string
	ins     instrument.Instrumentation
}

// New returns a Store reading keys without a bucket prefix from defaultBucket.
func New(st storage.Storage, defaultBucket string, ins instrument.Instrumentation) *Store {
	if ins == nil {
		ins = instrument.NewNoop()
	}
	return &Store{storage: st, bucket: defaultBucket, ins: ins}
}

// Fetch loads the document at key. When the object is larger than maxBytes
// only its name and size are returned so the caller can reject it unread.
func (s *Store) Fetch(ctx context.Context, key string, maxBytes int64) (entity.Document, error) {
	ctx, span := s.ins.Tracer("mailer.outbound.document").Start(ctx, "Fetch")
	defer span.End()

	doc, err := s.fetch(ctx, key, maxBytes)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return entity.Document{}, err
	}

	span.SetAttributes(attribute.Int64("size", doc.Size))
	return doc, nil
}

func (s *Store) fetch(ctx context.Context, key string, maxBytes int64) (entity.Document, error) {
	bucket, objectKey, err := storage.ParseLocation(key, s.bucket)
	if err != nil {
		return entity.Document{}, fmt.Errorf("%w: %w", entity.ErrInvalidInput, err)
	}

	info, err := s.storage.StatObject(ctx, bucket, objectKey)
	if err != nil {
		return entity.Document{}, mapError(err)
	}

	doc := entity.Document{Name: path.Base(objectKey), Size: info.Size}
	if maxBytes > 0 && info.Size > maxBytes {
		return doc, nil
	}

	rc, _, err := s.storage.GetObject(ctx, bucket, objectKey)
	if err != nil {
		return entity.Document{}, mapError(err)
	}
	defer rc.Close()

	// One byte past the limit is enough to notice an object that grew after Stat.
	limit := maxBytes + 1
	if maxBytes <= 0 {
		limit = info.Size + 1
	}

	data, err := io.ReadAll(io.LimitReader(rc, limit))
	if err != nil {
		return entity.Document{}, fmt.Errorf("document: read %s/%s: %w", bucket, objectKey, err)
	}

	doc.Data = data
	doc.Size = int64(len(data))
	return doc, nil
}

func mapError(err error) error {
	if errors.Is(err, storage.ErrObjectNotFound) {
		return fmt.Errorf("%w: %w", goerror.ErrNotFound, err)
	}
	return err
}
