package services

import (
	"context"
	"fmt"

	"github.com/markdave123-py/pdfcsv/internal/core"
	"github.com/markdave123-py/pdfcsv/internal/core/conversion_engine"
	objectclient "github.com/markdave123-py/pdfcsv/internal/core/object-client"
	"github.com/markdave123-py/pdfcsv/internal/models"
)

// ConversionService reads conversion history and archived CSVs.
type ConversionService struct {
	db      core.DbClient
	storage core.ObjectClient
	bucket  string
}

// NewConversionService accepts a nil storage; downloads then report ErrNotArchived.
func NewConversionService(db core.DbClient, storage core.ObjectClient, bucket string) *ConversionService {
	return &ConversionService{db: db, storage: storage, bucket: bucket}
}

func (s *ConversionService) ListByUser(ctx context.Context, userID string, limit int) ([]models.Conversion, error) {
	return s.db.ListConversionsByUser(ctx, userID, limit)
}

// Get returns ErrNotFound for unknown ids and for conversions owned by someone else.
func (s *ConversionService) Get(ctx context.Context, userID, id string) (*models.Conversion, error) {
	conv, err := s.db.GetConversionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv == nil || conv.UserID != userID {
		return nil, ErrNotFound
	}
	return conv, nil
}

// DownloadCSV fetches the archived CSV text and its download name.
func (s *ConversionService) DownloadCSV(ctx context.Context, userID, id string) ([]byte, string, error) {
	conv, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	if s.storage == nil || conv.CSVURL == "" {
		return nil, "", ErrNotArchived
	}

	key, err := objectclient.KeyFromURL(s.bucket, conv.CSVURL)
	if err != nil {
		return nil, "", err
	}
	data, err := s.storage.GetFile(ctx, s.bucket, key)
	if err != nil {
		return nil, "", fmt.Errorf("fetch archived csv: %w", err)
	}
	return data, conversion_engine.CSVFileName(conv.FileName), nil
}
