package core

import (
	"context"
	"io"

	"github.com/markdave123-py/pdfcsv/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) (err error)
	GetUserByEmail(ctx context.Context, email string) (user *models.User, err error)

	CreateConversion(ctx context.Context, conv *models.Conversion) error
	GetConversionByID(ctx context.Context, id string) (*models.Conversion, error)
	ListConversionsByUser(ctx context.Context, userID string, limit int) ([]models.Conversion, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}
