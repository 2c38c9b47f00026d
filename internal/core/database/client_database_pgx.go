package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/pdfcsv/internal/config"
	"github.com/markdave123-py/pdfcsv/internal/core"
	"github.com/markdave123-py/pdfcsv/internal/models"
)

// DefaultListLimit caps history listings when the caller passes no limit.
const DefaultListLimit = 50

type DatabaseClient struct {
	db *sql.DB
}

var _ core.DbClient = (*DatabaseClient)(nil)

func NewDatabaseClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	dsn, err := buildDSN(cfg.DatabaseURL, cfg.SslCertPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// buildDSN appends CA verification parameters when a root certificate is configured.
func buildDSN(databaseURL, sslCertPath string) (string, error) {
	if databaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL is empty")
	}
	if sslCertPath == "" {
		return databaseURL, nil
	}
	if _, err := os.Stat(sslCertPath); err != nil {
		return "", fmt.Errorf("ssl cert not accessible at %q: %w", sslCertPath, err)
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	q := u.Query()
	q.Set("sslmode", "verify-ca")
	q.Set("sslrootcert", sslCertPath)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Implementing the db interface for user

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, first_name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()), COALESCE($6, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.FirstName, user.Email, user.PasswordHash, nullTime(user.CreatedAt), nullTime(user.UpdatedAt))
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Implementing the db interface for conversions

const conversionColumns = `id, session_id, user_id, file_name, file_size, page_count, status, row_count,
	process_time, error_message, error_source, pdf_url, csv_url, created_at`

func (c *DatabaseClient) CreateConversion(ctx context.Context, conv *models.Conversion) error {
	if conv == nil {
		return errors.New("nil conversion")
	}
	const q = `
		INSERT INTO conversions (` + conversionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, COALESCE($14, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		conv.ID, conv.SessionID, conv.UserID, conv.FileName, conv.FileSize, conv.PageCount, string(conv.Status),
		conv.RowCount, conv.ProcessTime, conv.ErrorMessage, conv.ErrorSource, conv.PDFURL, conv.CSVURL,
		nullTime(conv.CreatedAt))
	return err
}

// GetConversionByID returns nil, nil when no row matches.
func (c *DatabaseClient) GetConversionByID(ctx context.Context, id string) (*models.Conversion, error) {
	const q = `SELECT ` + conversionColumns + ` FROM conversions WHERE id = $1`

	conv, err := scanConversion(c.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// ListConversionsByUser returns the newest conversions first.
func (c *DatabaseClient) ListConversionsByUser(ctx context.Context, userID string, limit int) ([]models.Conversion, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	const q = `
		SELECT ` + conversionColumns + `
		FROM conversions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := c.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Conversion{}
	for rows.Next() {
		conv, err := scanConversion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *conv)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversion(r rowScanner) (*models.Conversion, error) {
	var (
		conv   models.Conversion
		status string
	)
	if err := r.Scan(
		&conv.ID, &conv.SessionID, &conv.UserID, &conv.FileName, &conv.FileSize, &conv.PageCount, &status,
		&conv.RowCount, &conv.ProcessTime, &conv.ErrorMessage, &conv.ErrorSource, &conv.PDFURL, &conv.CSVURL,
		&conv.CreatedAt,
	); err != nil {
		return nil, err
	}
	conv.Status = models.Status(status)
	return &conv, nil
}

// nullTime lets COALESCE fill in now() for zero timestamps.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
