package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/pdfcsv/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubExtractor answers with text/err once release is closed (if set).
type stubExtractor struct {
	text    string
	err     error
	release chan struct{}
}

func (s *stubExtractor) ExtractCSV(ctx context.Context, _ string) (string, error) {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.text, s.err
}

// multipartBody builds a form with one file part; an empty contentType
// leaves the part untyped.
func multipartBody(t *testing.T, field, name, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+name+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

type memDB struct {
	mu          sync.Mutex
	users       map[string]models.User
	conversions []models.Conversion
}

func newMemDB() *memDB {
	return &memDB{users: map[string]models.User{}}
}

func (m *memDB) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return errors.New("duplicate key")
	}
	m.users[u.Email] = *u
	return nil
}

func (m *memDB) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memDB) CreateConversion(_ context.Context, c *models.Conversion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversions = append(m.conversions, *c)
	return nil
}

func (m *memDB) GetConversionByID(_ context.Context, id string) (*models.Conversion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.conversions {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memDB) ListConversionsByUser(_ context.Context, userID string, _ int) ([]models.Conversion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Conversion{}
	for _, c := range m.conversions {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memDB) Close() error { return nil }

type memObjects map[string][]byte

func (o memObjects) UploadFile(_ context.Context, _, key string, data io.Reader, _ string) (string, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	o[key] = b
	return key, nil
}

func (o memObjects) GetFile(_ context.Context, _, key string) ([]byte, error) {
	b, ok := o[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return b, nil
}
