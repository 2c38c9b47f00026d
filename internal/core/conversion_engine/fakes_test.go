package conversion_engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/markdave123-py/pdfcsv/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeExtractor returns a canned answer, optionally waiting on release first.
type fakeExtractor struct {
	text    string
	err     error
	release chan struct{}

	mu    sync.Mutex
	calls []string
}

func (f *fakeExtractor) ExtractCSV(ctx context.Context, pdfBase64 string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, pdfBase64)
	f.mu.Unlock()

	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

func (f *fakeExtractor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

type fakeDB struct {
	mu          sync.Mutex
	conversions []models.Conversion
	err         error
}

func (f *fakeDB) CreateUser(context.Context, *models.User) error { return nil }
func (f *fakeDB) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, nil
}
func (f *fakeDB) CreateConversion(_ context.Context, c *models.Conversion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.conversions = append(f.conversions, *c)
	return nil
}
func (f *fakeDB) GetConversionByID(context.Context, string) (*models.Conversion, error) {
	return nil, nil
}
func (f *fakeDB) ListConversionsByUser(context.Context, string, int) ([]models.Conversion, error) {
	return nil, nil
}
func (f *fakeDB) Close() error { return nil }

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (f *fakeObjects) UploadFile(_ context.Context, bucket, key string, data io.Reader, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = b
	return "https://" + bucket + ".example/" + key, nil
}

func (f *fakeObjects) GetFile(_ context.Context, _, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return b, nil
}

// steppingClock advances by step on every call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := cur
		cur = cur.Add(step)
		return t
	}
}
