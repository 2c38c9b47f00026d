package services

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/markdave123-py/pdfcsv/internal/models"
)

type memDB struct {
	mu          sync.Mutex
	users       map[string]*models.User
	conversions map[string]*models.Conversion
}

func newMemDB() *memDB {
	return &memDB{users: map[string]*models.User{}, conversions: map[string]*models.Conversion{}}
}

func (m *memDB) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return errors.New("duplicate key")
	}
	cp := *u
	m.users[u.Email] = &cp
	return nil
}

func (m *memDB) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memDB) CreateConversion(_ context.Context, c *models.Conversion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.conversions[c.ID] = &cp
	return nil
}

func (m *memDB) GetConversionByID(_ context.Context, id string) (*models.Conversion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversions[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memDB) ListConversionsByUser(_ context.Context, userID string, _ int) ([]models.Conversion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Conversion{}
	for _, c := range m.conversions {
		if c.UserID == userID {
			out = append(out, *c)
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
