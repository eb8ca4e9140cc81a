package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	invoicingapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/invoicing"
)

var _ invoicingapp.ObjectStorage = (*MemoryObjectStorage)(nil)

// Object is a stored blob together with its content type
type Object struct {
	Data        []byte
	ContentType string
	StoredAt    time.Time
}

// MemoryObjectStorage keeps objects in process memory. It backs
// development runs without an S3 endpoint and the application tests.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]Object
	baseURL string
}

// NewMemoryObjectStorage creates an empty store whose download URLs are
// rooted at baseURL.
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	if baseURL == "" {
		baseURL = "memory://receipts"
	}
	return &MemoryObjectStorage{
		objects: make(map[string]Object),
		baseURL: baseURL,
	}
}

// Upload stores a copy of data
func (m *MemoryObjectStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[storageKey] = Object{Data: buf, ContentType: contentType, StoredAt: time.Now()}
	return nil
}

// GenerateDownloadURL returns a pseudo URL for a stored object
func (m *MemoryObjectStorage) GenerateDownloadURL(
	_ context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	m.mu.RLock()
	_, ok := m.objects[storageKey]
	m.mu.RUnlock()
	if !ok {
		return "", time.Time{}, fmt.Errorf("object %q not found", storageKey)
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	expiresAt := time.Now().Add(expiresIn)
	return fmt.Sprintf("%s/%s?expires=%d", m.baseURL, storageKey, expiresAt.Unix()), expiresAt, nil
}

// Get returns the stored object
func (m *MemoryObjectStorage) Get(storageKey string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[storageKey]
	return obj, ok
}

// Len returns the number of stored objects
func (m *MemoryObjectStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
