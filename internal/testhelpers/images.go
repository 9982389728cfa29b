package testhelpers

import (
	"context"
	"encoding/base64"
	"sync"
)

// pngHeader is enough for content sniffing to report image/png.
const pngHeader = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"

// PNGDataURI returns an inline image payload accepted by recipe writes.
func PNGDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(pngHeader))
}

// MemoryImageStore keeps images in memory and records deletions.
type MemoryImageStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
}

func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{Objects: map[string][]byte{}}
}

func (m *MemoryImageStore) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := "/media/" + key
	m.Objects[ref] = data
	return ref, nil
}

func (m *MemoryImageStore) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, ref)
	m.Deleted = append(m.Deleted, ref)
	return nil
}

// Has reports whether ref is currently stored.
func (m *MemoryImageStore) Has(ref string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Objects[ref]
	return ok
}
