package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process ObjectStore backing local development and
// tests when no bucket is reachable.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]memoryObject
	now     func() time.Time

	// Fail hooks let tests simulate provider outages.
	FailPut  bool
	FailWalk bool
	FailGet  bool
}

type memoryObject struct {
	body    []byte
	updated time.Time
}

type memoryError string

func (e memoryError) Error() string { return string(e) }

// NewMemoryStore returns an empty in-memory object store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memoryObject),
		now:     time.Now,
	}
}

func (m *MemoryStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if m.FailPut {
		return memoryError("simulated put failure")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(body))
	copy(buf, body)
	m.objects[key] = memoryObject{body: buf, updated: m.now()}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.FailGet {
		return nil, memoryError("simulated get failure")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	buf := make([]byte, len(obj.body))
	copy(buf, obj.body)
	return buf, nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

// Walk visits objects in key order, which stands in for the provider's
// lexicographic listing.
func (m *MemoryStore) Walk(ctx context.Context, prefix string, fn func(ObjectInfo) bool) error {
	if m.FailWalk {
		return memoryError("simulated list failure")
	}
	m.mu.Lock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	m.mu.Unlock()
	sort.Strings(keys)

	for _, k := range keys {
		m.mu.Lock()
		obj, ok := m.objects[k]
		m.mu.Unlock()
		if !ok {
			continue
		}
		if !fn(ObjectInfo{Key: k, Size: int64(len(obj.body)), Updated: obj.updated}) {
			return nil
		}
	}
	return nil
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Keys returns all stored keys in sorted order.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetClock overrides the timestamp source for listing metadata.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.now = now
}
