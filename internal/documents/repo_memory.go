package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Policy bounds the in-memory store. Zero values keep every record for the
// life of the process.
type Policy struct {
	MaxEntries int
	TTL        time.Duration
}

type memoryEntry struct {
	doc Document
	seq uint64
}

// MemoryRepo is a mutex-guarded in-memory implementation of Repo.
type MemoryRepo struct {
	mu     sync.Mutex
	data   map[string]memoryEntry
	seq    uint64
	policy Policy
	now    func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo with the given policy.
func NewMemoryRepo(policy Policy) *MemoryRepo {
	return &MemoryRepo{
		data:   make(map[string]memoryEntry),
		policy: policy,
		now:    time.Now,
	}
}

// Create stores a new document. Existing ids are never overwritten.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expireLocked()
	if _, exists := r.data[doc.ID]; exists {
		return ErrDuplicateID
	}
	r.seq++
	r.data[doc.ID] = memoryEntry{doc: doc, seq: r.seq}
	r.evictLocked()
	return nil
}

// GetByID returns a document by id.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expireLocked()
	e, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return e.doc, nil
}

// Latest returns the document with the greatest upload time. Equal times
// fall back to insertion order.
func (r *MemoryRepo) Latest(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expireLocked()
	var (
		best  memoryEntry
		found bool
	)
	for _, e := range r.data {
		if !found || newer(e, best) {
			best = e
			found = true
		}
	}
	if !found {
		return Document{}, ErrNotFound
	}
	return best.doc, nil
}

// List returns documents newest first.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.Lock()
	r.expireLocked()
	entries := r.sortedLocked()
	r.mu.Unlock()

	if offset >= len(entries) {
		return []Document{}, nil
	}
	end := len(entries)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]Document, 0, end-offset)
	for _, e := range entries[offset:end] {
		out = append(out, e.doc)
	}
	return out, nil
}

// Len reports the number of live records.
func (r *MemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireLocked()
	return len(r.data)
}

func newer(a, b memoryEntry) bool {
	if a.doc.UploadedAt.Equal(b.doc.UploadedAt) {
		return a.seq > b.seq
	}
	return a.doc.UploadedAt.After(b.doc.UploadedAt)
}

func (r *MemoryRepo) sortedLocked() []memoryEntry {
	entries := make([]memoryEntry, 0, len(r.data))
	for _, e := range r.data {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return newer(entries[i], entries[j])
	})
	return entries
}

func (r *MemoryRepo) expireLocked() {
	if r.policy.TTL <= 0 {
		return
	}
	cutoff := r.now().Add(-r.policy.TTL)
	for id, e := range r.data {
		if e.doc.UploadedAt.Before(cutoff) {
			delete(r.data, id)
		}
	}
}

func (r *MemoryRepo) evictLocked() {
	if r.policy.MaxEntries <= 0 || len(r.data) <= r.policy.MaxEntries {
		return
	}
	entries := r.sortedLocked()
	for _, e := range entries[r.policy.MaxEntries:] {
		delete(r.data, e.doc.ID)
	}
}

var _ Repo = (*MemoryRepo)(nil)
