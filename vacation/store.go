package vacation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/warp/roster-engine/generic"
)

// RequestStore persists the roster and its personal requests.
type RequestStore interface {
	ListStaff(ctx context.Context) ([]Staff, error)
	SaveStaff(ctx context.Context, s Staff) (Staff, error)
	SetRequest(ctx context.Context, staffKey, date string, t LeaveType) error
	DeleteRequest(ctx context.Context, staffKey, date string) error
	// LoadBook returns the records of every staff member for m.
	LoadBook(ctx context.Context, m Month) (Book, error)
}

// =============================================================================
// MEMORY STORE
// =============================================================================

type MemoryStore struct {
	mu    sync.RWMutex
	staff map[string]Staff
	book  Book
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{staff: make(map[string]Staff), book: make(Book)}
}

func (m *MemoryStore) ListStaff(_ context.Context) ([]Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Staff, 0, len(m.staff))
	for _, s := range m.staff {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SaveStaff inserts or replaces a member; one without an ID gets a new one.
func (m *MemoryStore) SaveStaff(_ context.Context, s Staff) (Staff, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staff[s.ID] = s
	return s, nil
}

func (m *MemoryStore) SetRequest(_ context.Context, staffKey, date string, t LeaveType) error {
	if _, err := generic.ParseDate(date); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.resolveLocked(staffKey)
	if !ok {
		return fmt.Errorf("%w: %s", generic.ErrStaffNotFound, staffKey)
	}
	m.book.Set(key, date, t)
	return nil
}

func (m *MemoryStore) DeleteRequest(_ context.Context, staffKey, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.resolveLocked(staffKey)
	if !ok {
		return fmt.Errorf("%w: %s", generic.ErrStaffNotFound, staffKey)
	}
	delete(m.book[key], date)
	return nil
}

func (m *MemoryStore) LoadBook(_ context.Context, month Month) (Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefix := month.Prefix()
	out := make(Book)
	for key, rec := range m.book {
		for date, t := range rec {
			if strings.HasPrefix(date, prefix) {
				out.Set(key, date, t)
			}
		}
	}
	return out, nil
}

// ResetRoster drops every member and request.
func (m *MemoryStore) ResetRoster(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staff = make(map[string]Staff)
	m.book = make(Book)
	return nil
}

// resolveLocked maps an ID or StaffID to the member's record key.
func (m *MemoryStore) resolveLocked(ref string) (string, bool) {
	if s, ok := m.staff[ref]; ok {
		return s.Key(), true
	}
	for _, s := range m.staff {
		if s.StaffID == ref {
			return s.Key(), true
		}
	}
	return "", false
}
