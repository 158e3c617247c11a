// Package snapshot persists in-progress sessions per form id so a session
// survives interruption, with a freshness window after which saved state
// is discarded.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"formflow/internal/store"
)

// MaxAge is the freshness window. Snapshots older than this are treated as
// absent and cleared.
const MaxAge = 24 * time.Hour

// ErrNotFound is returned by stores when no snapshot exists for a form.
var ErrNotFound = errors.New("snapshot not found")

// Store is the injected storage backend. Implementations persist opaque
// bytes keyed by form id.
type Store interface {
	Put(ctx context.Context, formID string, data []byte) error
	Get(ctx context.Context, formID string) ([]byte, error)
	Delete(ctx context.Context, formID string) error
}

// Snapshot is the persisted session state. CurrentSection uses -1 as the
// personal-info sentinel to match the storage schema.
type Snapshot struct {
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	Role           string        `json:"role"`
	CurrentSection int           `json:"currentSection"`
	Answers        []store.Entry `json:"answers"`
	SavedAt        time.Time     `json:"savedAt"`
}

// Manager applies the freshness and recovery policy on top of a Store.
type Manager struct {
	store Store
	now   func() time.Time
	log   *logrus.Logger
}

// NewManager creates a manager over the given backend.
func NewManager(st Store, log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		store: st,
		now:   time.Now,
		log:   log,
	}
}

// SetClock overrides the time source. Used by tests to age snapshots.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Save writes the snapshot under the form's key, stamping SavedAt.
// Replaying an identical save is harmless.
func (m *Manager) Save(ctx context.Context, formID string, snap Snapshot) error {
	snap.SavedAt = m.now()
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return m.store.Put(ctx, formID, data)
}

// Load returns the saved snapshot, or nil when none exists, the saved one
// is older than MaxAge, or it cannot be decoded. Stale and corrupt
// snapshots are cleared as a side effect; decode failures are logged, not
// propagated.
func (m *Manager) Load(ctx context.Context, formID string) (*Snapshot, error) {
	data, err := m.store.Get(ctx, formID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		m.log.WithField("form_id", formID).WithError(err).Warn("discarding unreadable snapshot")
		_ = m.store.Delete(ctx, formID)
		return nil, nil
	}
	if m.now().Sub(snap.SavedAt) > MaxAge {
		_ = m.store.Delete(ctx, formID)
		return nil, nil
	}
	return &snap, nil
}

// Clear removes the snapshot for a form.
func (m *Manager) Clear(ctx context.Context, formID string) error {
	return m.store.Delete(ctx, formID)
}

// HasContent reports whether the snapshot holds anything worth restoring.
func (s *Snapshot) HasContent() bool {
	return s.Name != "" || s.Email != "" || len(s.Answers) > 0
}
