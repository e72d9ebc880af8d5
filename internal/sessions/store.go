package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Store persists wizard snapshots
type Store interface {
	// Load returns nil, nil when no snapshot exists for key
	Load(ctx context.Context, key string) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Delete(ctx context.Context, key string) error
	// PurgeStale removes unfinished snapshots last updated before the cutoff
	PurgeStale(ctx context.Context, before time.Time) (int64, error)
}

// Open connects gorm to postgres and migrates the snapshot table
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	if err := db.AutoMigrate(&Snapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sessions: %w", err)
	}
	return db, nil
}

type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a snapshot store backed by gorm
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Load(ctx context.Context, key string) (*Snapshot, error) {
	var snap Snapshot
	err := s.db.WithContext(ctx).Where("session_key = ?", key).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// upsertSnapshot overwrites everything but created_at on an existing key
var upsertSnapshot = clause.OnConflict{
	Columns: []clause.Column{{Name: "session_key"}},
	DoUpdates: clause.AssignmentColumns([]string{
		"buyer_id", "current_step", "data", "drafts", "completed", "completed_at", "updated_at",
	}),
}

func (s *gormStore) Save(ctx context.Context, snap *Snapshot) error {
	return s.db.WithContext(ctx).Clauses(upsertSnapshot).Create(snap).Error
}

func (s *gormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("session_key = ?", key).Delete(&Snapshot{}).Error
}

func (s *gormStore) PurgeStale(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("completed = ? AND updated_at < ?", false, before).
		Delete(&Snapshot{})
	return result.RowsAffected, result.Error
}

// MemoryStore keeps snapshots in process. Used in tests and when no
// database is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]Snapshot), now: time.Now}
}

func (m *MemoryStore) Load(_ context.Context, key string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snaps[key]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (m *MemoryStore) Save(_ context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if prev, ok := m.snaps[snap.Key]; ok {
		snap.CreatedAt = prev.CreatedAt
	} else if snap.CreatedAt.IsZero() {
		snap.CreatedAt = now
	}
	snap.UpdatedAt = now
	m.snaps[snap.Key] = *snap
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, key)
	return nil
}

func (m *MemoryStore) PurgeStale(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key, snap := range m.snaps {
		if !snap.Completed && snap.UpdatedAt.Before(before) {
			delete(m.snaps, key)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored snapshots
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snaps)
}
