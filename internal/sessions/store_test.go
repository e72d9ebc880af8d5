package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	missing, err := store.Load(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	snap := &Snapshot{
		Key:         "buyer-onboarding-1",
		BuyerID:     uuid.New(),
		CurrentStep: "qualification",
		Data:        datatypes.JSON(`{"initialInquiry":{"organisationName":"Acme"}}`),
	}
	require.NoError(t, store.Save(ctx, snap))

	loaded, err := store.Load(ctx, snap.Key)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "qualification", loaded.CurrentStep)
	assert.JSONEq(t, `{"initialInquiry":{"organisationName":"Acme"}}`, string(loaded.Data))
	assert.False(t, loaded.UpdatedAt.IsZero())

	require.NoError(t, store.Delete(ctx, snap.Key))
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreKeepsCreatedAtAcrossSaves(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	clock := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	require.NoError(t, store.Save(ctx, &Snapshot{Key: "k"}))
	clock = clock.Add(time.Hour)
	require.NoError(t, store.Save(ctx, &Snapshot{Key: "k", CurrentStep: "due-diligence"}))

	loaded, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC), loaded.CreatedAt)
	assert.Equal(t, clock, loaded.UpdatedAt)
}

func TestMemoryStorePurgeStaleSkipsCompleted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return old }

	require.NoError(t, store.Save(ctx, &Snapshot{Key: "abandoned"}))
	require.NoError(t, store.Save(ctx, &Snapshot{Key: "finished", Completed: true}))

	store.now = func() time.Time { return old.AddDate(0, 2, 0) }
	require.NoError(t, store.Save(ctx, &Snapshot{Key: "active"}))

	n, err := store.PurgeStale(ctx, old.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 2, store.Len())

	gone, _ := store.Load(ctx, "abandoned")
	assert.Nil(t, gone)
}

func TestGormStoreSaveKeepsCreatedAt(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=portal dbname=portal sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	snap := &Snapshot{Key: "buyer-onboarding-1", BuyerID: uuid.New(), CurrentStep: "qualification"}
	stmt := db.Session(&gorm.Session{DryRun: true}).Clauses(upsertSnapshot).Create(snap).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, `ON CONFLICT ("session_key") DO UPDATE SET`)
	assert.Contains(t, sql, `"updated_at"="excluded"."updated_at"`)
	assert.Contains(t, sql, `"current_step"="excluded"."current_step"`)
	assert.NotContains(t, sql, `"created_at"="excluded"."created_at"`)
}
