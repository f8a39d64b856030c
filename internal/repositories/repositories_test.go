package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/skyaboveme/yourgency/internal/models"
	"github.com/skyaboveme/yourgency/internal/wire"
)

// newTestDB открывает SQLite в памяти с той же схемой, что и Postgres.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// :memory: живёт в рамках одного соединения
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`PRAGMA foreign_keys = ON`)
	require.NoError(t, err)
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func seedUser(t *testing.T, db *sql.DB, id, name string) {
	t.Helper()
	err := NewUserRepository(db).Create(context.Background(), &models.User{
		ID: id, Name: name, Email: id + "@yourgency.test", Role: models.RoleUser,
	})
	require.NoError(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, Migrate(context.Background(), db))
}

func TestOpportunity_ListJoinsAssigneeName(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", "Sam Seller")
	repo := NewOpportunityRepository(db)

	require.NoError(t, repo.Create(ctx, &wire.Opportunity{ID: "1", CompanyName: "Acme", Stage: "PROSPECT", AssignedTo: "u1"}))
	require.NoError(t, repo.Create(ctx, &wire.Opportunity{ID: "2", CompanyName: "Beta", Stage: "OUTREACH"}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := map[string]wire.Opportunity{}
	for _, o := range list {
		byID[o.ID] = o
	}
	assert.Equal(t, "Sam Seller", byID["1"].AssignedToName)
	assert.Empty(t, byID["2"].AssignedTo)
	assert.Empty(t, byID["2"].AssignedToName)
}

func TestOpportunity_CreateIsNotUpsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewOpportunityRepository(db)

	require.NoError(t, repo.Create(ctx, &wire.Opportunity{ID: "1", Stage: "PROSPECT"}))
	err := repo.Create(ctx, &wire.Opportunity{ID: "1", Stage: "OUTREACH"})

	var conflict *models.ErrConflict
	require.True(t, errors.As(err, &conflict), "got %v", err)

	got, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "PROSPECT", got.Stage)
}

func TestOpportunity_CreateGeneratesID(t *testing.T) {
	db := newTestDB(t)
	o := &wire.Opportunity{CompanyName: "NoID", Stage: "PROSPECT"}
	require.NoError(t, NewOpportunityRepository(db).Create(context.Background(), o))
	assert.NotEmpty(t, o.ID)
	assert.False(t, o.CreatedAt.IsZero())
}

func TestOpportunity_BulkUpsertUpdatesFixedSubset(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "u1", "Sam")
	repo := NewOpportunityRepository(db)

	score := &wire.Score{Fit: 9, Need: 9, Timing: 9, Readiness: 9, Composite: 90, Rationale: "hot"}
	require.NoError(t, repo.Create(ctx, &wire.Opportunity{
		ID: "1", CompanyName: "Acme", Industry: "HVAC", Stage: "PROSPECT", Score: score,
	}))

	n, err := repo.BulkUpsert(ctx, []wire.Opportunity{{
		ID:           "1",
		CompanyName:  "Renamed",
		Industry:     "Roofing",
		Stage:        "OUTREACH",
		ContactName:  "Jo",
		Email:        "jo@acme.test",
		Phone:        "555",
		Website:      "acme.test",
		RevenueRange: "$1M-$5M",
		Notes:        "called",
		AssignedTo:   "u1",
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	// обновляемые поля
	assert.Equal(t, "OUTREACH", got.Stage)
	assert.Equal(t, "Jo", got.ContactName)
	assert.Equal(t, "jo@acme.test", got.Email)
	assert.Equal(t, "555", got.Phone)
	assert.Equal(t, "acme.test", got.Website)
	assert.Equal(t, "$1M-$5M", got.RevenueRange)
	assert.Equal(t, "called", got.Notes)
	assert.Equal(t, "u1", got.AssignedTo)
	assert.Equal(t, "Sam", got.AssignedToName)
	// остальные колонки не трогаются
	assert.Equal(t, "Acme", got.CompanyName)
	assert.Equal(t, "HVAC", got.Industry)
	require.NotNil(t, got.Score)
	assert.Equal(t, 90.0, got.Score.Composite)
}

func TestOpportunity_BulkUpsertInsertsNewIdentities(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewOpportunityRepository(db)

	n, err := repo.BulkUpsert(ctx, []wire.Opportunity{
		{ID: "a", CompanyName: "A", Stage: "PROSPECT"},
		{CompanyName: "no id", Stage: "PROSPECT"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

// Пакет без записи не удаляет её из хранилища: после upsert+reload коллекция
// остаётся надмножеством отправленной. Если Gateway начнёт удалять отсутствующие
// записи, этот тест должен быть изменён осознанно.
func TestOpportunity_BulkUpsertNeverDeletes(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewOpportunityRepository(db)

	_, err := repo.BulkUpsert(ctx, []wire.Opportunity{
		{ID: "1", Stage: "PROSPECT"},
		{ID: "2", Stage: "PROSPECT"},
		{ID: "3", Stage: "PROSPECT"},
	})
	require.NoError(t, err)

	submitted := []wire.Opportunity{{ID: "1", Stage: "OUTREACH"}, {ID: "3", Stage: "PROSPECT"}}
	_, err = repo.BulkUpsert(ctx, submitted)
	require.NoError(t, err)

	reloaded, err := repo.List(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(reloaded), len(submitted))

	ids := map[string]bool{}
	for _, o := range reloaded {
		ids[o.ID] = true
	}
	for _, o := range submitted {
		assert.True(t, ids[o.ID], "submitted id %s missing after reload", o.ID)
	}
	assert.True(t, ids["2"], "deal absent from the batch is still stored")
}

func TestOpportunity_BulkUpsertAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewOpportunityRepository(db)

	_, err := repo.BulkUpsert(ctx, []wire.Opportunity{
		{ID: "ok", Stage: "PROSPECT"},
		{ID: "bad", Stage: "PROSPECT", AssignedTo: "no-such-user"},
	})
	require.Error(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "the first record must be rolled back with the batch")
}

func TestOpportunity_UpdateScoreAndLastContact(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewOpportunityRepository(db)
	require.NoError(t, repo.Create(ctx, &wire.Opportunity{ID: "1", Stage: "PROSPECT"}))

	require.NoError(t, repo.UpdateScore(ctx, "1", &wire.Score{Composite: 72, Rationale: "warm"}))
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLastContact(ctx, "1", at))

	got, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, got.Score)
	assert.Equal(t, "warm", got.Score.Rationale)
	require.NotNil(t, got.LastContact)
	assert.True(t, got.LastContact.Equal(at))

	var nf *models.ErrNotFound
	assert.True(t, errors.As(repo.UpdateScore(ctx, "missing", &wire.Score{}), &nf))
}

func TestUser_CreateAndLookup(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	u := &models.User{Name: "Ada", Email: " Ada@Yourgency.test ", Role: models.RoleAdmin, PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	got, err := repo.GetByEmail(ctx, "ada@yourgency.test")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.Nil(t, got.LastLogin)

	err = repo.Create(ctx, &models.User{Name: "Dup", Email: "ada@yourgency.test", Role: models.RoleUser})
	var conflict *models.ErrConflict
	assert.True(t, errors.As(err, &conflict))

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, u.ID, at))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, got.LastLogin.Equal(at))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAccountsContactsActivities(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	accounts := NewAccountRepository(db)
	acc := &models.Account{Name: "Acme", Industry: "HVAC", TechStack: []string{"ServiceTitan"}}
	require.NoError(t, accounts.Create(ctx, acc))

	got, err := accounts.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ServiceTitan"}, got.TechStack)

	contacts := NewContactRepository(db)
	require.NoError(t, contacts.Create(ctx, &models.Contact{AccountID: acc.ID, Name: "Jo"}))
	list, err := contacts.List(ctx, acc.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = contacts.List(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, list)

	activities := NewActivityRepository(db)
	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, activities.Store(ctx, &models.Activity{
		AccountID: acc.ID, Type: models.ActivityCall, Direction: models.DirectionOutbound,
		Subject: "outbound call", Status: "completed", Date: now,
	}))
	require.NoError(t, activities.Store(ctx, &models.Activity{
		OpportunityID: "d1", Type: models.ActivityNote, Direction: models.DirectionInbound,
		Status: "completed", Date: now,
	}))

	all, err := activities.FindAll(ctx, models.ActivityFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byAcc, err := activities.FindAll(ctx, models.ActivityFilter{AccountID: acc.ID})
	require.NoError(t, err)
	require.Len(t, byAcc, 1)
	assert.Equal(t, models.ActivityCall, byAcc[0].Type)

	byBoth, err := activities.FindAll(ctx, models.ActivityFilter{AccountID: acc.ID, OpportunityID: "d1"})
	require.NoError(t, err)
	assert.Empty(t, byBoth)
}

func TestSettings_SaveAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSettingsRepository(db)

	_, found, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	want := models.Settings{Industries: []string{"HVAC"}, SystemInstruction: "be brief"}
	require.NoError(t, repo.Save(ctx, want))
	require.NoError(t, repo.Save(ctx, want))

	got, found, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}
