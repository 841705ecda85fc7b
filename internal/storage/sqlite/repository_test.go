package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronam-essays/internal/observability"
	"chronam-essays/internal/storage"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()

	repo, err := NewRepository(":memory:", 5*time.Second, observability.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func testRecord(checksum string) *storage.EssayRecord {
	return &storage.EssayRecord{
		LCCN:      "sn83030272",
		URL:       "https://www.loc.gov/item/sn83030272/",
		Title:     "The sun. [volume]",
		Essay:     "<p>The Sun</p>",
		Payload:   `{"raw_lccn":"sn83030272"}`,
		CheckSum:  checksum,
		RunID:     "3f1c7a1e-0000-4000-8000-000000000001",
		FetchedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestUpsertRecord(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	isNew, isUpdated, err := repo.UpsertRecord(ctx, testRecord("aaa"))
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.False(t, isUpdated)

	isNew, isUpdated, err = repo.UpsertRecord(ctx, testRecord("aaa"))
	require.NoError(t, err)
	assert.False(t, isNew, "same checksum is unchanged")
	assert.False(t, isUpdated, "same checksum is unchanged")

	isNew, isUpdated, err = repo.UpsertRecord(ctx, testRecord("bbb"))
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.True(t, isUpdated)

	count, err := repo.GetRecordCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestExistsByLCCN(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	exists, err := repo.ExistsByLCCN(ctx, "sn83030272")
	require.NoError(t, err)
	assert.False(t, exists)

	_, _, err = repo.UpsertRecord(ctx, testRecord("aaa"))
	require.NoError(t, err)

	exists, err = repo.ExistsByLCCN(ctx, "sn83030272")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSaveEntities(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, _, err := repo.UpsertRecord(ctx, testRecord("aaa"))
	require.NoError(t, err)

	require.NoError(t, repo.SaveEntities(ctx, "sn83030272", []string{"Benjamin Day"}, nil))

	var people, orgs string
	err = repo.db.QueryRow(`SELECT people, organizations FROM essay_records WHERE lccn = ?`, "sn83030272").Scan(&people, &orgs)
	require.NoError(t, err)
	assert.Equal(t, `["Benjamin Day"]`, people)
	assert.Equal(t, `[]`, orgs)

	// Нет записи, но это не ошибка
	assert.NoError(t, repo.SaveEntities(ctx, "sn-missing", nil, nil))
}
