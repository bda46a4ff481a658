package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/catalogkeeper/internal/client/models"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := storage.Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func rawValue(t *testing.T, db *sql.DB, key string) (string, bool) {
	t.Helper()
	var v string
	err := db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	require.NoError(t, err)
	return v, true
}

// failingRepo wraps a repository and fails every write.
type failingRepo struct {
	metadata.Repository
	err error
}

func (f *failingRepo) Set(context.Context, string, []byte) error { return f.err }
func (f *failingRepo) Delete(context.Context, string) error      { return f.err }
func (f *failingRepo) Update(ctx context.Context, fn func(context.Context, metadata.Repository) error) error {
	return fn(ctx, f)
}

func TestOpen_EmptyStorageMeansAbsent(t *testing.T) {
	db := openDB(t, ":memory:")

	s, err := Open(context.Background(), metadata.NewSQLiteRepository(db), nil)
	require.NoError(t, err)

	_, ok := s.Access().Read()
	assert.False(t, ok)
	_, ok = s.Refresh().Read()
	assert.False(t, ok)
	_, ok = s.AccessToken()
	assert.False(t, ok)
}

func TestWriteThenRead_PersistsQuotedReadsRaw(t *testing.T) {
	db := openDB(t, ":memory:")
	ctx := context.Background()
	s, err := Open(ctx, metadata.NewSQLiteRepository(db), nil)
	require.NoError(t, err)

	require.NoError(t, s.Access().Write(ctx, "eyJ.abc.def"))

	got, ok := s.Access().Read()
	require.True(t, ok)
	assert.Equal(t, "eyJ.abc.def", got)

	raw, ok := rawValue(t, db, AccessTokenKey)
	require.True(t, ok)
	assert.Equal(t, `"eyJ.abc.def"`, raw)
	assert.Equal(t, got, decode([]byte(raw)), "unquoted persisted value matches memory")
}

func TestOpen_SeedsFromStorageAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()

	db, err := storage.Open(ctx, path)
	require.NoError(t, err)
	s, err := Open(ctx, metadata.NewSQLiteRepository(db), nil)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, models.AuthToken{AccessToken: "A1", RefreshToken: "R1"}))
	require.NoError(t, db.Close())

	db = openDB(t, path)
	s, err = Open(ctx, metadata.NewSQLiteRepository(db), nil)
	require.NoError(t, err)

	assert.Equal(t, models.AuthToken{AccessToken: "A1", RefreshToken: "R1"}, s.Current())
}

func TestOpen_UnquotesLegacyValues(t *testing.T) {
	db := openDB(t, ":memory:")
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO metadata(key, value) VALUES (?, ?), (?, ?)`,
		AccessTokenKey, `"half-quoted`, RefreshTokenKey, `bare`)
	require.NoError(t, err)

	s, err := Open(ctx, metadata.NewSQLiteRepository(db), nil)
	require.NoError(t, err)

	a, _ := s.Access().Read()
	r, _ := s.Refresh().Read()
	assert.Equal(t, "half-quoted", a)
	assert.Equal(t, "bare", r)
}

func TestClear_RemovesBoth(t *testing.T) {
	db := openDB(t, ":memory:")
	ctx := context.Background()
	s, err := Open(ctx, metadata.NewSQLiteRepository(db), nil)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, models.AuthToken{AccessToken: "A", RefreshToken: "R"}))
	require.NoError(t, s.Clear(ctx))

	assert.Equal(t, models.AuthToken{}, s.Current())
	_, ok := rawValue(t, db, AccessTokenKey)
	assert.False(t, ok)
	_, ok = rawValue(t, db, RefreshTokenKey)
	assert.False(t, ok)
}

func TestTokenClear_OnlyThatSlot(t *testing.T) {
	db := openDB(t, ":memory:")
	ctx := context.Background()
	s, err := Open(ctx, metadata.NewSQLiteRepository(db), nil)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, models.AuthToken{AccessToken: "A", RefreshToken: "R"}))
	require.NoError(t, s.Access().Clear(ctx))

	assert.Equal(t, models.AuthToken{RefreshToken: "R"}, s.Current())
}

func TestWrite_PersistFailureLeavesMemoryUnchanged(t *testing.T) {
	db := openDB(t, ":memory:")
	ctx := context.Background()
	repo := metadata.NewSQLiteRepository(db)

	s, err := Open(ctx, repo, nil)
	require.NoError(t, err)
	require.NoError(t, s.Access().Write(ctx, "good"))

	boom := errors.New("disk full")
	s.repo = &failingRepo{Repository: repo, err: boom}

	err = s.Access().Write(ctx, "bad")
	require.ErrorIs(t, err, boom)
	err = s.Set(ctx, models.AuthToken{AccessToken: "bad", RefreshToken: "bad"})
	require.ErrorIs(t, err, boom)
	err = s.Clear(ctx)
	require.ErrorIs(t, err, boom)

	got, ok := s.Access().Read()
	require.True(t, ok)
	assert.Equal(t, "good", got)

	raw, _ := rawValue(t, db, AccessTokenKey)
	assert.Equal(t, `"good"`, raw)
}

func TestConcurrentWrites_LastWriterWins(t *testing.T) {
	db := openDB(t, ":memory:")
	ctx := context.Background()
	s, err := Open(ctx, metadata.NewSQLiteRepository(db), nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Access().Write(ctx, fmt.Sprintf("tok-%d", i))
			_, _ = s.Access().Read()
		}(i)
	}
	wg.Wait()

	mem, ok := s.Access().Read()
	require.True(t, ok)
	raw, _ := rawValue(t, db, AccessTokenKey)
	assert.Equal(t, `"`+mem+`"`, raw, "memory and storage agree on the last write")
}
