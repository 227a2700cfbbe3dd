package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-sod/nbayes/internal/classifier/bayes"
	"github.com/go-sod/nbayes/internal/database"
	"github.com/go-sod/nbayes/internal/dataset"
	"github.com/go-sod/nbayes/internal/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewFromEnv(ctx, &database.Config{
		FileName:    filepath.Join(t.TempDir(), "models.db"),
		OpenTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(ctx) })
	return New(db)
}

func newTestRecord(t *testing.T, name string) model.Record {
	t.Helper()
	ds := dataset.New(
		dataset.CategoricalAttribute{Name: "class", Categories: []string{"low", "high"}},
		[]dataset.CategoricalAttribute{{Name: "zone", Categories: []string{"n", "s"}}},
		[]string{"temp"},
	)
	for i := 0; i < 5; i++ {
		require.NoError(t, ds.Add(0, dataset.DataPoint{Categorical: []int{i % 2}, Numerical: []float64{float64(i) + 1}}))
		require.NoError(t, ds.Add(1, dataset.DataPoint{Categorical: []int{1}, Numerical: []float64{float64(i)*2 + 20}}))
	}
	m, err := bayes.New().Fit(context.Background(), ds)
	require.NoError(t, err)
	r, err := model.NewRecord(name, ds, m, time.Now().UTC())
	require.NoError(t, err)
	return r
}

func TestDB_StoreFind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	r := newTestRecord(t, "weather")

	require.NoError(t, db.Store(ctx, r))
	got, err := db.Find(ctx, "weather")
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, r.Model.Snapshot(), got.Model.Snapshot())

	_, err = db.Find(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDB_Replace(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	first, second := newTestRecord(t, "weather"), newTestRecord(t, "weather")

	require.NoError(t, db.Store(ctx, first))
	require.NoError(t, db.Store(ctx, second))

	n, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	got, err := db.Find(ctx, "weather")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestDB_FindAllKeysDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)

	keys, err := db.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)

	for _, name := range []string{"b", "a", "c"} {
		require.NoError(t, db.Store(ctx, newTestRecord(t, name)))
	}

	keys, err = db.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	all, err := db.FindAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := db.FindAll(ctx, func(r model.Record) bool { return r.Name != "b" })
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	found, err := db.Delete(ctx, "b")
	require.NoError(t, err)
	assert.True(t, found)
	found, err = db.Delete(ctx, "b")
	require.NoError(t, err)
	assert.False(t, found)

	n, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDB_Usage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, db.Store(ctx, newTestRecord(t, "a")))
	require.NoError(t, db.Store(ctx, newTestRecord(t, "b")))

	at := time.Date(2020, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.Touch(ctx, map[string]time.Time{
		"a":       at,
		"b":       at.Add(time.Hour),
		"missing": at,
	}))

	usage, err := db.LastUsed(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.True(t, usage["a"].Equal(at))
	assert.True(t, usage["b"].Equal(at.Add(time.Hour)))

	_, err = db.Delete(ctx, "a")
	require.NoError(t, err)
	usage, err = db.LastUsed(ctx)
	require.NoError(t, err)
	assert.Len(t, usage, 1)
}
