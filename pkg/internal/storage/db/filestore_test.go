package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage/db"
)

func newStore(t *testing.T) *db.FileStore {
	t.Helper()

	ctx := context.Background()
	cfg := &configs.DBConfig{
		Type:         configs.SQLite,
		DataDir:      t.TempDir(),
		Database:     "files_test",
		MaxIdleConns: 1,
	}

	client, err := db.New(ctx, cfg, db.Options{})
	require.NoError(t, err)

	store, err := db.NewFileStore(ctx, client)
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	f := &model.File{OwnerID: "u1", Name: "docs", Type: model.TypeFolder, ParentID: model.Root()}
	require.NoError(t, store.Create(ctx, f))
	require.NotEmpty(t, f.ID)

	got, err := store.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "docs", got.Name)
	assert.True(t, got.ParentID.IsRoot())

	_, err = store.FindOwned(ctx, f.ID, "u2")
	assert.ErrorIs(t, err, model.ErrRecordNotFound)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrRecordNotFound)
}

func TestListKeepsInsertionOrderAndPages(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	folder := &model.File{OwnerID: "u1", Name: "root-folder", Type: model.TypeFolder}
	require.NoError(t, store.Create(ctx, folder))

	names := []string{"c.txt", "a.txt", "b.txt"}
	for _, n := range names {
		require.NoError(t, store.Create(ctx, &model.File{
			OwnerID: "u1", Name: n, Type: model.TypeFile,
			ParentID: model.Ref(folder.ID), LocalPath: n + "-key",
		}))
	}

	require.NoError(t, store.Create(ctx, &model.File{
		OwnerID: "u2", Name: "other.txt", Type: model.TypeFile,
		ParentID: model.Ref(folder.ID), LocalPath: "other-key",
	}))

	files, err := store.List(ctx, "u1", model.Ref(folder.ID), 0, 20)
	require.NoError(t, err)
	require.Len(t, files, 3)

	for i, f := range files {
		assert.Equal(t, names[i], f.Name)
		assert.Equal(t, folder.ID, f.ParentID.ID())
	}

	page, err := store.List(ctx, "u1", model.Ref(folder.ID), 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b.txt", page[0].Name)

	empty, err := store.List(ctx, "u1", model.Ref(folder.ID), 100, 20)
	require.NoError(t, err)
	assert.Empty(t, empty)

	roots, err := store.List(ctx, "u1", model.Root(), 0, 20)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, folder.ID, roots[0].ID)
}

func TestSetPublicIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	f := &model.File{OwnerID: "u1", Name: "a.txt", Type: model.TypeFile, LocalPath: "k"}
	require.NoError(t, store.Create(ctx, f))

	for range 2 {
		got, err := store.SetPublic(ctx, f.ID, "u1", true)
		require.NoError(t, err)
		assert.True(t, got.IsPublic)
	}

	got, err := store.SetPublic(ctx, f.ID, "u1", false)
	require.NoError(t, err)
	assert.False(t, got.IsPublic)

	_, err = store.SetPublic(ctx, f.ID, "intruder", true)
	assert.ErrorIs(t, err, model.ErrRecordNotFound)

	stored, err := store.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPublic)
}

func TestCountAndScanByType(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	for i, typ := range []model.FileType{model.TypeImage, model.TypeImage, model.TypeFile} {
		require.NoError(t, store.Create(ctx, &model.File{
			OwnerID: "u1", Name: string(typ), Type: typ, LocalPath: model.NewID() + string(rune('a'+i)),
		}))
	}

	counts, err := store.CountByType(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[model.TypeImage])
	assert.Equal(t, int64(1), counts[model.TypeFile])
	assert.Equal(t, int64(0), counts[model.TypeFolder])

	first, err := store.ListByType(ctx, model.TypeImage, "", 1)
	require.NoError(t, err)
	require.Len(t, first, 1)

	rest, err := store.ListByType(ctx, model.TypeImage, first[0].ID, 10)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.NotEqual(t, first[0].ID, rest[0].ID)

	assert.NoError(t, store.Ping(ctx))
}
