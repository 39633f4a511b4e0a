package util_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Totarae/TransferRedirect/internal/storage"
	"github.com/Totarae/TransferRedirect/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternStore_AddListRemove(t *testing.T) {
	ctx := context.Background()
	store := util.NewPatternStore("")

	require.NoError(t, store.Add(ctx, "u1", "One Piece"))
	require.NoError(t, store.Add(ctx, "u2", "Naruto"))
	require.NoError(t, store.Add(ctx, "u1", "Frieren;1080p"))
	require.NoError(t, store.Add(ctx, "u1", "Dandadan"))

	got, err := store.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"One Piece", "Frieren;1080p", "Dandadan"}, got)

	require.NoError(t, store.RemoveAt(ctx, "u1", 1))
	got, _ = store.List(ctx, "u1")
	assert.Equal(t, []string{"One Piece", "Dandadan"}, got)

	assert.ErrorIs(t, store.RemoveAt(ctx, "u1", 2), storage.ErrPatternIndex)
	assert.ErrorIs(t, store.RemoveAt(ctx, "u1", -1), storage.ErrPatternIndex)
	assert.ErrorIs(t, store.RemoveAt(ctx, "u3", 0), storage.ErrPatternIndex)

	require.NoError(t, store.RemoveAll(ctx, "u1"))
	got, _ = store.List(ctx, "u1")
	assert.Empty(t, got)
	got, _ = store.List(ctx, "u2")
	assert.Equal(t, []string{"Naruto"}, got)
}

func TestPatternStore_Validation(t *testing.T) {
	ctx := context.Background()
	store := util.NewPatternStore("")

	assert.ErrorIs(t, store.Add(ctx, "", "One Piece"), storage.ErrEmptyUserID)
	assert.ErrorIs(t, store.Add(ctx, "u1", ""), storage.ErrEmptyPattern)
	assert.ErrorIs(t, store.Add(ctx, "u1", ";;"), storage.ErrEmptyPattern)
}

func TestPatternStore_Matching(t *testing.T) {
	ctx := context.Background()
	store := util.NewPatternStore("")
	require.NoError(t, store.Add(ctx, "u6", "One "))
	require.NoError(t, store.Add(ctx, "u6", "Piece"))
	require.NoError(t, store.Add(ctx, "u7", "Naru"))
	require.NoError(t, store.Add(ctx, "u8", "One Piece;720p"))

	users, err := store.Matching(ctx, "One Piece 1080p")
	require.NoError(t, err)
	assert.Equal(t, []string{"u6"}, users)
}

func TestPatternStore_PersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "patterns.json")

	first := util.NewPatternStore(path)
	require.NoError(t, first.Add(ctx, "u1", "One Piece"))
	require.NoError(t, first.Add(ctx, "u1", "Naruto"))
	require.NoError(t, first.RemoveAt(ctx, "u1", 0))

	second := util.NewPatternStore(path)
	got, err := second.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Naruto"}, got)
}

func TestPatternStore_FailedSaveKeepsMemory(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "gone")
	require.NoError(t, os.Mkdir(dir, 0700))
	store := util.NewPatternStore(filepath.Join(dir, "patterns.json"))
	require.NoError(t, os.Remove(dir))

	require.Error(t, store.Add(ctx, "u1", "One Piece"))
	got, _ := store.List(ctx, "u1")
	assert.Empty(t, got)
}
