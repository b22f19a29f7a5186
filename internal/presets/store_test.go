package presets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dperrors "git.home.luguber.info/inful/devpulse/internal/errors"
	"git.home.luguber.info/inful/devpulse/internal/repoview"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "alice", "dirty main", repoview.Criteria{
		Status: repoview.StatusDirty,
		Branch: "main",
	}, false)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, repoview.ActivityAll, created.Criteria.Activity, "empty fields normalize to pass-through")

	got, err := store.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, created.ID, got[0].ID)
	assert.Equal(t, repoview.StatusDirty, got[0].Criteria.Status)
	assert.Equal(t, "main", got[0].Criteria.Branch)
}

func TestCreateDuplicateNameRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "alice", "mine", repoview.Criteria{}, false)
	require.NoError(t, err)

	_, err = store.Create(ctx, "alice", "mine", repoview.Criteria{}, false)
	require.Error(t, err)
	assert.True(t, dperrors.IsCategory(err, dperrors.CategoryAlreadyExists))

	// same name under another user is fine
	_, err = store.Create(ctx, "bob", "mine", repoview.Criteria{}, false)
	assert.NoError(t, err)
}

func TestDefaultIsExclusive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "alice", "first", repoview.Criteria{}, true)
	require.NoError(t, err)

	second, err := store.Create(ctx, "alice", "second", repoview.Criteria{}, true)
	require.NoError(t, err)

	def, err := store.Default(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, second.ID, def.ID)

	got, err := store.Get(ctx, "alice", first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault, "creating a new default unsets the old one")
}

func TestDefaultNoneSet(t *testing.T) {
	store := newTestStore(t)
	def, err := store.Default(context.Background(), "alice")
	require.NoError(t, err)
	assert.Nil(t, def)
}

func TestUpdatePartialFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "alice", "old", repoview.Criteria{Search: "api"}, false)
	require.NoError(t, err)

	name := "renamed"
	updated, err := store.UpdatePreset(ctx, "alice", created.ID, Update{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, "api", updated.Criteria.Search, "untouched fields survive")

	isDefault := true
	updated, err = store.UpdatePreset(ctx, "alice", created.ID, Update{IsDefault: &isDefault})
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)
}

func TestUpdateDefaultUnsetsOthers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "alice", "first", repoview.Criteria{}, true)
	require.NoError(t, err)
	second, err := store.Create(ctx, "alice", "second", repoview.Criteria{}, false)
	require.NoError(t, err)

	isDefault := true
	_, err = store.UpdatePreset(ctx, "alice", second.ID, Update{IsDefault: &isDefault})
	require.NoError(t, err)

	got, err := store.Get(ctx, "alice", first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)
}

func TestUpdateMissingPreset(t *testing.T) {
	store := newTestStore(t)
	name := "x"
	_, err := store.UpdatePreset(context.Background(), "alice", "no-such-id", Update{Name: &name})
	require.Error(t, err)
	assert.True(t, dperrors.IsCategory(err, dperrors.CategoryNotFound))
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "alice", "gone soon", repoview.Criteria{}, false)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "alice", created.ID))

	err = store.Delete(ctx, "alice", created.ID)
	require.Error(t, err)
	assert.True(t, dperrors.IsCategory(err, dperrors.CategoryNotFound))
}

func TestDeleteScopedToUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "alice", "mine", repoview.Criteria{}, false)
	require.NoError(t, err)

	err = store.Delete(ctx, "bob", created.ID)
	require.Error(t, err)
	assert.True(t, dperrors.IsCategory(err, dperrors.CategoryNotFound))
}
