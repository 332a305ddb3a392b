package filestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagemsg/gmweb/auth"
	"github.com/sagemsg/gmweb/authstore"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	snap := auth.Snapshot{
		SessionID:     "sess-1",
		TachyonToken:  []byte("token"),
		TachyonExpiry: time.Now().Truncate(time.Second),
		IsGaia:        true,
		Cookies:       map[string]string{"SAPISID": "x"},
	}

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "device-1", snap))

	got, err := store.Load(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, snap.SessionID, got.SessionID)
	assert.Equal(t, snap.TachyonToken, got.TachyonToken)
	assert.True(t, snap.TachyonExpiry.Equal(got.TachyonExpiry))
	assert.Equal(t, snap.IsGaia, got.IsGaia)
	assert.Equal(t, snap.Cookies, got.Cookies)
}

func TestLoadMissingKeyReturnsErrNotFound(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, authstore.ErrNotFound)
}

func TestSaveOverwritesPreviousSnapshot(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "device-1", auth.Snapshot{SessionID: "first"}))
	require.NoError(t, store.Save(ctx, "device-1", auth.Snapshot{SessionID: "second"}))

	got, err := store.Load(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, "second", got.SessionID)
}

func TestDeleteThenLoadReturnsErrNotFound(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "device-1", auth.Snapshot{SessionID: "x"}))
	require.NoError(t, store.Delete(ctx, "device-1"))

	_, err = store.Load(ctx, "device-1")
	assert.ErrorIs(t, err, authstore.ErrNotFound)
}

func TestDeleteMissingKeyIsNotAnError(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, store.Delete(context.Background(), "never-existed"))
}
