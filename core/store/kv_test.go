package store

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"consent-manager/core/database"
	"consent-manager/core/storage/mocks"

	"github.com/alicebob/miniredis/v2"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestKeyValueStore(t *testing.T) {
	ctx := context.Background()
	h := &memoryHandle{items: map[string]string{"other": "o"}}
	s := NewKeyValueStore(h, "klaro")

	require.NoError(t, s.Set(ctx, "blob"))
	assert.Equal(t, "blob", h.items["klaro"])

	v, ok, err := s.GetWithKey(ctx, "other")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "o", v)

	require.NoError(t, s.SetWithKey(ctx, "extra", "e"))
	require.NoError(t, s.DeleteWithKey(ctx, "other"))
	assert.Equal(t, map[string]string{"klaro": "blob", "extra": "e"}, h.items)

	require.NoError(t, s.Delete(ctx))
	_, ok, _ = s.Get(ctx)
	assert.False(t, ok)
}

func TestDatabaseHandle(t *testing.T) {
	ctx := context.Background()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	h := NewDatabaseHandle(db, "")
	require.NoError(t, h.Prepare(ctx))

	columns, err := database.GetTableColumns(db, "consent_entries")
	require.NoError(t, err)
	assert.True(t, database.HasColumns(columns, "entry_key", "entry_value"))

	// second prepare sees the table and does nothing
	require.NoError(t, h.Prepare(ctx))

	_, ok, err := h.GetItem(ctx, "klaro")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, h.SetItem(ctx, "klaro", "first"))
	require.NoError(t, h.SetItem(ctx, "klaro", "second"))

	v, ok, err := h.GetItem(ctx, "klaro")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", v)

	require.NoError(t, h.RemoveItem(ctx, "klaro"))
	_, ok, err = h.GetItem(ctx, "klaro")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisHandle(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	h := NewRedisHandle(client, "consent:", 30*time.Minute)

	_, ok, err := h.GetItem(ctx, "klaro")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, h.SetItem(ctx, "klaro", "blob"))
	assert.True(t, mr.Exists("consent:klaro"))

	v, ok, err := h.GetItem(ctx, "klaro")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "blob", v)

	t.Run("Expires After TTL", func(t *testing.T) {
		mr.FastForward(31 * time.Minute)
		_, ok, err := h.GetItem(ctx, "klaro")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, h.SetItem(ctx, "klaro", "blob"))
		require.NoError(t, h.RemoveItem(ctx, "klaro"))
		assert.False(t, mr.Exists("consent:klaro"))
	})

	t.Run("Backend Error", func(t *testing.T) {
		mr.SetError("LOADING")
		defer mr.SetError("")
		_, _, err := h.GetItem(ctx, "klaro")
		assert.Error(t, err)
	})
}

func TestObjectHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("Get", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "consents", "blobs/klaro", mock.Anything).
			Return(io.NopCloser(strings.NewReader("blob")), nil)

		h := NewObjectHandle(client, "consents", "blobs")
		v, ok, err := h.GetItem(ctx, "klaro")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "blob", v)
		client.AssertExpectations(t)
	})

	t.Run("Get Missing", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "consents", "klaro", mock.Anything).
			Return(nil, minio.ErrorResponse{Code: "NoSuchKey"})

		h := NewObjectHandle(client, "consents", "")
		_, ok, err := h.GetItem(ctx, "klaro")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Get Failure", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "consents", "klaro", mock.Anything).
			Return(nil, errors.New("connection refused"))

		h := NewObjectHandle(client, "consents", "")
		_, _, err := h.GetItem(ctx, "klaro")
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("Set", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("PutObject", mock.Anything, "consents", "blobs/klaro", mock.Anything, int64(4), mock.Anything).
			Return(minio.UploadInfo{}, nil)

		h := NewObjectHandle(client, "consents", "blobs")
		require.NoError(t, h.SetItem(ctx, "klaro", "blob"))
		client.AssertExpectations(t)
	})

	t.Run("Remove Missing Is Not An Error", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("RemoveObject", mock.Anything, "consents", "klaro", mock.Anything).
			Return(minio.ErrorResponse{Code: "NoSuchKey"})

		h := NewObjectHandle(client, "consents", "")
		assert.NoError(t, h.RemoveItem(ctx, "klaro"))
	})
}
