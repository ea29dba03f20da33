package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetshop/internal/store"
)

func TestVersionFormat(t *testing.T) {
	v := formatVersion(41)
	assert.Equal(t, store.Version("41"), v)

	n, err := parseVersion(v)
	require.NoError(t, err)
	assert.Equal(t, int64(41), n)

	for _, bad := range []store.Version{"", "0", "-3", "abc", "e3b0c44298fc1c149afbf4c8996fb924"} {
		_, err := parseVersion(bad)
		assert.Error(t, err, string(bad))
	}
}

// Runs against a real server when MONGO_TEST_URI is set.
func TestDocumentStorageAgainstMongo(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	client, err := Connect(uri)
	require.NoError(t, err)
	db := client.Database("sweetshop_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	require.NoError(t, EnsureDocumentIndexes(db))

	ctx := context.Background()
	s := NewDocumentStorage(db)
	require.NoError(t, s.Ping(ctx))

	_, _, err = s.Load(ctx, "carts")
	require.ErrorIs(t, err, store.ErrDocumentNotFound)

	v1, err := s.Save(ctx, "carts", []byte("<carts/>"), "")
	require.NoError(t, err)
	_, err = s.Save(ctx, "carts", []byte("<carts/>"), "")
	require.ErrorIs(t, err, store.ErrConflict)

	v2, err := s.Save(ctx, "carts", []byte("<carts><cartList/></carts>"), v1)
	require.NoError(t, err)
	_, err = s.Save(ctx, "carts", []byte("<carts/>"), v1)
	require.ErrorIs(t, err, store.ErrConflict)

	data, v, err := s.Load(ctx, "carts")
	require.NoError(t, err)
	assert.Equal(t, v2, v)
	assert.Equal(t, "<carts><cartList/></carts>", string(data))
}
