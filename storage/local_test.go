package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	id := uuid.New()

	path, err := store.Save(ctx, id, "failure.json", strings.NewReader(`{"stage":"parse"}`))
	require.NoError(t, err)
	assert.Contains(t, path, id.String())
	assert.True(t, strings.HasPrefix(path, id.String()[:2]+"/"), "paths are sharded by id prefix")

	rc, err := store.Load(ctx, path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, `{"stage":"parse"}`, string(data))

	require.NoError(t, store.Delete(ctx, path))
	_, err = store.Load(ctx, path)
	assert.Error(t, err)
}

func TestLocalStoreDeleteMissingIsNoop(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "ab/missing.json"))
}

func TestArtifactPathSanitizesName(t *testing.T) {
	id := uuid.MustParse("abcdef00-0000-0000-0000-000000000000")

	path := artifactPath(id, "raw output/with slash.json")
	assert.Equal(t, "ab/abcdef00-0000-0000-0000-000000000000_raw_output_with_slash.json", path)
}
