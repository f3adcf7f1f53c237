// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gittuf/gitshelf"
)

func mustWriteBlob(t *testing.T, ctx context.Context, client *gitshelf.GitClient, content string) *BlobRef {
	t.Helper()
	ref, err := WriteBlob(ctx, client, []byte(content))
	require.NoError(t, err)
	return ref
}

func TestWriteOnCleanNodeIsIdentity(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	node := New(client, "")
	hash, err := node.Write(ctx)
	require.NoError(t, err)
	assert.Equal(t, gitshelf.EmptyTreeHash, hash)

	// node is now clean; Write must return the same hash without error.
	hash2, err := node.Write(ctx)
	require.NoError(t, err)
	assert.Equal(t, hash, hash2)
}

func TestEmptyTreeHashWhenAllTombstoned(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	node := New(client, "")
	ref := mustWriteBlob(t, ctx, client, "hello")
	node.setChild("a.txt", ref)

	hash, err := node.Write(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, gitshelf.EmptyTreeHash, hash)

	require.NoError(t, node.DeleteChild(ctx, "a.txt"))
	hash, err = node.Write(ctx)
	require.NoError(t, err)
	assert.Equal(t, gitshelf.EmptyTreeHash, hash)
}

func TestGetSubtreeCreatesAndMarksAncestorsDirty(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	root := New(client, "")
	_, err := root.Write(ctx)
	require.NoError(t, err)
	assert.False(t, root.isDirty())

	sub, err := root.GetSubtree(ctx, "a/b/c", true)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.True(t, root.isDirty())

	ref := mustWriteBlob(t, ctx, client, "leaf")
	sub.setChild("leaf.txt", ref)

	hash, err := root.Write(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, gitshelf.EmptyTreeHash, hash)
	assert.False(t, root.isDirty())
}

func TestGetSubtreeWithoutCreateReturnsNilForMissingPath(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	root := New(client, "")
	sub, err := root.GetSubtree(ctx, "missing/path", false)
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestWriteThenHydrateRoundTripsThroughObjectStore(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	root := New(client, "")
	ref := mustWriteBlob(t, ctx, client, "content")
	root.setChild("file.txt", ref)

	hash, err := root.Write(ctx)
	require.NoError(t, err)

	reloaded := New(client, hash)
	children, err := reloaded.Children(ctx)
	require.NoError(t, err)
	require.Contains(t, children, "file.txt")

	blob, ok := children["file.txt"].(*BlobRef)
	require.True(t, ok)
	assert.Equal(t, ref.Hash, blob.Hash)
}
