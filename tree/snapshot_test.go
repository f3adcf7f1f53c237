// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	root := New(client, "")
	root.setChild("a.txt", mustWriteBlob(t, ctx, client, "alpha"))
	sub := root.mustSubtree(t, ctx, "nested", true)
	sub.setChild("b.txt", mustWriteBlob(t, ctx, client, "beta"))

	hash, err := root.Write(ctx)
	require.NoError(t, err)

	flatIn, err := ReadSnapshot(ctx, client, string(hash))
	require.NoError(t, err)
	require.Len(t, flatIn, 2)

	built := BuildFromSnapshot(client, flatIn)
	rebuiltHash, err := built.Write(ctx)
	require.NoError(t, err)

	flatOut, err := ReadSnapshot(ctx, client, string(rebuiltHash))
	require.NoError(t, err)

	assert.Equal(t, flatIn, flatOut)
}
