// SPDX-License-Identifier: Apache-2.0

package gitshelf

import (
	"context"
	osexec "os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gittuf/gitshelf/optargs"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := osexec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func newBareTestClient(t *testing.T) *GitClient {
	t.Helper()
	requireGit(t)

	dir := t.TempDir()
	require.NoError(t, osexec.Command("git", "init", "--bare", "-q", dir).Run())

	client := NewClient(WithGitDir(dir))
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestVersionGate(t *testing.T) {
	requireGit(t)
	client := NewClient()

	ctx := context.Background()
	version, err := client.GetVersion(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, version)

	ok, err := client.SatisfiesVersion(ctx, ">=2.7.4")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseGitVersion(t *testing.T) {
	v, err := parseGitVersion("git version 2.34.1")
	require.NoError(t, err)
	assert.Equal(t, "2.34.1", v)

	_, err = parseGitVersion("not a version string")
	require.Error(t, err)
}

func TestExecWithPairsAndPositionalOrder(t *testing.T) {
	client := newBareTestClient(t)
	ctx := context.Background()

	out, err := client.Exec(ctx, "hash-object", optargs.Pairs{{Key: "t", Value: "blob"}}, "--stdin", optargs.ExecutorControls{})
	// cmd.Stdin is nil here so Go wires it to /dev/null: hash-object hashes
	// an empty input and succeeds.
	require.NoError(t, err)
	assert.Len(t, out, 40)
}

func TestExecRejectsUnsupportedArgType(t *testing.T) {
	client := newBareTestClient(t)
	ctx := context.Background()

	_, err := client.Exec(ctx, "status", 3.14)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadArgument)
}

func TestStatusPorcelainPreservesLeadingSpace(t *testing.T) {
	requireGit(t)

	dir := t.TempDir()
	require.NoError(t, osexec.Command("git", "init", "-q", dir).Run())

	worktreeClient := NewClient(WithGitDir(dir+"/.git"), WithWorkTree(dir))

	filePath := dir + "/test.txt"
	require.NoError(t, osexec.Command("sh", "-c", "echo original > "+filePath).Run())

	addCmd := osexec.Command("git", "-C", dir, "add", "test.txt")
	require.NoError(t, addCmd.Run())
	commitCmd := osexec.Command("git", "-C", dir, "-c", "user.email=t@example.com", "-c", "user.name=t", "commit", "-q", "-m", "init")
	require.NoError(t, commitCmd.Run())

	require.NoError(t, osexec.Command("sh", "-c", "echo changed > "+filePath).Run())

	out, err := worktreeClient.Status(context.Background(), StatusOptions{Porcelain: true})
	require.NoError(t, err)
	assert.Contains(t, out, " M test.txt")
}
