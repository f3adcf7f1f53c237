// SPDX-License-Identifier: Apache-2.0

package tree

import (
	osexec "os/exec"
	"testing"

	"github.com/gittuf/gitshelf"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := osexec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

// newTestClient creates a throwaway bare repository and returns a client
// bound to it, grounded on the teacher's CreateTestGitRepository helper in
// internal/gitinterface/common.go.
func newTestClient(t *testing.T) *gitshelf.GitClient {
	t.Helper()
	requireGit(t)

	dir := t.TempDir()
	cmd := osexec.Command("git", "init", "--bare", "-q", dir)
	if err := cmd.Run(); err != nil {
		t.Fatalf("unable to init test repository: %v", err)
	}

	client := gitshelf.NewClient(gitshelf.WithGitDir(dir))
	t.Cleanup(func() { _ = client.Close() })
	return client
}
