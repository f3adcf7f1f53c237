// SPDX-License-Identifier: Apache-2.0

package exec

import (
	osexec "os/exec"
	"testing"
)

func lookupGit() (string, error) {
	return osexec.LookPath("git")
}

// initBareTestRepo creates a throwaway bare repository and returns its
// git-dir, grounded on the teacher's CreateTestGitRepository helper in
// internal/gitinterface/common.go.
func initBareTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cmd := osexec.Command("git", "init", "--bare", "-q", dir)
	require := cmd.Run()
	if require != nil {
		t.Fatalf("unable to init test repository: %v", require)
	}
	return dir
}
