// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"context"
	"fmt"

	"github.com/gittuf/gitshelf"
)

// WriteTreeFromEntries writes entries directly via a single `git mktree`
// call, bypassing the batched worker. It is a convenience for callers that
// already have a flat manifest and don't need TreeNode's lazy overlay
// machinery, grounded on the teacher's TreeBuilder.writeTree in
// internal/gitinterface/tree.go.
func WriteTreeFromEntries(ctx context.Context, client *gitshelf.GitClient, entries map[string]FlatEntry) (gitshelf.Hash, error) {
	var stdin string
	for name, e := range entries {
		mode := e.Mode
		if mode == "" {
			mode = defaultBlobMode
		}
		stdin += fmt.Sprintf("%s %s %s\t%s\n", mode, e.Type, e.Hash, name)
	}

	return client.MkTree(ctx, stdin)
}
