// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"github.com/spf13/cobra"

	"github.com/gittuf/gitshelf/internal/cmd/treemerge"
	"github.com/gittuf/gitshelf/internal/cmd/treesnapshot"
)

// New returns the "tree" command group, parenting the snapshot and merge
// subcommands that operate on gitshelf's in-memory TreeNode model.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "tree",
		Short:             "Inspect and merge git trees",
		DisableAutoGenTag: true,
	}

	cmd.AddCommand(treesnapshot.New())
	cmd.AddCommand(treemerge.New())

	return cmd
}
