// SPDX-License-Identifier: Apache-2.0

package treesnapshot

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gittuf/gitshelf"
	"github.com/gittuf/gitshelf/tree"
)

type options struct {
	gitDir string
}

func (o *options) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.gitDir, "git-dir", "", "path to the repository's GIT_DIR")
}

func (o *options) Run(cmd *cobra.Command, args []string) error {
	var clientOpts []gitshelf.ClientOption
	if o.gitDir != "" {
		clientOpts = append(clientOpts, gitshelf.WithGitDir(o.gitDir))
	}
	client := gitshelf.NewClient(clientOpts...)
	defer client.Close()

	flat, err := tree.ReadSnapshot(cmd.Context(), client, args[0])
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		e := flat[p]
		fmt.Printf("%s %s %s\t%s\n", e.Mode, e.Type, e.Hash, p)
	}
	return nil
}

func New() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:               "snapshot <treeish>",
		Short:             "Print a flat path listing of a tree",
		Long:              `The 'snapshot' command resolves treeish to a flat path->entry listing via a single recursive ls-tree, the same representation gitshelf's tree package uses to round-trip between the object store and an in-memory TreeNode.`,
		Args:              cobra.ExactArgs(1),
		RunE:              o.Run,
		DisableAutoGenTag: true,
	}
	o.AddFlags(cmd)

	return cmd
}
