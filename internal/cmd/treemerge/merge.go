// SPDX-License-Identifier: Apache-2.0

package treemerge

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gittuf/gitshelf"
	"github.com/gittuf/gitshelf/tree"
)

type options struct {
	gitDir string
	mode   string
	files  []string
}

func (o *options) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.gitDir, "git-dir", "", "path to the repository's GIT_DIR")
	cmd.Flags().StringVar(&o.mode, "mode", "overlay", "merge mode: overlay or replace")
	cmd.Flags().StringArrayVar(&o.files, "files", nil, "glob pattern to restrict the merge to; repeatable, \"!\" prefix negates")
}

func (o *options) mergeMode() (tree.MergeMode, error) {
	switch o.mode {
	case "overlay":
		return tree.OverlayMode, nil
	case "replace":
		return tree.ReplaceMode, nil
	default:
		return 0, fmt.Errorf("%w: unknown merge mode %q, expected \"overlay\" or \"replace\"", gitshelf.ErrBadArgument, o.mode)
	}
}

func (o *options) Run(cmd *cobra.Command, args []string) error {
	mode, err := o.mergeMode()
	if err != nil {
		return err
	}

	var clientOpts []gitshelf.ClientOption
	if o.gitDir != "" {
		clientOpts = append(clientOpts, gitshelf.WithGitDir(o.gitDir))
	}
	client := gitshelf.NewClient(clientOpts...)
	defer client.Close()

	ctx := cmd.Context()

	baseFlat, err := tree.ReadSnapshot(ctx, client, args[0])
	if err != nil {
		return fmt.Errorf("reading base tree %s: %w", args[0], err)
	}
	inputFlat, err := tree.ReadSnapshot(ctx, client, args[1])
	if err != nil {
		return fmt.Errorf("reading input tree %s: %w", args[1], err)
	}

	base := tree.BuildFromSnapshot(client, baseFlat)
	input := tree.BuildFromSnapshot(client, inputFlat)

	if err := base.Merge(ctx, input, tree.MergeOptions{Files: o.files, Mode: mode}); err != nil {
		return err
	}

	hash, err := base.Write(ctx)
	if err != nil {
		return err
	}

	fmt.Println(string(hash))
	return nil
}

func New() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:               "merge <base-treeish> <input-treeish>",
		Short:             "Merge one tree into another and print the resulting tree hash",
		Long:              `The 'merge' command recursively merges input-treeish into base-treeish using the filtered merge semantics gitshelf's tree package implements, then writes the result back to the object store and prints its hash.`,
		Args:              cobra.ExactArgs(2),
		RunE:              o.Run,
		DisableAutoGenTag: true,
	}
	o.AddFlags(cmd)

	return cmd
}
