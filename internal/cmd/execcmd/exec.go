// SPDX-License-Identifier: Apache-2.0

package execcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gittuf/gitshelf"
)

type options struct {
	gitDir   string
	workTree string
}

func (o *options) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.gitDir, "git-dir", "", "path to the repository's GIT_DIR (defaults to git's own discovery)")
	cmd.Flags().StringVar(&o.workTree, "work-tree", "", "path to the repository's work tree")
}

func (o *options) Run(cmd *cobra.Command, args []string) error {
	var clientOpts []gitshelf.ClientOption
	if o.gitDir != "" {
		clientOpts = append(clientOpts, gitshelf.WithGitDir(o.gitDir))
	}
	if o.workTree != "" {
		clientOpts = append(clientOpts, gitshelf.WithWorkTree(o.workTree))
	}
	client := gitshelf.NewClient(clientOpts...)
	defer client.Close()

	if len(args) == 0 {
		return fmt.Errorf("exec requires a git subcommand, e.g. `gitshelf exec -- status`")
	}

	positionals := make([]any, len(args)-1)
	for i, a := range args[1:] {
		positionals[i] = a
	}

	out, err := client.Exec(cmd.Context(), args[0], positionals...)
	if err != nil {
		return err
	}

	fmt.Println(out)
	return nil
}

func New() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:               "exec <subcommand> [args...]",
		Short:             "Run a raw git subcommand through the gitshelf client",
		Long:              `The 'exec' command drives an arbitrary git subcommand through the same subprocess executor the rest of gitshelf uses, printing its captured stdout. Useful for ad hoc inspection of a repository without writing Go.`,
		Args:              cobra.MinimumNArgs(1),
		RunE:              o.Run,
		DisableAutoGenTag: true,
	}
	o.AddFlags(cmd)

	return cmd
}
