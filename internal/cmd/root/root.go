// SPDX-License-Identifier: Apache-2.0

package root

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/gittuf/gitshelf/internal/cmd/execcmd"
	"github.com/gittuf/gitshelf/internal/cmd/tree"
	"github.com/gittuf/gitshelf/internal/cmd/version"
)

type options struct {
	noColor bool
	verbose bool
}

func (o *options) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(
		&o.noColor,
		"no-color",
		false,
		"turn off colored output",
	)

	cmd.PersistentFlags().BoolVar(
		&o.verbose,
		"verbose",
		false,
		"enable verbose logging",
	)
}

func (o *options) PreRunE(_ *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	isTerminal := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	ColorEnabled = isTerminal && !o.noColor

	return nil
}

// ColorEnabled reports whether subcommands should emit ANSI color codes,
// set once by the root command's PersistentPreRunE.
var ColorEnabled bool

// New constructs the gitshelf root command.
func New() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:               "gitshelf",
		Short:             "A programmatic client for the git object store",
		Long:              `gitshelf drives the installed git binary as a subprocess and layers a lazy, copy-on-write tree model on top of its content-addressable object store. The CLI exposes the same primitives the Go API does: raw subcommand execution, tree snapshotting, and filtered tree merges.`,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
		PersistentPreRunE: o.PreRunE,
	}

	o.AddFlags(cmd)

	cmd.AddCommand(execcmd.New())
	cmd.AddCommand(tree.New())
	cmd.AddCommand(version.New())

	return cmd
}
