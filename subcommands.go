// SPDX-License-Identifier: Apache-2.0

package gitshelf

import (
	"context"
	"fmt"
	"strings"

	"github.com/gittuf/gitshelf/optargs"
)

// RevParse runs `git rev-parse` with the given arguments.
func (c *GitClient) RevParse(ctx context.Context, args ...string) (string, error) {
	positionals := make([]any, len(args))
	for i, a := range args {
		positionals[i] = a
	}
	return c.Exec(ctx, "rev-parse", positionals...)
}

// GetTreeHash resolves ref to the tree it points at via
// `rev-parse --verify {ref}^{tree}`.
func (c *GitClient) GetTreeHash(ctx context.Context, ref string) (Hash, error) {
	out, err := c.Exec(ctx, "rev-parse", optargs.Pairs{{Key: "verify", Value: true}}, ref+"^{tree}")
	if err != nil {
		return "", err
	}
	return Hash(out), nil
}

// HashObject runs `git hash-object` with the given options and positional
// paths.
func (c *GitClient) HashObject(ctx context.Context, opts optargs.Pairs, paths ...string) (string, error) {
	args := make([]any, 0, len(paths)+1)
	args = append(args, opts)
	for _, p := range paths {
		args = append(args, p)
	}
	return c.Exec(ctx, "hash-object", args...)
}

// LsTree runs `git ls-tree` with the given options against treeish.
func (c *GitClient) LsTree(ctx context.Context, opts optargs.Pairs, treeish string) (string, error) {
	return c.Exec(ctx, "ls-tree", opts, treeish)
}

// MkTree runs a one-shot `git mktree` invocation (non-batched) with the
// given newline-joined entry lines fed over stdin.
func (c *GitClient) MkTree(ctx context.Context, stdin string) (Hash, error) {
	out, err := c.newExecutor("mktree", nil).WithStdin(strings.NewReader(stdin)).Capture(ctx)
	if err != nil {
		return "", err
	}
	return Hash(out), nil
}

// CatFile runs `git cat-file` with the given options against object.
func (c *GitClient) CatFile(ctx context.Context, opts optargs.Pairs, object string) (string, error) {
	return c.Exec(ctx, "cat-file", opts, object)
}

// StatusOptions configures Status.
type StatusOptions struct {
	Porcelain bool
}

// Status runs `git status`. When opts.Porcelain is set it passes
// --porcelain=1, the machine-readable v1 format S5 depends on; otherwise
// git's human-readable output is returned.
func (c *GitClient) Status(ctx context.Context, opts StatusOptions) (string, error) {
	var pairs optargs.Pairs
	if opts.Porcelain {
		pairs = append(pairs, optargs.Pair{Key: "porcelain", Value: "1"})
	}
	return c.Exec(ctx, "status", pairs)
}

// Config reads a single git config value via `git config --get key`.
func (c *GitClient) Config(ctx context.Context, key string) (string, error) {
	return c.Exec(ctx, "config", optargs.Pairs{{Key: "get", Value: true}}, key)
}

// Init runs `git init` in dir.
func (c *GitClient) Init(ctx context.Context, dir string, bare bool) (string, error) {
	var pairs optargs.Pairs
	if bare {
		pairs = append(pairs, optargs.Pair{Key: "bare", Value: true})
	}
	return c.Exec(ctx, "init", pairs, dir)
}

// Commit runs `git commit-tree` with a message against the given tree and
// parents, returning the new commit hash. GIT_AUTHOR_DATE and
// GIT_COMMITTER_DATE are stamped from the client's clock (real time by
// default, overridable via WithClock for deterministic tests).
func (c *GitClient) Commit(ctx context.Context, tree Hash, message string, parents ...Hash) (Hash, error) {
	args := []any{string(tree)}
	for _, p := range parents {
		args = append(args, optargs.Pairs{{Key: "p", Value: string(p)}})
	}
	args = append(args, optargs.Pairs{{Key: "m", Value: message}})

	now := c.clock.Now().Format("2006-01-02T15:04:05-0700")
	args = append(args, optargs.ExecutorControls{
		Env: map[string]string{
			"GIT_AUTHOR_DATE":    now,
			"GIT_COMMITTER_DATE": now,
		},
	})

	out, err := c.Exec(ctx, "commit-tree", args...)
	if err != nil {
		return "", err
	}
	return Hash(out), nil
}

// Branch runs `git branch` with the given args.
func (c *GitClient) Branch(ctx context.Context, args ...string) (string, error) {
	positionals := make([]any, len(args))
	for i, a := range args {
		positionals[i] = a
	}
	return c.Exec(ctx, "branch", positionals...)
}

// Checkout runs `git checkout` with the given args.
func (c *GitClient) Checkout(ctx context.Context, args ...string) (string, error) {
	positionals := make([]any, len(args))
	for i, a := range args {
		positionals[i] = a
	}
	return c.Exec(ctx, "checkout", positionals...)
}

// ReadConfigSet reads a flat-file config set: one ASCII entry per
// newline-delimited line, blank lines and "#"-prefixed comments ignored.
// This is the "config set" helper spec.md specifies only at its boundary.
func ReadConfigSet(contents string) []string {
	var entries []string
	for _, line := range strings.Split(contents, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	return entries
}

// WriteConfigSet renders entries back into the flat-file format
// ReadConfigSet parses.
func WriteConfigSet(entries []string) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintln(&b, e)
	}
	return b.String()
}
