// SPDX-License-Identifier: Apache-2.0

// Package gitshelf is a programmatic client for the git content-addressable
// object store: it drives the installed git binary as a subprocess and
// layers a lazy, copy-on-write tree model on top of it.
package gitshelf

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/jonboulle/clockwork"

	"github.com/gittuf/gitshelf/exec"
	"github.com/gittuf/gitshelf/optargs"
)

// GitClient is a stateful facade bound to an optional git-dir, work-tree,
// and index file. It owns the process executor and the persistent
// mktree --batch worker used for tree write-back.
type GitClient struct {
	gitDir    string
	workTree  string
	indexFile string
	command   string
	clock     clockwork.Clock

	versionOnce sync.Once
	version     string
	versionErr  error

	batchOnce sync.Once
	batch     *exec.BatchedTreeBuilder
}

// ClientOption configures a GitClient at construction time.
type ClientOption func(*GitClient)

// WithGitDir pins the client to an explicit GIT_DIR, emitted as
// --git-dir=... before the subcommand on every invocation.
func WithGitDir(gitDir string) ClientOption {
	return func(c *GitClient) { c.gitDir = gitDir }
}

// WithWorkTree pins the client to an explicit work tree.
func WithWorkTree(workTree string) ClientOption {
	return func(c *GitClient) { c.workTree = workTree }
}

// WithIndexFile sets GIT_INDEX_FILE for every invocation made by this
// client.
func WithIndexFile(indexFile string) ClientOption {
	return func(c *GitClient) { c.indexFile = indexFile }
}

// WithCommand overrides the git binary name/path (default "git").
func WithCommand(command string) ClientOption {
	return func(c *GitClient) { c.command = command }
}

// WithClock injects the clock Commit uses to stamp GIT_AUTHOR_DATE and
// GIT_COMMITTER_DATE, letting tests pin commit timestamps instead of
// depending on wall-clock time. Defaults to the real clock.
func WithClock(clock clockwork.Clock) ClientOption {
	return func(c *GitClient) { c.clock = clock }
}

// NewClient constructs a GitClient. The batch worker is not spawned until
// the first tree write.
func NewClient(opts ...ClientOption) *GitClient {
	c := &GitClient{command: "git", clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(c)
	}
	slog.Debug("gitshelf client created", "gitDir", c.gitDir, "workTree", c.workTree, "command", c.command)
	return c
}

// GitDir returns the client's configured GIT_DIR, if any.
func (c *GitClient) GitDir() string { return c.gitDir }

// Command returns the git binary name/path this client was configured
// with (default "git").
func (c *GitClient) Command() string { return c.command }

// batchBuilder lazily constructs the client's BatchedTreeBuilder. The
// batch worker is process-scoped per client, per spec.md §9's "cyclic
// ownership" note: tree nodes borrow the client, the client alone owns
// the batched child.
func (c *GitClient) batchBuilder() *exec.BatchedTreeBuilder {
	c.batchOnce.Do(func() {
		c.batch = exec.NewBatchedTreeBuilder(c.command, c.gitDir, nil)
	})
	return c.batch
}

// BuildTree submits one batch of entries to the persistent mktree --batch
// worker and returns the resulting tree hash.
func (c *GitClient) BuildTree(ctx context.Context, entries []exec.TreeEntry) (Hash, error) {
	hash, err := c.batchBuilder().Build(ctx, entries)
	if err != nil {
		return "", err
	}
	return Hash(hash), nil
}

// Close terminates the batch worker, if one was ever started. Go has no
// destructors, so callers are expected to `defer client.Close()`.
func (c *GitClient) Close() error {
	if c.batch != nil {
		c.batch.Cleanup()
	}
	return nil
}

// newExecutor builds an *exec.Executor pre-configured with the client's
// global options (--git-dir, --work-tree, GIT_INDEX_FILE).
func (c *GitClient) newExecutor(subcommand string, argv []string) *exec.Executor {
	args := append([]string{subcommand}, argv...)
	e := exec.New(c.command, args...)
	if c.gitDir != "" {
		e = e.WithGitDir(c.gitDir)
	}
	if c.workTree != "" {
		e = e.WithWorkTree(c.workTree)
	}
	if c.indexFile != "" {
		e = e.WithIndexFile(c.indexFile)
	}
	return e
}

// Exec is the generic entry point for every git subcommand. args may mix
// string/int positionals, optargs.Pairs option groups, and
// optargs.ExecutorControls, in the order the caller supplied them, so
// argv order-sensitive invocations (e.g. "-- pathspec") remain possible.
func (c *GitClient) Exec(ctx context.Context, subcommand string, args ...any) (string, error) {
	argv, controls, err := c.decodeArgs(args)
	if err != nil {
		return "", err
	}

	e := c.newExecutor(subcommand, argv)

	if controls.Env != nil {
		e = e.WithEnv(controls.Env)
	}
	if controls.PreserveEnv != nil {
		e = e.WithPreserveEnv(*controls.PreserveEnv)
	}
	if controls.Cwd != "" {
		e = e.WithDir(controls.Cwd)
	}
	if controls.NullOnError {
		e = e.WithNullOnError(true)
	}
	if controls.Passthrough {
		e = e.WithPassthrough(true)
	}
	if controls.OnStdout != nil {
		e = e.WithOnStdout(controls.OnStdout)
	}
	if controls.OnStderr != nil {
		e = e.WithOnStderr(controls.OnStderr)
	}

	switch {
	case controls.Shell:
		return e.Shell(ctx)
	case controls.Spawn:
		proc, err := e.Spawn(ctx)
		if err != nil {
			return "", err
		}
		if controls.Wait {
			if err := proc.Wait(); err != nil {
				return "", err
			}
			return "", nil
		}
		return proc.CaptureOutputTrimmed(nil)
	default:
		return e.Capture(ctx)
	}
}

// decodeArgs splits a heterogeneous positional argument list into ordered
// argv tokens plus the decoded executor controls, per spec.md §4.2.
func (c *GitClient) decodeArgs(args []any) ([]string, optargs.ExecutorControls, error) {
	var argv []string
	var allControls optargs.ExecutorControls

	for _, a := range args {
		switch v := a.(type) {
		case string:
			argv = append(argv, v)
		case int:
			argv = append(argv, strconv.Itoa(v))
		case optargs.Pairs:
			gitPairs, controls := optargs.SplitExecutorControls(v)
			argv = append(argv, optargs.Encode(gitPairs)...)
			mergeControls(&allControls, controls)
		case optargs.Options:
			gitPairs, controls := optargs.SplitExecutorControls(v.Pairs())
			argv = append(argv, optargs.Encode(gitPairs)...)
			mergeControls(&allControls, controls)
		case optargs.ExecutorControls:
			mergeControls(&allControls, v)
		default:
			return nil, optargs.ExecutorControls{}, fmt.Errorf("%w: unsupported exec argument type %T", ErrBadArgument, a)
		}
	}

	return argv, allControls, nil
}

func mergeControls(dst *optargs.ExecutorControls, src optargs.ExecutorControls) {
	if src.Spawn {
		dst.Spawn = true
	}
	if src.Shell {
		dst.Shell = true
	}
	if src.NullOnError {
		dst.NullOnError = true
	}
	if src.Passthrough {
		dst.Passthrough = true
	}
	if src.Wait {
		dst.Wait = true
	}
	if src.Cwd != "" {
		dst.Cwd = src.Cwd
	}
	if src.Env != nil {
		dst.Env = src.Env
	}
	if src.PreserveEnv != nil {
		dst.PreserveEnv = src.PreserveEnv
	}
	if src.OnStdout != nil {
		dst.OnStdout = src.OnStdout
	}
	if src.OnStderr != nil {
		dst.OnStderr = src.OnStderr
	}
}

// GetVersion returns the installed git version string (e.g. "2.34.1"),
// memoized across calls, grounded on the teacher's version-parsing
// conventions in internal/utils.
func (c *GitClient) GetVersion(ctx context.Context) (string, error) {
	c.versionOnce.Do(func() {
		out, err := c.Exec(ctx, "version")
		if err != nil {
			c.versionErr = err
			return
		}
		c.version, c.versionErr = parseGitVersion(out)
	})
	return c.version, c.versionErr
}

func parseGitVersion(out string) (string, error) {
	var major, minor, patch int
	n, err := fmt.Sscanf(out, "git version %d.%d.%d", &major, &minor, &patch)
	if err != nil || n != 3 {
		return "", fmt.Errorf("%w: unable to parse git version from %q", ErrBadArgument, out)
	}
	return fmt.Sprintf("%d.%d.%d", major, minor, patch), nil
}

// SatisfiesVersion reports whether the installed git version satisfies the
// given semver-range constraint (e.g. ">=2.7.4").
func (c *GitClient) SatisfiesVersion(ctx context.Context, constraint string) (bool, error) {
	versionStr, err := c.GetVersion(ctx)
	if err != nil {
		return false, err
	}

	v, err := semver.NewVersion(versionStr)
	if err != nil {
		return false, fmt.Errorf("%w: invalid git version %q: %v", ErrBadArgument, versionStr, err)
	}

	c2, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("%w: invalid version constraint %q: %v", ErrBadArgument, constraint, err)
	}

	return c2.Check(v), nil
}

// RequireVersion returns an error unless the installed git satisfies
// constraint.
func (c *GitClient) RequireVersion(ctx context.Context, constraint string) error {
	ok, err := c.SatisfiesVersion(ctx, constraint)
	if err != nil {
		return err
	}
	if !ok {
		versionStr, _ := c.GetVersion(ctx)
		return fmt.Errorf("git %s does not satisfy %s", versionStr, constraint)
	}
	return nil
}
