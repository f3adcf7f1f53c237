// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/danwakefield/fnmatch"
	"golang.org/x/sync/errgroup"

	"github.com/gittuf/gitshelf"
)

// MergeMode selects the merge semantics for TreeNode.Merge.
type MergeMode int

const (
	// OverlayMode layers the input tree's matched entries on top of the
	// target, leaving unmatched target entries untouched.
	OverlayMode MergeMode = iota
	// ReplaceMode makes the target's matched subset become an exact copy
	// of the input's, tombstoning anything the target has that the input
	// doesn't.
	ReplaceMode
)

// MergeOptions configures a TreeNode.Merge call.
type MergeOptions struct {
	// Files is a list of glob patterns; a "!" prefix marks a negation.
	// An empty list, or the literal list ["**"], disables filtering
	// entirely (everything matches).
	Files []string
	Mode  MergeMode
}

type matcher struct {
	pattern string
	negate  bool
}

type compiledMergeOptions struct {
	matchers      []matcher
	mode          MergeMode
	disableFilter bool
}

func (o MergeOptions) compile() (*compiledMergeOptions, error) {
	if o.Mode != OverlayMode && o.Mode != ReplaceMode {
		return nil, fmt.Errorf("%w: unknown merge mode %v", gitshelf.ErrBadArgument, o.Mode)
	}

	c := &compiledMergeOptions{mode: o.Mode}

	if len(o.Files) == 0 || (len(o.Files) == 1 && o.Files[0] == "**") {
		c.disableFilter = true
		return c, nil
	}

	for _, f := range o.Files {
		if strings.HasPrefix(f, "!") {
			c.matchers = append(c.matchers, matcher{pattern: f[1:], negate: true})
		} else {
			c.matchers = append(c.matchers, matcher{pattern: f})
		}
	}
	return c, nil
}

// evaluate applies every matcher to childPath in order. excluded reports
// an immediate "does not match a negation pattern" exclusion; matched
// reports whether any positive (non-negation) matcher hit; negationsPossible
// reports whether at least one negation matcher was present, which forces
// speculative descent into matched trees.
func (c *compiledMergeOptions) evaluate(childPath string) (excluded, matched, negationsPossible bool) {
	if c.disableFilter {
		return false, true, false
	}

	for _, m := range c.matchers {
		hit := fnmatch.Match(m.pattern, childPath, 0)
		if m.negate {
			negationsPossible = true
			if !hit {
				return true, false, negationsPossible
			}
			continue
		}
		if hit {
			matched = true
		}
	}
	return false, matched, negationsPossible
}

// Merge recursively merges input onto t under opts, per spec.md §4.7: input
// children are filtered through opts.Files, blobs are assigned by
// reference, and trees either clone a clean input subtree's reference or
// recurse to build a fresh one. Sibling subtrees are merged concurrently
// via errgroup, joined before dirty state is propagated to the parent.
func (t *TreeNode) Merge(ctx context.Context, input *TreeNode, opts MergeOptions) error {
	compiled, err := opts.compile()
	if err != nil {
		return err
	}
	return t.mergeNode(ctx, input, compiled, ".")
}

func (t *TreeNode) mergeNode(ctx context.Context, input *TreeNode, opts *compiledMergeOptions, basePath string) error {
	t.mu.Lock()
	err := t.hydrateLocked(ctx)
	t.mu.Unlock()
	if err != nil {
		return err
	}

	input.mu.Lock()
	err = input.hydrateLocked(ctx)
	var inputChildren map[string]Entry
	if err == nil {
		inputChildren = input.overlayViewLocked()
	}
	input.mu.Unlock()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(inputChildren))
	for name := range inputChildren {
		names = append(names, name)
	}

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	becameDirty := false

	for _, name := range names {
		name := name
		inputEntry := inputChildren[name]

		g.Go(func() error {
			dirty, err := t.mergeChild(gctx, name, inputEntry, opts, basePath)
			if err != nil {
				return err
			}
			if dirty {
				mu.Lock()
				becameDirty = true
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if opts.mode == ReplaceMode {
		view := t.overlayViewLocked()
		for name := range view {
			if _, ok := inputChildren[name]; !ok {
				t.setChildLocked(name, overlayEntry{tombstone: true})
				becameDirty = true
			}
		}
	}

	if becameDirty {
		t.dirty = true
	}

	return nil
}

// joinMergePath roots name under basePath the way a glob pattern like
// "src/**" expects: the top-level basePath "." contributes no literal
// prefix (a root child is just "src", not "./src"), and an already-slash-
// terminated basePath (an enclosing tree) is concatenated directly so
// recursion never doubles the separator.
func joinMergePath(basePath, name string) string {
	if basePath == "." || basePath == "" {
		return name
	}
	if strings.HasSuffix(basePath, "/") {
		return basePath + name
	}
	return basePath + "/" + name
}

// mergeChild implements the per-input-child algorithm of spec.md §4.7 for
// a single name, reporting whether t became dirty because of it.
func (t *TreeNode) mergeChild(ctx context.Context, name string, inputEntry Entry, opts *compiledMergeOptions, basePath string) (bool, error) {
	_, isInputTree := inputEntry.(*TreeNode)

	childPath := joinMergePath(basePath, name)
	if isInputTree {
		childPath += "/"
	}

	excluded, matched, negationsPossible := opts.evaluate(childPath)
	if excluded {
		return false, nil
	}

	t.mu.Lock()
	targetEntry, hasTarget := t.lookupLocked(name)
	t.mu.Unlock()

	if hasTarget {
		th, tComparable := entryHash(targetEntry)
		ih, iComparable := entryHash(inputEntry)
		if tComparable && iComparable && th == ih {
			return false, nil
		}
	}

	if !matched && !isInputTree {
		return false, nil
	}

	if !isInputTree {
		t.mu.Lock()
		t.setChild(name, inputEntry)
		t.mu.Unlock()
		return true, nil
	}

	inputTree := inputEntry.(*TreeNode)
	pendingChildMatch := !matched || negationsPossible

	_, targetIsBlob := targetEntry.(*BlobRef)
	targetMissing := !hasTarget

	if targetMissing || targetIsBlob || opts.mode == ReplaceMode {
		if pendingChildMatch {
			fresh := NewWithCache(t.client, "", t.cache)
			// A hashless node starts dirty; clear that so the check below
			// only sees changes the merge itself made.
			fresh.dirty = false
			if err := fresh.mergeNode(ctx, inputTree, opts, childPath); err != nil {
				return false, err
			}
			if !fresh.isDirty() {
				return false, nil
			}
			t.mu.Lock()
			t.setChild(name, fresh)
			t.mu.Unlock()
			return true, nil
		}

		if hash, ok := inputTree.GetWrittenHash(); ok {
			clone := NewWithCache(t.client, hash, t.cache)
			t.mu.Lock()
			t.setChild(name, clone)
			t.mu.Unlock()
			return true, nil
		}

		fresh := NewWithCache(t.client, "", t.cache)
		t.mu.Lock()
		t.setChild(name, fresh)
		t.mu.Unlock()
		if err := fresh.mergeNode(ctx, inputTree, opts, childPath); err != nil {
			return false, err
		}
		return true, nil
	}

	targetTree := targetEntry.(*TreeNode)
	if err := targetTree.mergeNode(ctx, inputTree, opts, childPath); err != nil {
		return false, err
	}
	return targetTree.isDirty(), nil
}
