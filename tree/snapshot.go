// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"context"
	"sort"

	"github.com/gittuf/gitshelf"
	"github.com/gittuf/gitshelf/objectcache"
	"github.com/gittuf/gitshelf/optargs"
)

// FlatEntry is one leaf of a flat path -> entry mapping produced by
// ReadSnapshot.
type FlatEntry struct {
	Mode string
	Type string
	Hash string
}

// ReadSnapshot runs `ls-tree --full-tree -r` against treeish and parses
// each line into a flat path -> FlatEntry mapping.
func ReadSnapshot(ctx context.Context, client *gitshelf.GitClient, treeish string) (map[string]FlatEntry, error) {
	out, err := client.LsTree(ctx, optargs.Pairs{
		{Key: "full-tree", Value: true},
		{Key: "r", Value: true},
	}, treeish)
	if err != nil {
		return nil, err
	}

	lines, err := parseLsTreeLines(out)
	if err != nil {
		return nil, err
	}

	flat := make(map[string]FlatEntry, len(lines))
	for _, l := range lines {
		flat[l.path] = FlatEntry{Mode: l.mode, Type: l.typ, Hash: l.hash}
	}
	return flat, nil
}

// BuildFromSnapshot turns a flat path -> FlatEntry mapping into a
// hierarchical, still-mutable TreeNode by splitting each path and interning
// intermediate nodes, grounded on the teacher's
// TreeBuilder.buildIntermediates/buildTree three-pass algorithm in
// internal/gitinterface/tree.go — adapted from "build once and write" into
// "build a lazy TreeNode that can still accept further overlay mutation
// before it is written".
func BuildFromSnapshot(client *gitshelf.GitClient, flat map[string]FlatEntry) *TreeNode {
	return BuildFromSnapshotWithCache(client, flat, objectcache.Default)
}

// BuildFromSnapshotWithCache is BuildFromSnapshot with an explicit
// ObjectCache.
func BuildFromSnapshotWithCache(client *gitshelf.GitClient, flat map[string]FlatEntry, cache *objectcache.Cache) *TreeNode {
	root := NewWithCache(client, "", cache)
	interned := map[string]*TreeNode{"": root}

	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		entry := flat[p]
		parent := internPath(client, cache, interned, parentPath(p))

		parent.mu.Lock()
		parent.setChild(basePathOf(p), NewBlobRef(gitshelf.Hash(entry.Hash), entry.Mode))
		parent.mu.Unlock()
	}

	return root
}

func internPath(client *gitshelf.GitClient, cache *objectcache.Cache, interned map[string]*TreeNode, dir string) *TreeNode {
	if node, ok := interned[dir]; ok {
		return node
	}

	parent := internPath(client, cache, interned, parentPath(dir))
	node := NewWithCache(client, "", cache)
	interned[dir] = node

	parent.mu.Lock()
	parent.setChild(basePathOf(dir), node)
	parent.mu.Unlock()

	return node
}
