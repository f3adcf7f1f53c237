// SPDX-License-Identifier: Apache-2.0

// Package tree implements a lazy, copy-on-write model of git tree objects:
// partial hydration from the object store, path-scoped subtree lookup,
// filtered recursive merge between trees, and content-addressed write-back
// through a client's batched mktree worker.
package tree

import "github.com/gittuf/gitshelf"

// Entry is a handle stored under a tree child name: either a *TreeNode or a
// *BlobRef. It is a discriminated value distinguishable only by its
// dynamic type, mirroring the tagged-union "isTree"/"isBlob" discriminant
// of the source model.
type Entry interface {
	isTreeEntry()
}

// overlayEntry is one slot in a TreeNode's pending overlay map. A
// tombstoned slot represents "this name is deleted relative to the base",
// which a plain nil map value cannot express in Go since a present key
// with a nil interface value is indistinguishable from "not a tombstone,
// just a nil entry" without a dedicated flag.
type overlayEntry struct {
	entry     Entry
	tombstone bool
}

func entryHash(e Entry) (hash gitshelf.Hash, comparable bool) {
	switch v := e.(type) {
	case *BlobRef:
		return v.Hash, true
	case *TreeNode:
		return v.GetWrittenHash()
	default:
		return "", false
	}
}
