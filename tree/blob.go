// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"context"
	"fmt"
	"strings"

	"github.com/gittuf/gitshelf"
	"github.com/gittuf/gitshelf/exec"
	"github.com/gittuf/gitshelf/optargs"
)

// defaultBlobMode is the mode assigned to a BlobRef when none is given,
// per spec.md's "mode defaults to 100644 for blobs when unset".
const defaultBlobMode = "100644"

// BlobRef is an immutable handle on a blob object: its hash and file mode.
// Sharing a BlobRef across trees is safe and expected — merges copy blob
// references, never blob content.
type BlobRef struct {
	Hash gitshelf.Hash
	Mode string
}

func (*BlobRef) isTreeEntry() {}

// NewBlobRef constructs a BlobRef, defaulting mode to 100644 when empty.
func NewBlobRef(hash gitshelf.Hash, mode string) *BlobRef {
	if mode == "" {
		mode = defaultBlobMode
	}
	return &BlobRef{Hash: hash, Mode: mode}
}

// WriteBlob spawns `hash-object -w --stdin`, streams content into its
// stdin, and resolves to the new blob's hash. Grounded on the teacher's
// WriteBlob in internal/gitinterface/blob.go.
func WriteBlob(ctx context.Context, client *gitshelf.GitClient, content []byte) (*BlobRef, error) {
	e := exec.New(client.Command(), "hash-object", "-t", "blob", "-w", "--stdin")
	if client.GitDir() != "" {
		e = e.WithGitDir(client.GitDir())
	}

	proc, err := e.Spawn(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := proc.CaptureOutputTrimmed(content)
	if err != nil {
		return nil, err
	}

	return NewBlobRef(gitshelf.Hash(hash), defaultBlobMode), nil
}

// ReadBlob fetches the content of an existing blob via `cat-file -p`.
func ReadBlob(ctx context.Context, client *gitshelf.GitClient, hash gitshelf.Hash) ([]byte, error) {
	out, err := client.CatFile(ctx, optargs.Pairs{{Key: "p", Value: true}}, string(hash))
	if err != nil {
		return nil, fmt.Errorf("reading blob %s: %w", hash, err)
	}
	return []byte(strings.TrimSuffix(out, "\n")), nil
}
