// SPDX-License-Identifier: Apache-2.0

package gitshelf

import "errors"

// ErrBadArgument wraps caller mistakes, such as an unknown merge mode or an
// unsupported Exec argument type, and failures to parse git's own output
// (a malformed ls-tree line, an unrecognised version string). Hash
// arguments are not checked with IsHash: a malformed hash is passed to git
// unchanged.
var ErrBadArgument = errors.New("bad argument")
