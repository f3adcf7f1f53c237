// SPDX-License-Identifier: Apache-2.0

package optargs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeShortKey(t *testing.T) {
	assert.Equal(t, []string{"-k"}, Encode(Pairs{{Key: "k", Value: true}}))
	assert.Equal(t, []string{"-k", "v"}, Encode(Pairs{{Key: "k", Value: "v"}}))
	assert.Nil(t, Encode(Pairs{{Key: "k", Value: false}}))
	assert.Nil(t, Encode(Pairs{{Key: "k", Value: nil}}))
}

func TestEncodeLongKey(t *testing.T) {
	assert.Equal(t, []string{"--key"}, Encode(Pairs{{Key: "key", Value: true}}))
	assert.Equal(t, []string{"--key=v"}, Encode(Pairs{{Key: "key", Value: "v"}}))
	assert.Nil(t, Encode(Pairs{{Key: "key", Value: false}}))
}

func TestEncodeSequence(t *testing.T) {
	got := Encode(Pairs{{Key: "m", Value: []string{"a", "b"}}})
	assert.Equal(t, []string{"-m", "a", "-m", "b"}, got)
}

func TestEncodePreservesOrder(t *testing.T) {
	pairs := Pairs{
		{Key: "porcelain", Value: true},
		{Key: "z", Value: true},
		{Key: "untracked-files", Value: "all"},
	}
	assert.Equal(t, []string{"--porcelain", "-z", "--untracked-files=all"}, Encode(pairs))
}

func TestEncodeNumeric(t *testing.T) {
	assert.Equal(t, []string{"--depth=1"}, Encode(Pairs{{Key: "depth", Value: 1}}))
}

func TestSplitExecutorControls(t *testing.T) {
	var stderrLines []string
	pairs := Pairs{
		{Key: "verify", Value: true},
		{Key: "$spawn", Value: true},
		{Key: "$onStderr", Value: func(line string) { stderrLines = append(stderrLines, line) }},
	}

	gitPairs, controls := SplitExecutorControls(pairs)

	assert.Equal(t, Pairs{{Key: "verify", Value: true}}, gitPairs)
	assert.True(t, controls.Spawn)
	assert.NotNil(t, controls.OnStderr)

	controls.OnStderr("fatal: bad revision")
	assert.Equal(t, []string{"fatal: bad revision"}, stderrLines)
}

func TestOptionsPairsRoundTrip(t *testing.T) {
	opts := Options{"porcelain": true}
	pairs := opts.Pairs()
	assert.Len(t, pairs, 1)
	assert.Equal(t, "porcelain", pairs[0].Key)
}
