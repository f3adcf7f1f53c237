// SPDX-License-Identifier: Apache-2.0

// Package optargs translates structured git option mappings into argv
// tokens, mirroring the `-k`/`--key`/`--key=val` conventions the git
// binary expects.
package optargs

import (
	"fmt"
	"strconv"
	"strings"
)

// Pair is a single (key, value) option. Using a slice of Pairs instead of a
// plain map preserves the caller's intended argv order, since Go maps have
// no iteration order.
type Pair struct {
	Key   string
	Value any
}

// Pairs is an ordered list of options, encoded in list order.
type Pairs []Pair

// Options is a convenience constructor for callers that don't care about
// argv ordering among options (map iteration order is not guaranteed by Go,
// so anything order-sensitive should build Pairs directly).
type Options map[string]any

// Pairs converts o into a Pairs value. The resulting order is unspecified.
func (o Options) Pairs() Pairs {
	p := make(Pairs, 0, len(o))
	for k, v := range o {
		p = append(p, Pair{Key: k, Value: v})
	}
	return p
}

// Encode renders pairs into ordered argv tokens per the rules:
//
//   - a sequence value emits the encoding once per element;
//   - a single-character key emits "-k" for true, "-k v" for a scalar, and
//     nothing for false/nil;
//   - a multi-character key emits "--key" for true, "--key=v" for a scalar,
//     and nothing for false/nil.
func Encode(pairs Pairs) []string {
	var argv []string
	for _, p := range pairs {
		argv = append(argv, encodeOne(p.Key, p.Value)...)
	}
	return argv
}

func encodeOne(key string, value any) []string {
	switch v := value.(type) {
	case []string:
		var out []string
		for _, elem := range v {
			out = append(out, encodeScalar(key, elem)...)
		}
		return out
	case []any:
		var out []string
		for _, elem := range v {
			out = append(out, encodeScalar(key, elem)...)
		}
		return out
	default:
		return encodeScalar(key, value)
	}
}

func encodeScalar(key string, value any) []string {
	if value == nil {
		return nil
	}

	short := len([]rune(key)) == 1

	if b, ok := value.(bool); ok {
		if !b {
			return nil
		}
		if short {
			return []string{"-" + key}
		}
		return []string{"--" + key}
	}

	str := stringify(value)
	if short {
		return []string{"-" + key, str}
	}
	return []string{fmt.Sprintf("--%s=%s", key, str)}
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// ExecutorControls is the decoded form of the `$`-prefixed keys in an option
// mapping: executor-level behavior rather than git argv.
type ExecutorControls struct {
	Spawn       bool
	Shell       bool
	NullOnError bool
	Passthrough bool
	Wait        bool
	Cwd         string
	Env         map[string]string
	PreserveEnv *bool
	OnStdout    func(line string)
	OnStderr    func(line string)
}

// SplitExecutorControls partitions pairs into git-facing options and
// executor controls. Keys beginning with "$" never reach the option
// encoder.
func SplitExecutorControls(pairs Pairs) (gitPairs Pairs, controls ExecutorControls) {
	for _, p := range pairs {
		if !strings.HasPrefix(p.Key, "$") {
			gitPairs = append(gitPairs, p)
			continue
		}

		switch strings.TrimPrefix(p.Key, "$") {
		case "spawn":
			controls.Spawn, _ = p.Value.(bool)
		case "shell":
			controls.Shell, _ = p.Value.(bool)
		case "nullOnError":
			controls.NullOnError, _ = p.Value.(bool)
		case "passthrough":
			controls.Passthrough, _ = p.Value.(bool)
		case "wait":
			controls.Wait, _ = p.Value.(bool)
		case "cwd":
			controls.Cwd, _ = p.Value.(string)
		case "env":
			if m, ok := p.Value.(map[string]string); ok {
				controls.Env = m
			}
		case "preserveEnv":
			if b, ok := p.Value.(bool); ok {
				controls.PreserveEnv = &b
			}
		case "onStdout":
			if f, ok := p.Value.(func(string)); ok {
				controls.OnStdout = f
			}
		case "onStderr":
			if f, ok := p.Value.(func(string)); ok {
				controls.OnStderr = f
			}
		}
	}
	return gitPairs, controls
}
