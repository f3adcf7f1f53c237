// SPDX-License-Identifier: Apache-2.0

package version

import "runtime/debug"

// gitVersion records the basic version information for gitshelf. It is
// typically overwritten during a release build via -ldflags.
var gitVersion = "devel"

// GetVersion reports the module version embedded in the binary by the Go
// toolchain, falling back to gitVersion for unversioned (go build) builds.
func GetVersion() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	if buildInfo.Main.Version == "(devel)" || buildInfo.Main.Version == "" {
		return gitVersion
	}

	return buildInfo.Main.Version
}
