package version

import "runtime/debug"

// Version is set at build time via -ldflags "-X .../internal/version.Version=...".
var Version = ""

// String returns the build version, falling back to module build info
func String() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}
