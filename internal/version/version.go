// Version reporting
package version

import "runtime/debug"

// Version is the release version of the toolkit.
const Version = "0.1.0"

// String returns the version, with a short VCS revision appended when the
// binary carries build info.
func String() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 6 {
			return Version + "-" + s.Value[:6]
		}
	}
	return Version
}
