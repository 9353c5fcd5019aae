package version

import "runtime/debug"

// Set at build time with -ldflags "-X github.com/memohai/websearch-mcp/internal/version.Version=...".
var (
	Version   = "dev"
	CommitSHA = ""
)

// GetInfo returns the version string, with the VCS revision when known.
func GetInfo() string {
	commit := CommitSHA
	if commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					commit = s.Value[:7]
				}
			}
		}
	}
	if commit == "" {
		return Version
	}
	return Version + " (" + commit + ")"
}
