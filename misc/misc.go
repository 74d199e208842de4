// Package misc provides program identification helpers used in logs, version
// output and debug reports.
package misc

import "runtime/debug"

// Overridden at build time with -ldflags "-X ...".
var (
	appName = "cas2nif"
	version = "dev"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns the VCS revision recorded in build information, shortened
// to the usual 8 characters.
func GetGitHash() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			if len(s.Value) > 8 {
				return s.Value[:8]
			}
			return s.Value
		}
	}
	return "unknown"
}
