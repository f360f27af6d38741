// Package misc keeps program identification values set at build time.
package misc

import (
	"runtime/debug"
)

// set with -ldflags "-X rtx/misc.version=... -X rtx/misc.githash=..."
var (
	version = "dev"
	githash = ""
	appName = "rtx"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns commit hash either injected at link time or recorded by
// go build in vcs settings.
func GetGitHash() string {
	if githash != "" {
		return githash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
