// Package misc keeps build time information.
package misc

import (
	"runtime/debug"
)

// set by linker
var (
	appName = "mdepub"
	version = "dev"
	gitHash = ""
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns commit the binary was built from, falling back to VCS
// information embedded by the go tool.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
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

// Generator returns string to be stored in produced packages metadata.
func Generator() string {
	return appName + " " + version
}
