// Package version reports TourStream build information. The variables are
// set with -ldflags "-X"; GitCommit falls back to the VCS stamp of the build.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var commitOnce sync.Once

func commit() string {
	commitOnce.Do(func() {
		if GitCommit != "unknown" {
			return
		}
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				GitCommit = s.Value[:min(len(s.Value), 12)]
			}
		}
	})
	return GitCommit
}

// Info returns the one-line version banner printed by "tourstream version".
func Info() string {
	return fmt.Sprintf("TourStream %s (commit: %s, built: %s, go: %s)",
		Version, commit(), BuildDate, runtime.Version())
}

// Short returns the bare version ("0.3.0" or "dev").
func Short() string {
	return Version
}

// Map returns version info for JSON responses.
func Map() map[string]string {
	return map[string]string{
		"version":    Version,
		"git_commit": commit(),
		"build_date": BuildDate,
		"go_version": runtime.Version(),
	}
}
