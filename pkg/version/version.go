// Package version reports how the running tokengaps binary was built.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Release builds set these with
// -ldflags "-X github.com/Aman-CERP/tokengaps/pkg/version.Version=v0.3.0".
// Values left at their defaults are filled from the module build info.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// BuildInfo is structured version information for JSON output.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetInfo returns the build information. A "go install" build reports its
// module version, and a build inside a git checkout reports the VCS
// revision and commit time.
func GetInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.fill(bi)
	}
	return info
}

func (b *BuildInfo) fill(bi *debug.BuildInfo) {
	if b.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		b.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "unknown" {
				b.Commit = shortRevision(s.Value)
			}
		case "vcs.time":
			if b.Date == "unknown" {
				b.Date = s.Value
			}
		case "vcs.modified":
			b.Modified = s.Value == "true"
		}
	}
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// String returns the version with commit, date and platform.
func String() string {
	i := GetInfo()
	commit := i.Commit
	if i.Modified {
		commit += "+dirty"
	}
	return fmt.Sprintf("tokengaps %s (commit: %s, built: %s, %s %s/%s)",
		i.Version, commit, i.Date, i.GoVersion, i.OS, i.Arch)
}

// Short returns just the version.
func Short() string {
	return GetInfo().Version
}
