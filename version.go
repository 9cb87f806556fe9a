package glosslive

import (
	"runtime"
	"runtime/debug"
)

const (
	// Name is the application name.
	Name = "glosslive"

	// Description is a short description of the application.
	Description = "Glossary-aware live transcript translation"

	// Version is the semantic version of the application.
	Version = "0.3.0"

	// Repository is the source code repository URL.
	Repository = "https://github.com/ZaguanLabs/glosslive"
)

// Release builds stamp these with
//
//	go build -ldflags "-X github.com/ZaguanLabs/glosslive.GitCommit=$(git rev-parse HEAD)"
//
// Otherwise the VCS data embedded by the go tool is used when present.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// VersionInfo describes the running build.
type VersionInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"buildDate,omitempty"`
	GoVersion string `json:"goVersion"`
}

// BuildVersion collects version data from ldflags and the embedded build info.
func BuildVersion() VersionInfo {
	info := VersionInfo{
		Name:      Name,
		Version:   Version,
		GoVersion: runtime.Version(),
	}
	if known(GitCommit) {
		info.Commit = GitCommit
	}
	if known(BuildDate) {
		info.BuildDate = BuildDate
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value
				}
			case "vcs.time":
				if info.BuildDate == "" {
					info.BuildDate = s.Value
				}
			}
		}
	}
	return info
}

func known(v string) bool {
	return v != "" && v != "unknown"
}

// FullVersion returns the version with a short commit suffix when one was
// stamped at build time.
func FullVersion() string {
	v := Version
	if known(GitCommit) {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

// UserAgent returns the User-Agent sent to translation providers.
func UserAgent() string {
	return Name + "/" + Version
}
