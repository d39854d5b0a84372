package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/NeuralTrust/XSSGuard/pkg/version.Version=...".
var (
	Version   = "0.3.0"
	Commit    = ""
	BuildDate = "unknown"
)

const shortCommit = 12

type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get falls back to the vcs revision stamped by the go tool when Commit was not set
// at link time.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    commit(),
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (i Info) String() string {
	s := "xssguard " + i.Version
	if i.Commit != "" {
		s += "+" + i.Commit
	}
	return fmt.Sprintf("%s (%s, %s, built %s)", s, i.GoVersion, i.Platform, i.BuildDate)
}

func commit() string {
	rev := Commit
	if rev == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" {
					rev = s.Value
					break
				}
			}
		}
	}
	if len(rev) > shortCommit {
		rev = rev[:shortCommit]
	}
	return rev
}
