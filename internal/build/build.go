// Package build holds version information set with -ldflags.
package build

import (
	"fmt"
	"runtime/debug"
	"time"
)

var (
	commit  = ""
	date    = ""
	version = "dev"
	repoURL = "https://github.com/ItsNotGoodName/riverbar"
)

func init() {
	date, _ := time.Parse(time.RFC3339, date)

	Current = Build{
		Commit:     commit,
		Version:    version,
		Date:       date,
		RepoURL:    repoURL,
		CommitURL:  repoURL + "/tree/" + commit,
		ReleaseURL: repoURL + "/releases/tag/" + version,
	}

	if Current.Commit == "" {
		// go install leaves ldflags empty
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					Current.Commit = s.Value
					Current.CommitURL = repoURL + "/tree/" + s.Value
				}
			}
		}
	}
}

var Current Build

type Build struct {
	Commit     string    `json:"commit,omitempty"`
	Version    string    `json:"version,omitempty"`
	Date       time.Time `json:"date,omitempty"`
	RepoURL    string    `json:"repo_url,omitempty"`
	CommitURL  string    `json:"commit_url,omitempty"`
	ReleaseURL string    `json:"release_url,omitempty"`
}

func (b Build) String() string {
	if b.Commit == "" {
		return b.Version
	}
	return fmt.Sprintf("%s (%.7s)", b.Version, b.Commit)
}
