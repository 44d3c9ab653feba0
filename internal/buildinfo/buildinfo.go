// Package buildinfo holds build-time metadata injected via -ldflags.
package buildinfo

// Version is the semantic version or tag for this build.
// Inject via: -X github.com/garyellow/docmock/internal/buildinfo.Version=...
var Version = ""

// Commit is the git commit SHA for this build.
// Inject via: -X github.com/garyellow/docmock/internal/buildinfo.Commit=...
var Commit = ""

// BuildDate is the RFC3339 build timestamp.
// Inject via: -X github.com/garyellow/docmock/internal/buildinfo.BuildDate=...
var BuildDate = ""

// Info is the /version response body.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
}

// Get returns the build metadata, using "dev" for an unset version.
func Get() Info {
	v := Version
	if v == "" {
		v = "dev"
	}
	return Info{Version: v, Commit: Commit, BuildDate: BuildDate}
}
