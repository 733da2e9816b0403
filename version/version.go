// Package version carries build-time identity for the airridectl binary,
// set via -ldflags.
package version

import "runtime/debug"

var (
	// These will be set via -ldflags during build
	GitRepo   string
	GitBranch string
	GitCommit string
	BuildTime string
)

// Info returns a struct containing all version information
type Info struct {
	GitRepo   string           `json:"gitRepo,omitempty"`
	GitBranch string           `json:"gitBranch,omitempty"`
	GitCommit string           `json:"gitCommit,omitempty"`
	BuildTime string           `json:"buildTime,omitempty"`
	BuildInfo *debug.BuildInfo `json:"buildInfo,omitempty"`
}

// Get returns the version information
func Get() Info {
	buildInfo, ok := debug.ReadBuildInfo()
	ret := Info{
		GitRepo:   GitRepo,
		GitBranch: GitBranch,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}
	if ok {
		ret.BuildInfo = buildInfo
	}
	return ret
}

// Equal reports whether two version infos describe the same build: same
// repo, branch, and commit. BuildTime is excluded deliberately — rebuilding
// the identical commit at a later time is still the same build. BuildInfo's
// tooling details (a third-party comparator like go-cmp is not needed just
// to compare a handful of scalar strings) are excluded too.
func (v Info) Equal(other Info) bool {
	return v.GitRepo == other.GitRepo &&
		v.GitBranch == other.GitBranch &&
		v.GitCommit == other.GitCommit
}
