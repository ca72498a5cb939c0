// Package version holds build metadata set through ldflags:
// go build -ldflags "-X git.home.luguber.info/inful/pagebuilder/internal/version.Version=v0.3.0".
package version

import "fmt"

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the version line printed by --version.
func String() string {
	return fmt.Sprintf("pagebuilder %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
