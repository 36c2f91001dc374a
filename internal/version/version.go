// Package version reports build metadata. Values are stamped into
// github.com/keshon/buildinfo at build time, e.g.
//
//	go build -ldflags "-X github.com/keshon/buildinfo.Version=v1.2.0 -X github.com/keshon/buildinfo.Commit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"

	"github.com/keshon/buildinfo"
)

const (
	defaultProject     = "Command Bot"
	defaultDescription = "A Discord bot answering to prefixed messages and slash commands."
)

// Get returns the build info with the project name and description filled
// in when the build did not stamp them.
func Get() buildinfo.BuildInfo {
	info := buildinfo.Get()
	if info.Project == "" || info.Project == "unknown" {
		info.Project = defaultProject
	}
	if info.Description == "" {
		info.Description = defaultDescription
	}
	return info
}

func String() string {
	info := Get()
	return fmt.Sprintf("%s %s (%s, built %s, %s %s)",
		info.Project, info.Version, info.Commit, info.BuildTime, info.GoVersion, info.Platform)
}
