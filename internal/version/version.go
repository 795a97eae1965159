// Package version holds build metadata, overridden via -ldflags at release
// build time.
package version

var (
	Version = "dev"
	Commit  = "unknown"
)
