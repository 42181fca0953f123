// Package version holds the release version reported in the User-Agent and by the CLI.
package version

// Version is the current release. Overridden at build time with -ldflags "-X dbpediafacts/pkg/version.Version=...".
var Version = "0.3.0"
