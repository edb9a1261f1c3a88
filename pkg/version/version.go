// Package version records the build version.
package version

// Version is the current release. Overridden at build time via
// -ldflags "-X xpcgo/pkg/version.Version=...".
var Version = "0.1.0-dev"
