// Package build holds version information injected at link time.
package build

// Version is the released version of jig, "dev" for local builds.
// Set with -ldflags "-X go.trai.ch/jig/internal/build.Version=v1.2.0".
var Version = "dev"

// Commit is the VCS revision the binary was built from.
var Commit = "none"

// Date is the build timestamp.
var Date = "unknown"
