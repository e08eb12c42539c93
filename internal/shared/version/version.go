// Package version reports the running toolchain's own version.
package version

// Version is overridden at link time:
//
//	go build -ldflags "-X projectjs/internal/shared/version.Version=1.2.3"
var Version = "0.3.0"

// Name is the identifier manifests use in schema.name.
const Name = "project.js"

// Own returns the toolchain's semantic version string.
func Own() string {
	return Version
}
