// Package build holds build-time information.
package build

// Version is the kiln version.
// It defaults to "dev" and is set with -ldflags "-X go.trai.ch/kiln/internal/build.Version=...".
var Version = "dev"
