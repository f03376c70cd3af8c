// Package version reports build information for the comprehend binary.
//
// Version, commit, branch and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/comprehend/version.Version=1.0.0" ./cmd/comprehend
//
// Anything left unset is filled from the VCS stamp that the go tool embeds
// in the binary.
package version
