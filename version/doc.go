// Package version provides build version information embedding.
//
// Version, git commit, and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/guardrail/version.Version=1.0.0"
//
// Fields left unset are filled from the Go build info when available.
package version
