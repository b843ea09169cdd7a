// Package version exposes build metadata injected at link time.
package version

import "runtime"

// Set via -ldflags "-X github.com/signet-dev/signet/version.GitRelease=..."
var (
	GitRelease    = "dev"
	GitCommit     = "unknown"
	GitCommitDate = "unknown"
)

// GoInfo reports the Go toolchain the binary was built with.
var GoInfo = runtime.Version()
