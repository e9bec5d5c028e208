// Package utils holds small helpers shared by the CLI and the server that
// don't warrant a package of their own.
package utils

// Build metadata, set with -ldflags "-X" at release time.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
