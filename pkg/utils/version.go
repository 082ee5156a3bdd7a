// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

import "fmt"

// Build metadata, set at link time with -ldflags "-X ...".
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// UserAgent identifies this build to upstream model providers and to the
// chat server, e.g. "uistream/v0.3.1 (4f2a9c1)".
func UserAgent() string {
	return fmt.Sprintf("uistream/%s (%s)", Version, ShortSha())
}

// ShortSha returns the first 7 characters of Sha.
func ShortSha() string {
	if len(Sha) > 7 {
		return Sha[:7]
	}
	return Sha
}
