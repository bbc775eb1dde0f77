package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classifying upstream API failures. The change detector uses
// these to decide whether a fetch failure should trigger repository
// resolution instead of aborting the cycle.
var (
	// ErrTagNotFound marks a clean "repository does not exist" response
	ErrTagNotFound = goerr.NewTag("not_found")

	// ErrTagUnauthorized marks 401/403 class responses. GitHub returns 404
	// for private repositories too, so both tags lead to resolution.
	ErrTagUnauthorized = goerr.NewTag("unauthorized")
)

// IsIdentityMiss reports whether an error indicates the current repository
// identity is wrong (missing or inaccessible), as opposed to a transient
// upstream failure.
func IsIdentityMiss(err error) bool {
	return goerr.HasTag(err, ErrTagNotFound) || goerr.HasTag(err, ErrTagUnauthorized)
}
