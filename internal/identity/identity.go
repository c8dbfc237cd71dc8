// Package identity resolves the acting owner of a request. Every piece of
// tracked data belongs to exactly one owner; handlers refuse to proceed
// without one.
package identity

import (
	"errors"
	"net/http"
	"strings"
)

// OwnerHeader carries the owner identifier on API requests.
const OwnerHeader = "X-Owner-ID"

// ErrNoOwner is returned when a request carries no usable owner identity.
var ErrNoOwner = errors.New("missing owner identity")

// Resolver extracts the owner identifier from an incoming request.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

// HeaderResolver reads the owner from the X-Owner-ID header.
type HeaderResolver struct{}

func (HeaderResolver) Resolve(r *http.Request) (string, error) {
	owner := strings.TrimSpace(r.Header.Get(OwnerHeader))
	if owner == "" {
		return "", ErrNoOwner
	}
	return owner, nil
}
