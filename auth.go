package airride

import (
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// controlAuth optionally gates the control endpoint behind a shared secret
// (§14.5). When tokenFile is empty, check always succeeds: auth is opt-in,
// matching the rest of the core's default-open posture (it only runs on a
// local, filesystem-permission-protected socket to begin with).
type controlAuth struct {
	hash []byte // bcrypt hash read from tokenFile, nil when disabled
}

// newControlAuth reads a bcrypt hash from tokenFile. A missing file
// disables auth rather than failing the supervisor (spec §7's
// degrade-don't-halt policy extends to this optional subsystem).
func newControlAuth(tokenFile string) *controlAuth {
	if tokenFile == "" {
		return &controlAuth{}
	}
	data, err := os.ReadFile(tokenFile)
	if err != nil {
		return &controlAuth{}
	}
	return &controlAuth{hash: []byte(strings.TrimSpace(string(data)))}
}

// enabled reports whether a token check is required.
func (a *controlAuth) enabled() bool {
	return a != nil && len(a.hash) > 0
}

// check verifies a presented secret against the configured hash.
func (a *controlAuth) check(secret string) bool {
	if !a.enabled() {
		return true
	}
	return bcrypt.CompareHashAndPassword(a.hash, []byte(secret)) == nil
}
