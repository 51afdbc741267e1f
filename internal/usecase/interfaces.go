package usecase

import (
	"time"

	"tokoaing/internal/domain/entity"
	"tokoaing/pkg/errors"
)

// Clock returns the current time. Use cases take one so tests can pin timestamps.
type Clock func() time.Time

func millis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

// Actor is the identity a request is made on behalf of.
type Actor struct {
	UID    string
	Email  string
	Bypass bool
}

func ActorFrom(identity *entity.Identity) Actor {
	if identity == nil {
		return Actor{}
	}
	return Actor{UID: identity.UID, Email: identity.Email, Bypass: identity.Bypass}
}

// requireAccount rejects anonymous callers and the bypass identity, which has no account
// subtree to write to.
func (a Actor) requireAccount() error {
	if a.UID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}
	if a.Bypass {
		return errors.Forbidden("The bypass admin identity has no account", nil)
	}
	return nil
}
