// Package identity is how the task service learns who a bearer token
// belongs to. It has no notion of identity of its own: every request
// is verified remotely against the identity gateway.
package identity

import "context"

type Identity struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// Static is an in-memory Verifier for tests.
type Static struct {
	Identity Identity
	Err      error
}

func (s Static) Verify(ctx context.Context, token string) (Identity, error) {
	if s.Err != nil {
		return Identity{}, s.Err
	}
	return s.Identity, nil
}
