// Package session defines the identity a customer or admin session holds.
package session

import "fmt"

// UserRef is the user (or admin) record returned by a login call. Its shape
// belongs to the remote API and is kept as-is.
type UserRef map[string]any

// ID returns the user id under "id" or "_id"
func (u UserRef) ID() string {
	for _, k := range []string{"id", "_id"} {
		if v, ok := u[k]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

// Name returns a display name, falling back to the email
func (u UserRef) Name() string {
	for _, k := range []string{"name", "username", "email"} {
		if v, ok := u[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Identity is an authenticated session: who, and the bearer token for the API
type Identity struct {
	User  UserRef `json:"user"`
	Token string  `json:"token"`
}

// LoginResult is the response shape of the remote login endpoints. Customer
// endpoints answer with "user", admin endpoints with "admin".
type LoginResult struct {
	User  UserRef `json:"user,omitempty"`
	Admin UserRef `json:"admin,omitempty"`
	Token string  `json:"token"`
}

// Principal returns whichever of User or Admin is set
func (r LoginResult) Principal() UserRef {
	if r.Admin != nil {
		return r.Admin
	}
	return r.User
}
