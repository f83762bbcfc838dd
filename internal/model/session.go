package model

// Snapshot is the persisted (token, principal) pair as seen by one request.
type Snapshot struct {
	Token     string
	Principal *Principal
}

// Authenticated is true iff a token is present. A principal alone is not enough.
func (s Snapshot) Authenticated() bool {
	return s.Token != ""
}

// SessionState is the live session the guards decide on.
type SessionState struct {
	// Loading is true until the principal has been resolved.
	Loading       bool
	Authenticated bool
	Principal     *Principal
}
