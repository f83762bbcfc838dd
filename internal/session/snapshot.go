package session

import (
	"encoding/base64"
	"encoding/json"

	apperrors "admissions/internal/errors"
	"admissions/internal/model"
)

const (
	// TokenKey holds the raw bearer token issued by the backend.
	TokenKey = "portal_token"
	// UserKey holds base64url(JSON(Principal)).
	UserKey = "portal_user"
)

// ReadSnapshot reads both keys from m. When the principal cannot be decoded the
// returned snapshot still carries the token, and the error is a
// *errors.SessionDecodeError for the caller to log.
func ReadSnapshot(m Medium) (model.Snapshot, error) {
	var snap model.Snapshot
	if token, ok := m.Get(TokenKey); ok {
		snap.Token = token
	}
	raw, ok := m.Get(UserKey)
	if !ok {
		return snap, nil
	}
	p, err := DecodePrincipal(raw)
	if err != nil {
		return snap, err
	}
	snap.Principal = p
	return snap, nil
}

// EncodePrincipal serializes p for the user key.
func EncodePrincipal(p *model.Principal) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodePrincipal reverses EncodePrincipal. A JSON null decodes to nil without error.
func DecodePrincipal(raw string) (*model.Principal, error) {
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, &apperrors.SessionDecodeError{Key: UserKey, Err: err}
	}
	var p *model.Principal
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &apperrors.SessionDecodeError{Key: UserKey, Err: err}
	}
	return p, nil
}
