package db

import "context"

// AuthStatus is the outcome of a credential check.
type AuthStatus int

const (
	AuthAuthenticated AuthStatus = iota
	AuthCantConnect
	AuthUnknownUser
	AuthWrongPassword
	AuthInvalidUsername
	AuthUnknownStatus
	AuthUnsupported
)

// String returns a short status name for logging.
func (s AuthStatus) String() string {
	switch s {
	case AuthAuthenticated:
		return "authenticated"
	case AuthCantConnect:
		return "cant_connect"
	case AuthUnknownUser:
		return "unknown_user"
	case AuthWrongPassword:
		return "wrong_password"
	case AuthInvalidUsername:
		return "invalid_username"
	case AuthUnknownStatus:
		return "unknown_status"
	case AuthUnsupported:
		return "unsupported"
	default:
		return "invalid"
	}
}

// AuthResult carries the credential check outcome.
// CorrectedName содержит каноническое написание ника из базы форума,
// оно может отличаться регистром от введённого игроком.
type AuthResult struct {
	Status        AuthStatus
	CorrectedName string
}

// CredentialVerifier checks a player name and password against an external
// user database.
type CredentialVerifier interface {
	Verify(ctx context.Context, name, password string) (AuthResult, error)
}
