package auth

import "strings"

// BearerScheme is the Authorization scheme carrying a token.
const BearerScheme = "Bearer"

// AuthContext is the authentication state of a single request. It is built
// once per request and passed by value to the operations that need it.
type AuthContext struct {
	Authenticated bool
	UserID        uint
}

// Anonymous returns the unauthenticated context.
func Anonymous() AuthContext {
	return AuthContext{}
}

// Authenticated returns a context bound to userID.
func Authenticated(userID uint) AuthContext {
	return AuthContext{Authenticated: true, UserID: userID}
}

// TokenVerifier resolves a token to the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (uint, error)
}

// ContextBuilder turns raw Authorization header values into AuthContexts.
type ContextBuilder struct {
	verifier TokenVerifier
}

// NewContextBuilder creates a builder verifying tokens with verifier.
func NewContextBuilder(verifier TokenVerifier) *ContextBuilder {
	return &ContextBuilder{verifier: verifier}
}

// Build resolves an Authorization header value. Missing values, other
// schemes and tokens that fail verification all yield Anonymous.
func (b *ContextBuilder) Build(authorization string) AuthContext {
	token, ok := BearerToken(authorization)
	if !ok {
		return Anonymous()
	}
	userID, err := b.verifier.Verify(token)
	if err != nil {
		return Anonymous()
	}
	return Authenticated(userID)
}

// BearerToken strips the Bearer scheme from an Authorization value. The scheme
// name is matched case-insensitively.
func BearerToken(authorization string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(authorization), " ")
	if !found || !strings.EqualFold(scheme, BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
