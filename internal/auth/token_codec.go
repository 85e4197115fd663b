package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	apperrors "userauth/internal/errors"
)

// NoExpiry issues tokens without an exp claim. Such tokens stay valid until the
// signing secret is rotated.
const NoExpiry time.Duration = 0

// Claims is the signed claim set carried by a token.
type Claims struct {
	UserID uint `json:"userId"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 identity tokens. It holds no state
// beyond its configuration, so any process sharing the secret can verify
// tokens issued by any other.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec creates a codec signing with secret. A ttl of NoExpiry omits
// the exp claim.
func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	if ttl < 0 {
		return nil, fmt.Errorf("token ttl must not be negative, got %s", ttl)
	}
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs a token for userID.
func (c *TokenCodec) Issue(userID uint) (string, error) {
	claims := &Claims{UserID: userID}
	if c.ttl != NoExpiry {
		claims.ExpiresAt = jwt.NewNumericDate(c.now().Add(c.ttl))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks the signature of token and returns the user id it carries.
// Every failure, including malformed input, is reported as ErrInvalidToken.
func (c *TokenCodec) Verify(token string) (uint, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, apperrors.ErrInvalidToken
	}
	if !parsed.Valid || claims.UserID == 0 {
		return 0, apperrors.ErrInvalidToken
	}
	return claims.UserID, nil
}
