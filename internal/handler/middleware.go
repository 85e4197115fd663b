package handler

import (
	"log/slog"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"userauth/internal/auth"
	apperrors "userauth/internal/errors"
)

// AuthContextKey is the echo context key holding the request's auth.AuthContext.
const AuthContextKey = "auth"

// OptionalAuth resolves the Authorization header into an auth.AuthContext for
// every request. Requests without a usable token continue as anonymous; the
// handlers decide whether that is acceptable.
func OptionalAuth(builder *auth.ContextBuilder, logger *slog.Logger) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  AuthContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization,
		ParseTokenFunc: func(c echo.Context, header string) (interface{}, error) {
			actx := builder.Build(header)
			if !actx.Authenticated {
				return nil, apperrors.ErrInvalidToken
			}
			return actx, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) != "" {
				logger.DebugContext(c.Request().Context(), "treating request as anonymous", "error", err)
			}
			c.Set(AuthContextKey, auth.Anonymous())
			return nil
		},
		ContinueOnIgnoredError: true,
	})
}

// AuthContextFrom returns the auth.AuthContext stored by OptionalAuth, or
// Anonymous when the middleware did not run.
func AuthContextFrom(c echo.Context) auth.AuthContext {
	if actx, ok := c.Get(AuthContextKey).(auth.AuthContext); ok {
		return actx
	}
	return auth.Anonymous()
}
