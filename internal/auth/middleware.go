package auth

import (
	"net/http"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// RejectBlacklisted returns middleware that refuses access tokens
// revoked by logout. It runs after the JWT guard, reading the parsed
// token (a golang-jwt v5 token, echo-jwt's parse type) from the
// context. Tokens without a JTI predate revocation support and pass
// through.
func RejectBlacklisted(store TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwtv5.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			claims, ok := token.Claims.(jwtv5.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
			}
			if jti, ok := claims["jti"].(string); ok && jti != "" {
				if blacklisted, _ := store.IsAccessTokenBlacklisted(c.Request().Context(), jti); blacklisted {
					return echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
				}
			}
			return next(c)
		}
	}
}
