package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// sessionEmail extracts the authenticated user's email from the JWT
// set by the auth middleware. The claims are the session context; no
// other per-session state exists server-side.
//
// echo-jwt parses with golang-jwt v5, so the assertion here must use
// the v5 token type even though tokens are minted with v4 claims.
func sessionEmail(c echo.Context) (string, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	return email, nil
}
