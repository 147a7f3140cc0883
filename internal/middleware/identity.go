package middleware

import "github.com/labstack/echo/v4"

// UsernameKey is the context key BearerAuth stores the verified username under.
const UsernameKey = "username"

// Username returns the verified username of the request, or "" when the
// request did not pass BearerAuth.
func Username(c echo.Context) string {
    if s, ok := c.Get(UsernameKey).(string); ok {
        return s
    }
    return ""
}
