package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/webshop/internal/metrics"
    "github.com/iliyamo/webshop/internal/utils"
)

// ForbiddenBody is the response to every rejected credential.  Missing,
// malformed, badly signed and expired tokens all look the same to clients.
const ForbiddenBody = "Access forbidden."

// BearerAuth returns an Echo middleware that verifies the session token in
// the Authorization header and stores the embedded username in the context
// under UsernameKey.  Any failure answers 403.  rec may be nil.
func BearerAuth(secret string, rec metrics.Recorder) echo.MiddlewareFunc {
    if rec == nil {
        rec = metrics.Nop{}
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := utils.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
            username, err := utils.VerifyToken(secret, raw)
            if err != nil {
                if raw != "" {
                    c.Logger().Debugf("bearer auth rejected: %v", err)
                }
                rec.RecordAuthRejected()
                return c.String(http.StatusForbidden, ForbiddenBody)
            }
            c.Set(UsernameKey, username)
            return next(c)
        }
    }
}
