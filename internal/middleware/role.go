package middleware // middleware provides shared request processing for handlers

import (
    "context"
    "errors"
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/iliyamo/webshop/internal/repository"
)

// PermissionLookup resolves the permission level of a username.
type PermissionLookup interface {
    Permissions(ctx context.Context, username string) (int, error)
}

// ErrPermissionLookup wraps storage failures seen while checking permissions.
var ErrPermissionLookup = errors.New("permission lookup failed")

// RequirePermission allows the request through only when the authenticated
// user's level is at least min.  It must run after BearerAuth.  Unknown users
// and insufficient levels get the same 403 as a bad token; a storage error
// is a 500.
func RequirePermission(users PermissionLookup, min int) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            username := Username(c)
            if username == "" {
                return c.String(http.StatusForbidden, ForbiddenBody)
            }
            level, err := users.Permissions(c.Request().Context(), username)
            if err != nil {
                if errors.Is(err, repository.ErrNotFound) {
                    return c.String(http.StatusForbidden, ForbiddenBody)
                }
                c.Logger().Errorf("%v: %v", ErrPermissionLookup, err)
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": ErrPermissionLookup.Error()})
            }
            if level < min {
                return c.String(http.StatusForbidden, ForbiddenBody)
            }
            return next(c)
        }
    }
}
