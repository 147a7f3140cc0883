package handler

import (
    "context"      // provides context with cancellation for DB calls
    "errors"       // errors.Is on repository sentinels
    "net/http"     // HTTP status codes and primitives
    "strings"      // string manipulation utilities
    "time"         // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/webshop/internal/config"     // app configuration
    "github.com/iliyamo/webshop/internal/metrics"    // auth counters
    "github.com/iliyamo/webshop/internal/middleware" // verified username accessor
    "github.com/iliyamo/webshop/internal/repository" // error taxonomy
    "github.com/iliyamo/webshop/internal/utils"      // token issuing
)

// AuthHandler bundles dependencies for registration, login and the
// personal-information endpoint.
type AuthHandler struct {
    Cfg     config.Config
    Users   UserStore
    Metrics metrics.Recorder
}

func NewAuthHandler(cfg config.Config, u UserStore, m metrics.Recorder) *AuthHandler {
    if m == nil {
        m = metrics.Nop{}
    }
    return &AuthHandler{Cfg: cfg, Users: u, Metrics: m}
}

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// ----- DTOs -----

// Field names follow the storefront forms, which post either JSON,
// urlencoded or multipart bodies.
type registerReq struct {
    FirstName string `json:"fname" form:"fname"`
    LastName  string `json:"lname" form:"lname"`
    Username  string `json:"username" form:"username"`
    Password  string `json:"pw" form:"pw"`
}
type loginReq struct {
    Username string `json:"username" form:"username"`
    Password string `json:"pw" form:"pw"`
}
type loginResp struct {
    JWTToken string `json:"jwtToken"`
}
type personalResp struct {
    FirstName   string `json:"fname"`
    LastName    string `json:"lname"`
    Username    string `json:"username"`
    Permissions int    `json:"user_permissions"`
}

// Register creates a standard user.  POST /personal.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Username = strings.TrimSpace(req.Username)
    if req.Username == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/pw required"})
    }
    if len(req.Password) > maxPasswordBytes {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "pw too long"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Users.Create(ctx, strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName), req.Username, req.Password); err != nil {
        if errors.Is(err, repository.ErrDuplicateUsername) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
        }
        c.Logger().Errorf("register %q: %v", req.Username, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }
    h.Metrics.RecordRegistration()
    return c.NoContent(http.StatusOK)
}

// Login checks the credentials and returns a session token.  POST /login.
// Unknown user and wrong password are the same 401.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Username = strings.TrimSpace(req.Username)
    if req.Username == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/pw required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, ok, err := h.Users.Authenticate(ctx, req.Username, req.Password)
    if err != nil {
        c.Logger().Errorf("login %q: %v", req.Username, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    h.Metrics.RecordLogin(ok)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    // Sign the stored username; the lookup may have matched it case-insensitively.
    token, err := utils.IssueToken(h.Cfg.JWTSecret, u.Username, h.Cfg.TokenTTLMin)
    if err != nil {
        c.Logger().Errorf("issue token: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
    }
    return c.JSON(http.StatusOK, loginResp{JWTToken: token})
}

// Personal returns the authenticated user's profile.  GET /personal.  The
// token only proves a username was issued; a user deleted since then is
// forbidden like any other bad credential.
func (h *AuthHandler) Personal(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.FindByUsername(ctx, middleware.Username(c))
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.String(http.StatusForbidden, middleware.ForbiddenBody)
        }
        c.Logger().Errorf("personal: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, personalResp{
        FirstName:   u.FirstName,
        LastName:    u.LastName,
        Username:    u.Username,
        Permissions: u.Permissions,
    })
}
