package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/hex"
    "encoding/json"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/webshop/internal/config"
)

// cacheEntry is the redis value of a cached response.
type cacheEntry struct {
    Status int         `json:"s"`
    Header http.Header `json:"h,omitempty"`
    Body   []byte      `json:"b"`
}

func encodeEntry(status int, header http.Header, body []byte) ([]byte, error) {
    return json.Marshal(cacheEntry{Status: status, Header: header, Body: body})
}

func decodeEntry(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    var e cacheEntry
    if err := json.Unmarshal(bs, &e); err != nil || e.Status == 0 {
        return 0, nil, nil, false
    }
    if e.Header == nil {
        e.Header = make(http.Header)
    }
    return e.Status, e.Header, e.Body, true
}

// teeWriter passes the response through while copying it into buf.  Once the
// body exceeds limit (when limit > 0) the copy is abandoned and overflow set.
type teeWriter struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    limit    int
    overflow bool
}

func (w *teeWriter) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(b []byte) (int, error) {
    if !w.overflow {
        if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
            w.overflow = true
            w.buf.Reset()
        } else {
            w.buf.Write(b)
        }
    }
    return w.ResponseWriter.Write(b)
}

// cacheKey hashes the parts of the request selected by cfg.KeyStrategy.
// /products?category=x and /products?category=y land on different keys under
// the default route_query strategy.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    route := c.Path()
    query := r.URL.Query().Encode() // sorted

    parts := []string{"route", route}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
    case "method_route":
        parts = append([]string{"method", r.Method}, parts...)
    case "method_route_query":
        parts = append([]string{"method", r.Method}, append(parts, "q", query)...)
    default:
        parts = append(parts, "q", query)
    }
    sum := sha1.Sum([]byte(strings.Join(parts, ":")))
    return cfg.Prefix + ":" + hex.EncodeToString(sum[:])
}

// replay writes a cached response.
func replay(c echo.Context, status int, header http.Header, body []byte) error {
    h := c.Response().Header()
    for k, vals := range header {
        if strings.EqualFold(k, echo.HeaderContentLength) {
            continue
        }
        h[k] = append([]string(nil), vals...)
    }
    h.Set("X-Cache", "HIT")
    c.Response().WriteHeader(status)
    _, err := c.Response().Write(body)
    return err
}

// ResponseCache serves repeated catalog reads from redis.  Only 200 responses
// within MaxBodyBytes are stored and a redis error counts as a miss.  With
// caching disabled or no client it is a pass-through.
func ResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            key := cacheKey(cfg, c)

            if bs, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
                if status, hdr, body, ok := decodeEntry(bs); ok {
                    return replay(c, status, hdr, body)
                }
            }

            tw := &teeWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = tw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if tw.status != http.StatusOK || tw.overflow {
                return nil
            }
            hdr := c.Response().Header().Clone()
            hdr.Del("X-Cache")
            entry, err := encodeEntry(tw.status, hdr, tw.buf.Bytes())
            if err != nil {
                return nil
            }
            // The request context may already be cancelled once the client
            // has its response.
            ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), time.Second)
            defer cancel()
            if err := rdb.Set(ctx, key, entry, ttl).Err(); err != nil {
                c.Logger().Warnf("cache store %s: %v", key, err)
            }
            return nil
        }
    }
}

// PurgeResponseCache returns a function that drops every response cached
// under cfg.Prefix.  The catalog admin endpoints call it after a commit so
// listings do not stay stale until the TTL runs out.  It is a no-op when
// caching is off.
func PurgeResponseCache(cfg config.CacheConfig, rdb *redis.Client) func(context.Context) error {
    if !cfg.Enabled || rdb == nil {
        return func(context.Context) error { return nil }
    }
    return func(ctx context.Context) error {
        var keys []string
        iter := rdb.Scan(ctx, 0, cfg.Prefix+":*", 100).Iterator()
        for iter.Next(ctx) {
            keys = append(keys, iter.Val())
        }
        if err := iter.Err(); err != nil {
            return err
        }
        if len(keys) == 0 {
            return nil
        }
        return rdb.Del(ctx, keys...).Err()
    }
}
