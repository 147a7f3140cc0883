package middleware

import (
    "context"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/webshop/internal/config"
)

// takeToken refills the bucket at KEYS[1] for the whole intervals elapsed
// since the last refill, then tries to take one token.
// ARGV: now_ms, capacity, refill_tokens, interval_ms, ttl_s.
// Returns {allowed (0|1), tokens left, ms until the next refill}.
var takeToken = redis.NewScript(`
local now, cap, step, every, ttl =
    tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])

local b = redis.call('HMGET', KEYS[1], 'tokens', 'since')
local tokens, since = tonumber(b[1]), tonumber(b[2])
if not tokens or not since then
    tokens, since = cap, now
end

local n = math.floor(math.max(0, now - since) / every)
if n > 0 then
    tokens = math.min(cap, tokens + n * step)
    since = since + n * every
end

local ok, wait = 0, 0
if tokens >= 1 then
    ok, tokens = 1, tokens - 1
else
    wait = math.max(0, every - (now - since))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'since', since)
redis.call('EXPIRE', KEYS[1], ttl)
return {ok, tokens, wait}
`)

// bucketState is one evaluation of takeToken.
type bucketState struct {
    Allowed   bool
    Remaining int64
    RetryIn   time.Duration
}

// RetryAfterSeconds rounds RetryIn up to whole seconds for the Retry-After
// header.
func (s bucketState) RetryAfterSeconds() int {
    return int((s.RetryIn + time.Second - 1) / time.Second)
}

func take(ctx context.Context, rdb *redis.Client, cfg config.RateLimitConfig, key string) (bucketState, error) {
    res, err := takeToken.Run(ctx, rdb, []string{key},
        time.Now().UnixMilli(),
        cfg.Capacity,
        cfg.RefillTokens,
        cfg.RefillInterval.Milliseconds(),
        int64(cfg.TTL/time.Second),
    ).Int64Slice()
    if err != nil {
        return bucketState{}, err
    }
    if len(res) != 3 {
        return bucketState{}, fmt.Errorf("token bucket: unexpected reply %v", res)
    }
    return bucketState{
        Allowed:   res[0] == 1,
        Remaining: res[1],
        RetryIn:   time.Duration(res[2]) * time.Millisecond,
    }, nil
}

// RateLimit throttles the credential endpoints with a redis token bucket.  It
// fails open: without redis, or when redis errors, requests pass.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := rateKey(cfg, c)
            st, err := take(c.Request().Context(), rdb, cfg, key)
            if err != nil {
                c.Logger().Warnf("ratelimit %s: %v", key, err)
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(st.Remaining, 10))
            if st.Allowed {
                return next(c)
            }

            secs := st.RetryAfterSeconds()
            h.Set("Retry-After", strconv.Itoa(secs))
            if cfg.Debug {
                c.Logger().Infof("ratelimit %s: blocked for %s", key, st.RetryIn)
            }
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":       "too many requests",
                "retry_after": secs,
            })
        }
    }
}

// rateKey builds the bucket key from cfg.KeyStrategy.  The credential routes
// run before BearerAuth, so the user part is "anon" there.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    route := c.Request().Method + " " + c.Path()

    var parts []string
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = []string{"ip", ip}
    case "route":
        parts = []string{"route", route}
    case "ip_user_route":
        user := Username(c)
        if user == "" {
            user = "anon"
        }
        parts = []string{"ip", ip, "user", user, "route", route}
    default:
        parts = []string{"ip", ip, "route", route}
    }
    return cfg.Prefix + ":" + strings.Join(parts, ":")
}
