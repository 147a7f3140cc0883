package config

import "time"

// RateLimitConfig configures the redis token bucket applied to the login and
// registration endpoints, the two places where a client can probe
// credentials.
//
// A bucket holds Capacity tokens and regains RefillTokens every
// RefillInterval.  Idle buckets expire after TTL.  KeyStrategy selects what a
// bucket is keyed on: "ip", "route", "ip_user_route" or "ip_route".
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  The defaults allow a
// burst of ten attempts and one more every six seconds.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 10),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "webshop:rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    cfg.normalize()
    return cfg
}

// normalize raises nonsensical values to the smallest usable ones.  A bucket
// must outlive at least a few refills or it would reset to full capacity.
func (c *RateLimitConfig) normalize() {
    c.Capacity = max(c.Capacity, 1)
    c.RefillTokens = max(c.RefillTokens, 1)
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    c.TTL = max(c.TTL, 5*c.RefillInterval)
}
