package config // package config loads application configuration from environment variables

import (
    "log" // log is used to report configuration errors and halt execution
    "os"  // os provides access to environment variables
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced at start-up; the
// optional ones fall back to defaults.
type Config struct {
    Env         string // application environment (e.g. "dev", "prod")
    Port        string // HTTP port to listen on
    DBUser      string // database username
    DBPass      string // database password (optional)
    DBHost      string // database host address
    DBPort      string // database port number
    DBName      string // database name
    JWTSecret   string // secret used to sign session tokens
    TokenTTLMin int    // session token lifetime in minutes; 0 means no exp claim
    BcryptCost  int    // bcrypt cost for password hashing
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:         envStr("APP_ENV", "dev"),         // environment (dev/test/prod)
        Port:        must("APP_PORT"),                 // port to bind the HTTP server
        DBUser:      must("DB_USER"),                  // database user
        DBPass:      os.Getenv("DB_PASS"),             // database password (empty allowed)
        DBHost:      must("DB_HOST"),                  // database host
        DBPort:      envStr("DB_PORT", "3306"),        // database port
        DBName:      must("DB_NAME"),                  // database name
        JWTSecret:   must("JWT_SECRET"),               // secret used for signing tokens
        TokenTTLMin: envInt("TOKEN_TTL_MIN", 0),       // optional token expiry
        BcryptCost:  bcryptCost(envInt("BCRYPT_COST", 10)),
    }
}

// bcryptCost clamps the configured cost to the range accepted by bcrypt.
// Anything below 10 is raised to 10 so that a misconfigured environment can
// never weaken stored hashes.
func bcryptCost(n int) int {
    switch {
    case n < 10:
        return 10
    case n > 31:
        return 31
    }
    return n
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}
