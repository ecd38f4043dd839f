package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Authentication strategies supported by the API.  The strategy decides
// what kind of credential evidence login establishes and what the
// authorization gate looks for on protected routes.
const (
    StrategyToken   = "token"   // stateless bearer tokens (access + refresh)
    StrategySession = "session" // server-side session cookie backed by Redis
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.
type Config struct {
    Env             string // application environment (e.g. "dev", "prod")
    Port            string // HTTP port to listen on
    DBUser          string // database username
    DBPass          string // database password (optional)
    DBHost          string // database host address
    DBPort          string // database port number
    DBName          string // database name
    JWTSecret       string // secret used to sign JWTs
    JWTAlgorithm    string // HMAC signing algorithm identifier (HS256/HS384/HS512)
    AccessTTLMin    int    // access token time-to-live in minutes
    RefreshTTLDays  int    // refresh token time-to-live in days
    SessionTTLHours int    // session record time-to-live in hours
    BcryptCost      int    // bcrypt cost for password hashing
    AuthStrategy    string // "token" or "session"
    AllowedOrigin   string // origin allowed for CORS requests
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    cfg := Config{
        Env:             must("APP_ENV"),
        Port:            must("APP_PORT"),
        DBUser:          must("DB_USER"),
        DBPass:          os.Getenv("DB_PASS"), // empty allowed
        DBHost:          must("DB_HOST"),
        DBPort:          must("DB_PORT"),
        DBName:          must("DB_NAME"),
        JWTSecret:       must("JWT_SECRET"),
        JWTAlgorithm:    getenv("JWT_ALGORITHM", "HS256"),
        AccessTTLMin:    mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays:  mustInt("REFRESH_TOKEN_TTL_DAYS"),
        SessionTTLHours: envInt("SESSION_TTL_HOURS", 24),
        BcryptCost:      mustInt("BCRYPT_COST"),
        AuthStrategy:    getenv("AUTH_STRATEGY", StrategyToken),
        AllowedOrigin:   getenv("ALLOWED_ORIGIN", "*"),
    }
    if cfg.AuthStrategy != StrategyToken && cfg.AuthStrategy != StrategySession {
        log.Fatalf("invalid AUTH_STRATEGY: %q (want %q or %q)", cfg.AuthStrategy, StrategyToken, StrategySession)
    }
    return cfg
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

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func envInt(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return def
}
