package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses interval settings
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	// Administrator credentials.  The password is supplied pre-hashed so the
	// plaintext never appears in the environment or the repository.
	AdminEmail        string // admin login email
	AdminPasswordHash string // bcrypt hash of the admin password

	// Loyalty program bounds applied when a business leaves a setting unset
	// or submits something out of range.
	DefaultPointsPerScan   int // points awarded per scan when unconfigured
	DefaultRewardThreshold int // reward threshold when unconfigured
	MaxPointsPerScan       int // upper bound a business may configure

	// Scan replay guard.  Disabled by default to keep the historical
	// behavior of awarding points on every scan, including immediate
	// re-scans of the same code.
	ReplayGuardEnabled bool          // when true, repeat scans within the TTL are rejected
	ReplayGuardTTL     time.Duration // window during which a repeat scan counts as a replay

	PollInterval time.Duration // customer display refresh interval
	DefaultLang  string        // fallback language for translated messages

	// PublicBaseURL is the origin embedded in generated QR payloads and
	// share links, e.g. "https://cards.example.com".
	PublicBaseURL string
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Loyalty and guard
// settings are optional and fall back to sensible defaults.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),      // environment (dev/test/prod)
		Port:           must("APP_PORT"),     // port to bind the HTTP server
		DBUser:         must("DB_USER"),      // database user
		DBPass:         os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:         must("DB_HOST"),      // database host
		DBPort:         must("DB_PORT"),      // database port
		DBName:         must("DB_NAME"),      // database name
		JWTSecret:      must("JWT_SECRET"),   // secret used for signing JWTs
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		AdminEmail:        must("ADMIN_EMAIL"),
		AdminPasswordHash: must("ADMIN_PASSWORD_HASH"),

		DefaultPointsPerScan:   envInt("DEFAULT_POINTS_PER_SCAN", 1),
		DefaultRewardThreshold: envInt("DEFAULT_REWARD_THRESHOLD", 10),
		MaxPointsPerScan:       envInt("MAX_POINTS_PER_SCAN", 100),

		ReplayGuardEnabled: envBool("SCAN_REPLAY_GUARD_ENABLED", false),
		ReplayGuardTTL:     envDur("SCAN_REPLAY_TTL", 10*time.Second),

		PollInterval: envDur("POLL_INTERVAL", 3*time.Second),
		DefaultLang:  envStr("DEFAULT_LANG", "en"),

		PublicBaseURL: envStr("PUBLIC_BASE_URL", "http://localhost:8080"),
	}
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
