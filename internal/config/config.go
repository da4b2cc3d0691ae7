package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits list-valued variables
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Gateway and messaging credentials, the
// database coordinates and the public base URL are mandatory: their
// absence is a startup abort, never a per-request failure.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret         string // secret used to sign admin JWTs
	AccessTTLMin      int    // admin access token time-to-live in minutes
	AdminEmail        string // admin operator login
	AdminPasswordHash string // bcrypt hash of the admin password

	GatewayBaseURL   string // payment gateway API base URL
	GatewayAPIKey    string // gateway credential
	GatewayAPISecret string // gateway credential
	Currency         string // invoice currency code

	WhatsAppBaseURL string // messaging API base URL
	WhatsAppToken   string // messaging API credential
	WhatsAppSender  string // messaging sender id

	PublicBaseURL string   // this service's public URL, used to build the gateway callback
	StatusPageURL string   // browser destination after successful checkout
	ErrorPageURL  string   // browser destination when the return token is unknown
	CORSOrigins   []string // allowed CORS origins
}

// Load reads configuration values from environment variables and returns
// a Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"), // empty allowed
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret:         must("JWT_SECRET"),
		AccessTTLMin:      mustInt("ACCESS_TOKEN_TTL_MIN"),
		AdminEmail:        must("ADMIN_EMAIL"),
		AdminPasswordHash: must("ADMIN_PASSWORD_HASH"),

		GatewayBaseURL:   must("GATEWAY_BASE_URL"),
		GatewayAPIKey:    must("GATEWAY_API_KEY"),
		GatewayAPISecret: must("GATEWAY_API_SECRET"),
		Currency:         envOr("PAYMENT_CURRENCY", "XOF"),

		WhatsAppBaseURL: must("WHATSAPP_BASE_URL"),
		WhatsAppToken:   must("WHATSAPP_TOKEN"),
		WhatsAppSender:  must("WHATSAPP_SENDER"),

		PublicBaseURL: must("PUBLIC_BASE_URL"),
		StatusPageURL: must("STATUS_PAGE_URL"),
		ErrorPageURL:  must("ERROR_PAGE_URL"),
		CORSOrigins:   splitList(must("CORS_ORIGINS")),
	}
}

// must retrieves the value of a required environment variable. If the
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

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitList parses a comma-separated list, trimming whitespace around
// each entry and dropping empties.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
