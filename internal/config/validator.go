package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ExpectedEnvSchemaVersion is the .env layout this build understands
const ExpectedEnvSchemaVersion = "1.0"

// RequiredEnvVars lists the environment variables every deployment must set
var RequiredEnvVars = []string{
	"ENV_SCHEMA_VERSION",
	"API_KEY",
}

// PostgresEnvVars are additionally required unless STORE_BACKEND=memory or DATABASE_URL is set
var PostgresEnvVars = []string{
	"DB_USER",
	"DB_PASSWORD",
	"DB_HOST",
	"DB_PORT",
	"DB_NAME",
}

// envWarning flags a setting that works but is probably not what a deployment wants
type envWarning struct {
	applies func() bool
	message string
}

var envWarnings = []envWarning{
	{
		applies: func() bool { return os.Getenv("DB_PASSWORD") == "change_this_secure_password" },
		message: "DB_PASSWORD appears to be using the example value - please use a secure password",
	},
	{
		applies: func() bool { return os.Getenv("API_KEY") == "generate_with_openssl_rand_hex_32" },
		message: "API_KEY appears to be using the example value - generate a secure key with: openssl rand -hex 32",
	},
	{
		applies: func() bool { return os.Getenv("ADMIN_API_KEY") == "" },
		message: "ADMIN_API_KEY is not set - admin routes are reachable with the API key alone",
	},
	{
		applies: func() bool { return os.Getenv("RNG_SERVER_SEED") == "" },
		message: "RNG_SERVER_SEED is not set - a random seed is generated and outcomes cannot be replayed after restart",
	},
	{
		applies: func() bool { return strings.EqualFold(os.Getenv("STORE_BACKEND"), StoreBackendMemory) },
		message: "STORE_BACKEND=memory - items, balances and the audit trail are lost on restart",
	},
	{
		applies: func() bool {
			days, err := strconv.Atoi(os.Getenv("EVENT_RETENTION_DAYS"))
			return err == nil && days <= 0
		},
		message: "EVENT_RETENTION_DAYS is not positive - the audit trail is never pruned",
	},
}

// ValidateEnv checks that all required environment variables are set
// and that the schema version matches expectations
func ValidateEnv() error {
	schemaVersion := os.Getenv("ENV_SCHEMA_VERSION")
	if schemaVersion == "" {
		return fmt.Errorf("ENV_SCHEMA_VERSION is not set - please update your .env file to include this field (expected: %s)", ExpectedEnvSchemaVersion)
	}
	if schemaVersion != ExpectedEnvSchemaVersion {
		return fmt.Errorf("ENV_SCHEMA_VERSION mismatch: expected %s, got %s - your .env file may be outdated", ExpectedEnvSchemaVersion, schemaVersion)
	}

	required := RequiredEnvVars
	if needsPostgresVars() {
		required = append(append([]string{}, RequiredEnvVars...), PostgresEnvVars...)
	}

	var missing []string
	for _, envVar := range required {
		if os.Getenv(envVar) == "" {
			missing = append(missing, envVar)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func needsPostgresVars() bool {
	if strings.EqualFold(os.Getenv("STORE_BACKEND"), StoreBackendMemory) {
		return false
	}
	return os.Getenv("DATABASE_URL") == ""
}

// ValidateEnvWithWarnings runs ValidateEnv and then reports risky but legal settings
func ValidateEnvWithWarnings() ([]string, error) {
	if err := ValidateEnv(); err != nil {
		return nil, err
	}

	var warnings []string
	for _, w := range envWarnings {
		if w.applies() {
			warnings = append(warnings, w.message)
		}
	}
	return warnings, nil
}
