package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the planner service.
type Config struct {
	HTTPPort            int
	SQLiteDSN           string
	ServerSecret        string
	BaseURL             string
	AttendanceTolerance time.Duration
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// required values, and reports every missing or invalid entry at once.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:            8080,
		SQLiteDSN:           "file:planner.db",
		BaseURL:             "http://localhost:8080",
		AttendanceTolerance: 10 * time.Minute,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("PLANNER_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "PLANNER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("PLANNER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("PLANNER_SERVER_SECRET")); secret == "" {
		missing = append(missing, "PLANNER_SERVER_SECRET")
	} else {
		cfg.ServerSecret = secret
	}

	if base := strings.TrimSpace(os.Getenv("PLANNER_BASE_URL")); base != "" {
		cfg.BaseURL = strings.TrimRight(base, "/")
	}

	if toleranceValue := strings.TrimSpace(os.Getenv("PLANNER_ATTENDANCE_TOLERANCE")); toleranceValue != "" {
		tolerance, err := time.ParseDuration(toleranceValue)
		if err != nil || tolerance < 0 {
			invalid = append(invalid, "PLANNER_ATTENDANCE_TOLERANCE")
		} else {
			cfg.AttendanceTolerance = tolerance
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
