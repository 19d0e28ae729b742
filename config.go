package wingadmin

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config configures the wingadmin client.
type Config struct {
	// Owner is the GitHub account owning the catalog repository.
	Owner string

	// Repo is the catalog repository name.
	Repo string

	// Branch is the ref that catalog writes target.
	Branch string

	// CatalogPath is the path of the catalog document inside the repository.
	CatalogPath string

	// APIBaseURL is the GitHub API endpoint. Overridable for tests.
	APIBaseURL string

	// RawBaseURL is the unauthenticated raw-content endpoint used for the
	// public display read path. Overridable for tests.
	RawBaseURL string

	// ClientID is the OAuth app client ID for device-flow login.
	// If empty, only personal access token login is available.
	ClientID string

	// SessionPath is the path to the local SQLite session database that
	// persists the bearer credential between CLI invocations.
	SessionPath string

	// MaxRetries is the number of write retries beyond the first attempt.
	// Defaults to 3.
	MaxRetries int

	// BaseDelay is the backoff unit between write attempts (delay doubles
	// each retry). Defaults to 1 second.
	BaseDelay time.Duration

	// SettleDelay is the pause after a successful write, allowing the raw
	// read path's cache to converge. Defaults to 500 milliseconds.
	SettleDelay time.Duration

	// Debug enables verbose logging of all GitHub API communications.
	Debug bool

	// DebugLogPath is the path to write debug logs.
	// Defaults to stderr if empty.
	DebugLogPath string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Owner:       "paraflightlog",
		Repo:        "paraflightlog-wings",
		Branch:      "main",
		CatalogPath: "wings.json",
		APIBaseURL:  "https://api.github.com",
		RawBaseURL:  "https://raw.githubusercontent.com",
		SessionPath: defaultSessionPath(),
		MaxRetries:  3,
		BaseDelay:   time.Second,
		SettleDelay: 500 * time.Millisecond,
	}
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "wingadmin", "session.db")
}

// ConfigFromEnv reads configuration from environment variables.
//
//	WINGADMIN_OWNER        → Owner
//	WINGADMIN_REPO         → Repo
//	WINGADMIN_BRANCH       → Branch
//	WINGADMIN_CATALOG      → CatalogPath
//	WINGADMIN_CLIENT_ID    → ClientID
//	WINGADMIN_SESSION_DB   → SessionPath
//	WINGADMIN_DEBUG        → Debug (any non-empty value enables)
//	WINGADMIN_DEBUG_LOG    → DebugLogPath
func ConfigFromEnv() Config {
	return Config{
		Owner:        os.Getenv("WINGADMIN_OWNER"),
		Repo:         os.Getenv("WINGADMIN_REPO"),
		Branch:       os.Getenv("WINGADMIN_BRANCH"),
		CatalogPath:  os.Getenv("WINGADMIN_CATALOG"),
		ClientID:     os.Getenv("WINGADMIN_CLIENT_ID"),
		SessionPath:  os.Getenv("WINGADMIN_SESSION_DB"),
		Debug:        os.Getenv("WINGADMIN_DEBUG") != "",
		DebugLogPath: os.Getenv("WINGADMIN_DEBUG_LOG"),
	}
}

// Validate checks the configuration for errors.
// Returns *ValidationError for invalid fields.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Owner) == "" {
		return &ValidationError{Field: "Owner", Message: "required: repository owner"}
	}
	if strings.TrimSpace(c.Repo) == "" {
		return &ValidationError{Field: "Repo", Message: "required: repository name"}
	}
	if strings.TrimSpace(c.Branch) == "" {
		return &ValidationError{Field: "Branch", Message: "required: target branch"}
	}
	if strings.TrimSpace(c.CatalogPath) == "" {
		return &ValidationError{Field: "CatalogPath", Message: "required: catalog document path"}
	}
	if c.MaxRetries < 0 {
		return &ValidationError{Field: "MaxRetries", Message: "must be non-negative"}
	}
	if c.BaseDelay < 0 {
		return &ValidationError{Field: "BaseDelay", Message: "must be non-negative"}
	}
	return nil
}

// WithDefaults fills in default values for unset fields.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()

	if c.Owner == "" {
		c.Owner = defaults.Owner
	}
	if c.Repo == "" {
		c.Repo = defaults.Repo
	}
	if c.Branch == "" {
		c.Branch = defaults.Branch
	}
	if c.CatalogPath == "" {
		c.CatalogPath = defaults.CatalogPath
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaults.APIBaseURL
	}
	if c.RawBaseURL == "" {
		c.RawBaseURL = defaults.RawBaseURL
	}
	if c.SessionPath == "" {
		c.SessionPath = defaults.SessionPath
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaults.MaxRetries
	}
	if c.BaseDelay == 0 {
		c.BaseDelay = defaults.BaseDelay
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = defaults.SettleDelay
	}

	return c
}
