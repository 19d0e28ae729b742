package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/paraflightlog/wingadmin"
	"github.com/paraflightlog/wingadmin/internal/credstore"
	"github.com/paraflightlog/wingadmin/internal/github"
	"github.com/spf13/cobra"
)

var (
	cfgOwner   string
	cfgRepo    string
	cfgBranch  string
	cfgCatalog string
	cfgToken   string
	cfgDebug   bool
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "wingadmin",
	Short: "Wingadmin - paraglider wing catalog administration",
	Long: `Wingadmin manages the published paraglider wing catalog.

The catalog is a single JSON document in a GitHub repository; every edit
is written through the Contents API with optimistic concurrency, so
concurrent admin sessions never silently overwrite each other.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgOwner, "owner", "", "Repository owner (default: paraflightlog)")
	rootCmd.PersistentFlags().StringVar(&cfgRepo, "repo", "", "Catalog repository (default: paraflightlog-wings)")
	rootCmd.PersistentFlags().StringVar(&cfgBranch, "branch", "", "Target branch (default: main)")
	rootCmd.PersistentFlags().StringVar(&cfgCatalog, "catalog", "", "Catalog document path (default: wings.json)")
	rootCmd.PersistentFlags().StringVar(&cfgToken, "token", "", "GitHub token (overrides saved session)")
	rootCmd.PersistentFlags().BoolVar(&cfgDebug, "debug", false, "Log all GitHub API communications")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output results as JSON")

	rootCmd.AddCommand(wingCmd)
	rootCmd.AddCommand(manufacturerCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func loadConfig() wingadmin.Config {
	cfg := wingadmin.ConfigFromEnv()

	// Flags override the environment
	if cfgOwner != "" {
		cfg.Owner = cfgOwner
	}
	if cfgRepo != "" {
		cfg.Repo = cfgRepo
	}
	if cfgBranch != "" {
		cfg.Branch = cfgBranch
	}
	if cfgCatalog != "" {
		cfg.CatalogPath = cfgCatalog
	}
	if cfgDebug {
		cfg.Debug = true
	}

	return cfg.WithDefaults()
}

// resolveToken finds the credential to use, in precedence order: the
// --token flag, the GITHUB_TOKEN environment variable, then the saved
// session. Returns an empty string when none is present; read-only
// commands still work without one.
func resolveToken(cfg wingadmin.Config) string {
	if cfgToken != "" {
		return cfgToken
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		return v
	}

	store, err := credstore.Open(cfg.SessionPath)
	if err != nil {
		return ""
	}
	defer store.Close()

	session, err := store.Session()
	if err != nil {
		return ""
	}
	return session.Token
}

// buildClient assembles the full stack: HTTP content client, retrying
// gateway, and the catalog client on top.
func buildClient(cfg wingadmin.Config) (*wingadmin.Client, error) {
	tokens := wingadmin.StaticToken(resolveToken(cfg))

	api := github.NewHTTPClient(github.Options{
		Owner:      cfg.Owner,
		Repo:       cfg.Repo,
		Branch:     cfg.Branch,
		APIBaseURL: cfg.APIBaseURL,
		RawBaseURL: cfg.RawBaseURL,
		Tokens:     tokens,
	})

	// The gateway's debug trace binds to the client's logger, which is
	// only constructed inside New. The indirection closes that loop.
	var debug *wingadmin.DebugLogger
	gateway := github.NewGateway(api, github.GatewayOptions{
		MaxRetries:  cfg.MaxRetries,
		BaseDelay:   cfg.BaseDelay,
		SettleDelay: cfg.SettleDelay,
		Logf: func(format string, args ...any) {
			debug.Log(format, args...)
		},
	})

	client, err := wingadmin.New(cfg, tokens, gateway)
	if err != nil {
		return nil, fmt.Errorf("initialize client: %w", err)
	}
	debug = client.Debug()
	return client, nil
}

// friendlyError rewrites library sentinels into actionable CLI messages.
func friendlyError(err error) error {
	switch {
	case errors.Is(err, wingadmin.ErrUnauthenticated):
		return errors.New("not logged in (run 'wingadmin login' or set GITHUB_TOKEN)")
	case errors.Is(err, wingadmin.ErrVersionConflict):
		return fmt.Errorf("%w\nThe catalog changed while saving; the edit was retried and still failed. Try again.", err)
	default:
		return err
	}
}
