package main

import (
	"errors"
	"fmt"

	"github.com/paraflightlog/wingadmin"
	"github.com/paraflightlog/wingadmin/internal/auth"
	"github.com/paraflightlog/wingadmin/internal/credstore"
	"github.com/paraflightlog/wingadmin/internal/github"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and save a session",
	Long: `Authenticate against GitHub and save the credential for later
commands.

With --with-token the given personal access token is validated and
saved. Otherwise the OAuth device flow runs: a user code is displayed,
and the command polls until the code is approved in a browser.

Example:
  wingadmin login --with-token ghp_xxxx
  wingadmin login`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE:  runLogout,
}

var loginToken string

func init() {
	loginCmd.Flags().StringVar(&loginToken, "with-token", "", "Personal access token to validate and save")
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx := cmd.Context()

	token := loginToken
	if token == "" {
		var err error
		token, err = deviceLogin(cmd, cfg)
		if err != nil {
			return err
		}
	}

	// Validate the credential before persisting it.
	api := github.NewHTTPClient(github.Options{
		Owner:      cfg.Owner,
		Repo:       cfg.Repo,
		Branch:     cfg.Branch,
		APIBaseURL: cfg.APIBaseURL,
		RawBaseURL: cfg.RawBaseURL,
		Tokens:     wingadmin.StaticToken(token),
	})
	login, err := api.GetUser(ctx)
	if err != nil {
		return fmt.Errorf("validate token: %w", err)
	}

	store, err := credstore.Open(cfg.SessionPath)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	if _, err := store.SaveSession(token, login); err != nil {
		return err
	}

	printSuccess(cmd.OutOrStdout(), "Logged in as %s", login)
	return nil
}

func deviceLogin(cmd *cobra.Command, cfg wingadmin.Config) (string, error) {
	if cfg.ClientID == "" {
		return "", errors.New("no OAuth client ID configured (set WINGADMIN_CLIENT_ID or use --with-token)")
	}

	flow := auth.NewDeviceFlow(cfg.ClientID)
	code, err := flow.RequestCode(cmd.Context())
	if err != nil {
		return "", err
	}

	out := cmd.OutOrStdout()
	printInfo(out, "Open %s and enter the code:", code.VerificationURI)
	printLabel(out, "  "+code.UserCode+"\n\n")
	printMuted(out, "Waiting for approval (expires in %s)...", code.ExpiresIn)

	token, err := flow.Poll(cmd.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrCodeExpired):
			return "", errors.New("the device code expired before approval; run login again")
		case errors.Is(err, auth.ErrAccessDenied):
			return "", errors.New("authorization was denied")
		default:
			return "", err
		}
	}
	return token, nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	store, err := credstore.Open(cfg.SessionPath)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	if err := store.Clear(); err != nil {
		return err
	}
	printSuccess(cmd.OutOrStdout(), "Logged out")
	return nil
}
