package main

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"runcohorts/internal/auth"
	"runcohorts/internal/config"
	"runcohorts/internal/service"
	"runcohorts/internal/store"
)

// errNotLoggedIn is returned by commands that need Strava before a login
var errNotLoggedIn = errors.New("not connected to Strava: run 'runcohorts login' first")

// env is what every command works against: the config and the database
type env struct {
	cfg *config.Config
	db  *store.DB
}

// loadConfig reads the config file, falling back to defaults when there is
// none so offline commands work out of the box
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		def := config.DefaultConfig()
		return &def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		path, _ := config.GetConfigPath()
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func openEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	db, err := store.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &env{cfg: cfg, db: db}, nil
}

func (e *env) Close() error {
	return e.db.Close()
}

func (e *env) callbackPort() int {
	if e.cfg.Strava.CallbackPort != 0 {
		return e.cfg.Strava.CallbackPort
	}
	return auth.CallbackPort
}

// oauthConfig returns the Strava OAuth client, or an error naming the
// missing credentials
func (e *env) oauthConfig() (*oauth2.Config, error) {
	if err := e.cfg.ValidateStrava(); err != nil {
		path, _ := config.GetConfigPath()
		return nil, fmt.Errorf("strava credentials missing from %s (run 'runcohorts config init'): %w", path, err)
	}
	return auth.NewOAuthConfig(auth.Config{
		ClientID:     e.cfg.Strava.ClientID,
		ClientSecret: e.cfg.Strava.ClientSecret,
		RedirectURL:  auth.RedirectURL(e.callbackPort()),
	}), nil
}

// tokenSource returns a refreshing token source for the stored login.
// Refreshed tokens are written back to the database.
func (e *env) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	oauthCfg, err := e.oauthConfig()
	if err != nil {
		return nil, err
	}

	stored, err := e.db.GetAuth()
	if errors.Is(err, store.ErrNoAuth) {
		return nil, errNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("checking auth: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		Expiry:       stored.ExpiresAt,
	}
	return auth.NewTokenSource(ctx, oauthCfg, token, func(t *oauth2.Token) error {
		return e.db.UpdateTokens(t.AccessToken, t.RefreshToken, t.Expiry)
	}), nil
}

func (e *env) cohortService() *service.CohortService {
	return service.NewCohortService(e.db, e.cfg)
}
