// Package auth handles the Strava OAuth2 login and keeps tokens fresh.
package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

const (
	// Strava OAuth endpoints
	AuthURL  = "https://www.strava.com/oauth/authorize"
	TokenURL = "https://www.strava.com/oauth/token"
)

// Scopes required to read every activity (Strava uses comma-separated scopes)
var Scopes = []string{
	"read,activity:read_all",
}

// Config holds the OAuth client credentials
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "http://localhost:8089/callback"
}

// NewOAuthConfig creates an oauth2.Config for Strava
func NewOAuthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  AuthURL,
			TokenURL: TokenURL,
		},
		RedirectURL: cfg.RedirectURL,
		Scopes:      Scopes,
	}
}

// RedirectURL is the local callback address for port
func RedirectURL(port int) string {
	return fmt.Sprintf("http://localhost:%d/callback", port)
}

// Grant is the result of a completed login
type Grant struct {
	Token     *oauth2.Token
	AthleteID int64
}

// Exchange trades an authorization code for tokens
func Exchange(ctx context.Context, cfg *oauth2.Config, code string) (*Grant, error) {
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}
	return &Grant{Token: token, AthleteID: athleteID(token)}, nil
}

// athleteID reads the athlete Strava embeds in the token response
func athleteID(token *oauth2.Token) int64 {
	if athlete, ok := token.Extra("athlete").(map[string]any); ok {
		if id, ok := athlete["id"].(float64); ok {
			return int64(id)
		}
	}
	return 0
}
