package auth

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"runcohorts/internal/log"
)

// TokenSource refreshes tokens through oauth2 and hands every new token to
// persist before returning it
type TokenSource struct {
	mu      sync.Mutex
	base    oauth2.TokenSource
	current *oauth2.Token
	persist func(*oauth2.Token) error
}

// NewTokenSource wraps cfg's refreshing token source. persist may be nil.
func NewTokenSource(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token, persist func(*oauth2.Token) error) *TokenSource {
	return &TokenSource{
		base:    cfg.TokenSource(ctx, token),
		current: token,
		persist: persist,
	}
}

// Token returns a valid token, refreshing if necessary
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	token, err := ts.base.Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing strava token: %w", err)
	}

	if ts.current == nil || token.AccessToken != ts.current.AccessToken {
		log.Debugf("strava token refreshed, expires %s", token.Expiry.Format("2006-01-02 15:04"))
		if ts.persist != nil {
			if err := ts.persist(token); err != nil {
				return nil, fmt.Errorf("saving refreshed token: %w", err)
			}
		}
		ts.current = token
	}

	return token, nil
}
