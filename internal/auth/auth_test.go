package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func tokenServer(t *testing.T, body string) (*oauth2.Config, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	return &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/authorize",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}, &calls
}

func TestNewOAuthConfig(t *testing.T) {
	cfg := NewOAuthConfig(Config{ClientID: "123", ClientSecret: "s", RedirectURL: RedirectURL(CallbackPort)})

	assert.Equal(t, "http://localhost:8089/callback", cfg.RedirectURL)
	assert.Equal(t, TokenURL, cfg.Endpoint.TokenURL)

	u := cfg.AuthCodeURL("xyz")
	assert.Contains(t, u, "client_id=123")
	assert.Contains(t, u, "state=xyz")
}

func TestExchangeReadsAthlete(t *testing.T) {
	cfg, _ := tokenServer(t, `{
		"access_token": "access",
		"refresh_token": "refresh",
		"token_type": "Bearer",
		"expires_in": 21600,
		"athlete": {"id": 4242}
	}`)

	grant, err := Exchange(context.Background(), cfg, "code")
	require.NoError(t, err)
	assert.Equal(t, int64(4242), grant.AthleteID)
	assert.Equal(t, "access", grant.Token.AccessToken)
	assert.Equal(t, "refresh", grant.Token.RefreshToken)
}

func TestTokenSourcePersistsRefresh(t *testing.T) {
	cfg, calls := tokenServer(t, `{
		"access_token": "fresh",
		"refresh_token": "refresh2",
		"token_type": "Bearer",
		"expires_in": 3600
	}`)

	expired := &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh1",
		Expiry:       time.Now().Add(-time.Minute),
	}

	var saved []*oauth2.Token
	ts := NewTokenSource(context.Background(), cfg, expired, func(tok *oauth2.Token) error {
		saved = append(saved, tok)
		return nil
	})

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)

	tok, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)

	require.Len(t, saved, 1)
	assert.Equal(t, "refresh2", saved[0].RefreshToken)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTokenSourceValidTokenNotPersisted(t *testing.T) {
	cfg, calls := tokenServer(t, `{}`)
	valid := &oauth2.Token{AccessToken: "ok", Expiry: time.Now().Add(time.Hour)}

	ts := NewTokenSource(context.Background(), cfg, valid, func(*oauth2.Token) error {
		return errors.New("should not persist")
	})

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "ok", tok.AccessToken)
	assert.Zero(t, calls.Load())
}

func TestTokenSourcePersistFailure(t *testing.T) {
	cfg, _ := tokenServer(t, `{"access_token": "fresh", "token_type": "Bearer", "expires_in": 3600}`)
	expired := &oauth2.Token{AccessToken: "stale", RefreshToken: "r", Expiry: time.Now().Add(-time.Minute)}

	ts := NewTokenSource(context.Background(), cfg, expired, func(*oauth2.Token) error {
		return errors.New("disk full")
	})

	_, err := ts.Token()
	assert.ErrorContains(t, err, "disk full")
}

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
		wantErr  error
		status   int
	}{
		{"success", "?state=s1&code=abc", "abc", nil, http.StatusOK},
		{"wrong state", "?state=evil&code=abc", "", ErrStateMismatch, http.StatusBadRequest},
		{"denied", "?state=s1&error=access_denied", "", nil, http.StatusBadRequest},
		{"missing code", "?state=s1", "", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make(chan callbackResult, 1)
			h := callbackHandler("s1", results)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil))
			assert.Equal(t, tt.status, rec.Code)

			res := <-results
			assert.Equal(t, tt.wantCode, res.code)
			if tt.status == http.StatusOK {
				assert.NoError(t, res.err)
				assert.Contains(t, rec.Body.String(), "Connected to Strava")
			} else {
				assert.Error(t, res.err)
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, res.err, tt.wantErr)
			}
		})
	}
}

func TestCallbackHandlerDeliversOnce(t *testing.T) {
	results := make(chan callbackResult, 1)
	h := callbackHandler("s1", results)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s1&code=c", nil))
	}
	assert.Len(t, results, 1)
}
