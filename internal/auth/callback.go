package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	// CallbackPort is the default port for the OAuth callback server
	CallbackPort = 8089
	// AuthTimeout is how long to wait for the user to complete auth
	AuthTimeout = 5 * time.Minute
)

// ErrStateMismatch means the callback did not come from our authorize request
var ErrStateMismatch = errors.New("oauth state mismatch")

const successPage = `<!DOCTYPE html>
<html>
<head><title>runcohorts</title></head>
<body style="font-family: system-ui; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0;">
<div style="text-align: center;">
<h1 style="color: #10B981;">Connected to Strava</h1>
<p>You can close this window and return to the terminal.</p>
</div>
</body>
</html>`

type callbackResult struct {
	code string
	err  error
}

// callbackHandler delivers exactly one result: the code or the reason there
// isn't one
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var res callbackResult
		switch {
		case q.Get("state") != state:
			res.err = ErrStateMismatch
			http.Error(w, "State mismatch", http.StatusBadRequest)
		case q.Get("error") != "":
			res.err = fmt.Errorf("strava denied access: %s", q.Get("error"))
			http.Error(w, "Authentication failed", http.StatusBadRequest)
		case q.Get("code") == "":
			res.err = errors.New("no code in callback")
			http.Error(w, "No authorization code", http.StatusBadRequest)
		default:
			res.code = q.Get("code")
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, successPage)
		}

		select {
		case results <- res:
		default:
		}
	})
	return mux
}

// Login runs the browser OAuth flow with a local callback server on port.
// The authorize URL and progress messages are written to out.
func Login(ctx context.Context, cfg *oauth2.Config, port int, out io.Writer) (*Grant, error) {
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("starting callback server: %w", err)
	}

	results := make(chan callbackResult, 1)
	server := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	defer shutdownServer(server)

	go func() {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			select {
			case results <- callbackResult{err: fmt.Errorf("callback server: %w", err)}:
			default:
			}
		}
	}()

	fmt.Fprintln(out, "To connect runcohorts to Strava, open this URL in your browser:")
	fmt.Fprintf(out, "\n  %s\n\n", cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))
	fmt.Fprintln(out, "Waiting for authorization...")

	timer := time.NewTimer(AuthTimeout)
	defer timer.Stop()

	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		return Exchange(ctx, cfg, res.code)
	case <-timer.C:
		return nil, fmt.Errorf("authentication timeout after %v", AuthTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// generateState creates a random state string for CSRF protection
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func shutdownServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = server.Shutdown(ctx)
}
