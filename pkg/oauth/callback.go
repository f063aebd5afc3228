package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrInvalidState = errors.New("state mismatch in OAuth callback")

// CallbackServer receives the provider's redirect on localhost during the
// browser flow.
type CallbackServer struct {
	port int
}

func NewCallbackServer(port int) *CallbackServer {
	return &CallbackServer{port: port}
}

type callbackResult struct {
	code string
	err  error
}

// WaitForCallback serves /callback until one authorization redirect arrives,
// validates its state token, and returns the authorization code. The server
// shuts down before returning.
func (s *CallbackServer) WaitForCallback(ctx context.Context, expectedState string, timeout time.Duration) (string, error) {
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != expectedState {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			results <- callbackResult{err: ErrInvalidState}
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "Missing authorization code", http.StatusBadRequest)
			results <- callbackResult{err: errors.New("missing authorization code")}
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h2>Authorization complete</h2><p>You can close this window.</p></body></html>")
		results <- callbackResult{code: code}
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	select {
	case result := <-results:
		return result.code, result.err
	case err := <-serveErr:
		return "", fmt.Errorf("callback server failed: %w", err)
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(timeout):
		return "", errors.New("timed out waiting for authorization")
	}
}
