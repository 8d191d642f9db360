package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/ecocal/ecocal/internal/config"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// Authorize walks the user through the OAuth consent flow. The redirect is
// served by a one-shot listener on an ephemeral localhost port, and the
// obtained token is written to the configured token file. The consent URL
// the user has to open is handed to promptFn.
func Authorize(ctx context.Context, cfg config.Google, promptFn func(url string)) error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to start local callback listener: %w", err)
	}
	defer listener.Close()

	oauthConfig := OAuthConfig(cfg)
	oauthConfig.RedirectURL = fmt.Sprintf("http://%s/callback", listener.Addr().String())

	stateNonce := uuid.New().String()
	authURL := oauthConfig.AuthCodeURL(stateNonce, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	promptFn(authURL)

	code, err := waitForCallback(ctx, listener, stateNonce)
	if err != nil {
		return err
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("unable to exchange code for token: %v", err)
	}

	if err := SaveToken(cfg.TokenFile, token); err != nil {
		return err
	}
	log.Infof("Stored Google Calendar token at %s", cfg.TokenFile)
	return nil
}

// waitForCallback serves the redirect endpoint until a single authorization
// code arrives or ctx is cancelled.
func waitForCallback(ctx context.Context, listener net.Listener, stateNonce string) (string, error) {
	type callbackResult struct {
		code string
		err  error
	}
	results := make(chan callbackResult, 1)

	// Only the first callback counts; repeated hits (browser refresh) are
	// answered but dropped.
	deliver := func(result callbackResult) {
		select {
		case results <- result:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("state") != stateNonce {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			deliver(callbackResult{err: errors.New("oauth callback state mismatch")})
			return
		}
		code := r.FormValue("code")
		if code == "" {
			http.Error(w, "missing authorization code", http.StatusBadRequest)
			deliver(callbackResult{err: errors.New("oauth callback did not contain a code")})
			return
		}
		fmt.Fprintln(w, "Authorization complete. You can close this tab.")
		deliver(callbackResult{code: code})
	})

	srv := &http.Server{Handler: mux}
	// Shutdown, not Close: the browser should still receive the response
	// that was being written when the code arrived.
	defer func() {
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Debugf("callback server shutdown: %v", err)
		}
	}()
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Debugf("callback server stopped: %v", err)
		}
	}()

	select {
	case result := <-results:
		return result.code, result.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
