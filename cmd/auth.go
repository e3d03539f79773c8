package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/imspotify/internal/server"
	"github.com/desertthunder/imspotify/internal/services"
	"github.com/desertthunder/imspotify/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

// SpotifyAuth performs OAuth2 authentication flow for Spotify.
//
// Starts a local HTTP server, opens browser for user authorization, and exchanges auth code for tokens.
func (r *Runner) SpotifyAuth(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	srv, err := services.NewSpotifyService(creds.Map())
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = authTimeout
	}

	token, err := r.doOAuth(ctx, srv, !cmd.Bool("no-browser"), timeout)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	r.writePlain("You can now run: imspotify (or imspotify --resume / --pause)\n")
	return nil
}

// doOAuth serves the redirect URI locally until the callback arrives, the timeout fires or ctx is done.
func (r *Runner) doOAuth(ctx context.Context, srv services.OAuthService, browser bool, timeout time.Duration) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	oauthConfig := srv.GetOAuthConfig()
	path, err := server.CallbackPath(oauthConfig.RedirectURL)
	if err != nil {
		return nil, err
	}

	handler := server.NewOAuthHandler(oauthConfig, state, path)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	serveCtx, stop := context.WithCancel(ctx)
	defer stop()

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	ready := make(chan string, 1)
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Serve(serveCtx, addr, router, ready)
	}()

	select {
	case bound := <-ready:
		r.logger.Info("OAuth callback server listening", "addr", bound, "path", path)
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	}

	authURL := srv.GetAuthURL(state)
	if browser {
		r.writePlainln("→ Opening browser for Spotify authorization...")
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warn("failed to open browser automatically", "error", err)
			r.writePlainln("⚠ Could not open browser automatically.")
			browser = false
		}
	}
	if !browser {
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result server.OAuthResult
	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}
