package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/imspotify/internal/services"
	"github.com/desertthunder/imspotify/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	remote     services.RemoteClient
	logger     *log.Logger
	output     io.Writer
	mu         sync.Mutex // guards config writes from the token refresh callback
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Remote     services.RemoteClient // overrides the Spotify client built from config
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		remote:     opts.Remote,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){setupCommand, authCommand} {
		commands = append(commands, fn(r))
	}
	return commands
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Before loads configuration, applies environment overrides and sets the log level.
//
// A missing config file is not an error: defaults plus environment variables are used.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" && r.configPath == "" {
		r.configPath = path
	}
	if r.configPath == "" {
		r.configPath = "config.toml"
	}

	if r.config == nil {
		config, err := r.loadConfig()
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	shared.ApplyEnv(r.config)

	level := r.config.Log.Level
	if flag := cmd.String("log-level"); flag != "" {
		level = flag
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(level))
	return ctx, nil
}

func (r *Runner) loadConfig() (*shared.Config, error) {
	if _, err := os.Stat(r.configPath); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		return shared.DefaultConfig(), nil
	}

	config, err := shared.LoadConfig(r.configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}
	return config, nil
}

// client returns the injected remote client or builds an authenticated Spotify client from the config.
func (r *Runner) client(ctx context.Context) (services.RemoteClient, error) {
	if r.remote != nil {
		return r.remote, nil
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}

	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: set client_id and client_secret in %s or %s/%s", shared.ErrMissingCredentials, r.configPath, shared.EnvClientID, shared.EnvClientSecret)
	}

	token := creds.Token()
	if token == nil {
		return nil, fmt.Errorf("%w: run 'imspotify auth' first", shared.ErrNotAuthenticated)
	}

	srv, err := services.NewSpotifyService(creds.Map())
	if err != nil {
		return nil, err
	}
	srv.SetRateLimit(r.config.Playback.RateLimit)
	srv.SetRequestTimeout(r.config.Playback.RequestTimeout.Duration)
	srv.SetTokenRefreshCallback(r.persistToken)

	if err := srv.OAuthenticate(ctx, token); err != nil {
		return nil, err
	}

	r.remote = srv
	return srv, nil
}

// persistToken writes a refreshed token back to the config file. Failures are logged only.
func (r *Runner) persistToken(token *oauth2.Token) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token.AccessToken == r.config.Credentials.Spotify.AccessToken {
		return
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		r.logger.Warn("failed to update token", "error", err)
		return
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		r.logger.Warn("failed to save refreshed token", "error", err)
		return
	}
	r.logger.Debug("refreshed token saved", "path", r.configPath)
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	return r.writePlain(format+"\n", args...)
}

// exit converts err into a [cli.ExitCoder] carrying a readable message and status 1.
func exit(err error) error {
	if err == nil {
		return nil
	}
	return cli.Exit(err.Error(), 1)
}
