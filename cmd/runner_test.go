package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/imspotify/internal/models"
	"github.com/desertthunder/imspotify/internal/shared"
	tu "github.com/desertthunder/imspotify/internal/testing"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

func newTestRunner(t *testing.T, remote *tu.MockRemote) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv(shared.EnvClientID, "")
	t.Setenv(shared.EnvClientSecret, "")
	t.Setenv(shared.EnvLogLevel, "")

	output, logs := &bytes.Buffer{}, &bytes.Buffer{}
	opts := RunnerOpts{
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		Logger:     shared.NewLogger(logs),
		Output:     output,
	}
	if remote != nil {
		opts.Remote = remote
	}
	return NewRunner(opts), output, logs
}

// run executes the root command without letting exit codes terminate the test binary.
func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	root := r.Command()
	root.ExitErrHandler = func(context.Context, *cli.Command, error) {}
	return root.Run(context.Background(), append([]string{"imspotify", "-c", r.configPath}, args...))
}

func playingRemote() *tu.MockRemote {
	remote := tu.NewMockRemote()
	remote.Account = &models.Account{ID: "u1", DisplayName: "Dana"}
	remote.Playback = &models.PlaybackSnapshot{
		Item: &models.PlayableItem{
			Kind:  models.KindTrack,
			Track: &models.Track{ID: "t1", Title: "Song", Artists: []string{"Artist A", "Artist B"}, Duration: 3 * time.Minute},
		},
		Progress:  30 * time.Second,
		IsPlaying: true,
		Device:    "Desk",
	}
	return remote
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			remote := tu.NewMockRemote()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Remote:     remote,
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.remote != remote {
				t.Error("expected remote to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			if NewRunner(RunnerOpts{}).logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			if NewRunner(RunnerOpts{}).output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := output.String(); got != "hello world" {
				t.Errorf("expected 'hello world', got %q", got)
			}
		})

		t.Run("appends newline", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("done"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := output.String(); got != "done\n" {
				t.Errorf("expected %q, got %q", "done\n", got)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		commands := NewRunner(RunnerOpts{}).register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "auth"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})

	t.Run("Before", func(t *testing.T) {
		t.Run("missing config file uses defaults", func(t *testing.T) {
			runner, _, _ := newTestRunner(t, playingRemote())

			if err := run(t, runner, "--pause"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.config == nil {
				t.Fatal("expected config to be loaded")
			}
			if runner.config.Playback.RefreshInterval.Duration != 5*time.Second {
				t.Errorf("expected default refresh interval, got %v", runner.config.Playback.RefreshInterval)
			}
		})

		t.Run("invalid config file is an error", func(t *testing.T) {
			runner, _, _ := newTestRunner(t, playingRemote())
			if err := os.WriteFile(runner.configPath, []byte("[playback\n"), 0600); err != nil {
				t.Fatal(err)
			}

			err := run(t, runner, "--pause")
			if !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})

		t.Run("log level flag overrides config", func(t *testing.T) {
			runner, _, _ := newTestRunner(t, playingRemote())

			if err := run(t, runner, "--log-level", "debug", "--resume"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := runner.logger.GetLevel(); got != log.DebugLevel {
				t.Errorf("expected debug level, got %v", got)
			}
		})

		t.Run("environment overrides credentials", func(t *testing.T) {
			runner, _, _ := newTestRunner(t, playingRemote())
			t.Setenv(shared.EnvClientID, "env-id")

			if err := run(t, runner, "--resume"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := runner.config.Credentials.Spotify.ClientID; got != "env-id" {
				t.Errorf("expected env client id, got %q", got)
			}
		})
	})

	t.Run("client", func(t *testing.T) {
		t.Run("returns injected remote", func(t *testing.T) {
			remote := tu.NewMockRemote()
			runner := NewRunner(RunnerOpts{Remote: remote})

			got, err := runner.client(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != remote {
				t.Error("expected injected remote")
			}
		})

		t.Run("missing credentials", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Credentials.Spotify.ClientID = ""
			runner := NewRunner(RunnerOpts{Config: config})

			_, err := runner.client(context.Background())
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("no stored token", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: shared.DefaultConfig()})

			_, err := runner.client(context.Background())
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
			if !strings.Contains(err.Error(), "imspotify auth") {
				t.Errorf("expected auth hint, got %v", err)
			}
		})

		t.Run("stored token builds a client", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Credentials.Spotify.AccessToken = "access"
			config.Credentials.Spotify.RefreshToken = "refresh"
			runner := NewRunner(RunnerOpts{Config: config})

			got, err := runner.client(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got == nil || runner.remote != got {
				t.Error("expected client to be cached on the runner")
			}
		})
	})

	t.Run("persistToken", func(t *testing.T) {
		t.Run("saves refreshed token", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			config := shared.DefaultConfig()
			config.Credentials.Spotify.AccessToken = "old"
			runner := NewRunner(RunnerOpts{Config: config, ConfigPath: configPath})

			runner.persistToken(&oauth2.Token{AccessToken: "new", RefreshToken: "new_refresh"})

			loaded, err := shared.LoadConfig(configPath)
			if err != nil {
				t.Fatalf("failed to reload config: %v", err)
			}
			if loaded.Credentials.Spotify.AccessToken != "new" {
				t.Errorf("expected access token to be saved, got %s", loaded.Credentials.Spotify.AccessToken)
			}
			if loaded.Credentials.Spotify.RefreshToken != "new_refresh" {
				t.Errorf("expected refresh token to be saved, got %s", loaded.Credentials.Spotify.RefreshToken)
			}
		})

		t.Run("unchanged token is not written", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			config := shared.DefaultConfig()
			config.Credentials.Spotify.AccessToken = "same"
			runner := NewRunner(RunnerOpts{Config: config, ConfigPath: configPath})

			runner.persistToken(&oauth2.Token{AccessToken: "same"})

			if _, err := os.Stat(configPath); !os.IsNotExist(err) {
				t.Errorf("expected no config file, got %v", err)
			}
		})

		t.Run("save failure is logged", func(t *testing.T) {
			logs := &bytes.Buffer{}
			dir := t.TempDir()
			blocker := filepath.Join(dir, "file")
			if err := os.WriteFile(blocker, nil, 0600); err != nil {
				t.Fatal(err)
			}
			runner := NewRunner(RunnerOpts{
				Config:     shared.DefaultConfig(),
				ConfigPath: filepath.Join(blocker, "config.toml"),
				Logger:     shared.NewLogger(logs),
			})

			runner.persistToken(&oauth2.Token{AccessToken: "new"})

			if !strings.Contains(logs.String(), "failed to save refreshed token") {
				t.Errorf("expected save warning, got %q", logs.String())
			}
		})
	})
}

func TestPlayback(t *testing.T) {
	t.Run("resume reports the new state", func(t *testing.T) {
		remote := playingRemote()
		runner, output, logs := newTestRunner(t, remote)

		if err := run(t, runner, "--resume"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var methods []string
		for _, c := range remote.Calls() {
			methods = append(methods, c.Method)
		}
		if got := strings.Join(methods, ","); got != "Profile,Resume,CurrentPlayback" {
			t.Errorf("unexpected call order %s", got)
		}
		if !strings.Contains(logs.String(), "Logged-in as: Dana") {
			t.Errorf("expected logged-in line, got %q", logs.String())
		}
		if got := output.String(); got != "Playing: Song - Artist A, Artist B [Desk]\n" {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("pause calls pause only", func(t *testing.T) {
		remote := playingRemote()
		runner, _, _ := newTestRunner(t, remote)

		if err := runner.Playback(context.Background(), ActionPause); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if remote.Count("Pause") != 1 || remote.Count("Resume") != 0 {
			t.Errorf("expected one pause and no resume, got %v", remote.Calls())
		}
	})

	t.Run("control failure is returned", func(t *testing.T) {
		remote := playingRemote()
		remote.SetError("Resume", shared.ErrNoActiveDevice)
		runner, output, _ := newTestRunner(t, remote)

		err := runner.Playback(context.Background(), ActionResume)
		if !errors.Is(err, shared.ErrNoActiveDevice) {
			t.Fatalf("expected ErrNoActiveDevice, got %v", err)
		}
		if !strings.Contains(err.Error(), "failed to resume playback") {
			t.Errorf("expected action in message, got %v", err)
		}
		if remote.Count("CurrentPlayback") != 0 {
			t.Error("expected no follow-up fetch after a failed call")
		}
		if output.Len() != 0 {
			t.Errorf("expected no output, got %q", output.String())
		}
	})

	t.Run("control failure exits non-zero", func(t *testing.T) {
		remote := playingRemote()
		remote.SetError("Pause", shared.ErrTokenExpired)
		runner, _, _ := newTestRunner(t, remote)

		err := run(t, runner, "--pause")
		var coder cli.ExitCoder
		if !errors.As(err, &coder) || coder.ExitCode() != 1 {
			t.Fatalf("expected exit code 1, got %v", err)
		}
	})

	t.Run("profile failure stops before the call", func(t *testing.T) {
		remote := playingRemote()
		remote.SetError("Profile", shared.ErrTokenExpired)
		runner, _, _ := newTestRunner(t, remote)

		err := runner.Playback(context.Background(), ActionResume)
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Fatalf("expected ErrTokenExpired, got %v", err)
		}
		if remote.Count("Resume") != 0 {
			t.Error("expected resume not to be called")
		}
	})

	t.Run("failed follow-up fetch is a warning", func(t *testing.T) {
		remote := playingRemote()
		remote.SetError("CurrentPlayback", shared.ErrServiceUnavailable)
		runner, output, logs := newTestRunner(t, remote)

		if err := runner.Playback(context.Background(), ActionResume); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(logs.String(), "failed to fetch playback state") {
			t.Errorf("expected warning, got %q", logs.String())
		}
		if output.Len() != 0 {
			t.Errorf("expected no output, got %q", output.String())
		}
	})
}

func TestRoot(t *testing.T) {
	t.Run("resume and pause together", func(t *testing.T) {
		remote := playingRemote()
		runner, _, _ := newTestRunner(t, remote)

		err := run(t, runner, "--resume", "--pause")
		if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
			t.Fatalf("expected mutually exclusive error, got %v", err)
		}
		if len(remote.Calls()) != 0 {
			t.Errorf("expected no remote calls, got %v", remote.Calls())
		}
	})

	t.Run("unexpected argument", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, playingRemote())

		err := run(t, runner, "play")
		if err == nil || !strings.Contains(err.Error(), "unexpected argument") {
			t.Fatalf("expected invalid argument error, got %v", err)
		}
	})

	t.Run("exit passes nil through", func(t *testing.T) {
		if err := exit(nil); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}

func TestSetup(t *testing.T) {
	runner, output, _ := newTestRunner(t, nil)

	if err := run(t, runner, "setup"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	tu.AssertFileExists(t, runner.configPath)
	if !strings.Contains(output.String(), "imspotify auth") {
		t.Errorf("expected next steps, got %q", output.String())
	}
	if !strings.Contains(tu.MustReadFile(t, runner.configPath), "[credentials.spotify]") {
		t.Error("expected template contents")
	}

	if err := run(t, runner, "setup"); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected existing file error, got %v", err)
	}
}

func TestDescribePlayback(t *testing.T) {
	episode := &models.PlayableItem{
		Kind:    models.KindEpisode,
		Episode: &models.Episode{ID: "e1", Title: "Ep 1", Show: "Show"},
	}

	tests := []struct {
		name string
		pb   *models.PlaybackSnapshot
		want string
	}{
		{"nil", nil, "Nothing playing"},
		{"no item", &models.PlaybackSnapshot{Device: "Phone"}, "Paused on Phone"},
		{"paused episode", &models.PlaybackSnapshot{Item: episode}, "Paused: Ep 1 - Show"},
		{"playing track", playingRemote().Playback, "Playing: Song - Artist A, Artist B [Desk]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describePlayback(tt.pb); got != tt.want {
				t.Errorf("describePlayback() = %q, want %q", got, tt.want)
			}
		})
	}
}
