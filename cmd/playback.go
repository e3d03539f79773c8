package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/imspotify/internal/models"
	"github.com/desertthunder/imspotify/internal/shared"
	"github.com/desertthunder/imspotify/internal/ui"
	"github.com/urfave/cli/v3"
)

// Action is a one-shot playback control requested from the command line.
type Action int

const (
	ActionResume Action = iota
	ActionPause
)

func (a Action) String() string {
	if a == ActionPause {
		return "pause"
	}
	return "resume"
}

// Root dispatches to non-interactive playback control or the TUI.
func (r *Runner) Root(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 0 {
		return exit(fmt.Errorf("%w: unexpected argument %q", shared.ErrInvalidArgument, cmd.Args().First()))
	}

	resume, pause := cmd.Bool("resume"), cmd.Bool("pause")
	switch {
	case resume && pause:
		return exit(fmt.Errorf("%w: --resume and --pause are mutually exclusive", shared.ErrInvalidArgument))
	case resume:
		return exit(r.Playback(ctx, ActionResume))
	case pause:
		return exit(r.Playback(ctx, ActionPause))
	default:
		return exit(r.TUI(ctx, cmd))
	}
}

// Playback performs action once on the active device and reports the resulting state.
//
// The exit status follows the control call alone. A failed follow-up fetch only logs a warning.
func (r *Runner) Playback(ctx context.Context, action Action) error {
	remote, err := r.client(ctx)
	if err != nil {
		return err
	}

	account, err := remote.Profile(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch profile: %w", err)
	}
	if account != nil {
		r.logger.Info(ui.LoggedInLine(*account))
	}

	switch action {
	case ActionPause:
		err = remote.Pause(ctx)
	default:
		err = remote.Resume(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to %s playback: %w", action, err)
	}
	r.logger.Info("playback updated", "action", action)

	playback, err := remote.CurrentPlayback(ctx, models.KindTrack, models.KindEpisode)
	if err != nil {
		r.logger.Warn("failed to fetch playback state", "error", err)
		return nil
	}

	return r.writePlainln("%s", describePlayback(playback))
}

func describePlayback(pb *models.PlaybackSnapshot) string {
	if pb == nil {
		return "Nothing playing"
	}

	status := "Paused"
	if pb.IsPlaying {
		status = "Playing"
	}
	if pb.Item == nil {
		return fmt.Sprintf("%s on %s", status, pb.Device)
	}

	line := fmt.Sprintf("%s: %s - %s", status, pb.Item.Title(), strings.Join(pb.Item.Creators(), ", "))
	if pb.Device != "" {
		line += fmt.Sprintf(" [%s]", pb.Device)
	}
	return line
}
