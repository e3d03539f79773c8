package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/imspotify/internal/shared"
	"github.com/desertthunder/imspotify/internal/state"
	"github.com/desertthunder/imspotify/internal/tasks"
	"github.com/desertthunder/imspotify/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive player and blocks until the user quits.
//
// The refresh worker is shut down after the program exits, waiting for the command in flight to finish.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	remote, err := r.client(ctx)
	if err != nil {
		return err
	}

	store := &state.Store{}
	io := &state.IoState{}
	queue := tasks.NewQueue()
	worker := tasks.NewWorker(remote, store, io, queue, tasks.WorkerOpts{
		Interval: r.config.Playback.RefreshInterval.Duration,
		Logger:   r.logger,
	})

	if err := worker.Start(ctx); err != nil {
		return err
	}

	model := ui.NewModel(store, io, worker, r.logger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, runErr := p.Run()
	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		runErr = nil
	}

	timeout := r.config.Playback.RequestTimeout.Duration + time.Second
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := worker.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("worker shutdown", "error", err)
	}
	r.logger.Info("tui exited", "phase", worker.Phase())

	if runErr != nil {
		return fmt.Errorf("error running TUI: %w", runErr)
	}
	return nil
}
