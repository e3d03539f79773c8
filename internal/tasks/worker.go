package tasks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/imspotify/internal/models"
	"github.com/desertthunder/imspotify/internal/services"
	"github.com/desertthunder/imspotify/internal/shared"
	"github.com/desertthunder/imspotify/internal/state"
)

// DefaultRefreshInterval is the minimum spacing between playback fetches.
const DefaultRefreshInterval = 5 * time.Second

// Phase is the worker lifecycle state.
type Phase int32

const (
	Idle Phase = iota
	Running
	Draining
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return ""
	}
}

// ErrorSink receives every failed command. It must not block.
type ErrorSink func(cmd Command, err error)

// WorkerOpts configures a [Worker].
type WorkerOpts struct {
	Interval time.Duration    // Playback refresh interval (default: 5s)
	Logger   *log.Logger      // default: stderr logger
	Sink     ErrorSink        // default: log and record on the store
	Now      func() time.Time // default: time.Now
}

// Worker executes queued commands against the remote service and keeps playback fresh.
//
// One goroutine runs both duties, so command fetches and timed polls share a single commit path.
type Worker struct {
	remote   services.RemoteClient
	store    *state.Store
	io       *state.IoState
	queue    *Queue
	interval time.Duration
	logger   *log.Logger
	sink     ErrorSink
	now      func() time.Time

	phase     atomic.Int32
	startOnce sync.Once
	done      chan struct{}
}

// NewWorker wires a worker to its collaborators. io may be nil, in which case the worker allocates its own.
func NewWorker(remote services.RemoteClient, store *state.Store, io *state.IoState, queue *Queue, opts WorkerOpts) *Worker {
	if io == nil {
		io = &state.IoState{}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultRefreshInterval
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	w := &Worker{
		remote:   remote,
		store:    store,
		io:       io,
		queue:    queue,
		interval: opts.Interval,
		logger:   shared.WithLogger(opts.Logger, "component", "worker"),
		now:      opts.Now,
		done:     make(chan struct{}),
	}

	w.sink = opts.Sink
	if w.sink == nil {
		w.sink = w.report
	}
	return w
}

// Phase returns the current lifecycle state.
func (w *Worker) Phase() Phase {
	return Phase(w.phase.Load())
}

// IoState exposes the worker's poll bookkeeping to readers such as the render loop.
func (w *Worker) IoState() *state.IoState {
	return w.io
}

// Send queues cmd for execution.
func (w *Worker) Send(cmd Command) error {
	return w.queue.Send(cmd)
}

// Done is closed once the executor has returned.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Start launches the executor. Cancelling ctx has the same effect as [Worker.Shutdown] without the join;
// requests already in flight run to completion.
func (w *Worker) Start(ctx context.Context) error {
	started := false
	w.startOnce.Do(func() {
		started = true
		w.phase.Store(int32(Running))
		go w.run(ctx)
	})

	if !started {
		return shared.ErrWorkerStarted
	}
	return nil
}

// Shutdown closes the queue and waits for queued commands to drain and the executor to return.
//
// ctx bounds the wait only; it does not interrupt a request in flight.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.phase.CompareAndSwap(int32(Running), int32(Draining))
	w.queue.Close()

	if w.Phase() == Idle {
		w.phase.Store(int32(Stopped))
		return nil
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: worker did not stop: %v", shared.ErrTimeout, ctx.Err())
	}
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	defer w.phase.Store(int32(Stopped))

	reqCtx := context.WithoutCancel(ctx)
	start := w.now()
	var lastPoll time.Time

	w.logger.Debug("worker started", "interval", w.interval)

	for {
		cmd, ok, closed := w.queue.pop()
		if ok {
			w.execute(reqCtx, cmd)
			continue
		}
		if closed {
			w.logger.Debug("worker stopped")
			return
		}

		due := w.io.NextDue(start, w.interval)
		if !lastPoll.IsZero() {
			if retry := lastPoll.Add(w.interval); retry.After(due) {
				due = retry
			}
		}

		wait := due.Sub(w.now())
		if wait <= 0 {
			lastPoll = w.now()
			if err := w.refreshPlayback(reqCtx); err != nil {
				w.sink(FetchCurrentPlayback{}, err)
			}
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-w.queue.Ready():
		case <-timer.C:
		case <-ctx.Done():
			w.phase.CompareAndSwap(int32(Running), int32(Draining))
			w.queue.Close()
		}
		timer.Stop()
	}
}

// execute dispatches one command. Failures go to the sink; nothing is returned to the loop.
func (w *Worker) execute(ctx context.Context, cmd Command) {
	trace := shared.GenerateID()
	w.logger.Debug("executing command", "command", cmd, "trace", trace)

	var err error
	switch c := cmd.(type) {
	case FetchProfile:
		err = w.refreshProfile(ctx)
	case FetchPlaylists:
		err = w.refreshPlaylists(ctx)
	case FetchPlaylistItems:
		err = w.refreshPlaylistItems(ctx, c.PlaylistID)
	case FetchCurrentPlayback:
		err = w.refreshPlayback(ctx)
	case PushPlayback:
		err = w.remote.PushPlayback(ctx, c.TrackID)
	case ResumePlayback:
		err = w.remote.Resume(ctx)
	case PausePlayback:
		err = w.remote.Pause(ctx)
	default:
		err = fmt.Errorf("%w: unknown command %T", shared.ErrInvalidInput, cmd)
	}

	if err == nil && mutates(cmd) {
		err = w.refreshPlayback(ctx)
	}

	if err != nil {
		w.sink(cmd, err)
		return
	}
	w.logger.Debug("command done", "command", cmd, "trace", trace)
}

// The refresh* helpers fetch first and commit only on success; the store lock is never held during the call.

func (w *Worker) refreshProfile(ctx context.Context) error {
	account, err := w.remote.Profile(ctx)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("%w: empty profile", shared.ErrAPIRequest)
	}
	w.store.CommitProfile(*account)
	return nil
}

func (w *Worker) refreshPlaylists(ctx context.Context) error {
	playlists, err := w.remote.Playlists(ctx)
	if err != nil {
		return err
	}
	w.store.CommitPlaylists(playlists)
	return nil
}

func (w *Worker) refreshPlaylistItems(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	items, err := w.remote.PlaylistItems(ctx, id)
	if err != nil {
		return err
	}

	w.store.CommitPlaylistItems(w.lookupPlaylist(id), items)
	return nil
}

func (w *Worker) refreshPlayback(ctx context.Context) error {
	playback, err := w.remote.CurrentPlayback(ctx, models.KindTrack, models.KindEpisode)
	if err != nil {
		return err
	}

	w.store.CommitPlayback(playback)
	w.io.MarkPlaybackFetch(w.now())
	return nil
}

// lookupPlaylist finds id among the stored playlists so the selection carries its metadata.
func (w *Worker) lookupPlaylist(id string) models.Playlist {
	for _, p := range w.store.Snapshot().Playlists {
		if p.ID == id {
			return p
		}
	}
	return models.Playlist{ID: id}
}

func (w *Worker) report(cmd Command, err error) {
	w.logger.Error("command failed", "command", cmd, "error", err)
	w.store.RecordError(fmt.Errorf("%s: %w", cmd, err), w.now())
}
