package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/imspotify/internal/models"
	"github.com/desertthunder/imspotify/internal/state"
	"github.com/desertthunder/imspotify/internal/tasks"
)

// FrameInput is everything one frame may look at.
type FrameInput struct {
	State     state.Snapshot
	LastFetch time.Time // last completed playback fetch; zero if none
	Now       time.Time
	First     bool
}

// Presentation holds the derived values drawn by the host.
type Presentation struct {
	LoggedIn string // empty until the profile arrives
	HasItem  bool
	Kind     models.ItemKind
	Title    string
	Creators string
	Device   string
	Playing  bool
	Position time.Duration
	Duration time.Duration
	Elapsed  string // "m:ss / m:ss"
	Ratio    float64
	Status   string
}

// FrameOutput is the result of one frame: what to draw and what to send.
type FrameOutput struct {
	View     Presentation
	Commands []tasks.Command
}

// Frame derives the presentation for one frame. It performs no I/O and never blocks.
func Frame(in FrameInput) FrameOutput {
	var out FrameOutput

	if in.First {
		out.Commands = tasks.Bootstrap()
	}

	snap := in.State
	if snap.Profile != nil {
		out.View.LoggedIn = LoggedInLine(*snap.Profile)
	}

	if snap.LastError != nil {
		out.View.Status = snap.LastError.Error()
	}

	pb := snap.Playback
	if pb == nil {
		return out
	}

	out.View.Device = pb.Device
	out.View.Playing = pb.IsPlaying

	if pb.Item == nil {
		return out
	}

	out.View.HasItem = true
	out.View.Kind = pb.Item.Kind
	out.View.Title = pb.Item.Title()
	out.View.Creators = strings.Join(pb.Item.Creators(), ", ")
	out.View.Duration = pb.Item.Duration()
	out.View.Position = Position(*pb, in.LastFetch, in.Now)
	out.View.Elapsed = FormatDuration(out.View.Position) + " / " + FormatDuration(out.View.Duration)

	if out.View.Duration > 0 {
		out.View.Ratio = float64(out.View.Position) / float64(out.View.Duration)
	}
	return out
}

// Position extrapolates the playback position from the stored progress.
//
// While playing, the time since the last fetch is added. The result never exceeds the item's duration.
func Position(pb models.PlaybackSnapshot, lastFetch, now time.Time) time.Duration {
	pos := pb.Progress

	if pb.IsPlaying {
		since := lastFetch
		if since.IsZero() {
			since = pb.FetchedAt
		}
		if !since.IsZero() {
			if elapsed := now.Sub(since); elapsed > 0 {
				pos += elapsed
			}
		}
	}

	if pb.Item != nil {
		if d := pb.Item.Duration(); d > 0 && pos > d {
			pos = d
		}
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

// FormatMillis renders ms as m:ss.
func FormatMillis(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	secs := ms / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// FormatDuration renders d as m:ss.
func FormatDuration(d time.Duration) string {
	return FormatMillis(d.Milliseconds())
}

// LoggedInLine is the account line shown in the properties pane and by the non-interactive commands.
func LoggedInLine(a models.Account) string {
	return "Logged-in as: " + a.Name()
}
