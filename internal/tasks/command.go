package tasks

import "fmt"

// Command is a request for the worker to talk to the remote service.
//
// The set of commands is closed: only the types in this file implement it.
// Commands are plain values and are never mutated after being sent.
type Command interface {
	fmt.Stringer
	command()
}

// FetchProfile loads the account profile.
type FetchProfile struct{}

// FetchPlaylists loads the account's playlists.
type FetchPlaylists struct{}

// FetchPlaylistItems selects a playlist and loads its tracks.
type FetchPlaylistItems struct {
	PlaylistID string
}

// FetchCurrentPlayback loads the player state.
type FetchCurrentPlayback struct{}

// PushPlayback starts playing a track on the active device.
type PushPlayback struct {
	TrackID string
}

// ResumePlayback resumes the active device.
type ResumePlayback struct{}

// PausePlayback pauses the active device.
type PausePlayback struct{}

func (FetchProfile) command() {}

func (FetchPlaylists) command() {}

func (FetchPlaylistItems) command() {}

func (FetchCurrentPlayback) command() {}

func (PushPlayback) command() {}

func (ResumePlayback) command() {}

func (PausePlayback) command() {}

func (FetchProfile) String() string {
	return "fetch_profile"
}

func (FetchPlaylists) String() string {
	return "fetch_playlists"
}

func (c FetchPlaylistItems) String() string {
	return "fetch_playlist_items:" + c.PlaylistID
}

func (FetchCurrentPlayback) String() string {
	return "fetch_current_playback"
}

func (c PushPlayback) String() string {
	return "push_playback:" + c.TrackID
}

func (ResumePlayback) String() string {
	return "resume_playback"
}

func (PausePlayback) String() string {
	return "pause_playback"
}

// Bootstrap returns the batch sent before any user interaction.
func Bootstrap() []Command {
	return []Command{FetchProfile{}, FetchPlaylists{}, FetchCurrentPlayback{}}
}

// mutates reports whether cmd changes the remote player and should be followed by a playback refresh.
func mutates(cmd Command) bool {
	switch cmd.(type) {
	case PushPlayback, ResumePlayback, PausePlayback:
		return true
	default:
		return false
	}
}
