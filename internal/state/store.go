package state

import (
	"sync"
	"time"

	"github.com/desertthunder/imspotify/internal/models"
)

// Snapshot is a copy of the shared state at one instant.
//
// Pointer and slice fields are nil when the corresponding fetch has not completed yet.
type Snapshot struct {
	Profile               *models.Account
	Playback              *models.PlaybackSnapshot
	Playlists             []models.Playlist
	SelectedPlaylist      *models.Playlist
	SelectedPlaylistItems []models.Track

	LastError   error
	LastErrorAt time.Time
}

// HasPlaylists reports whether the playlists field has been populated (possibly with zero playlists).
func (s Snapshot) HasPlaylists() bool {
	return s.Playlists != nil
}

// Store guards the shared state with a readers-writer lock.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Profile = cloneAccount(s.snapshot.Profile)
	snap.Playback = clonePlayback(s.snapshot.Playback)
	snap.Playlists = clonePlaylists(s.snapshot.Playlists)
	snap.SelectedPlaylist = clonePlaylist(s.snapshot.SelectedPlaylist)
	snap.SelectedPlaylistItems = cloneTracks(s.snapshot.SelectedPlaylistItems)
	return snap
}

// CommitProfile replaces the profile.
func (s *Store) CommitProfile(account models.Account) {
	dup := cloneAccount(&account)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Profile = dup
	s.snapshot.LastError = nil
}

// CommitPlayback replaces the playback snapshot. A nil snapshot records that nothing is playing.
func (s *Store) CommitPlayback(playback *models.PlaybackSnapshot) {
	dup := clonePlayback(playback)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Playback = dup
	s.snapshot.LastError = nil
}

// CommitPlaylists replaces the playlist sequence. A nil slice is stored as empty so the field reads as present.
func (s *Store) CommitPlaylists(playlists []models.Playlist) {
	dup := clonePlaylists(playlists)
	if dup == nil {
		dup = []models.Playlist{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Playlists = dup
	s.snapshot.LastError = nil
}

// CommitPlaylistItems replaces the selected playlist together with its items.
func (s *Store) CommitPlaylistItems(playlist models.Playlist, items []models.Track) {
	selected := clonePlaylist(&playlist)
	dup := cloneTracks(items)
	if dup == nil {
		dup = []models.Track{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.SelectedPlaylist = selected
	s.snapshot.SelectedPlaylistItems = dup
	s.snapshot.LastError = nil
}

// RecordError stores err as the most recent failure. Data fields are left untouched.
func (s *Store) RecordError(err error, at time.Time) {
	if err == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastError = err
	s.snapshot.LastErrorAt = at
}

func cloneAccount(a *models.Account) *models.Account {
	if a == nil {
		return nil
	}
	dup := *a
	return &dup
}

func clonePlayback(p *models.PlaybackSnapshot) *models.PlaybackSnapshot {
	if p == nil {
		return nil
	}
	dup := p.Clone()
	return &dup
}

func clonePlaylist(p *models.Playlist) *models.Playlist {
	if p == nil {
		return nil
	}
	dup := *p
	return &dup
}

func clonePlaylists(items []models.Playlist) []models.Playlist {
	if items == nil {
		return nil
	}
	dup := make([]models.Playlist, len(items))
	copy(dup, items)
	return dup
}

func cloneTracks(items []models.Track) []models.Track {
	if items == nil {
		return nil
	}
	dup := make([]models.Track, len(items))
	for i, t := range items {
		t.Artists = append([]string(nil), t.Artists...)
		dup[i] = t
	}
	return dup
}
