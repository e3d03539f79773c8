// package models defines the data model for the playback client
package models

import (
	"strings"
	"time"
)

// ItemKind discriminates the variants of [PlayableItem].
type ItemKind int

const (
	KindTrack ItemKind = iota
	KindEpisode
)

func (k ItemKind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindEpisode:
		return "episode"
	default:
		return ""
	}
}

// Account is the authenticated user's profile.
type Account struct {
	ID          string
	DisplayName string
	Email       string
	Country     string
	Product     string // premium, free, etc.
}

// Name returns the display name, falling back to the account ID.
func (a Account) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.ID
}

// Playlist represents a playlist owned or followed by the account.
type Playlist struct {
	ID          string
	Name        string
	Description string
	Owner       string
	TrackCount  int
	Public      bool
}

// Track represents a music track.
type Track struct {
	ID       string
	URI      string
	Title    string
	Artists  []string
	Album    string
	Duration time.Duration
}

// Artist joins the track's artist names.
func (t Track) Artist() string {
	return strings.Join(t.Artists, ", ")
}

// Episode represents a podcast episode.
type Episode struct {
	ID       string
	URI      string
	Title    string
	Show     string
	Duration time.Duration
}

// PlayableItem is a [Track] or an [Episode]; Kind says which field is set.
type PlayableItem struct {
	Kind    ItemKind
	Track   *Track
	Episode *Episode
}

// Title returns the item's name.
func (p PlayableItem) Title() string {
	switch p.Kind {
	case KindTrack:
		if p.Track != nil {
			return p.Track.Title
		}
	case KindEpisode:
		if p.Episode != nil {
			return p.Episode.Title
		}
	}
	return ""
}

// Creators returns the artists of a track, or the show name of an episode.
func (p PlayableItem) Creators() []string {
	switch p.Kind {
	case KindTrack:
		if p.Track != nil {
			return p.Track.Artists
		}
	case KindEpisode:
		if p.Episode != nil {
			return []string{p.Episode.Show}
		}
	}
	return nil
}

// Duration returns the total length of the item.
func (p PlayableItem) Duration() time.Duration {
	switch p.Kind {
	case KindTrack:
		if p.Track != nil {
			return p.Track.Duration
		}
	case KindEpisode:
		if p.Episode != nil {
			return p.Episode.Duration
		}
	}
	return 0
}

// Clone returns a deep copy of the item.
func (p PlayableItem) Clone() PlayableItem {
	dup := PlayableItem{Kind: p.Kind}
	if p.Track != nil {
		t := *p.Track
		t.Artists = append([]string(nil), p.Track.Artists...)
		dup.Track = &t
	}
	if p.Episode != nil {
		e := *p.Episode
		dup.Episode = &e
	}
	return dup
}

// PlaybackSnapshot is a point-in-time record of the remote player, decoded from a single response.
type PlaybackSnapshot struct {
	Item      *PlayableItem // nil when the player has nothing loaded
	Progress  time.Duration
	IsPlaying bool
	Device    string
	FetchedAt time.Time
}

// Clone returns a deep copy of the snapshot.
func (s PlaybackSnapshot) Clone() PlaybackSnapshot {
	dup := s
	if s.Item != nil {
		item := s.Item.Clone()
		dup.Item = &item
	}
	return dup
}
