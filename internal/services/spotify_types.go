// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"time"

	"github.com/desertthunder/imspotify/internal/models"
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int64           `json:"duration_ms"`
	URI        string          `json:"uri"`
	IsLocal    bool            `json:"is_local"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyShow represents the show an episode belongs to.
type SpotifyShow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Publisher string `json:"publisher"`
}

// SpotifyPlayableItem carries the union of track and episode fields; Type selects the variant.
type SpotifyPlayableItem struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"` // track or episode
	DurationMS int64           `json:"duration_ms"`
	URI        string          `json:"uri"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      *SpotifyAlbum   `json:"album"`
	Show       *SpotifyShow    `json:"show"`
}

// SpotifyDevice is the device the player is running on.
type SpotifyDevice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsActive bool   `json:"is_active"`
	Volume   *int   `json:"volume_percent"`
}

// SpotifyPlaybackState is the /me/player response.
type SpotifyPlaybackState struct {
	Device               SpotifyDevice        `json:"device"`
	IsPlaying            bool                 `json:"is_playing"`
	ProgressMS           *int64               `json:"progress_ms"`
	Timestamp            int64                `json:"timestamp"`
	CurrentlyPlayingType string               `json:"currently_playing_type"`
	Item                 *SpotifyPlayableItem `json:"item"`
}

type owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTrack struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Owner       owner               `json:"owner"`
	Public      bool                `json:"public"`
	Tracks      simplePlaylistTrack `json:"tracks"`
	URI         string              `json:"uri"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items  []SpotifySimplePlaylist `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Next   *string                 `json:"next"`
}

// SpotifyPlaylistItem is one entry of a playlist; Track is null for unavailable items.
type SpotifyPlaylistItem struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylistItems represents a paginated response of playlist entries.
type SpotifyPaginatedPlaylistItems struct {
	Items  []SpotifyPlaylistItem `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
	Next   *string               `json:"next"`
}

// spotifyError is the error envelope returned by the Web API.
type spotifyError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Reason  string `json:"reason"`
	} `json:"error"`
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func artistNames(artists []SpotifyArtist) []string {
	if len(artists) == 0 {
		return nil
	}
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return names
}

func (u SpotifyUser) toAccount() *models.Account {
	return &models.Account{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Country:     u.Country,
		Product:     u.Product,
	}
}

func (p SpotifySimplePlaylist) toPlaylist() models.Playlist {
	return models.Playlist{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Owner:       p.Owner.DisplayName,
		TrackCount:  p.Tracks.Total,
		Public:      p.Public,
	}
}

func (t SpotifyTrack) toTrack() models.Track {
	return models.Track{
		ID:       t.ID,
		URI:      t.URI,
		Title:    t.Name,
		Artists:  artistNames(t.Artists),
		Album:    t.Album.Name,
		Duration: millis(t.DurationMS),
	}
}

// toItem maps the union item to a [models.PlayableItem]; ok is false for unknown types.
func (i SpotifyPlayableItem) toItem() (models.PlayableItem, bool) {
	switch i.Type {
	case "track":
		track := models.Track{
			ID:       i.ID,
			URI:      i.URI,
			Title:    i.Name,
			Artists:  artistNames(i.Artists),
			Duration: millis(i.DurationMS),
		}
		if i.Album != nil {
			track.Album = i.Album.Name
		}
		return models.PlayableItem{Kind: models.KindTrack, Track: &track}, true
	case "episode":
		episode := models.Episode{
			ID:       i.ID,
			URI:      i.URI,
			Title:    i.Name,
			Duration: millis(i.DurationMS),
		}
		if i.Show != nil {
			episode.Show = i.Show.Name
		}
		return models.PlayableItem{Kind: models.KindEpisode, Episode: &episode}, true
	default:
		return models.PlayableItem{}, false
	}
}

func (s SpotifyPlaybackState) toSnapshot(fetchedAt time.Time) *models.PlaybackSnapshot {
	snap := &models.PlaybackSnapshot{
		IsPlaying: s.IsPlaying,
		Device:    s.Device.Name,
		FetchedAt: fetchedAt,
	}
	if s.ProgressMS != nil {
		snap.Progress = millis(*s.ProgressMS)
	}
	if s.Item != nil {
		if item, ok := s.Item.toItem(); ok {
			snap.Item = &item
		}
	}
	return snap
}
