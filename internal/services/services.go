// package services defines the [RemoteClient] interface for the streaming account and its Spotify implementation
package services

import (
	"context"

	"github.com/desertthunder/imspotify/internal/models"
	"golang.org/x/oauth2"
)

// RemoteClient is the account and playback API used by the refresh worker and the non-interactive CLI.
//
// All operations may block on the network and are fallible; errors wrap the sentinel values from the shared package.
type RemoteClient interface {
	// Profile retrieves the authenticated user's account.
	Profile(ctx context.Context) (*models.Account, error)

	// CurrentPlayback retrieves the player state. A nil snapshot with a nil error means nothing is playing.
	// kinds limits which item types the caller understands; empty means tracks and episodes.
	CurrentPlayback(ctx context.Context, kinds ...models.ItemKind) (*models.PlaybackSnapshot, error)

	// Playlists retrieves every playlist of the authenticated user, in library order.
	Playlists(ctx context.Context) ([]models.Playlist, error)

	// PlaylistItems retrieves the tracks of a playlist, in playlist order.
	PlaylistItems(ctx context.Context, playlistID string) ([]models.Track, error)

	// Resume resumes playback on the active device.
	Resume(ctx context.Context) error

	// Pause pauses playback on the active device.
	Pause(ctx context.Context) error

	// PushPlayback starts playing the given track on the active device.
	PushPlayback(ctx context.Context, trackID string) error
}

// OAuthService extends [RemoteClient] for providers authenticated with the authorization code flow.
type OAuthService interface {
	RemoteClient

	// GetAuthURL returns the URL the user visits to grant access.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the [oauth2.Config] for the callback handler's code exchange.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate installs a previously obtained token, refreshing it as needed.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}
