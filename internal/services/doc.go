// Package services defines the [RemoteClient] interface for the streaming account and implements it for the Spotify Web API.
//
// # Remote Client
//
// [RemoteClient] is the only path to the network. The refresh worker calls it from its own goroutine;
// the render loop never does. Every method takes a [context.Context] and may block on I/O.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token refresh.
//
// The [oauth2.Client] refreshes expired tokens using the refresh token; a callback registered with
// [SpotifyService.SetTokenRefreshCallback] observes each new token so the CLI can persist it.
//
// Requests pass through a [rate.Limiter] before hitting the network, and each request is bounded by the
// HTTP client timeout. There is no other cancellation of in-flight calls.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : no token installed
//   - [shared.ErrTokenExpired] : 401 from the API, reauthorization needed
//   - [shared.ErrRateLimited] : 429 from the API
//   - [shared.ErrNoActiveDevice] : player endpoints without an active device
//   - [shared.ErrAPIRequest] : any other failed request
//
// # API Mappings
//
// Spotify JSON responses are converted to [models.Account], [models.Playlist], [models.Track] and
// [models.PlaybackSnapshot]. A playback snapshot is decoded from exactly one response.
package services
