// Spotify Web API implementation of [RemoteClient]
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/imspotify/internal/models"
	"github.com/desertthunder/imspotify/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	defaultRedirectURI    = "http://127.0.0.1:8888/callback"
	defaultRequestTimeout = 10 * time.Second
	defaultRateLimit      = 10.0
	pageLimit             = 50
)

// Scopes requested during authorization.
var spotifyScopes = []string{
	"user-library-read",
	"playlist-read-private",
	"playlist-read-collaborative",
	"user-read-playback-state",
	"user-read-currently-playing",
	"user-modify-playback-state",
	"user-read-playback-position",
	"user-top-read",
	"user-read-recently-played",
}

// SpotifyService implements [RemoteClient] and [OAuthService] for the Spotify Web API.
// Uses [oauth2] for authentication and a [rate.Limiter] to pace requests.
type SpotifyService struct {
	config         *oauth2.Config
	baseURL        string
	timeout        time.Duration
	limiter        *rate.Limiter
	onTokenRefresh func(*oauth2.Token)
	now            func() time.Time

	mu         sync.RWMutex
	token      *oauth2.Token
	httpClient *http.Client
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = defaultRedirectURI
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       spotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:  config,
		baseURL: spotifyBaseURL,
		timeout: defaultRequestTimeout,
		limiter: rate.NewLimiter(rate.Limit(defaultRateLimit), 1),
		now:     time.Now,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// SetRateLimit caps requests per second. Zero or negative disables pacing.
func (s *SpotifyService) SetRateLimit(rps float64) {
	if rps <= 0 {
		s.limiter = nil
		return
	}
	s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

// SetRequestTimeout bounds every request. Takes effect on the next authentication.
func (s *SpotifyService) SetRequestTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// SetTokenRefreshCallback registers fn to be called whenever the token source yields a new access token.
func (s *SpotifyService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.onTokenRefresh = fn
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the underlying [oauth2.Config].
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		return s.OAuthenticate(ctx, &oauth2.Token{AccessToken: accessToken, RefreshToken: credentials["refresh_token"]})
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// OAuthenticate installs token and builds an HTTP client that refreshes it through the token endpoint.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: nil token", shared.ErrNotAuthenticated)
	}

	src := oauth2.ReuseTokenSource(token, &refreshableTokenSource{
		source:   s.config.TokenSource(context.WithoutCancel(ctx), token),
		callback: s.onTokenRefresh,
	})

	client := oauth2.NewClient(context.WithoutCancel(ctx), src)
	client.Timeout = s.timeout

	s.mu.Lock()
	s.token = token
	s.httpClient = client
	s.mu.Unlock()

	return nil
}

// refreshableTokenSource wraps an [oauth2.TokenSource] and reports each distinct access token to callback.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)

	mu   sync.Mutex
	last string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := token.AccessToken != r.last
	r.last = token.AccessToken
	r.mu.Unlock()

	if changed && r.callback != nil {
		r.callback(token)
	}
	return token, nil
}

func (s *SpotifyService) client() (*http.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.httpClient == nil {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}
	return s.httpClient, nil
}

// doRequest performs an authenticated HTTP request to the Spotify API.
//
// body, when non-nil, is sent as JSON. result, when non-nil, is decoded from the response unless the API answered 204.
// Returns the HTTP status code alongside any error.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) (int, error) {
	client, err := s.client()
	if err != nil {
		return 0, err
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("%w: rate limiter: %v", shared.ErrAPIRequest, err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return 0, fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
		}
		return 0, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, statusError(resp)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil && !errors.Is(err, io.EOF) {
			return resp.StatusCode, fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}

	return resp.StatusCode, nil
}

// statusError maps a non-2xx response to a sentinel error.
func statusError(resp *http.Response) error {
	var apiErr spotifyError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &apiErr)

	msg := apiErr.Error.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrTokenExpired, msg)
	case resp.StatusCode == http.StatusTooManyRequests:
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			return fmt.Errorf("%w: retry after %ds", shared.ErrRateLimited, secs)
		}
		return fmt.Errorf("%w: %s", shared.ErrRateLimited, msg)
	case apiErr.Error.Reason == "NO_ACTIVE_DEVICE":
		return fmt.Errorf("%w: %s", shared.ErrNoActiveDevice, msg)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, msg)
	default:
		return fmt.Errorf("%w: spotify API error: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
	}
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if _, err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserPlaylists retrieves the current user's playlists with pagination.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit, offset int) (*SpotifyPaginatedPlaylists, error) {
	if limit <= 0 || limit > pageLimit {
		limit = pageLimit
	}

	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

	var response SpotifyPaginatedPlaylists
	if _, err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// Profile implements [RemoteClient].
func (s *SpotifyService) Profile(ctx context.Context) (*models.Account, error) {
	user, err := s.UserProfile(ctx)
	if err != nil {
		return nil, err
	}
	return user.toAccount(), nil
}

// CurrentPlayback implements [RemoteClient]. A 204 from /me/player yields a nil snapshot.
func (s *SpotifyService) CurrentPlayback(ctx context.Context, kinds ...models.ItemKind) (*models.PlaybackSnapshot, error) {
	if len(kinds) == 0 {
		kinds = []models.ItemKind{models.KindTrack, models.KindEpisode}
	}

	types := make([]string, 0, len(kinds))
	for _, k := range kinds {
		types = append(types, k.String())
	}

	endpoint := "/me/player?additional_types=" + url.QueryEscape(strings.Join(types, ","))

	var state *SpotifyPlaybackState
	if _, err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &state); err != nil {
		return nil, err
	}

	if state == nil {
		return nil, nil
	}
	return state.toSnapshot(s.now()), nil
}

// Playlists implements [RemoteClient] by walking every page of /me/playlists.
func (s *SpotifyService) Playlists(ctx context.Context) ([]models.Playlist, error) {
	playlists := []models.Playlist{}
	offset := 0

	for {
		response, err := s.UserPlaylists(ctx, pageLimit, offset)
		if err != nil {
			return nil, err
		}

		for _, sp := range response.Items {
			playlists = append(playlists, sp.toPlaylist())
		}

		if response.Next == nil || len(response.Items) == 0 {
			break
		}
		offset += len(response.Items)
	}

	return playlists, nil
}

// PlaylistItems implements [RemoteClient]. Unavailable entries and non-track items are skipped.
func (s *SpotifyService) PlaylistItems(ctx context.Context, playlistID string) ([]models.Track, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	tracks := []models.Track{}
	offset := 0

	for {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(playlistID), pageLimit, offset)

		var page SpotifyPaginatedPlaylistItems
		status, err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page)
		if err != nil {
			if status == http.StatusNotFound {
				return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
			}
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track == nil || (item.Track.Type != "" && item.Track.Type != "track") {
				continue
			}
			tracks = append(tracks, item.Track.toTrack())
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}

	return tracks, nil
}

// Resume implements [RemoteClient].
func (s *SpotifyService) Resume(ctx context.Context) error {
	_, err := s.doRequest(ctx, http.MethodPut, "/me/player/play", nil, nil)
	return err
}

// Pause implements [RemoteClient].
func (s *SpotifyService) Pause(ctx context.Context) error {
	_, err := s.doRequest(ctx, http.MethodPut, "/me/player/pause", nil, nil)
	return err
}

// PushPlayback implements [RemoteClient]. trackID may be a bare ID or a spotify:track URI.
func (s *SpotifyService) PushPlayback(ctx context.Context, trackID string) error {
	if trackID == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	uri := trackID
	if !strings.HasPrefix(uri, "spotify:") {
		uri = "spotify:track:" + trackID
	}

	body := map[string][]string{"uris": {uri}}
	_, err := s.doRequest(ctx, http.MethodPut, "/me/player/play", body, nil)
	return err
}

var _ OAuthService = (*SpotifyService)(nil)
