// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/imspotify/internal/models"
)

// Call records one invocation of a [MockRemote] method.
type Call struct {
	Method string
	Arg    string
	At     time.Time
}

// MockRemote is a test double for [services.RemoteClient].
//
// Responses and errors are set through the exported fields before use or via the setters while in use.
// All methods are safe for concurrent use.
type MockRemote struct {
	mu sync.Mutex

	Account   *models.Account
	Playback  *models.PlaybackSnapshot
	Lists     []models.Playlist
	Items     map[string][]models.Track
	Errors    map[string]error // keyed by method name
	Delay     time.Duration    // applied before every call returns
	OnCall    func(Call)       // invoked after the call is recorded
	callLog   []Call
	callCount map[string]int
}

// NewMockRemote creates an empty [MockRemote].
func NewMockRemote() *MockRemote {
	return &MockRemote{Items: map[string][]models.Track{}, Errors: map[string]error{}}
}

// SetError makes method fail with err until cleared with a nil err.
func (m *MockRemote) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Errors == nil {
		m.Errors = map[string]error{}
	}
	if err == nil {
		delete(m.Errors, method)
		return
	}
	m.Errors[method] = err
}

// SetPlayback replaces the playback returned by CurrentPlayback.
func (m *MockRemote) SetPlayback(p *models.PlaybackSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Playback = p
}

// Calls returns a copy of every recorded call, in order.
func (m *MockRemote) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.callLog...)
}

// CallsTo returns the recorded calls to method.
func (m *MockRemote) CallsTo(method string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var calls []Call
	for _, c := range m.callLog {
		if c.Method == method {
			calls = append(calls, c)
		}
	}
	return calls
}

// Count returns how many times method was called.
func (m *MockRemote) Count(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount[method]
}

func (m *MockRemote) record(ctx context.Context, method, arg string) error {
	m.mu.Lock()
	call := Call{Method: method, Arg: arg, At: time.Now()}
	m.callLog = append(m.callLog, call)
	if m.callCount == nil {
		m.callCount = map[string]int{}
	}
	m.callCount[method]++
	err := m.Errors[method]
	delay := m.Delay
	hook := m.OnCall
	m.mu.Unlock()

	if hook != nil {
		hook(call)
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (m *MockRemote) Profile(ctx context.Context) (*models.Account, error) {
	if err := m.record(ctx, "Profile", ""); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Account == nil {
		return &models.Account{ID: "mock"}, nil
	}
	dup := *m.Account
	return &dup, nil
}

func (m *MockRemote) CurrentPlayback(ctx context.Context, kinds ...models.ItemKind) (*models.PlaybackSnapshot, error) {
	if err := m.record(ctx, "CurrentPlayback", ""); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Playback == nil {
		return nil, nil
	}
	dup := m.Playback.Clone()
	return &dup, nil
}

func (m *MockRemote) Playlists(ctx context.Context) ([]models.Playlist, error) {
	if err := m.record(ctx, "Playlists", ""); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Playlist{}, m.Lists...), nil
}

func (m *MockRemote) PlaylistItems(ctx context.Context, playlistID string) ([]models.Track, error) {
	if err := m.record(ctx, "PlaylistItems", playlistID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Track{}, m.Items[playlistID]...), nil
}

func (m *MockRemote) Resume(ctx context.Context) error {
	return m.record(ctx, "Resume", "")
}

func (m *MockRemote) Pause(ctx context.Context) error {
	return m.record(ctx, "Pause", "")
}

func (m *MockRemote) PushPlayback(ctx context.Context, trackID string) error {
	return m.record(ctx, "PushPlayback", trackID)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

var _ io.ReadCloser = (*FCloser)(nil)

// Eventually polls cond until it holds or timeout elapses.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !cond() {
		t.Fatalf("condition not met within %v: %s", timeout, msg)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
