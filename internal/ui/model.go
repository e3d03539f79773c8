package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/imspotify/internal/models"
	"github.com/desertthunder/imspotify/internal/state"
	"github.com/desertthunder/imspotify/internal/tasks"
)

// pane identifies which list receives navigation keys.
type pane int

const (
	playlistsPane pane = iota
	tracksPane
)

// Model is the bubbletea host for [Frame].
//
// It reads the store once per frame and posts commands through the sender; it never calls the remote service.
type Model struct {
	store  *state.Store
	io     *state.IoState
	sender tasks.Sender
	logger *log.Logger
	now    func() time.Time

	running bool
	first   bool
	snap    state.Snapshot
	frame   FrameOutput

	focus      pane
	playlists  list.Model
	tracks     list.Model
	listed     []string // playlist ids currently in the playlists pane
	listedFor  string   // playlist id whose tracks are in the tracks pane
	listedSize int
	bar        progress.Model
	spring     harmonica.Spring
	barPos     float64
	barVel     float64
	help       help.Model
	keys       keyMap
	width      int
	height     int
}

// NewModel creates a TUI model reading from store and io and posting to sender.
func NewModel(store *state.Store, io *state.IoState, sender tasks.Sender, logger *log.Logger) *Model {
	return &Model{
		store:     store,
		io:        io,
		sender:    sender,
		logger:    logger,
		now:       time.Now,
		running:   true,
		first:     true,
		playlists: newList("Playlists"),
		tracks:    newList("Tracks"),
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spring:    harmonica.NewSpring(harmonica.FPS(int(time.Second/FrameInterval)), 6.0, 1.0),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Running reports whether the user has not asked to quit.
func (m *Model) Running() bool {
	return m.running
}

// Presentation returns the values derived by the most recent frame.
func (m *Model) Presentation() Presentation {
	return m.frame.View
}

// Init draws the first frame immediately so the bootstrap batch goes out without waiting a tick.
func (m *Model) Init() tea.Cmd {
	return func() tea.Msg { return frameMsg(m.now()) }
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		if msg.kind == MsgFrame {
			m.runFrame(msg.data.(time.Time))
			if !m.running {
				return m, tea.Quit
			}
			return m, tick()
		}
	}

	return m, nil
}

// runFrame reads shared state once, derives the presentation and posts any commands.
func (m *Model) runFrame(now time.Time) {
	m.snap = m.store.Snapshot()

	var last time.Time
	if m.io != nil {
		last, _ = m.io.LastPlaybackFetch()
	}

	m.frame = Frame(FrameInput{State: m.snap, LastFetch: last, Now: now, First: m.first})
	m.first = false

	for _, cmd := range m.frame.Commands {
		m.send(cmd)
	}
	m.syncLists()
	m.animateBar()
}

// animateBar moves the displayed bar toward the frame's ratio; a track change snaps instead of sweeping back.
func (m *Model) animateBar() {
	target := m.frame.View.Ratio
	if m.barPos-target > 0.25 {
		m.barPos, m.barVel = target, 0
		return
	}
	m.barPos, m.barVel = m.spring.Update(m.barPos, m.barVel, target)
	m.barPos = min(max(m.barPos, 0), 1)
}

func (m *Model) send(cmd tasks.Command) {
	if err := m.sender.Send(cmd); err != nil {
		m.logger.Warn("command dropped", "command", cmd, "error", err)
	}
}

// syncLists rebuilds list contents only when the underlying data changed, keeping the cursor otherwise.
func (m *Model) syncLists() {
	if ids := playlistIDs(m.snap.Playlists); !equalIDs(ids, m.listed) {
		m.playlists.SetItems(playlistItems(m.snap.Playlists))
		m.listed = ids
	}

	if sel := m.snap.SelectedPlaylist; sel != nil {
		if sel.ID != m.listedFor || len(m.snap.SelectedPlaylistItems) != m.listedSize {
			m.tracks.SetItems(trackItems(m.snap.SelectedPlaylistItems))
			m.tracks.Title = sel.Name
			m.tracks.Select(0)
			m.listedFor = sel.ID
			m.listedSize = len(m.snap.SelectedPlaylistItems)
		}
	}
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.running = false
		return m, tea.Quit

	case key.Matches(msg, m.keys.focus):
		if m.focus == playlistsPane {
			m.focus = tracksPane
		} else {
			m.focus = playlistsPane
		}
		return m, nil

	case key.Matches(msg, m.keys.enter):
		m.activate()
		return m, nil

	case key.Matches(msg, m.keys.toggle):
		if pb := m.snap.Playback; pb != nil && pb.IsPlaying {
			m.send(tasks.PausePlayback{})
		} else {
			m.send(tasks.ResumePlayback{})
		}
		return m, nil

	case key.Matches(msg, m.keys.refresh):
		m.send(tasks.FetchCurrentPlayback{})
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == playlistsPane {
		m.playlists, cmd = m.playlists.Update(msg)
	} else {
		m.tracks, cmd = m.tracks.Update(msg)
	}
	return m, cmd
}

// activate handles enter on the focused pane.
func (m *Model) activate() {
	switch m.focus {
	case playlistsPane:
		if item, ok := m.playlists.SelectedItem().(playlistItem); ok {
			m.send(tasks.FetchPlaylistItems{PlaylistID: item.playlist.ID})
			m.focus = tracksPane
		}
	case tracksPane:
		if item, ok := m.tracks.SelectedItem().(trackItem); ok {
			m.send(tasks.PushPlayback{TrackID: item.track.ID})
		}
	}
}

// layout sizes the dock: playlists on the left fifth, tracks and properties on the right, playback along the bottom.
func (m *Model) layout() {
	left, right, body := m.dims()
	m.playlists.SetSize(left, body)
	m.tracks.SetSize(right, body-propertiesHeight)
	m.bar.Width = max(m.width-4, 10)
}

const (
	propertiesHeight = 6
	dockHeight       = 6
)

func (m *Model) dims() (left, right, body int) {
	left = max(m.width/5, 20)
	right = max(m.width-left-8, 20)
	body = max(m.height-dockHeight-4, 5)
	return left, right, body
}

// View renders the dock layout.
func (m *Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	left, right, _ := m.dims()

	playlistsStyle, tracksStyle := styles.pane, styles.pane
	if m.focus == playlistsPane {
		playlistsStyle = styles.focused
	} else {
		tracksStyle = styles.focused
	}

	side := playlistsStyle.Width(left).Render(m.playlists.View())
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		tracksStyle.Width(right).Render(m.tracks.View()),
		styles.pane.Width(right).Render(m.renderProperties()),
	)

	top := lipgloss.JoinHorizontal(lipgloss.Top, side, content)
	dock := styles.pane.Width(m.width - 2).Render(m.renderPlayback())

	return lipgloss.JoinVertical(lipgloss.Left, top, dock, styles.help.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
}

func (m *Model) renderProperties() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Properties"))
	b.WriteString("\n")

	if line := m.frame.View.LoggedIn; line != "" {
		b.WriteString(line)
	} else {
		b.WriteString(styles.help.Render("Loading profile..."))
	}
	b.WriteString("\n")

	if sel := m.snap.SelectedPlaylist; sel != nil {
		fmt.Fprintf(&b, "Playlist: %s\n", sel.Name)
		if sel.Owner != "" {
			fmt.Fprintf(&b, "Owner: %s\n", sel.Owner)
		}
		fmt.Fprintf(&b, "Tracks: %d", len(m.snap.SelectedPlaylistItems))
	}
	return b.String()
}

func (m *Model) renderPlayback() string {
	view := m.frame.View

	var b strings.Builder
	switch {
	case m.snap.Playback == nil:
		b.WriteString(styles.help.Render("Nothing playing"))
	case !view.HasItem:
		b.WriteString(styles.help.Render("Nothing loaded on " + view.Device))
	default:
		status := styles.warn.Render("paused")
		if view.Playing {
			status = styles.playing.Render("playing")
		}
		label := view.Creators
		if view.Kind == models.KindEpisode {
			label = "podcast • " + label
		}
		fmt.Fprintf(&b, "%s  %s - %s", status, styles.title.Render(view.Title), label)
		if view.Device != "" {
			fmt.Fprintf(&b, "  [%s]", view.Device)
		}
		b.WriteString("\n")
		b.WriteString(m.bar.ViewAs(m.barPos))
		b.WriteString("\n")
		b.WriteString(view.Elapsed)
	}

	if view.Status != "" {
		b.WriteString("\n")
		b.WriteString(styles.err.Render(view.Status))
	}
	return b.String()
}

func playlistIDs(playlists []models.Playlist) []string {
	if playlists == nil {
		return nil
	}
	ids := make([]string, len(playlists))
	for i, p := range playlists {
		ids[i] = p.ID
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if (a == nil) != (b == nil) || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
