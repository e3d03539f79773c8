package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/imspotify/internal/shared"
)

func TestQueue(t *testing.T) {
	t.Run("FIFO", func(t *testing.T) {
		q := NewQueue()
		sent := []Command{FetchProfile{}, FetchPlaylistItems{PlaylistID: "p1"}, PushPlayback{TrackID: "t1"}, PausePlayback{}}

		if err := q.SendAll(sent...); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if q.Len() != len(sent) {
			t.Errorf("expected %d queued, got %d", len(sent), q.Len())
		}

		for i, want := range sent {
			got, err := q.Receive(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != want {
				t.Errorf("position %d: expected %v, got %v", i, want, got)
			}
		}
	})

	t.Run("TryReceive Empty", func(t *testing.T) {
		q := NewQueue()
		if _, ok := q.TryReceive(); ok {
			t.Error("expected empty queue")
		}
	})

	t.Run("Send Nil", func(t *testing.T) {
		q := NewQueue()
		if err := q.Send(nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Send After Close", func(t *testing.T) {
		q := NewQueue()
		q.Close()
		q.Close()

		if err := q.Send(FetchProfile{}); !errors.Is(err, shared.ErrQueueClosed) {
			t.Errorf("expected ErrQueueClosed, got %v", err)
		}

		if !q.Closed() {
			t.Error("expected queue to report closed")
		}
	})

	t.Run("Drains Before Closed", func(t *testing.T) {
		q := NewQueue()
		_ = q.Send(FetchProfile{})
		_ = q.Send(FetchPlaylists{})
		q.Close()

		for range 2 {
			if _, err := q.Receive(context.Background()); err != nil {
				t.Fatalf("expected queued command, got %v", err)
			}
		}

		if _, err := q.Receive(context.Background()); !errors.Is(err, shared.ErrQueueClosed) {
			t.Errorf("expected ErrQueueClosed, got %v", err)
		}
	})

	t.Run("Receive Waits For Send", func(t *testing.T) {
		q := NewQueue()
		got := make(chan Command, 1)

		go func() {
			cmd, err := q.Receive(context.Background())
			if err == nil {
				got <- cmd
			}
		}()

		time.Sleep(10 * time.Millisecond)
		_ = q.Send(FetchCurrentPlayback{})

		select {
		case cmd := <-got:
			if _, ok := cmd.(FetchCurrentPlayback); !ok {
				t.Errorf("unexpected command %v", cmd)
			}
		case <-time.After(time.Second):
			t.Fatal("receive did not wake up")
		}
	})

	t.Run("Receive Honors Context", func(t *testing.T) {
		q := NewQueue()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		if _, err := q.Receive(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})

	t.Run("Close Wakes Receiver", func(t *testing.T) {
		q := NewQueue()
		errc := make(chan error, 1)

		go func() {
			_, err := q.Receive(context.Background())
			errc <- err
		}()

		time.Sleep(10 * time.Millisecond)
		q.Close()

		select {
		case err := <-errc:
			if !errors.Is(err, shared.ErrQueueClosed) {
				t.Errorf("expected ErrQueueClosed, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("close did not wake receiver")
		}
	})

	t.Run("Concurrent Senders Keep Per-Sender Order", func(t *testing.T) {
		q := NewQueue()
		var wg sync.WaitGroup

		for s := range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range 50 {
					_ = q.Send(PushPlayback{TrackID: string(rune('a'+s)) + string(rune('0'+i%10))})
				}
			}()
		}
		wg.Wait()

		if q.Len() != 200 {
			t.Fatalf("expected 200 queued, got %d", q.Len())
		}

		last := map[byte]int{}
		seen := map[byte]int{}
		for range 200 {
			cmd, _ := q.TryReceive()
			id := cmd.(PushPlayback).TrackID
			sender := id[0]
			seen[sender]++
			last[sender] = int(id[1] - '0')
			if want := (seen[sender] - 1) % 10; last[sender] != want {
				t.Fatalf("sender %c out of order: expected %d, got %d", sender, want, last[sender])
			}
		}
	})
}

func TestCommand(t *testing.T) {
	t.Run("Bootstrap", func(t *testing.T) {
		cmds := Bootstrap()
		want := []string{"fetch_profile", "fetch_playlists", "fetch_current_playback"}

		if len(cmds) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(cmds))
		}

		for i, cmd := range cmds {
			if cmd.String() != want[i] {
				t.Errorf("position %d: expected %s, got %s", i, want[i], cmd)
			}
		}
	})

	t.Run("Mutates", func(t *testing.T) {
		tests := []struct {
			cmd  Command
			want bool
		}{
			{FetchProfile{}, false},
			{FetchPlaylists{}, false},
			{FetchPlaylistItems{PlaylistID: "p"}, false},
			{FetchCurrentPlayback{}, false},
			{PushPlayback{TrackID: "t"}, true},
			{ResumePlayback{}, true},
			{PausePlayback{}, true},
		}

		for _, tt := range tests {
			t.Run(tt.cmd.String(), func(t *testing.T) {
				if got := mutates(tt.cmd); got != tt.want {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
			})
		}
	})
}
