// Package tasks moves commands from the render loop to the remote service and keeps playback state fresh.
//
// # Commands
//
// [Command] is a closed set of value types: [FetchProfile], [FetchPlaylists], [FetchPlaylistItems],
// [FetchCurrentPlayback], [PushPlayback], [ResumePlayback] and [PausePlayback].
//
// # Queue
//
// [Queue] is an unbounded FIFO with many senders and a single receiver. Send never blocks,
// so the render loop can post commands every frame without stalling. It is the only path from
// the render loop to anything that touches the network.
//
// # Worker
//
// [Worker] runs one executor goroutine with two duties:
//
//  1. Command execution: pop a command, call the [services.RemoteClient], commit the result into the [state.Store].
//     Player mutations (push, resume, pause) are followed by a playback refresh.
//  2. Playback polling: sleep until last_playback_fetch + interval (absolute deadline), then refresh playback
//     through the same commit path. A manual refresh moves the deadline forward.
//
// Failures are handed to an [ErrorSink] and the loop continues.
//
// # Lifecycle
//
//	Idle ──Start──▶ Running ──Shutdown/ctx──▶ Draining ──queue empty──▶ Stopped
//
// Closing the queue wakes a sleeping poller; queued commands are drained before the executor returns
// and no further polls are issued.
package tasks
