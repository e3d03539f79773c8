// Package state holds the application state shared between the refresh worker and the render loop.
//
// # Store
//
// [Store] owns the UI-facing fields (profile, playback, playlists and the selected playlist with its items).
// It is written by a single executor and read every frame by the render loop:
//
//	Worker:                         Render loop:
//	  v, err := remote.Fetch(ctx)     snap := store.Snapshot()
//	  if err == nil {                 frame := ui.Frame(...)
//	      store.CommitX(v)
//	  }
//
// Commit methods only take values that were already fetched. None of them accept a context or perform I/O,
// so the lock is never held across a network call.
//
// Each commit replaces exactly one field (the selected playlist and its items count as one) with a deep copy.
// A failed fetch skips the commit and the previous value, or its absence, stays in place.
// [Store.RecordError] keeps the most recent failure for display without touching any data field.
//
// # IoState
//
// [IoState] tracks when the playback field was last refreshed. It has its own lock so that poller bookkeeping
// never contends with per-frame reads of the [Store].
//
// Both types are ready to use as zero values.
package state
