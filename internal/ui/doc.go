// Package ui renders playback state in the terminal with bubbletea.
//
// [Frame] is the per-frame adapter: a pure function from a [state.Snapshot], the last playback fetch time
// and the current time to a [Presentation] plus the commands to enqueue. On the first frame it returns the
// bootstrap batch (profile, playlists, playback).
//
// While playing, the displayed position is extrapolated as progress + (now - last fetch) and clamped to the
// item's duration. Paused items show the stored progress unchanged.
//
// [Model] hosts the adapter. It ticks every [FrameInterval], reads the store once per frame and turns key
// presses into commands:
//   - enter on a playlist loads its tracks, enter on a track plays it
//   - space toggles play/pause, r refreshes playback
//   - q clears the running flag and quits
//
// The layout is a dock: playlists on the left, tracks and properties on the right, the playback bar along the bottom.
package ui
