// Package models defines the account and playback entities shared by the Remote Client, the state store, and the UI.
//
// The package contains two categories of types:
//
// 1. Library entities: values read from the user's account
//   - [Account] : The authenticated user's profile
//   - [Playlist] : Playlist metadata
//   - [Track] : Song metadata with duration and artists
//   - [Episode] : Podcast episode metadata
//
// 2. Playback entities: point-in-time records of the remote player
//   - [PlayableItem] : Either a [Track] or an [Episode]
//   - [PlaybackSnapshot] : What is playing, how far into it, and whether it is running
//
// All types are plain values. Slices returned from the store are copies, so callers may keep them across frames.
package models
