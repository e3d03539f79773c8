// Package server runs the short-lived HTTP listener used by `imspotify auth`.
//
// [BasicRouter] wraps [http.ServeMux] with method filtering and a [Middleware] stack
// (last added executes first). [OAuthHandler] serves the redirect URI: it checks the state
// parameter, exchanges the authorization code for a token and publishes exactly one [OAuthResult].
// Later callbacks are rejected.
//
// [Serve] binds the listener and shuts the server down when its context ends.
package server
