package auth

import "net/http"

// ActorHeader carries the performer id the identity layer resolved upstream.
// The core treats it as an opaque string and records it in the event log.
const ActorHeader = "X-Actor"

func Actor(r *http.Request) string {
	return r.Header.Get(ActorHeader)
}
