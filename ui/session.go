package ui

import (
	"net/http"

	"amaa/domain/core"
	"amaa/internal/session"
)

const sessionCookie = "amaa_session"

// currentSession resolves the request's session, minting a fresh one (seeded
// with the demo dataset) when the cookie is absent, malformed, or expired.
func (a *App) currentSession(w http.ResponseWriter, r *http.Request) *session.State {
	var id core.SessionID
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if parsed, err := core.ParseSessionID(cookie.Value); err == nil {
			id = parsed
		}
	}

	state := a.registry.GetOrCreate(id)
	if state.ID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    state.ID.String(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return state
}
