// Package session keeps the per-browser login state in a signed cookie and
// exposes it as an explicit model.SessionState.
package session

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/stenstromen/healthviz/model"
)

const (
	Name = "healthviz-session"

	keyLoggedIn = "logged_in"
	keyUsername = "username"
	keyPending  = "pending_login"
)

type Manager struct {
	store *sessions.CookieStore
}

func NewManager(secret []byte) *Manager {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store}
}

// get never fails: a cookie that does not decode yields a fresh session.
func (m *Manager) get(r *http.Request) *sessions.Session {
	s, _ := m.store.Get(r, Name)
	return s
}

// Load returns the request's state, {false, ""} when nothing is stored yet.
func (m *Manager) Load(r *http.Request) model.SessionState {
	s := m.get(r)

	state := model.SessionState{}
	if v, ok := s.Values[keyLoggedIn].(bool); ok {
		state.LoggedIn = v
	}
	if v, ok := s.Values[keyUsername].(string); ok {
		state.Username = v
	}
	return state
}

// Login moves the session to the logged-in state.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, username string) error {
	s := m.get(r)
	s.Values[keyLoggedIn] = true
	s.Values[keyUsername] = username
	delete(s.Values, keyPending)
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// SetPending stores the token of a login that passed the password check and
// still owes a one-time code.
func (m *Manager) SetPending(w http.ResponseWriter, r *http.Request, token string) error {
	s := m.get(r)
	s.Values[keyPending] = token
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (m *Manager) Pending(r *http.Request) string {
	v, _ := m.get(r).Values[keyPending].(string)
	return v
}

const (
	FlashError   = "error"
	FlashSuccess = "success"
)

// AddFlash queues msg under kind (FlashError or FlashSuccess) for the next page.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, kind, msg string) error {
	s := m.get(r)
	s.AddFlash(msg, kind)
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// PopFlashes returns and clears the queued messages.
func (m *Manager) PopFlashes(w http.ResponseWriter, r *http.Request) (errs, msgs []string) {
	s := m.get(r)
	errs = toStrings(s.Flashes(FlashError))
	msgs = toStrings(s.Flashes(FlashSuccess))
	if len(errs) > 0 || len(msgs) > 0 {
		_ = s.Save(r, w)
	}
	return errs, msgs
}

func toStrings(raw []interface{}) []string {
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			out = append(out, msg)
		}
	}
	return out
}
