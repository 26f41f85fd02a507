package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"

	"github.com/stenstromen/healthviz/db"
	"github.com/stenstromen/healthviz/model"
	"github.com/stenstromen/healthviz/session"
)

const (
	msgInvalidLogin = "Invalid username or password. Please try again."
	msgLoggedIn     = "You have successfully logged in!"
	msgRegistered   = "You have successfully registered!"
	msgInvalidOTP   = "Invalid OTP"
)

// handlerFunc receives the session state explicitly.
type handlerFunc func(w http.ResponseWriter, r *http.Request, state model.SessionState)

func (s *Server) requireLogin(next handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := s.sessions.Load(r)
		if !state.LoggedIn {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r, state)
	}
}

func (s *Server) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	if err := s.sessions.AddFlash(w, r, kind, msg); err != nil {
		s.log.Warn(r.Context(), "failed to store flash", "error", err)
	}
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	if s.sessions.Load(r).LoggedIn {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	errs, msgs := s.sessions.PopFlashes(w, r)
	s.render(w, r, http.StatusOK, "login.html", pageData{Title: "Login", Errors: errs, Messages: msgs})
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	username := r.Form.Get("username")
	password := r.Form.Get("password")

	user, ok, err := s.store.Authenticate(r.Context(), username, password)
	if err != nil {
		s.log.Error(r.Context(), "authentication failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !ok {
		s.log.Info(r.Context(), "login rejected", "username", username)
		s.flash(w, r, session.FlashError, msgInvalidLogin)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if s.otp && user.TOTPSecret != "" {
		token := s.pending.add(user.Username, user.TOTPSecret)
		if err := s.sessions.SetPending(w, r, token); err != nil {
			s.log.Error(r.Context(), "failed to save session", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/otp", http.StatusSeeOther)
		return
	}
	if s.otp {
		s.log.Warn(r.Context(), "user has no TOTP secret, password only", "username", username)
	}

	s.completeLogin(w, r, user.Username)
}

func (s *Server) completeLogin(w http.ResponseWriter, r *http.Request, username string) {
	if err := s.sessions.Login(w, r, username); err != nil {
		s.log.Error(r.Context(), "failed to save session", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.log.Info(r.Context(), "user logged in", "username", username)
	s.flash(w, r, session.FlashSuccess, msgLoggedIn)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	jsonReq := isJSON(r)

	var req model.UserRequest
	if jsonReq {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Username = r.Form.Get("username")
		req.Password = r.Form.Get("password")
	}

	err := db.ValidateUsername(req.Username)
	if err == nil && !db.ValidatePassword(req.Password) {
		err = fmt.Errorf("%w: %s", db.ErrValidation, db.PasswordPolicy)
	}
	var user model.Credential
	if err == nil {
		user, err = s.store.Register(r.Context(), req.Username, req.Password)
	}

	switch {
	case errors.Is(err, db.ErrValidation):
		msg := validationMessage(req.Password)
		if jsonReq {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		s.flash(w, r, session.FlashError, msg)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	case err != nil:
		s.log.Error(r.Context(), "registration failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.log.Info(r.Context(), "user registered", "username", user.Username, "otp", user.TOTPSecret != "")

	if jsonReq {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.UserResponse{Username: user.Username, TOTPSecret: user.TOTPSecret})
		return
	}

	if user.TOTPSecret != "" {
		s.render(w, r, http.StatusOK, "login.html", pageData{
			Title:      "Login",
			Messages:   []string{msgRegistered},
			TOTPSecret: user.TOTPSecret,
			OTPAuthURL: otpAuthURL(user.Username, user.TOTPSecret),
		})
		return
	}
	s.flash(w, r, session.FlashSuccess, msgRegistered)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func validationMessage(password string) string {
	if !db.ValidatePassword(password) {
		return db.PasswordPolicy
	}
	return "Username must not be empty or contain commas or line breaks."
}

func otpAuthURL(username, secret string) string {
	u := url.URL{
		Scheme: "otpauth",
		Host:   "totp",
		Path:   "/" + db.Issuer + ":" + username,
	}
	q := url.Values{}
	q.Set("secret", secret)
	q.Set("issuer", db.Issuer)
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Server) otpPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.pending.get(s.sessions.Pending(r)); !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	errs, msgs := s.sessions.PopFlashes(w, r)
	s.render(w, r, http.StatusOK, "otp.html", pageData{Title: "Enter OTP", Errors: errs, Messages: msgs})
}

func (s *Server) verifyOTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	code := r.Form.Get("otp")
	if code == "" {
		http.Error(w, "OTP is required", http.StatusBadRequest)
		return
	}

	token := s.sessions.Pending(r)
	p, ok := s.pending.get(token)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if !db.VerifyOTP(code, p.secret) {
		s.log.Info(r.Context(), "otp rejected", "username", p.username)
		s.flash(w, r, session.FlashError, msgInvalidOTP)
		http.Redirect(w, r, "/otp", http.StatusSeeOther)
		return
	}

	s.pending.remove(token)
	s.completeLogin(w, r, p.username)
}
