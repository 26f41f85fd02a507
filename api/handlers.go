package api

import (
	"net/http"

	"github.com/stenstromen/healthviz/db"
	"github.com/stenstromen/healthviz/logging"
	"github.com/stenstromen/healthviz/session"
)

const appTitle = "Health Visualizer"

type Server struct {
	store    db.Store
	sessions *session.Manager
	dataDir  string
	otp      bool
	log      logging.Logger
	pending  *pendingLogins
}

func NewServer(store db.Store, sessions *session.Manager, dataDir string, otp bool, log logging.Logger) *Server {
	return &Server{
		store:    store,
		sessions: sessions,
		dataDir:  dataDir,
		otp:      otp,
		log:      log,
		pending:  newPendingLogins(pendingTTL),
	}
}

func Handlers(s *Server) http.Handler {

	r := http.NewServeMux()

	r.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		if s.sessions.Load(r).LoggedIn {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})

	r.HandleFunc("GET /login", s.loginPage)
	r.HandleFunc("POST /auth", s.authenticate)
	r.HandleFunc("POST /register", s.register)
	r.HandleFunc("GET /otp", s.otpPage)
	r.HandleFunc("POST /verify-otp", s.verifyOTP)

	r.HandleFunc("GET /dashboard", s.requireLogin(s.dashboard))
	r.HandleFunc("GET /plot.png", s.requireLogin(s.plotImage))

	r.HandleFunc("GET /validate", func(w http.ResponseWriter, r *http.Request) {
		if !s.sessions.Load(r).LoggedIn {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	return requestLogger(s.log, r)
}
