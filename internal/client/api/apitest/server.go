// Package apitest runs an in-process imitation of the storefront
// authentication API for tests. It keeps accounts and cookie sessions in
// memory and can be told to fail specific endpoints.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SessionCookieName is the cookie the fake server issues on login.
const SessionCookieName = "PHPSESSID"

type Account struct {
	ID          int64
	Username    string
	Password    string
	IsAdmin     bool
	DisplayName string
}

// Fault replaces the normal reply of an endpoint. A zero Status with
// Hijack set closes the connection without answering.
type Fault struct {
	Status int
	Body   string
	Delay  time.Duration
	Hijack bool
}

type Server struct {
	*httptest.Server

	mu         sync.Mutex
	accounts   map[string]Account
	sessions   map[string]string
	faults     map[string]Fault
	calls      map[string]int
	requestIDs []string
	legacyMe   bool
}

// New starts a server knowing the given accounts. It is closed by t.Cleanup
// in callers or by Close.
func New(accounts ...Account) *Server {
	s := &Server{
		accounts: make(map[string]Account),
		sessions: make(map[string]string),
		faults:   make(map[string]Fault),
		calls:    make(map[string]int),
	}
	for _, a := range accounts {
		s.accounts[a.Username] = a
	}

	r := chi.NewRouter()
	r.Use(s.record, s.inject)
	r.Get(common.DefaultMePath, s.handleMe)
	r.Post(common.DefaultLoginPath, s.handleLogin)
	r.Post(common.DefaultLogoutPath, s.handleLogout)

	s.Server = httptest.NewServer(r)
	return s
}

// SetFault makes every request to path answer with f until cleared.
func (s *Server) SetFault(path string, f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[path] = f
}

func (s *Server) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[string]Fault)
}

// SetLegacyMe switches the who-am-I reply to the flat legacy payload.
func (s *Server) SetLegacyMe(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.legacyMe = on
}

// SetDisplayName edits an account, as a profile page would.
func (s *Server) SetDisplayName(username, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accounts[username]
	a.DisplayName = name
	s.accounts[username] = a
}

// StartSession creates a server-side session for username and returns its
// cookie, for tests that begin already logged in.
func (s *Server) StartSession(username string) *http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	sid := uuid.NewString()
	s.sessions[sid] = username
	return &http.Cookie{Name: SessionCookieName, Value: sid, Path: "/"}
}

func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// RequestIDs returns the X-Request-ID values seen so far.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.URL.Path]++
		s.requestIDs = append(s.requestIDs, r.Header.Get(common.RequestIDHeaderName))
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.faults[r.URL.Path]
		s.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		if f.Delay > 0 {
			select {
			case <-time.After(f.Delay):
			case <-r.Context().Done():
				return
			}
		}
		if f.Hijack {
			if hj, ok := w.(http.Hijacker); ok {
				conn, _, err := hj.Hijack()
				if err == nil {
					_ = conn.Close()
				}
			}
			return
		}
		if f.Status == 0 {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.Status)
		_, _ = w.Write([]byte(f.Body))
	})
}

type userJSON struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	IsAdmin     bool   `json:"is_admin"`
	DisplayName string `json:"display_name"`
}

func toJSON(a Account) userJSON {
	return userJSON{ID: a.ID, Username: a.Username, IsAdmin: a.IsAdmin, DisplayName: a.DisplayName}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) current(r *http.Request) (Account, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return Account{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.sessions[c.Value]
	if !ok {
		return Account{}, false
	}
	a, ok := s.accounts[name]
	return a, ok
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	a, ok := s.current(r)

	s.mu.Lock()
	legacy := s.legacyMe
	s.mu.Unlock()

	if legacy {
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"user_id":      a.ID,
			"username":     a.Username,
			"is_admin":     a.IsAdmin,
			"display_name": a.DisplayName,
		})
		return
	}

	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"success": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": toJSON(a)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Malformed request"})
		return
	}

	s.mu.Lock()
	a, ok := s.accounts[req.Username]
	s.mu.Unlock()
	if !ok || a.Password != req.Password {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Invalid credentials"})
		return
	}

	c := s.StartSession(a.Username)
	c.HttpOnly = true
	http.SetCookie(w, c)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": toJSON(a)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookieName); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}
