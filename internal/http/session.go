package http

import (
	"net/http"
	"strings"
)

const (
	userCookie  = "spendwise_username"
	themeCookie = "spendwise_theme"

	cookieMaxAge = 30 * 24 * 60 * 60 // 30 days
)

type userHandler func(w http.ResponseWriter, r *http.Request, user string)

// requireUser resolves the session cookie and rejects anonymous requests.
func (s *Server) requireUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(userCookie)
		if err != nil || strings.TrimSpace(c.Value) == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not logged in"})
			return
		}
		next(w, r, c.Value)
	}
}

type loginRequest struct {
	Username string `json:"username"`
}

type sessionResponse struct {
	Username string `json:"username"`
	Theme    string `json:"theme"`
}

// handleLogin sets the session cookie. There is no password: the username is
// the whole identity, which fits a single-household deployment.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "username cannot be empty"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     userCookie,
		Value:    username,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.InfoContext(r.Context(), "User logged in", "user", username)
	writeJSON(w, http.StatusOK, sessionResponse{Username: username, Theme: currentTheme(r)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     userCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(userCookie)
	if err != nil || strings.TrimSpace(c.Value) == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not logged in"})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Username: c.Value, Theme: currentTheme(r)})
}

type themeRequest struct {
	Theme string `json:"theme"`
}

// handleTheme persists the light/dark preference in its own cookie so it
// survives logout.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.Theme != "light" && req.Theme != "dark" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "theme must be 'light' or 'dark'"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    req.Theme,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"theme": req.Theme})
}

func currentTheme(r *http.Request) string {
	if c, err := r.Cookie(themeCookie); err == nil && c.Value == "dark" {
		return "dark"
	}
	return "light"
}
