package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/campus-hub/campus-presence/internal/application/command"
	"github.com/campus-hub/campus-presence/internal/application/query"
	"github.com/campus-hub/campus-presence/internal/domain/presence"
	"github.com/campus-hub/campus-presence/internal/domain/session"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case shared.IsInvalidArgument(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, shared.ErrAlreadyExists):
		writeJSONError(w, http.StatusConflict, "already_exists", err.Error())
	case shared.IsConcurrencyConflict(err):
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())
	case shared.IsUnauthorized(err):
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

// parseKind maps the {kind} path segment to a person kind.
func parseKind(r *http.Request) (presence.Kind, bool) {
	switch r.PathValue("kind") {
	case "students":
		return presence.KindStudent, true
	case "employees":
		return presence.KindEmployee, true
	default:
		return "", false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION AUTHENTICATION
// ══════════════════════════════════════════════════════════════════════════════

// sessionToken extracts the raw session token from the cookie or the
// Authorization header.
func (s *Server) sessionToken(r *http.Request) string {
	if c, err := r.Cookie(s.config.SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

// requireSession wraps a handler with session authentication. The validated
// session lands in the request context; the cookie expiry tracks the
// session's sliding expiry.
func (s *Server) requireSession(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.sessionToken(r)
		if token == "" {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}

		sess, err := s.deps.ValidateSession.Handle(r.Context(), query.ValidateSessionQuery{Token: token})
		if err != nil {
			if shared.IsNotFound(err) || shared.IsUnauthorized(err) {
				s.clearSessionCookie(w)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}
			writeError(w, err)
			return
		}

		s.setSessionCookie(w, token, sess.ExpiresAt)

		ctx := context.WithValue(r.Context(), contextKeySession, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionFromContext returns the validated session for this request.
func sessionFromContext(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(contextKeySession).(session.Session)
	return sess, ok
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": s.Uptime().String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(s.deps.HealthCheckers))
	healthy := true

	for name, check := range s.deps.HealthCheckers {
		if err := check(r.Context()); err != nil {
			checks[name] = err.Error()
			healthy = false
			continue
		}
		checks[name] = "ok"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]interface{}{
		"ready":  healthy,
		"checks": checks,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION
// ══════════════════════════════════════════════════════════════════════════════

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Username  string    `json:"username"`
	Building  string    `json:"building"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "malformed JSON body")
		return
	}

	result, err := s.deps.Login.Handle(r.Context(), command.LoginCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	s.setSessionCookie(w, result.Token, result.Session.ExpiresAt)
	writeJSON(w, http.StatusOK, sessionResponse{
		Username:  result.Session.Username,
		Building:  result.Session.Building,
		ExpiresAt: result.Session.ExpiresAt,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := s.sessionToken(r)

	if err := s.deps.Logout.Handle(r.Context(), command.LogoutCommand{Token: token}); err != nil {
		writeError(w, err)
		return
	}

	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"loggedOut": true})
}

func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Username:  sess.Username,
		Building:  sess.Building,
		ExpiresAt: sess.ExpiresAt,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// DIRECTORY & PRESENCE
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleListPersons(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(r)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "unknown directory")
		return
	}

	result, err := s.deps.ListPersons.Handle(r.Context(), query.ListPersonsQuery{
		Kind:   kind,
		Query:  r.URL.Query().Get("q"),
		Limit:  getQueryParamInt(r, "limit", s.deps.DefaultPageSize),
		Offset: getQueryParamInt(r, "offset", 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type registerPersonRequest struct {
	Identifier string `json:"identifier"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Department string `json:"department"`
}

func (s *Server) handleRegisterPerson(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(r)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "unknown directory")
		return
	}

	sess, _ := sessionFromContext(r.Context())

	var req registerPersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "malformed JSON body")
		return
	}

	result, err := s.deps.RegisterPerson.Handle(r.Context(), command.RegisterPersonCommand{
		Kind:       kind,
		Identifier: req.Identifier,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Department: req.Department,
		Building:   sess.Building,
		Operator:   sess.Username,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         result.Person.ID,
		"identifier": result.Person.Identifier,
		"firstName":  result.Person.FirstName,
		"lastName":   result.Person.LastName,
		"department": result.Person.Department,
		"isInside":   result.State == presence.StateInside,
	})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(r)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "unknown directory")
		return
	}

	sess, _ := sessionFromContext(r.Context())

	result, err := s.deps.TogglePresence.Handle(r.Context(), command.TogglePresenceCommand{
		Kind:     kind,
		PersonID: r.PathValue("id"),
		Building: sess.Building,
		Operator: sess.Username,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       result.PersonID,
		"isInside": result.State == presence.StateInside,
	})
}

func (s *Server) handleOccupancy(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(r)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "unknown directory")
		return
	}

	result, err := s.deps.Occupancy.Handle(r.Context(), query.OccupancyQuery{Kind: kind})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// BUILDINGS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleListBuildings(w http.ResponseWriter, r *http.Request) {
	buildings, err := s.deps.ListBuildings.Handle(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	names := make([]string, len(buildings))
	for i, b := range buildings {
		names[i] = b.Name
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"buildings": names})
}

type registerBuildingRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleRegisterBuilding(w http.ResponseWriter, r *http.Request) {
	var req registerBuildingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "malformed JSON body")
		return
	}

	b, err := s.deps.RegisterBuilding.Handle(r.Context(), command.RegisterBuildingCommand{Name: req.Name})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"name": b.Name})
}
