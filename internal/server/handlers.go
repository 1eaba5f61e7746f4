package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/fretmastery/internal/assets"
	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/services"
	"github.com/desertthunder/fretmastery/internal/shared"
)

// API holds what the resource handlers share.
type API struct {
	svc    *services.Services
	store  *assets.FileStore
	db     Pinger
	logger *log.Logger
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, err, a.logger)
}

type authResponse struct {
	User  *models.User   `json:"user"`
	Token services.Token `json:"token"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// AuthHandler serves registration, login and password changes.
type AuthHandler struct {
	api   *API
	limit Middleware
}

func (h *AuthHandler) Routes() []Route {
	limited := []Middleware{}
	if h.limit != nil {
		limited = append(limited, h.limit)
	}
	return []Route{
		{Method: http.MethodPost, Path: "/auth/register", Handler: h.register, Middleware: limited},
		{Method: http.MethodPost, Path: "/auth/login", Handler: h.login, Middleware: limited},
		{Method: http.MethodPost, Path: "/auth/password", Handler: h.password, Middleware: limited},
	}
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		h.api.fail(w, r, err)
		return
	}

	user, err := h.api.svc.Users.Register(r.Context(), in, false)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}

	token, err := h.api.svc.Users.IssueToken(user)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(r, &in); err != nil {
		h.api.fail(w, r, err)
		return
	}

	user, token, err := h.api.svc.Users.Login(r.Context(), in.Login, in.Password)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (h *AuthHandler) password(w http.ResponseWriter, r *http.Request) {
	var in services.PasswordInput
	if err := decodeJSON(r, &in); err != nil {
		h.api.fail(w, r, err)
		return
	}

	if err := h.api.svc.Users.ChangePassword(r.Context(), PrincipalFrom(r.Context()), in); err != nil {
		h.api.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExerciseHandler serves the public library and admin authoring.
type ExerciseHandler struct {
	api *API
}

func (h *ExerciseHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/exercises", Handler: h.search},
		{Method: http.MethodGet, Path: "/exercises/concepts", Handler: h.concepts},
		{Method: http.MethodGet, Path: "/exercises/{id}", Handler: h.get},
		{Method: http.MethodPost, Path: "/exercises", Handler: h.create},
		{Method: http.MethodPut, Path: "/exercises/{id}", Handler: h.update},
		{Method: http.MethodDelete, Path: "/exercises/{id}", Handler: h.delete},
	}
}

// search reads q, concept, contains, min_rating, created_by and limit.
func (h *ExerciseHandler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ExerciseFilter{
		Query:             q.Get("q"),
		Concept:           q.Get("concept"),
		NoteRangeContains: q.Get("contains"),
	}

	if raw := q.Get("min_rating"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.api.fail(w, r, fmt.Errorf("%w: min_rating must be a number", shared.ErrInvalidArgument))
			return
		}
		filter.MinAvgRating = &v
	}
	if raw := q.Get("created_by"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.api.fail(w, r, fmt.Errorf("%w: created_by must be an id", shared.ErrInvalidArgument))
			return
		}
		filter.CreatedBy = v
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		h.api.fail(w, r, err)
		return
	}
	filter.Limit = limit

	exercises, err := h.api.svc.Exercises.Search(r.Context(), filter)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}
	if exercises == nil {
		exercises = []*models.ExerciseWithRating{}
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (h *ExerciseHandler) concepts(w http.ResponseWriter, r *http.Request) {
	concepts, err := h.api.svc.Exercises.Concepts(r.Context())
	if err != nil {
		h.api.fail(w, r, err)
		return
	}
	if concepts == nil {
		concepts = []string{}
	}
	writeJSON(w, http.StatusOK, concepts)
}

func (h *ExerciseHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}

	exercise, err := h.api.svc.Exercises.Get(r.Context(), id)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exercise)
}

func (h *ExerciseHandler) create(w http.ResponseWriter, r *http.Request) {
	var in services.ExerciseInput
	if err := decodeJSON(r, &in); err != nil {
		h.api.fail(w, r, err)
		return
	}

	exercise, err := h.api.svc.Exercises.Create(r.Context(), PrincipalFrom(r.Context()), in)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/exercises/%d", exercise.ID))
	writeJSON(w, http.StatusCreated, exercise)
}

func (h *ExerciseHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}

	var in services.ExerciseInput
	if err := decodeJSON(r, &in); err != nil {
		h.api.fail(w, r, err)
		return
	}

	exercise, err := h.api.svc.Exercises.Update(r.Context(), PrincipalFrom(r.Context()), id, in)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exercise)
}

func (h *ExerciseHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}

	if err := h.api.svc.Exercises.Delete(r.Context(), PrincipalFrom(r.Context()), id); err != nil {
		h.api.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SessionHandler serves the signed-in user's practice log.
type SessionHandler struct {
	api *API
}

func (h *SessionHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/sessions", Handler: h.list},
		{Method: http.MethodPost, Path: "/sessions", Handler: h.create},
		{Method: http.MethodGet, Path: "/sessions/{id}", Handler: h.get},
		{Method: http.MethodPut, Path: "/sessions/{id}", Handler: h.update},
		{Method: http.MethodDelete, Path: "/sessions/{id}", Handler: h.delete},
	}
}

func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.api.fail(w, r, err)
		return
	}

	sessions, err := h.api.svc.Sessions.Log(r.Context(), PrincipalFrom(r.Context()), limit)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []*models.SessionWithExercise{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	var in services.SessionInput
	if err := decodeJSON(r, &in); err != nil {
		h.api.fail(w, r, err)
		return
	}

	session, err := h.api.svc.Sessions.Record(r.Context(), PrincipalFrom(r.Context()), in)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/sessions/%d", session.ID))
	writeJSON(w, http.StatusCreated, session)
}

func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}

	session, err := h.api.svc.Sessions.Get(r.Context(), PrincipalFrom(r.Context()), id)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}

	var in services.SessionInput
	if err := decodeJSON(r, &in); err != nil {
		h.api.fail(w, r, err)
		return
	}

	session, err := h.api.svc.Sessions.Update(r.Context(), PrincipalFrom(r.Context()), id, in)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}

	if err := h.api.svc.Sessions.Delete(r.Context(), PrincipalFrom(r.Context()), id); err != nil {
		h.api.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
