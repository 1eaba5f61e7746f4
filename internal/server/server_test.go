package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/fretmastery/internal/assets"
	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/services"
	"github.com/desertthunder/fretmastery/internal/shared"
	tu "github.com/desertthunder/fretmastery/internal/testing"
)

type testServer struct {
	t     *testing.T
	srv   *Server
	svc   *services.Services
	admin string
	user  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := tu.NewTestConfig(t)
	cfg.Server.AuthRateLimit = 1000
	cfg.Server.AuthRateBurst = 1000
	db := tu.NewTestDB(t)
	store := assets.NewFileStore(cfg.Diagram.Dir, cfg.Diagram.URLPrefix)
	svc := services.New(services.Options{Config: cfg, DB: db, Store: store, Cache: assets.NewMemoryCache()})

	ctx := context.Background()
	admin, err := svc.Users.Register(ctx, services.RegisterInput{Username: "instructor", Email: "instructor@example.com", Password: "password123"}, true)
	require.NoError(t, err)
	adminToken, err := svc.Users.IssueToken(admin)
	require.NoError(t, err)

	ts := &testServer{
		t:     t,
		srv:   New(Options{Config: cfg, Services: svc, Store: store, DB: db}),
		svc:   svc,
		admin: adminToken.Value,
	}

	var auth authResponse
	rec := ts.do(http.MethodPost, "/auth/register", "", map[string]string{
		"username": "student", "email": "student@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &auth))
	ts.user = auth.Token.Value
	return ts
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (ts *testServer) createExercise(title, noteRange string) *models.Exercise {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/exercises", ts.admin, services.ExerciseInput{Title: title, NoteRange: noteRange, MusicalConcept: "Scales"})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[*models.Exercise](ts.t, rec)
}

func TestAuthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	t.Run("login", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/auth/login", "", loginRequest{Login: "student", Password: "password123"})
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[authResponse](t, rec)
		assert.Equal(t, "student", resp.User.Username)
		assert.NotEmpty(t, resp.Token.Value)
		assert.NotContains(t, rec.Body.String(), "password_hash")
	})

	t.Run("bad credentials", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/auth/login", "", loginRequest{Login: "student", Password: "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid registration", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/auth/register", "", map[string]string{"username": "x", "email": "bad", "password": "short"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[errorBody](t, rec)
		assert.Len(t, body.Fields, 3)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		ts.srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("password change needs a token", func(t *testing.T) {
		in := services.PasswordInput{Current: "password123", New: "new-password-1"}
		assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodPost, "/auth/password", "", in).Code)
		assert.Equal(t, http.StatusNoContent, ts.do(http.MethodPost, "/auth/password", ts.user, in).Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/sessions", "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	})
}

func TestExerciseEndpoints(t *testing.T) {
	ts := newTestServer(t)
	e := ts.createExercise("Low E Major", "E2-A2")
	ts.createExercise("Octave Run", "C3-C4")

	t.Run("create requires admin", func(t *testing.T) {
		in := services.ExerciseInput{Title: "Nope", NoteRange: "E2-A2"}
		assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodPost, "/exercises", "", in).Code)
		assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPost, "/exercises", ts.user, in).Code)
	})

	t.Run("invalid range", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/exercises", ts.admin, services.ExerciseInput{Title: "Bad", NoteRange: "E4-E2"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "note_range")
	})

	t.Run("get and diagram", func(t *testing.T) {
		rec := ts.do(http.MethodGet, fmt.Sprintf("/exercises/%d", e.ID), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[models.ExerciseWithRating](t, rec)
		assert.Equal(t, "Low E Major", got.Title)
		assert.Nil(t, got.AvgRating)

		rec = ts.do(http.MethodGet, got.DiagramPath, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "<svg")
	})

	t.Run("missing", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/exercises/999", "", nil).Code)
		assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/exercises/abc", "", nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/static/diagrams/nope.svg", "", nil).Code)
	})

	t.Run("search", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/exercises?contains=G2", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[[]models.ExerciseWithRating](t, rec)
		require.Len(t, got, 1)
		assert.Equal(t, e.ID, got[0].ID)

		rec = ts.do(http.MethodGet, "/exercises?q=run", "", nil)
		assert.Len(t, decode[[]models.ExerciseWithRating](t, rec), 1)

		assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/exercises?contains=H9", "", nil).Code)
		assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/exercises?min_rating=high", "", nil).Code)
	})

	t.Run("concepts", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/exercises/concepts", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"Scales"}, decode[[]string](t, rec))
	})

	t.Run("update and delete", func(t *testing.T) {
		x := ts.createExercise("Temporary", "A2-D3")

		rec := ts.do(http.MethodPut, fmt.Sprintf("/exercises/%d", x.ID), ts.admin, services.ExerciseInput{Title: "Temporary", NoteRange: "A3-D4"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		updated := decode[*models.Exercise](t, rec)
		assert.Equal(t, "A3-D4", updated.NoteRange)
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, x.DiagramPath, "", nil).Code)
		assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, updated.DiagramPath, "", nil).Code)

		assert.Equal(t, http.StatusForbidden, ts.do(http.MethodDelete, fmt.Sprintf("/exercises/%d", x.ID), ts.user, nil).Code)
		assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, fmt.Sprintf("/exercises/%d", x.ID), ts.admin, nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, updated.DiagramPath, "", nil).Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		assert.Equal(t, http.StatusMethodNotAllowed, ts.do(http.MethodPatch, "/exercises", ts.admin, nil).Code)
	})
}

func TestSessionEndpoints(t *testing.T) {
	ts := newTestServer(t)
	e := ts.createExercise("Low E Major", "E2-A2")

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/sessions", "", nil).Code)

	rec := ts.do(http.MethodPost, "/sessions", ts.user, services.SessionInput{ExerciseID: e.ID, DifficultyRating: 4, PracticeDate: "2024-02-01"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	session := decode[models.PracticeSession](t, rec)

	rec = ts.do(http.MethodPost, "/sessions", ts.user, services.SessionInput{ExerciseID: e.ID, DifficultyRating: 6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(http.MethodPost, "/sessions", ts.user, services.SessionInput{ExerciseID: 999, DifficultyRating: 3})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodGet, "/sessions", ts.user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	log := decode[[]models.SessionWithExercise](t, rec)
	require.Len(t, log, 1)
	assert.Equal(t, "Low E Major", log[0].ExerciseTitle)

	rec = ts.do(http.MethodGet, fmt.Sprintf("/exercises/%d", e.ID), "", nil)
	got := decode[models.ExerciseWithRating](t, rec)
	require.NotNil(t, got.AvgRating)
	assert.InDelta(t, 4.0, *got.AvgRating, 1e-9)

	path := fmt.Sprintf("/sessions/%d", session.ID)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPut, path, ts.admin, services.SessionInput{DifficultyRating: 1}).Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodPut, path, ts.user, services.SessionInput{DifficultyRating: 2}).Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, path, ts.user, nil).Code)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, path, ts.user, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, path, ts.user, nil).Code)
}

func TestFretboardEndpoints(t *testing.T) {
	ts := newTestServer(t)

	t.Run("positions", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/fretboard?range=E2-A2", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[fretboardResponse](t, rec)
		assert.Len(t, resp.Positions, 7)
		assert.Equal(t, "E2", resp.Positions[0].Note)
		assert.Equal(t, 40, resp.Positions[0].Pitch)
	})

	t.Run("bad ranges", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/fretboard?range=E4-E2", "", nil).Code)
		assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/fretboard?range=nope", "", nil).Code)
		assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/fretboard.svg?range=C0-E2", "", nil).Code)
	})

	t.Run("svg is cached", func(t *testing.T) {
		first := ts.do(http.MethodGet, "/fretboard.svg?range=E2-E4", "", nil)
		require.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
		assert.Equal(t, "image/svg+xml", first.Header().Get("Content-Type"))

		second := ts.do(http.MethodGet, "/fretboard.svg?range=E2-E4", "", nil)
		assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
		assert.Equal(t, first.Body.String(), second.Body.String())
	})

	t.Run("health", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	})
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{shared.NewValidationError("exercise", "title", "title is required"), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", shared.ErrParse), http.StatusBadRequest},
		{shared.ErrRange, http.StatusBadRequest},
		{shared.NewNotFoundError("exercise", 1), http.StatusNotFound},
		{shared.ErrForbidden, http.StatusForbidden},
		{shared.ErrTokenExpired, http.StatusUnauthorized},
		{shared.ErrAuthFailed, http.StatusUnauthorized},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusOf(tt.err), tt.err.Error())
	}
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("rate limit", func(t *testing.T) {
		h := NewRateLimiter(0.001, 2).Middleware()(ok)
		codes := []int{}
		for range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
			codes = append(codes, rec.Code)
		}
		assert.Equal(t, []int{200, 200, 429}, codes)
	})

	t.Run("idle clients are swept", func(t *testing.T) {
		clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		l := NewRateLimiter(1, 1)
		l.now = func() time.Time { return clock }
		l.lastSweep = clock

		assert.True(t, l.Allow("10.0.0.1"))
		assert.True(t, l.Allow("10.0.0.2"))
		assert.Equal(t, 2, l.Len())

		clock = clock.Add(VisitorTTL / 2)
		assert.True(t, l.Allow("10.0.0.2"))
		assert.Equal(t, 2, l.Len())

		clock = clock.Add(VisitorTTL / 2)
		assert.True(t, l.Allow("10.0.0.3"))
		assert.Equal(t, 2, l.Len(), "10.0.0.1 should have been dropped")

		clock = clock.Add(2 * VisitorTTL)
		assert.True(t, l.Allow("10.0.0.4"))
		assert.Equal(t, 1, l.Len())
	})

	t.Run("request id is kept", func(t *testing.T) {
		h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "abc", RequestIDFrom(r.Context()))
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
	})

	t.Run("recover", func(t *testing.T) {
		h := Recover(shared.NewLogger(&bytes.Buffer{}))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
