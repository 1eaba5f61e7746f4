package server

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/desertthunder/fretmastery/internal/diagram"
)

type positionJSON struct {
	String int    `json:"string"`
	Fret   int    `json:"fret"`
	Pitch  int    `json:"pitch"`
	Note   string `json:"note"`
}

type fretboardResponse struct {
	Range     string         `json:"range"`
	Tuning    string         `json:"tuning"`
	MaxFret   int            `json:"max_fret"`
	Positions []positionJSON `json:"positions"`
}

// FretboardHandler serves range lookups, rendered diagrams, stored artifacts and the health check.
type FretboardHandler struct {
	api *API
}

func (h *FretboardHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/fretboard", Handler: h.positions},
		{Method: http.MethodGet, Path: "/fretboard.svg", Handler: h.svg},
		{Method: http.MethodGet, Path: h.api.store.URLPrefix() + "/{name}", Handler: h.static},
		{Method: http.MethodGet, Path: "/health", Handler: h.health},
	}
}

func (h *FretboardHandler) positions(w http.ResponseWriter, r *http.Request) {
	noteRange := r.URL.Query().Get("range")
	positions, err := h.api.svc.Diagrams.Resolve(noteRange)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}

	sharps := !h.api.svc.Diagrams.Options().Flats
	if queryBool(r, "flats") {
		sharps = false
	}

	board := h.api.svc.Exercises.Fretboard()
	resp := fretboardResponse{
		Range:     noteRange,
		Tuning:    board.Tuning.String(),
		MaxFret:   board.MaxFret,
		Positions: make([]positionJSON, 0, len(positions)),
	}
	for _, p := range positions {
		resp.Positions = append(resp.Positions, positionJSON{
			String: p.StringIndex,
			Fret:   p.Fret,
			Pitch:  int(p.Pitch),
			Note:   p.Pitch.Label(sharps, true),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// svg renders ?range= with optional flats, octave, start and frets overrides.
func (h *FretboardHandler) svg(w http.ResponseWriter, r *http.Request) {
	override := diagram.Options{
		Flats:      queryBool(r, "flats"),
		ShowOctave: queryBool(r, "octave"),
	}
	start, err := queryInt(r, "start")
	if err != nil {
		h.api.fail(w, r, err)
		return
	}
	frets, err := queryInt(r, "frets")
	if err != nil {
		h.api.fail(w, r, err)
		return
	}
	override.StartFret, override.FretCount = start, frets

	noteRange := r.URL.Query().Get("range")
	override.Title = noteRange

	doc, hit, err := h.api.svc.Diagrams.Render(r.Context(), noteRange, override)
	if err != nil {
		h.api.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Length", strconv.Itoa(doc.Length))
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	_, _ = w.Write(doc.Bytes())
}

func (h *FretboardHandler) static(w http.ResponseWriter, r *http.Request) {
	data, err := h.api.store.Read(r.PathValue("name"))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			h.api.logger.Debug("diagram not served", "name", r.PathValue("name"), "error", err)
		}
		writeJSON(w, http.StatusNotFound, errorBody{Error: "diagram not found", RequestID: RequestIDFrom(r.Context())})
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(data)
}

func (h *FretboardHandler) health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if h.api.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.api.db.PingContext(ctx); err != nil {
			h.api.logger.Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, status)
}
