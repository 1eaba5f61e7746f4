package services

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/fretmastery/internal/assets"
	"github.com/desertthunder/fretmastery/internal/diagram"
	"github.com/desertthunder/fretmastery/internal/pitch"
)

// DiagramService renders ad hoc note ranges for browsing and the CLI.
type DiagramService struct {
	board  pitch.Fretboard
	opts   diagram.Options
	cache  assets.Cache
	ttl    time.Duration
	logger *log.Logger
}

// NewDiagramService creates a [DiagramService]. Renders are cached for ttl.
func NewDiagramService(board pitch.Fretboard, opts diagram.Options, cache assets.Cache, ttl time.Duration, logger *log.Logger) *DiagramService {
	opts.MaxFret = board.MaxFret
	return &DiagramService{board: board, opts: opts, cache: cache, ttl: ttl, logger: logger}
}

// Options returns the default render options.
func (s *DiagramService) Options() diagram.Options { return s.opts }

// Resolve returns every fretboard position within noteRange.
func (s *DiagramService) Resolve(noteRange string) ([]pitch.Position, error) {
	return s.board.ResolveString(noteRange)
}

// Render draws noteRange with the default options overlaid by the non-zero fields of override.
// The second result reports whether the document came from the cache.
//
// Cache failures are logged and otherwise ignored.
func (s *DiagramService) Render(ctx context.Context, noteRange string, override diagram.Options) (*diagram.Document, bool, error) {
	opts := s.merge(override)
	key := assets.CacheKey(noteRange, opts)

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("diagram cache read failed", "error", err)
	} else if ok {
		return &diagram.Document{SVG: string(data), Length: len(data)}, true, nil
	}

	positions, err := s.board.ResolveString(noteRange)
	if err != nil {
		return nil, false, err
	}

	doc, err := diagram.Generate(positions, opts)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.Set(ctx, key, doc.Bytes(), s.ttl); err != nil {
		s.logger.Warn("diagram cache write failed", "error", err)
	}
	return doc, false, nil
}

// Text draws noteRange as a monospace fretboard.
func (s *DiagramService) Text(noteRange string, override diagram.Options) (string, error) {
	positions, err := s.board.ResolveString(noteRange)
	if err != nil {
		return "", err
	}
	return diagram.RenderText(positions, s.merge(override))
}

func (s *DiagramService) merge(o diagram.Options) diagram.Options {
	opts := s.opts
	if o.Width > 0 {
		opts.Width = o.Width
	}
	if o.Height > 0 {
		opts.Height = o.Height
	}
	if o.FretCount != 0 || o.StartFret != 0 {
		opts.StartFret = o.StartFret
		opts.FretCount = o.FretCount
	}
	if o.ShowOctave {
		opts.ShowOctave = true
	}
	if o.Flats {
		opts.Flats = true
	}
	if o.Title != "" {
		opts.Title = o.Title
	}
	return opts
}
