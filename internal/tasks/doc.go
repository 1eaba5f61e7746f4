// Package tasks runs long batch jobs over the exercise library with progress reporting.
//
// # Diagram Rebuild
//
// [DiagramEngine.Rebuild] regenerates the stored SVG of every exercise (or a chosen subset), e.g. after the diagram
// settings in the config change. It uses a worker pool:
//
//  1. A producer feeds exercises to the workers, paced by a [rate.Limiter]
//  2. Workers render diagrams concurrently; rendering is pure and needs no database access
//  3. The calling goroutine writes each diagram and its path one at a time, since SQLite has a single writer
//
// A failed render or write is recorded on that exercise's [RebuildItem] and the run continues.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
