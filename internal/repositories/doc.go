// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository implements models.Repository[T] for one table and accepts a [DBTX], so the same code runs against
// the pool or inside a transaction opened with shared.InTx. Deletes are hard deletes: the schema's ON DELETE CASCADE
// foreign keys remove dependent exercises and practice sessions.
//
// Key Implementations:
//   - [UserRepository] : accounts with username and email lookups
//   - [ExerciseRepository] : exercises, the average-rating aggregate, concept listing and filtered search
//   - [SessionRepository] : practice sessions and the per-user practice log joined with exercise titles
//
// Missing rows come back as *shared.NotFoundError and constraint problems as *shared.ValidationError, so callers can
// tell user mistakes from storage failures.
package repositories
