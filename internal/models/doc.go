// Package models defines domain entities and persistence interfaces for the FretMastery practice manager.
//
// The package contains three kinds of types:
//
// 1. Persistent entities, one per table:
//   - [User] : account with password hash and admin flag
//   - [Exercise] : a note range with its generated fretboard diagram, authored by an admin
//   - [PracticeSession] : one user's rated practice of an exercise on a given day
//
// 2. Read models produced by joins and aggregates:
//   - [ExerciseWithRating] : an exercise plus its derived average difficulty
//   - [SessionWithExercise] : a session plus the title and range of its exercise
//
// 3. Inputs: [ExerciseFilter] for search, and [Principal] for the caller on whose behalf an operation runs.
//
// All persistent entities implement [Model]. The [Repository] interface defines standard CRUD operations for database
// access.
package models
