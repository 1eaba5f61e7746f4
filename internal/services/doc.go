// Package services implements the application's use cases on top of the repositories.
//
// Every operation that changes data takes the calling [models.Principal] explicitly.
//
// # Exercises
//
// [ExerciseService] validates the note range against the configured fretboard, renders the diagram and stores it, then
// inserts the row and records the diagram path, all inside one transaction. A failure at any step leaves neither a row
// nor an orphaned file behind. Editing an exercise regenerates its diagram.
//
// # Practice sessions
//
// [SessionService] records, edits and lists a user's practice log. Only the owner (or an admin) can touch a session.
//
// # Accounts
//
// [UserService] registers users with bcrypt password hashes and authenticates them. [TokenIssuer] signs and verifies
// the HS256 bearer tokens the HTTP server accepts.
//
// # Diagrams
//
// [DiagramService] renders ad hoc ranges through an [assets.Cache].
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ValidationError] : bad input, detected before anything is written
//   - [shared.NotFoundError] : a referenced row does not exist
//   - [shared.ErrForbidden] : the principal may not perform the operation
//   - [shared.ErrNotAuthenticated] : the operation needs a signed-in user
//   - [shared.ErrAuthFailed] : wrong username or password
package services
