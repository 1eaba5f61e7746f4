// Package server exposes the FretMastery services as a JSON HTTP API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /exercises/{id}"), so unknown methods
// get a 405 and path wildcards are read with [http.Request.PathValue].
//
// # Handler Interface
//
// Resources implement the [Handler] interface and return their [Route] list. A route may carry its own middleware, e.g.
// the auth endpoints are rate limited per client IP.
//
// # Authentication
//
// [Authenticate] reads an optional "Authorization: Bearer <token>" header and stores the verified
// [models.Principal] in the request context. Anonymous requests pass through; the services decide whether an
// operation needs a signed-in user or an admin.
//
// # Errors
//
// Errors are rendered as {"error": "...", "fields": [...]} with the status taken from the error taxonomy:
//   - validation, parse and range errors: 400
//   - missing or invalid token, bad credentials: 401
//   - not allowed for this principal: 403
//   - missing rows: 404
//   - anything else: 500, logged with the request ID
package server
