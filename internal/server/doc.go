// Package server provides HTTP routing, middleware and the JSON API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] with method-qualified patterns, so path wildcards are read
// with [http.Request.PathValue] and mismatched methods get a 405.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # API
//
// [APIHandler] serves everything under /api/:
//
//	GET  /api/test                       → catalog connectivity check
//	GET  /api/recommendations/emotions   → {"emotions": [{emotion, artist}]}
//	POST /api/recommendations/emotion    → playlist for {emotion, userId}
//	GET  /api/music/search/tracks?q=     → {"tracks": [...]}
//	GET  /api/music/search/artists?q=    → {"artists": [...]}
//	GET  /api/users/{id}                 → {"user": {...}}
//	POST /api/users                      → save (create or merge)
//	PUT  /api/users/{id}/preferences     → merge onto an existing profile
//
// # Errors
//
// Failures are written as {"error": message, "code": kind}. [StatusFor] maps unknown emotions and validation
// errors to 400, not found to 404, credential and catalog failures to 502.
package server
