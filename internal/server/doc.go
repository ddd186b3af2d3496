// Package server exposes guess resolution and autocomplete over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (first added runs outermost), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Endpoints
//
//	GET /api/guess?q=first,second&market=XX  → [GuessResponse]
//	GET /api/autocomplete?q=partial          → []models.ArtistView
//	GET /healthz                             → {"status":"ok"}
//	GET /metrics                             → Prometheus exposition
//
// # Middleware
//
// [New] installs [RequestIDMiddleware] (reuses or generates a uuid X-Request-ID), [LoggingMiddleware] and
// [RecoverMiddleware] around every route.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
