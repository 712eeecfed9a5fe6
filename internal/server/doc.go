// Package server exposes books, text processing and the recite list over a
// JSON HTTP API built on gin, and optionally serves the static front-end.
//
// Every error reply has the shape {"error": message}. When a bearer token is
// configured, /api routes require it.
package server
