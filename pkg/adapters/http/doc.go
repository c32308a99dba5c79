// Package http serves the story graph editor over a REST API built on chi.
//
// Besides the editing routes it streams graph diffs over Server-Sent Events
// and mirrors the unit store service API (/files, /file, /rename), so this
// server can stand in for that service.
package http
