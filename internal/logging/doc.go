// Package logging wires log/slog with the handlers and attribute helpers
// used across quarto. Components receive a *slog.Logger tagged with a
// component attribute; tests use NewNop to discard output.
package logging
