// Package logging provides slog construction and shared structured-logging
// helpers. Every component logs through a component-scoped logger; warnings
// carry event_type, error_hint, and impact fields so a run log explains what
// went wrong, what it cost, and what to do about it.
package logging
